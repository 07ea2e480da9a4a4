package consensus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironclad-grc/ironclad/internal/assess"
)

const (
	submitEndpointPathConstant              = "/v1/assessments"
	verdictEndpointPathTemplateConstant     = "/v1/assessments/%s/verdict"
	contentTypeHeaderNameConstant           = "Content-Type"
	jsonContentTypeValueConstant            = "application/json"
	submissionIdentifierHeaderNameConstant  = "X-Submission-ID"
	groqCredentialHeaderNameConstant        = "X-Groq-Key"
	openRouterCredentialHeaderNameConstant  = "X-OpenRouter-Key"
	geminiCredentialHeaderNameConstant      = "X-Gemini-Key"
	clientRequestTimeoutConstant            = 60 * time.Second
	engineNotConfiguredMessageConstant      = "consensus engine base URL not configured"
	credentialsMissingMessageConstant       = "no model provider credentials configured"
	operationFailedTemplateConstant         = "%s operation failed: %s"
	unexpectedEngineStatusTemplateConstant  = "unexpected status %d"
	payloadEncodingErrorTemplateConstant    = "payload encoding failed: %s"
	responseDecodingErrorTemplateConstant   = "response decoding failed: %s"
	submitOperationNameConstant             = OperationName("SubmitAssessment")
	verdictOperationNameConstant            = OperationName("FetchVerdict")
	awaitVerdictOperationNameConstant       = OperationName("AwaitVerdict")
	defaultVerdictPollIntervalConstant      = 15 * time.Second
)

// OperationName identifies a consensus engine workflow for error reporting.
type OperationName string

// Severity enumerates engine verdict severities.
type Severity string

// Engine severities; SeverityPending marks verdicts still being voted on.
const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
	SeverityPending  Severity = "PENDING"
)

// Credentials carries the model provider keys forwarded to the engine.
type Credentials struct {
	GroqAPIKey       string
	OpenRouterAPIKey string
	GeminiAPIKey     string
}

// Configured reports whether at least one provider key is present.
func (credentials Credentials) Configured() bool {
	return len(credentials.GroqAPIKey) > 0 || len(credentials.OpenRouterAPIKey) > 0 || len(credentials.GeminiAPIKey) > 0
}

// SubmissionReceipt acknowledges an accepted assessment submission.
type SubmissionReceipt struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
}

// ModelVote records one model's contribution to a verdict.
type ModelVote struct {
	Model    string   `json:"model"`
	Severity Severity `json:"severity"`
	Weight   float64  `json:"weight"`
}

// Verdict is the engine's aggregated judgement for a submission.
type Verdict struct {
	SubmissionID string      `json:"submission_id"`
	Severity     Severity    `json:"severity"`
	Confidence   float64     `json:"confidence"`
	Votes        []ModelVote `json:"votes"`
	CompletedAt  string      `json:"completed_at,omitempty"`
}

// Terminal reports whether voting has finished.
func (verdict Verdict) Terminal() bool {
	return verdict.Severity != SeverityPending && len(verdict.Severity) > 0
}

// OperationError wraps failures of consensus engine operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the failed operation.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationFailedTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ErrNotConfigured indicates the client is missing its base URL or all credentials.
var ErrNotConfigured = errors.New(engineNotConfiguredMessageConstant)

// Client invokes the consensus engine over HTTP.
type Client struct {
	baseURL      string
	credentials  Credentials
	httpClient   *http.Client
	pollInterval time.Duration
}

// NewClient constructs a consensus engine client. The base URL must be set and
// at least one provider credential must be present.
func NewClient(baseURL string, credentials Credentials) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(trimmedBaseURL) == 0 {
		return nil, ErrNotConfigured
	}
	if _, parseError := url.Parse(trimmedBaseURL); parseError != nil {
		return nil, ErrNotConfigured
	}
	if !credentials.Configured() {
		return nil, errors.New(credentialsMissingMessageConstant)
	}

	return &Client{
		baseURL:      trimmedBaseURL,
		credentials:  credentials,
		httpClient:   &http.Client{Timeout: clientRequestTimeoutConstant},
		pollInterval: defaultVerdictPollIntervalConstant,
	}, nil
}

// SetHTTPClient overrides the transport, primarily for tests.
func (client *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		client.httpClient = httpClient
	}
}

// SetPollInterval overrides the verdict polling cadence.
func (client *Client) SetPollInterval(pollInterval time.Duration) {
	if pollInterval > 0 {
		client.pollInterval = pollInterval
	}
}

// Submit sends an assessment document to the engine for consensus analysis.
func (client *Client) Submit(executionContext context.Context, assessmentDocument assess.Document) (SubmissionReceipt, error) {
	encodedPayload, encodeError := json.Marshal(assessmentDocument)
	if encodeError != nil {
		return SubmissionReceipt{}, OperationError{Operation: submitOperationNameConstant, Cause: fmt.Errorf(payloadEncodingErrorTemplateConstant, encodeError)}
	}

	submitRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, client.baseURL+submitEndpointPathConstant, bytes.NewReader(encodedPayload))
	if requestError != nil {
		return SubmissionReceipt{}, OperationError{Operation: submitOperationNameConstant, Cause: requestError}
	}
	submitRequest.Header.Set(contentTypeHeaderNameConstant, jsonContentTypeValueConstant)
	submitRequest.Header.Set(submissionIdentifierHeaderNameConstant, uuid.NewString())
	client.applyCredentialHeaders(submitRequest)

	var submissionReceipt SubmissionReceipt
	if callError := client.executeJSONRequest(submitRequest, http.StatusAccepted, &submissionReceipt, submitOperationNameConstant); callError != nil {
		return SubmissionReceipt{}, callError
	}
	return submissionReceipt, nil
}

// FetchVerdict retrieves the current verdict for a submission.
func (client *Client) FetchVerdict(executionContext context.Context, submissionID string) (Verdict, error) {
	verdictURL := client.baseURL + fmt.Sprintf(verdictEndpointPathTemplateConstant, url.PathEscape(submissionID))
	verdictRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, verdictURL, nil)
	if requestError != nil {
		return Verdict{}, OperationError{Operation: verdictOperationNameConstant, Cause: requestError}
	}
	client.applyCredentialHeaders(verdictRequest)

	var engineVerdict Verdict
	if callError := client.executeJSONRequest(verdictRequest, http.StatusOK, &engineVerdict, verdictOperationNameConstant); callError != nil {
		return Verdict{}, callError
	}
	return engineVerdict, nil
}

// AwaitVerdict polls the engine until the verdict is terminal or the context ends.
func (client *Client) AwaitVerdict(executionContext context.Context, submissionID string) (Verdict, error) {
	pollTicker := time.NewTicker(client.pollInterval)
	defer pollTicker.Stop()

	for {
		engineVerdict, verdictError := client.FetchVerdict(executionContext, submissionID)
		if verdictError != nil {
			return Verdict{}, verdictError
		}
		if engineVerdict.Terminal() {
			return engineVerdict, nil
		}

		select {
		case <-executionContext.Done():
			return Verdict{}, OperationError{Operation: awaitVerdictOperationNameConstant, Cause: executionContext.Err()}
		case <-pollTicker.C:
		}
	}
}

func (client *Client) applyCredentialHeaders(engineRequest *http.Request) {
	if len(client.credentials.GroqAPIKey) > 0 {
		engineRequest.Header.Set(groqCredentialHeaderNameConstant, client.credentials.GroqAPIKey)
	}
	if len(client.credentials.OpenRouterAPIKey) > 0 {
		engineRequest.Header.Set(openRouterCredentialHeaderNameConstant, client.credentials.OpenRouterAPIKey)
	}
	if len(client.credentials.GeminiAPIKey) > 0 {
		engineRequest.Header.Set(geminiCredentialHeaderNameConstant, client.credentials.GeminiAPIKey)
	}
}

func (client *Client) executeJSONRequest(engineRequest *http.Request, expectedStatus int, responseTarget any, operationName OperationName) error {
	engineResponse, executionError := client.httpClient.Do(engineRequest)
	if executionError != nil {
		return OperationError{Operation: operationName, Cause: executionError}
	}
	defer engineResponse.Body.Close()

	if engineResponse.StatusCode != expectedStatus {
		return OperationError{Operation: operationName, Cause: fmt.Errorf(unexpectedEngineStatusTemplateConstant, engineResponse.StatusCode)}
	}

	if decodeError := json.NewDecoder(engineResponse.Body).Decode(responseTarget); decodeError != nil {
		return OperationError{Operation: operationName, Cause: fmt.Errorf(responseDecodingErrorTemplateConstant, decodeError)}
	}

	return nil
}
