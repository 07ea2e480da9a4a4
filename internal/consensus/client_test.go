package consensus_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/internal/assess"
	"github.com/ironclad-grc/ironclad/internal/consensus"
)

const (
	testGroqCredentialConstant          = "groq-test-key"
	testSubmissionIdentifierConstant    = "sub-42"
	testAcceptedStatusValueConstant     = "accepted"
	testAssessmentIdentifierConstant    = "acme-corp-soc2-20260829120000"
	testVerdictConfidenceValueConstant  = 0.87
	testVerdictPollIntervalConstant     = 5 * time.Millisecond
	pendingPollsBeforeVerdictConstant   = 2
	expectedVoteCountConstant           = 2
	submitEndpointPathValueConstant     = "/v1/assessments"
	verdictEndpointPathValueConstant    = "/v1/assessments/sub-42/verdict"
	credentialHeaderNameValueConstant   = "X-Groq-Key"
	submissionHeaderNameValueConstant   = "X-Submission-ID"
)

func testCredentials() consensus.Credentials {
	return consensus.Credentials{GroqAPIKey: testGroqCredentialConstant}
}

func TestNewClientValidation(testInstance *testing.T) {
	_, missingURLError := consensus.NewClient("   ", testCredentials())
	require.ErrorIs(testInstance, missingURLError, consensus.ErrNotConfigured)

	_, missingCredentialsError := consensus.NewClient("https://engine.internal", consensus.Credentials{})
	require.Error(testInstance, missingCredentialsError)
}

func TestClientSubmit(testInstance *testing.T) {
	engineServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, engineRequest *http.Request) {
		require.Equal(testInstance, http.MethodPost, engineRequest.Method)
		require.Equal(testInstance, submitEndpointPathValueConstant, engineRequest.URL.Path)
		require.Equal(testInstance, testGroqCredentialConstant, engineRequest.Header.Get(credentialHeaderNameValueConstant))
		require.NotEmpty(testInstance, engineRequest.Header.Get(submissionHeaderNameValueConstant))

		var submittedDocument assess.Document
		require.NoError(testInstance, json.NewDecoder(engineRequest.Body).Decode(&submittedDocument))
		require.Equal(testInstance, testAssessmentIdentifierConstant, submittedDocument.AssessmentID)

		responseWriter.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(responseWriter).Encode(consensus.SubmissionReceipt{
			SubmissionID: testSubmissionIdentifierConstant,
			Status:       testAcceptedStatusValueConstant,
		})
	}))
	defer engineServer.Close()

	engineClient, clientError := consensus.NewClient(engineServer.URL, testCredentials())
	require.NoError(testInstance, clientError)
	engineClient.SetHTTPClient(engineServer.Client())

	submissionReceipt, submitError := engineClient.Submit(context.Background(), assess.Document{AssessmentID: testAssessmentIdentifierConstant})
	require.NoError(testInstance, submitError)
	require.Equal(testInstance, testSubmissionIdentifierConstant, submissionReceipt.SubmissionID)
}

func TestClientSubmitRejectedStatus(testInstance *testing.T) {
	engineServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, engineRequest *http.Request) {
		responseWriter.WriteHeader(http.StatusBadGateway)
	}))
	defer engineServer.Close()

	engineClient, clientError := consensus.NewClient(engineServer.URL, testCredentials())
	require.NoError(testInstance, clientError)
	engineClient.SetHTTPClient(engineServer.Client())

	_, submitError := engineClient.Submit(context.Background(), assess.Document{})
	require.Error(testInstance, submitError)

	var operationError consensus.OperationError
	require.ErrorAs(testInstance, submitError, &operationError)
}

func TestClientAwaitVerdict(testInstance *testing.T) {
	var verdictRequestCount atomic.Int64

	engineServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, engineRequest *http.Request) {
		require.Equal(testInstance, verdictEndpointPathValueConstant, engineRequest.URL.Path)

		currentRequestCount := verdictRequestCount.Add(1)
		engineVerdict := consensus.Verdict{SubmissionID: testSubmissionIdentifierConstant, Severity: consensus.SeverityPending}
		if currentRequestCount > pendingPollsBeforeVerdictConstant {
			engineVerdict.Severity = consensus.SeverityHigh
			engineVerdict.Confidence = testVerdictConfidenceValueConstant
			engineVerdict.Votes = []consensus.ModelVote{
				{Model: "llama-3.3-70b", Severity: consensus.SeverityHigh, Weight: 0.5},
				{Model: "gemini-2.0-flash", Severity: consensus.SeverityHigh, Weight: 0.5},
			}
		}
		_ = json.NewEncoder(responseWriter).Encode(engineVerdict)
	}))
	defer engineServer.Close()

	engineClient, clientError := consensus.NewClient(engineServer.URL, testCredentials())
	require.NoError(testInstance, clientError)
	engineClient.SetHTTPClient(engineServer.Client())
	engineClient.SetPollInterval(testVerdictPollIntervalConstant)

	engineVerdict, awaitError := engineClient.AwaitVerdict(context.Background(), testSubmissionIdentifierConstant)
	require.NoError(testInstance, awaitError)
	require.Equal(testInstance, consensus.SeverityHigh, engineVerdict.Severity)
	require.InDelta(testInstance, testVerdictConfidenceValueConstant, engineVerdict.Confidence, 0.0001)
	require.Len(testInstance, engineVerdict.Votes, expectedVoteCountConstant)
}

func TestClientAwaitVerdictCancelled(testInstance *testing.T) {
	engineServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, engineRequest *http.Request) {
		_ = json.NewEncoder(responseWriter).Encode(consensus.Verdict{Severity: consensus.SeverityPending})
	}))
	defer engineServer.Close()

	engineClient, clientError := consensus.NewClient(engineServer.URL, testCredentials())
	require.NoError(testInstance, clientError)
	engineClient.SetHTTPClient(engineServer.Client())
	engineClient.SetPollInterval(testVerdictPollIntervalConstant)

	cancellableContext, cancelFunction := context.WithCancel(context.Background())
	cancelFunction()

	_, awaitError := engineClient.AwaitVerdict(cancellableContext, testSubmissionIdentifierConstant)
	require.Error(testInstance, awaitError)
}
