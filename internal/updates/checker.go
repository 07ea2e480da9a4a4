package updates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ironclad-grc/ironclad/internal/frameworks"
)

const (
	checkerUserAgentConstant                = "IronClad-Compliance-Checker/1.0"
	checkerRequestTimeoutConstant           = 30 * time.Second
	userAgentHeaderNameConstant             = "User-Agent"
	unexpectedStatusTemplateConstant        = "unexpected status %d from %s"
	requestCreationErrorTemplateConstant    = "failed to build request for %s: %w"
	requestExecutionErrorTemplateConstant   = "failed to fetch %s: %w"
	responseReadErrorTemplateConstant       = "failed to read response from %s: %w"
	updateDetectedDetailTemplateConstant    = "found %q - manual review recommended"
	scriptElementNameConstant               = "script"
	styleElementNameConstant                = "style"
	extractedTextJoinSeparatorConstant      = " "
	checkResultTimestampFieldLayoutConstant = time.RFC3339
)

var updateIndicatorPhrases = []string{"new version", "updated", "revision", "latest"}

// CheckResult captures the outcome of polling one framework source.
type CheckResult struct {
	FrameworkID    string `json:"framework_id"`
	Name           string `json:"name"`
	CheckedAt      string `json:"checked_at"`
	UpdateDetected bool   `json:"update_detected"`
	Details        string `json:"details,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Checker polls framework publication pages for update indicators.
type Checker struct {
	httpClient *http.Client
	clock      func() time.Time
}

// NewChecker constructs a Checker with the default HTTP client and clock.
func NewChecker() *Checker {
	return &Checker{
		httpClient: &http.Client{Timeout: checkerRequestTimeoutConstant},
		clock:      time.Now,
	}
}

// NewCheckerWithClient constructs a Checker using the provided HTTP client, primarily for tests.
func NewCheckerWithClient(httpClient *http.Client) *Checker {
	checker := NewChecker()
	if httpClient != nil {
		checker.httpClient = httpClient
	}
	return checker
}

// Check polls a single framework source. Transport and status failures are
// reported inside the result so a sweep over all sources never aborts early.
func (checker *Checker) Check(executionContext context.Context, source frameworks.SourceDefinition) CheckResult {
	checkResult := CheckResult{
		FrameworkID: source.ID,
		Name:        source.Name,
		CheckedAt:   checker.clock().UTC().Format(checkResultTimestampFieldLayoutConstant),
	}

	pageText, fetchError := checker.fetchPageText(executionContext, source.CheckURL)
	if fetchError != nil {
		checkResult.Error = fetchError.Error()
		return checkResult
	}

	loweredPageText := strings.ToLower(pageText)
	for _, indicatorPhrase := range updateIndicatorPhrases {
		if strings.Contains(loweredPageText, indicatorPhrase) {
			checkResult.UpdateDetected = true
			checkResult.Details = fmt.Sprintf(updateDetectedDetailTemplateConstant, indicatorPhrase)
			break
		}
	}

	return checkResult
}

func (checker *Checker) fetchPageText(executionContext context.Context, pageURL string) (string, error) {
	pageRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, pageURL, nil)
	if requestError != nil {
		return "", fmt.Errorf(requestCreationErrorTemplateConstant, pageURL, requestError)
	}
	pageRequest.Header.Set(userAgentHeaderNameConstant, checkerUserAgentConstant)

	pageResponse, executionError := checker.httpClient.Do(pageRequest)
	if executionError != nil {
		return "", fmt.Errorf(requestExecutionErrorTemplateConstant, pageURL, executionError)
	}
	defer pageResponse.Body.Close()

	if pageResponse.StatusCode < http.StatusOK || pageResponse.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf(unexpectedStatusTemplateConstant, pageResponse.StatusCode, pageURL)
	}

	return extractDocumentText(pageResponse.Body)
}

// extractDocumentText walks the parsed html tree collecting visible text,
// skipping script and style subtrees.
func extractDocumentText(documentReader io.Reader) (string, error) {
	documentRoot, parseError := html.Parse(documentReader)
	if parseError != nil {
		return "", parseError
	}

	textSegments := make([]string, 0)
	var collectText func(node *html.Node)
	collectText = func(node *html.Node) {
		if node.Type == html.ElementNode {
			if node.Data == scriptElementNameConstant || node.Data == styleElementNameConstant {
				return
			}
		}
		if node.Type == html.TextNode {
			trimmedText := strings.TrimSpace(node.Data)
			if len(trimmedText) > 0 {
				textSegments = append(textSegments, trimmedText)
			}
		}
		for childNode := node.FirstChild; childNode != nil; childNode = childNode.NextSibling {
			collectText(childNode)
		}
	}
	collectText(documentRoot)

	return strings.Join(textSegments, extractedTextJoinSeparatorConstant), nil
}
