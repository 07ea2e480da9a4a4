package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/frameworks"
)

const (
	documentWriteErrorTemplateConstant   = "failed to write update results: %w"
	documentEncodeErrorTemplateConstant  = "failed to encode update results: %w"
	documentTimestampLayoutConstant      = time.RFC3339
	documentFilePermissionsConstant      = 0o644
	documentIndentPrefixConstant         = ""
	documentIndentConstant               = "  "
	checkStartedMessageConstant          = "checking framework source"
	checkCompletedMessageConstant        = "framework source checked"
	sweepCompletedMessageConstant        = "framework update sweep completed"
	watchSweepFailedMessageConstant      = "scheduled update sweep failed"
	logFieldFrameworkConstant            = "framework"
	logFieldUpdateDetectedConstant       = "update_detected"
	logFieldCheckErrorConstant           = "check_error"
	logFieldUpdatesFoundConstant         = "updates_found"
	logFieldOutputPathConstant           = "output_path"
	watchJitterStandardDeviationConstant = 30 * time.Second
)

// Document aggregates one polling sweep across framework sources.
type Document struct {
	CheckedAt    string        `json:"checked_at"`
	UpdatesFound bool          `json:"updates_found"`
	Frameworks   []string      `json:"frameworks"`
	Checks       []CheckResult `json:"checks"`
}

// RunOptions configures a polling sweep.
type RunOptions struct {
	FrameworkID string
	OutputPath  string
}

// SourceResolver selects the framework sources a sweep should poll; an empty
// identifier selects every registered source.
type SourceResolver func(frameworkIdentifier string) ([]frameworks.SourceDefinition, error)

// Service drives polling sweeps over the framework source registry.
type Service struct {
	checker        *Checker
	logger         *zap.Logger
	clock          func() time.Time
	sourceResolver SourceResolver
}

// NewService constructs a Service around the provided checker and logger.
func NewService(checker *Checker, logger *zap.Logger) *Service {
	if checker == nil {
		checker = NewChecker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{checker: checker, logger: logger, clock: time.Now, sourceResolver: resolveRegisteredSources}
}

// NewServiceWithSources constructs a Service polling a fixed source list, primarily for tests.
func NewServiceWithSources(checker *Checker, logger *zap.Logger, fixedSources []frameworks.SourceDefinition) *Service {
	service := NewService(checker, logger)
	service.sourceResolver = func(string) ([]frameworks.SourceDefinition, error) {
		return fixedSources, nil
	}
	return service
}

// Run polls the selected framework source, or every registered source, and
// writes the aggregated document to the configured output path.
func (service *Service) Run(executionContext context.Context, options RunOptions) (Document, error) {
	selectedSources, selectionError := service.sourceResolver(options.FrameworkID)
	if selectionError != nil {
		return Document{}, selectionError
	}

	sweepDocument := Document{
		CheckedAt:  service.clock().UTC().Format(documentTimestampLayoutConstant),
		Frameworks: make([]string, 0),
		Checks:     make([]CheckResult, 0, len(selectedSources)),
	}

	for _, frameworkSource := range selectedSources {
		service.logger.Info(checkStartedMessageConstant, zap.String(logFieldFrameworkConstant, frameworkSource.ID))

		checkResult := service.checker.Check(executionContext, frameworkSource)
		sweepDocument.Checks = append(sweepDocument.Checks, checkResult)

		if checkResult.UpdateDetected {
			sweepDocument.UpdatesFound = true
			sweepDocument.Frameworks = append(sweepDocument.Frameworks, frameworkSource.ID)
		}

		service.logger.Info(
			checkCompletedMessageConstant,
			zap.String(logFieldFrameworkConstant, frameworkSource.ID),
			zap.Bool(logFieldUpdateDetectedConstant, checkResult.UpdateDetected),
			zap.String(logFieldCheckErrorConstant, checkResult.Error),
		)
	}

	if writeError := service.writeDocument(sweepDocument, options.OutputPath); writeError != nil {
		return Document{}, writeError
	}

	service.logger.Info(
		sweepCompletedMessageConstant,
		zap.Bool(logFieldUpdatesFoundConstant, sweepDocument.UpdatesFound),
		zap.String(logFieldOutputPathConstant, options.OutputPath),
	)

	return sweepDocument, nil
}

// Watch repeats Run on a jittered interval until the context is cancelled.
// Individual sweep failures are logged and the loop continues.
func (service *Service) Watch(executionContext context.Context, options RunOptions, pollInterval time.Duration) error {
	watchTicker := jitterbug.New(pollInterval, &jitterbug.Norm{Stdev: watchJitterStandardDeviationConstant})
	defer watchTicker.Stop()

	for {
		select {
		case <-executionContext.Done():
			return executionContext.Err()
		case <-watchTicker.C:
			if _, sweepError := service.Run(executionContext, options); sweepError != nil {
				service.logger.Warn(watchSweepFailedMessageConstant, zap.Error(sweepError))
			}
		}
	}
}

func resolveRegisteredSources(frameworkIdentifier string) ([]frameworks.SourceDefinition, error) {
	if len(frameworkIdentifier) == 0 {
		return frameworks.BuiltinSources(), nil
	}

	selectedSource, lookupError := frameworks.SourceByID(frameworkIdentifier)
	if lookupError != nil {
		return nil, lookupError
	}
	return []frameworks.SourceDefinition{selectedSource}, nil
}

func (service *Service) writeDocument(sweepDocument Document, outputPath string) error {
	if len(outputPath) == 0 {
		return nil
	}

	encodedDocument, encodeError := json.MarshalIndent(sweepDocument, documentIndentPrefixConstant, documentIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(documentEncodeErrorTemplateConstant, encodeError)
	}

	if writeError := os.WriteFile(outputPath, encodedDocument, documentFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(documentWriteErrorTemplateConstant, writeError)
	}

	return nil
}
