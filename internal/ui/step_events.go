package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/pipeline"
)

const (
	stepCompletedMessageTemplateConstant = "Completed %s"
	stepSkippedMessageTemplateConstant   = "Skipped %s"
	stepDryRunMessageTemplateConstant    = "Would run %s"
	stepDetailSuffixTemplateConstant     = ": %s"
	emptyStringConstant                  = ""
)

// StepEventFormatter builds human-readable messages for pipeline step events.
type StepEventFormatter struct{}

// BuildMessage formats the message describing a finished pipeline step.
func (formatter StepEventFormatter) BuildMessage(stepEvent pipeline.StepEvent) string {
	messageTemplate := stepCompletedMessageTemplateConstant
	switch stepEvent.Outcome {
	case pipeline.OutcomeSkipped:
		messageTemplate = stepSkippedMessageTemplateConstant
	case pipeline.OutcomeDryRun:
		messageTemplate = stepDryRunMessageTemplateConstant
	}

	return fmt.Sprintf(messageTemplate, stepEvent.Step) + formatter.formatDetailSuffix(stepEvent.Detail)
}

func (formatter StepEventFormatter) formatDetailSuffix(stepDetail string) string {
	trimmedDetail := strings.TrimSpace(stepDetail)
	if len(trimmedDetail) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(stepDetailSuffixTemplateConstant, trimmedDetail)
}

// ConsoleStepEventLogger renders pipeline step events using a zap logger
// configured for human-readable output.
type ConsoleStepEventLogger struct {
	logger    *zap.Logger
	formatter StepEventFormatter
}

// NewConsoleStepEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleStepEventLogger(logger *zap.Logger) *ConsoleStepEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleStepEventLogger{logger: logger, formatter: StepEventFormatter{}}
}

// StepFinished implements pipeline.StepObserver by logging step outcomes.
func (eventLogger *ConsoleStepEventLogger) StepFinished(stepEvent pipeline.StepEvent) {
	if eventLogger == nil {
		return
	}
	switch stepEvent.Outcome {
	case pipeline.OutcomeSkipped:
		eventLogger.logger.Warn(eventLogger.formatter.BuildMessage(stepEvent))
	default:
		eventLogger.logger.Info(eventLogger.formatter.BuildMessage(stepEvent))
	}
}
