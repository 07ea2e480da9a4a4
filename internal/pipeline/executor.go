package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/assess"
	"github.com/ironclad-grc/ironclad/internal/consensus"
)

const (
	stepFailureTemplateConstant        = "pipeline step %s failed: %w"
	dryRunDetailMessageConstant        = "skipped (dry run)"
	stepStartedLogMessageConstant      = "pipeline step started"
	stepFinishedLogMessageConstant     = "pipeline step finished"
	logFieldStepNameConstant           = "step"
	logFieldStepOutcomeConstant        = "outcome"
)

// StepOutcome classifies how a pipeline step ended.
type StepOutcome string

// Step outcomes reported through the observer.
const (
	OutcomeCompleted StepOutcome = "completed"
	OutcomeSkipped   StepOutcome = "skipped"
	OutcomeDryRun    StepOutcome = "dry-run"
)

// StepEvent describes the result of one executed pipeline step.
type StepEvent struct {
	Step    StepType
	Outcome StepOutcome
	Detail  string
}

// StepObserver receives step events as the pipeline progresses.
type StepObserver func(stepEvent StepEvent)

// AssessmentRunner produces preliminary assessment documents.
type AssessmentRunner interface {
	Run(executionContext context.Context, options assess.Options) (assess.Document, error)
}

// VerdictProvider submits documents to the consensus engine and waits for verdicts.
type VerdictProvider interface {
	Submit(executionContext context.Context, assessmentDocument assess.Document) (consensus.SubmissionReceipt, error)
	AwaitVerdict(executionContext context.Context, submissionID string) (consensus.Verdict, error)
}

// ReportRenderer renders a document into a PDF inside the output directory.
type ReportRenderer func(assessmentDocument assess.Document, outputDirectory string) (string, error)

// ReportUploader pushes rendered reports to the object store.
type ReportUploader interface {
	UploadReport(executionContext context.Context, reportDirectory string, clientIdentifier string, assessmentIdentifier string) (string, error)
}

// AssessmentRecorder persists completed assessments.
type AssessmentRecorder interface {
	RecordAssessment(executionContext context.Context, assessmentDocument assess.Document, reportURL string) error
}

// Environment exposes shared collaborators for pipeline steps. Nil
// collaborators cause the dependent steps to be skipped rather than fail.
type Environment struct {
	Assessor        AssessmentRunner
	ConsensusClient VerdictProvider
	ReportRenderer  ReportRenderer
	ReportUploader  ReportUploader
	Recorder        AssessmentRecorder
	Logger          *zap.Logger
	Observer        StepObserver
	DryRun          bool
}

// State carries intermediate artifacts between pipeline steps.
type State struct {
	Document     *assess.Document
	DocumentPath string
	ReportPath   string
	ReportURL    string
}

// Step executes a single pipeline operation.
type Step interface {
	Name() StepType
	Execute(executionContext context.Context, environment *Environment, parameters Parameters, state *State) (StepEvent, error)
}

// Executor coordinates pipeline step execution.
type Executor struct {
	steps       []Step
	environment Environment
}

// NewExecutor constructs an Executor instance.
func NewExecutor(steps []Step, environment Environment) *Executor {
	if environment.Logger == nil {
		environment.Logger = zap.NewNop()
	}
	return &Executor{steps: append([]Step{}, steps...), environment: environment}
}

// Execute runs the configured steps in order, halting on the first failure.
func (executor *Executor) Execute(executionContext context.Context, parameters Parameters) error {
	pipelineState := &State{}

	for stepIndex := range executor.steps {
		pipelineStep := executor.steps[stepIndex]
		if pipelineStep == nil {
			continue
		}

		executor.environment.Logger.Info(stepStartedLogMessageConstant, zap.String(logFieldStepNameConstant, string(pipelineStep.Name())))

		stepEvent := StepEvent{Step: pipelineStep.Name(), Outcome: OutcomeDryRun, Detail: dryRunDetailMessageConstant}
		if !executor.environment.DryRun {
			executedEvent, stepError := pipelineStep.Execute(executionContext, &executor.environment, parameters, pipelineState)
			if stepError != nil {
				return fmt.Errorf(stepFailureTemplateConstant, pipelineStep.Name(), stepError)
			}
			stepEvent = executedEvent
		}

		executor.environment.Logger.Info(
			stepFinishedLogMessageConstant,
			zap.String(logFieldStepNameConstant, string(stepEvent.Step)),
			zap.String(logFieldStepOutcomeConstant, string(stepEvent.Outcome)),
		)
		if executor.environment.Observer != nil {
			executor.environment.Observer(stepEvent)
		}
	}

	return nil
}
