package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/ironclad-grc/ironclad/internal/assess"
)

const (
	defaultAssessmentFileNameConstant        = "assessment.json"
	stepOptionsDecodeErrorTemplateConstant   = "failed to decode %s step options: %w"
	assessorMissingMessageConstant           = "assess step requires an assessment service"
	documentMissingMessageTemplateConstant   = "%s step requires a completed assess step"
	reportRendererMissingMessageConstant     = "report step requires a report renderer"
	reportMissingForStoreMessageConstant     = "store step requires a completed report step"
	consensusSkippedDetailConstant           = "consensus engine not configured"
	storeSkippedDetailConstant               = "result stores not configured"
	consensusSubmittedDetailTemplateConstant = "submitted as %s"
	verdictDetailTemplateConstant            = "verdict %s at %.2f confidence"
	assessDetailTemplateConstant             = "assessment %s written to %s"
	reportDetailTemplateConstant             = "report written to %s"
	storeDetailTemplateConstant              = "record stored, report at %s"
	recordOnlyDetailConstant                 = "record stored, no report uploaded"
)

type assessStepOptions struct {
	AssessmentType string `mapstructure:"assessment_type"`
	OutputPath     string `mapstructure:"output_path"`
}

type consensusStepOptions struct {
	Wait           bool `mapstructure:"wait"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
}

// BuildSteps converts the declarative configuration into executable steps.
func BuildSteps(configuration Configuration) ([]Step, error) {
	pipelineSteps := make([]Step, 0, len(configuration.Steps))
	for stepIndex := range configuration.Steps {
		stepConfiguration := configuration.Steps[stepIndex]
		pipelineStep, buildError := buildStepFromConfiguration(stepConfiguration)
		if buildError != nil {
			return nil, buildError
		}
		pipelineSteps = append(pipelineSteps, pipelineStep)
	}
	return pipelineSteps, nil
}

func buildStepFromConfiguration(stepConfiguration StepConfiguration) (Step, error) {
	switch stepConfiguration.Operation {
	case StepTypeAssess:
		decodedOptions := assessStepOptions{}
		if decodeError := decodeStepOptions(StepTypeAssess, stepConfiguration.Options, &decodedOptions); decodeError != nil {
			return nil, decodeError
		}
		return &AssessStep{options: decodedOptions}, nil
	case StepTypeConsensus:
		decodedOptions := consensusStepOptions{Wait: true}
		if decodeError := decodeStepOptions(StepTypeConsensus, stepConfiguration.Options, &decodedOptions); decodeError != nil {
			return nil, decodeError
		}
		return &ConsensusStep{options: decodedOptions}, nil
	case StepTypeReport:
		return &ReportStep{}, nil
	case StepTypeStore:
		return &StoreStep{}, nil
	default:
		return nil, fmt.Errorf(configurationUnknownOperationTemplateConstant, stepConfiguration.Operation)
	}
}

func decodeStepOptions(stepType StepType, rawOptions map[string]any, decodeTarget any) error {
	if len(rawOptions) == 0 {
		return nil
	}
	if decodeError := mapstructure.Decode(rawOptions, decodeTarget); decodeError != nil {
		return fmt.Errorf(stepOptionsDecodeErrorTemplateConstant, stepType, decodeError)
	}
	return nil
}

// AssessStep runs the preliminary assessment and records the document in state.
type AssessStep struct {
	options assessStepOptions
}

// Name identifies the step.
func (step *AssessStep) Name() StepType { return StepTypeAssess }

// Execute runs the assessment service with the pipeline parameters.
func (step *AssessStep) Execute(executionContext context.Context, environment *Environment, parameters Parameters, state *State) (StepEvent, error) {
	if environment.Assessor == nil {
		return StepEvent{}, errors.New(assessorMissingMessageConstant)
	}

	outputPath := strings.TrimSpace(step.options.OutputPath)
	if len(outputPath) == 0 {
		outputPath = filepath.Join(parameters.OutputDir, defaultAssessmentFileNameConstant)
	}

	assessmentDocument, assessmentError := environment.Assessor.Run(executionContext, assess.Options{
		ClientID:       parameters.ClientID,
		CatalogPath:    parameters.CatalogPath,
		EvidenceDir:    parameters.EvidencePath,
		AssessmentType: step.options.AssessmentType,
		OutputPath:     outputPath,
	})
	if assessmentError != nil {
		return StepEvent{}, assessmentError
	}

	state.Document = &assessmentDocument
	state.DocumentPath = outputPath

	return StepEvent{
		Step:    StepTypeAssess,
		Outcome: OutcomeCompleted,
		Detail:  fmt.Sprintf(assessDetailTemplateConstant, assessmentDocument.AssessmentID, outputPath),
	}, nil
}

// ConsensusStep submits the document for consensus analysis and optionally
// waits for the verdict.
type ConsensusStep struct {
	options consensusStepOptions
}

// Name identifies the step.
func (step *ConsensusStep) Name() StepType { return StepTypeConsensus }

// Execute submits the assessment document and attaches the returned verdict.
func (step *ConsensusStep) Execute(executionContext context.Context, environment *Environment, parameters Parameters, state *State) (StepEvent, error) {
	if state.Document == nil {
		return StepEvent{}, fmt.Errorf(documentMissingMessageTemplateConstant, StepTypeConsensus)
	}
	if environment.ConsensusClient == nil {
		return StepEvent{Step: StepTypeConsensus, Outcome: OutcomeSkipped, Detail: consensusSkippedDetailConstant}, nil
	}

	submissionReceipt, submitError := environment.ConsensusClient.Submit(executionContext, *state.Document)
	if submitError != nil {
		return StepEvent{}, submitError
	}

	if !step.options.Wait {
		return StepEvent{
			Step:    StepTypeConsensus,
			Outcome: OutcomeCompleted,
			Detail:  fmt.Sprintf(consensusSubmittedDetailTemplateConstant, submissionReceipt.SubmissionID),
		}, nil
	}

	awaitContext := executionContext
	if step.options.TimeoutSeconds > 0 {
		var cancelFunction context.CancelFunc
		awaitContext, cancelFunction = context.WithTimeout(executionContext, time.Duration(step.options.TimeoutSeconds)*time.Second)
		defer cancelFunction()
	}

	engineVerdict, verdictError := environment.ConsensusClient.AwaitVerdict(awaitContext, submissionReceipt.SubmissionID)
	if verdictError != nil {
		return StepEvent{}, verdictError
	}

	state.Document.AIConsensus = &assess.ConsensusResult{
		Severity:   string(engineVerdict.Severity),
		Confidence: engineVerdict.Confidence,
	}
	if len(state.DocumentPath) > 0 {
		if writeError := assess.WriteDocument(*state.Document, state.DocumentPath); writeError != nil {
			return StepEvent{}, writeError
		}
	}

	return StepEvent{
		Step:    StepTypeConsensus,
		Outcome: OutcomeCompleted,
		Detail:  fmt.Sprintf(verdictDetailTemplateConstant, engineVerdict.Severity, engineVerdict.Confidence),
	}, nil
}

// ReportStep renders the PDF report for the assessed document.
type ReportStep struct{}

// Name identifies the step.
func (step *ReportStep) Name() StepType { return StepTypeReport }

// Execute renders the report into the pipeline output directory.
func (step *ReportStep) Execute(executionContext context.Context, environment *Environment, parameters Parameters, state *State) (StepEvent, error) {
	if state.Document == nil {
		return StepEvent{}, fmt.Errorf(documentMissingMessageTemplateConstant, StepTypeReport)
	}
	if environment.ReportRenderer == nil {
		return StepEvent{}, errors.New(reportRendererMissingMessageConstant)
	}

	reportPath, renderError := environment.ReportRenderer(*state.Document, parameters.OutputDir)
	if renderError != nil {
		return StepEvent{}, renderError
	}
	state.ReportPath = reportPath

	return StepEvent{
		Step:    StepTypeReport,
		Outcome: OutcomeCompleted,
		Detail:  fmt.Sprintf(reportDetailTemplateConstant, reportPath),
	}, nil
}

// StoreStep uploads the report and persists the assessment record.
type StoreStep struct{}

// Name identifies the step.
func (step *StoreStep) Name() StepType { return StepTypeStore }

// Execute uploads the rendered report and writes the assessment record.
func (step *StoreStep) Execute(executionContext context.Context, environment *Environment, parameters Parameters, state *State) (StepEvent, error) {
	if state.Document == nil {
		return StepEvent{}, fmt.Errorf(documentMissingMessageTemplateConstant, StepTypeStore)
	}
	if environment.ReportUploader == nil && environment.Recorder == nil {
		return StepEvent{Step: StepTypeStore, Outcome: OutcomeSkipped, Detail: storeSkippedDetailConstant}, nil
	}

	if environment.ReportUploader != nil {
		if len(state.ReportPath) == 0 {
			return StepEvent{}, errors.New(reportMissingForStoreMessageConstant)
		}
		reportURL, uploadError := environment.ReportUploader.UploadReport(
			executionContext,
			filepath.Dir(state.ReportPath),
			state.Document.ClientID,
			state.Document.AssessmentID,
		)
		if uploadError != nil {
			return StepEvent{}, uploadError
		}
		state.ReportURL = reportURL
	}

	if environment.Recorder != nil {
		if recordError := environment.Recorder.RecordAssessment(executionContext, *state.Document, state.ReportURL); recordError != nil {
			return StepEvent{}, recordError
		}
	}

	stepDetail := recordOnlyDetailConstant
	if len(state.ReportURL) > 0 {
		stepDetail = fmt.Sprintf(storeDetailTemplateConstant, state.ReportURL)
	}
	return StepEvent{Step: StepTypeStore, Outcome: OutcomeCompleted, Detail: stepDetail}, nil
}
