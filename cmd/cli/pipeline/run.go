package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/cmd/cli/assessments"
	"github.com/ironclad-grc/ironclad/internal/assess"
	"github.com/ironclad-grc/ironclad/internal/consensus"
	"github.com/ironclad-grc/ironclad/internal/pipeline"
	"github.com/ironclad-grc/ironclad/internal/report"
	"github.com/ironclad-grc/ironclad/internal/storage"
	"github.com/ironclad-grc/ironclad/internal/ui"
)

const (
	commandUseConstant                      = "pipeline [pipeline.yaml]"
	commandShortDescriptionConstant         = "Run an assessment pipeline configuration file"
	commandLongDescriptionConstant          = "pipeline executes the steps defined in a YAML or JSON configuration file: assessing evidence, gathering the consensus verdict, rendering the report, and persisting the results."
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagDescriptionConstant           = "Preview pipeline steps without executing them"
	loadConfigurationErrorTemplateConstant  = "unable to load pipeline configuration: %w"
	buildStepsErrorTemplateConstant         = "unable to build pipeline steps: %w"
	consensusDisabledLogMessageConstant     = "consensus step will be skipped"
	storageDisabledLogMessageConstant       = "store step will run without a report bucket"
	recordWriterCloseFailedMessageConstant  = "failed to close record writer"
	logFieldDisableReasonConstant           = "reason"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the pipeline command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	ConsensusConfigurationProvider func() assessments.ConsensusConfiguration
	StorageConfigurationProvider   func() assessments.StorageConfiguration
}

// Build constructs the pipeline command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	pipelineCommand := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	pipelineCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)

	return pipelineCommand, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	commandConfiguration := builder.resolveConfiguration()

	pipelineFilePath := commandConfiguration.File
	if len(arguments) > 0 {
		pipelineFilePath = strings.TrimSpace(arguments[0])
	}

	pipelineConfiguration, configurationError := pipeline.LoadConfiguration(pipelineFilePath)
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
	}

	pipelineSteps, stepsError := pipeline.BuildSteps(pipelineConfiguration)
	if stepsError != nil {
		return fmt.Errorf(buildStepsErrorTemplateConstant, stepsError)
	}

	logger := resolveLogger(builder.LoggerProvider)

	dryRun := commandConfiguration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun, _ = command.Flags().GetBool(dryRunFlagNameConstant)
	}

	pipelineEnvironment := pipeline.Environment{
		Assessor:       assess.NewService(logger),
		ReportRenderer: report.Build,
		Logger:         logger,
		DryRun:         dryRun,
	}

	engineClient := builder.buildConsensusClient(logger)
	if engineClient != nil {
		pipelineEnvironment.ConsensusClient = engineClient
	}

	recordWriter, storeSetupError := builder.attachResultStores(command, logger, &pipelineEnvironment)
	if storeSetupError != nil {
		return storeSetupError
	}
	if recordWriter != nil {
		defer func() {
			if closeError := recordWriter.Close(); closeError != nil {
				logger.Warn(recordWriterCloseFailedMessageConstant, zap.Error(closeError))
			}
		}()
	}

	if builder.humanReadableLoggingEnabled() {
		pipelineEnvironment.Observer = ui.NewConsoleStepEventLogger(logger).StepFinished
	}

	pipelineExecutor := pipeline.NewExecutor(pipelineSteps, pipelineEnvironment)
	return pipelineExecutor.Execute(command.Context(), pipelineConfiguration.Params)
}

func (builder *CommandBuilder) buildConsensusClient(logger *zap.Logger) *consensus.Client {
	consensusConfiguration := assessments.ConsensusConfiguration{}
	if builder.ConsensusConfigurationProvider != nil {
		consensusConfiguration = builder.ConsensusConfigurationProvider()
	}

	engineClient, clientError := consensus.NewClient(consensusConfiguration.BaseURL, assessments.ResolveCredentials())
	if clientError != nil {
		if !errors.Is(clientError, consensus.ErrNotConfigured) {
			logger.Warn(consensusDisabledLogMessageConstant, zap.String(logFieldDisableReasonConstant, clientError.Error()))
		}
		return nil
	}
	return engineClient
}

func (builder *CommandBuilder) attachResultStores(command *cobra.Command, logger *zap.Logger, pipelineEnvironment *pipeline.Environment) (*storage.FirestoreRecordWriter, error) {
	storageConfiguration := assessments.StorageConfiguration{}
	if builder.StorageConfigurationProvider != nil {
		storageConfiguration = builder.StorageConfigurationProvider()
	}

	bucketName := assessments.ResolveStorageBucket(strings.TrimSpace(storageConfiguration.Bucket))
	if len(bucketName) > 0 {
		storeOptions := []storage.ObjectStoreOption{storage.WithBucket(bucketName)}
		if len(strings.TrimSpace(storageConfiguration.Endpoint)) > 0 {
			storeOptions = append(storeOptions, storage.WithEndpoint(strings.TrimSpace(storageConfiguration.Endpoint)))
		}
		objectStore, storeError := storage.NewObjectStore(storeOptions...)
		if storeError != nil {
			return nil, storeError
		}
		pipelineEnvironment.ReportUploader = objectStore
	} else {
		logger.Debug(storageDisabledLogMessageConstant)
	}

	projectIdentifier := assessments.ResolveStorageProject(strings.TrimSpace(storageConfiguration.Project))
	if len(projectIdentifier) == 0 {
		return nil, nil
	}

	recordWriter, writerError := storage.NewFirestoreRecordWriter(command.Context(), projectIdentifier)
	if writerError != nil {
		return nil, writerError
	}
	pipelineEnvironment.Recorder = storage.NewRecorder(recordWriter)
	return recordWriter, nil
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
