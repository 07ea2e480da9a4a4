package assessments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/assess"
	"github.com/ironclad-grc/ironclad/internal/storage"
)

const (
	storeCommandUseConstant            = "store <assessment.json>"
	storeCommandShortDescription       = "Upload the report and persist the assessment record"
	storeCommandLongDescription        = "store uploads the rendered PDF report to the configured bucket and writes the assessment record to Firestore under clients/<client>/assessments/<assessment>."
	reportDirFlagNameConstant          = "report-dir"
	reportDirFlagDescriptionConstant   = "Directory containing the rendered PDF report"
	bucketFlagNameConstant             = "bucket"
	bucketFlagDescriptionConstant      = "Destination bucket for report uploads"
	projectFlagNameConstant            = "project"
	projectFlagDescriptionConstant     = "Firestore project the record is written to"
	consensusSeverityFlagNameConstant  = "consensus-severity"
	consensusSeverityFlagDescription   = "Consensus verdict severity recorded with the assessment"
	confidenceFlagNameConstant         = "confidence"
	confidenceFlagDescriptionConstant  = "Consensus verdict confidence recorded with the assessment"
	defaultConsensusSeverityConstant   = "PENDING"
	projectRequiredMessageConstant     = "firestore project required; set --project, tools.storage.project, or FIREBASE_PROJECT_ID"
	defaultReportSearchDirectory       = "."
	reportUploadedMessageTemplate      = "Report uploaded to %s\n"
	noReportUploadedMessageConstant    = "No PDF report found, record stored without report URL"
	recordStoredMessageTemplateConstant = "Assessment %s recorded for client %s\n"
	uploadSkippedLogMessageConstant    = "report upload skipped, no bucket configured"
	recordWriterCloseFailedMessageConstant = "failed to close record writer"
)

// StoreCommandBuilder assembles the store command.
type StoreCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() StorageConfiguration
}

// Build constructs the store command.
func (builder *StoreCommandBuilder) Build() (*cobra.Command, error) {
	storeCommand := &cobra.Command{
		Use:   storeCommandUseConstant,
		Short: storeCommandShortDescription,
		Long:  storeCommandLongDescription,
		RunE:  builder.run,
	}

	storeCommand.Flags().String(reportDirFlagNameConstant, defaultReportSearchDirectory, reportDirFlagDescriptionConstant)
	storeCommand.Flags().String(bucketFlagNameConstant, "", bucketFlagDescriptionConstant)
	storeCommand.Flags().String(projectFlagNameConstant, "", projectFlagDescriptionConstant)
	storeCommand.Flags().String(consensusSeverityFlagNameConstant, defaultConsensusSeverityConstant, consensusSeverityFlagDescription)
	storeCommand.Flags().Float64(confidenceFlagNameConstant, 0, confidenceFlagDescriptionConstant)

	return storeCommand, nil
}

func (builder *StoreCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return errors.New(documentArgumentRequiredMessage)
	}

	assessmentDocument, documentError := assess.ReadDocument(strings.TrimSpace(arguments[0]))
	if documentError != nil {
		return documentError
	}

	consensusSeverity, _ := command.Flags().GetString(consensusSeverityFlagNameConstant)
	consensusConfidence, _ := command.Flags().GetFloat64(confidenceFlagNameConstant)
	verdictFlagsProvided := command.Flags().Changed(consensusSeverityFlagNameConstant) || command.Flags().Changed(confidenceFlagNameConstant)
	if verdictFlagsProvided || assessmentDocument.AIConsensus == nil {
		assessmentDocument.AIConsensus = &assess.ConsensusResult{
			Severity:   consensusSeverity,
			Confidence: consensusConfidence,
		}
	}

	commandConfiguration := builder.resolveConfiguration()

	bucketName := commandConfiguration.Bucket
	if command.Flags().Changed(bucketFlagNameConstant) {
		bucketName, _ = command.Flags().GetString(bucketFlagNameConstant)
	}
	bucketName = ResolveStorageBucket(strings.TrimSpace(bucketName))

	projectIdentifier := commandConfiguration.Project
	if command.Flags().Changed(projectFlagNameConstant) {
		projectIdentifier, _ = command.Flags().GetString(projectFlagNameConstant)
	}
	projectIdentifier = ResolveStorageProject(strings.TrimSpace(projectIdentifier))
	if len(projectIdentifier) == 0 {
		return errors.New(projectRequiredMessageConstant)
	}

	logger := resolveLogger(builder.LoggerProvider)
	outputWriter := command.OutOrStdout()

	reportURL := ""
	if len(bucketName) > 0 {
		storeOptions := []storage.ObjectStoreOption{storage.WithBucket(bucketName)}
		if len(strings.TrimSpace(commandConfiguration.Endpoint)) > 0 {
			storeOptions = append(storeOptions, storage.WithEndpoint(strings.TrimSpace(commandConfiguration.Endpoint)))
		}
		objectStore, storeError := storage.NewObjectStore(storeOptions...)
		if storeError != nil {
			return storeError
		}

		reportDirectory, _ := command.Flags().GetString(reportDirFlagNameConstant)
		uploadedURL, uploadError := objectStore.UploadReport(command.Context(), reportDirectory, assessmentDocument.ClientID, assessmentDocument.AssessmentID)
		if uploadError != nil {
			return uploadError
		}
		reportURL = uploadedURL

		if len(reportURL) > 0 {
			fmt.Fprintf(outputWriter, reportUploadedMessageTemplate, reportURL)
		} else {
			fmt.Fprintln(outputWriter, noReportUploadedMessageConstant)
		}
	} else {
		logger.Info(uploadSkippedLogMessageConstant)
	}

	recordWriter, writerError := storage.NewFirestoreRecordWriter(command.Context(), projectIdentifier)
	if writerError != nil {
		return writerError
	}
	defer func() {
		if closeError := recordWriter.Close(); closeError != nil {
			logger.Warn(recordWriterCloseFailedMessageConstant, zap.Error(closeError))
		}
	}()

	assessmentRecorder := storage.NewRecorder(recordWriter)
	if recordError := assessmentRecorder.RecordAssessment(command.Context(), assessmentDocument, reportURL); recordError != nil {
		return recordError
	}

	fmt.Fprintf(outputWriter, recordStoredMessageTemplateConstant, assessmentDocument.AssessmentID, assessmentDocument.ClientID)
	return nil
}

func (builder *StoreCommandBuilder) resolveConfiguration() StorageConfiguration {
	if builder.ConfigurationProvider == nil {
		return StorageConfiguration{}
	}
	return builder.ConfigurationProvider()
}
