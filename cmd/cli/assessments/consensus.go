package assessments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironclad-grc/ironclad/internal/assess"
	"github.com/ironclad-grc/ironclad/internal/consensus"
)

const (
	consensusCommandUseConstant            = "consensus <assessment.json>"
	consensusCommandShortDescription       = "Submit an assessment document for AI consensus analysis"
	consensusCommandLongDescription        = "consensus submits a findings document to the consensus engine, optionally waits for the aggregated verdict, and writes the verdict back into the document."
	engineURLFlagNameConstant              = "engine-url"
	engineURLFlagDescriptionConstant       = "Base URL of the consensus engine"
	noWaitFlagNameConstant                 = "no-wait"
	noWaitFlagDescriptionConstant          = "Submit without waiting for the verdict"
	timeoutFlagNameConstant                = "timeout"
	timeoutFlagDescriptionConstant         = "Maximum time to wait for the verdict (for example 10m)"
	documentArgumentRequiredMessage        = "assessment document path required"
	submittedMessageTemplateConstant       = "Submitted as %s\n"
	verdictMessageTemplateConstant         = "Verdict: %s at %.2f confidence\n"
	verdictPersistedTemplateConstant       = "Verdict written back to %s\n"
)

// ConsensusCommandBuilder assembles the consensus command.
type ConsensusCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() ConsensusConfiguration
}

// Build constructs the consensus command.
func (builder *ConsensusCommandBuilder) Build() (*cobra.Command, error) {
	consensusCommand := &cobra.Command{
		Use:   consensusCommandUseConstant,
		Short: consensusCommandShortDescription,
		Long:  consensusCommandLongDescription,
		RunE:  builder.run,
	}

	consensusCommand.Flags().String(engineURLFlagNameConstant, "", engineURLFlagDescriptionConstant)
	consensusCommand.Flags().Bool(noWaitFlagNameConstant, false, noWaitFlagDescriptionConstant)
	consensusCommand.Flags().Duration(timeoutFlagNameConstant, 0, timeoutFlagDescriptionConstant)

	return consensusCommand, nil
}

func (builder *ConsensusCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return errors.New(documentArgumentRequiredMessage)
	}
	documentPath := strings.TrimSpace(arguments[0])

	assessmentDocument, documentError := assess.ReadDocument(documentPath)
	if documentError != nil {
		return documentError
	}

	commandConfiguration := builder.resolveConfiguration()
	engineURL := commandConfiguration.BaseURL
	if command.Flags().Changed(engineURLFlagNameConstant) {
		engineURL, _ = command.Flags().GetString(engineURLFlagNameConstant)
	}

	engineClient, clientError := consensus.NewClient(engineURL, ResolveCredentials())
	if clientError != nil {
		return clientError
	}

	submissionReceipt, submitError := engineClient.Submit(command.Context(), assessmentDocument)
	if submitError != nil {
		return submitError
	}

	outputWriter := command.OutOrStdout()
	fmt.Fprintf(outputWriter, submittedMessageTemplateConstant, submissionReceipt.SubmissionID)

	if skipWait, _ := command.Flags().GetBool(noWaitFlagNameConstant); skipWait {
		return nil
	}

	awaitContext := command.Context()
	waitTimeout := time.Duration(commandConfiguration.TimeoutSeconds) * time.Second
	if command.Flags().Changed(timeoutFlagNameConstant) {
		waitTimeout, _ = command.Flags().GetDuration(timeoutFlagNameConstant)
	}
	if waitTimeout > 0 {
		var cancelFunction context.CancelFunc
		awaitContext, cancelFunction = context.WithTimeout(awaitContext, waitTimeout)
		defer cancelFunction()
	}

	engineVerdict, verdictError := engineClient.AwaitVerdict(awaitContext, submissionReceipt.SubmissionID)
	if verdictError != nil {
		return verdictError
	}

	fmt.Fprintf(outputWriter, verdictMessageTemplateConstant, engineVerdict.Severity, engineVerdict.Confidence)

	assessmentDocument.AIConsensus = &assess.ConsensusResult{
		Severity:   string(engineVerdict.Severity),
		Confidence: engineVerdict.Confidence,
	}
	if writeError := assess.WriteDocument(assessmentDocument, documentPath); writeError != nil {
		return writeError
	}
	fmt.Fprintf(outputWriter, verdictPersistedTemplateConstant, documentPath)

	return nil
}

func (builder *ConsensusCommandBuilder) resolveConfiguration() ConsensusConfiguration {
	if builder.ConfigurationProvider == nil {
		return ConsensusConfiguration{}
	}
	return builder.ConfigurationProvider()
}
