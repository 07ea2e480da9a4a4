package frameworks

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironclad-grc/ironclad/internal/frameworks"
	"github.com/ironclad-grc/ironclad/internal/updates"
	"github.com/ironclad-grc/ironclad/internal/utils"
)

const (
	groupCommandUseConstant              = "frameworks"
	groupCommandShortDescriptionConstant = "Inspect compliance frameworks and poll their sources for updates"
	listCommandUseConstant               = "list"
	listCommandShortDescriptionConstant  = "List the registered framework sources"
	listRowTemplateConstant              = "%s\t%s\t%s\t%s\n"
	listHeaderIdentifierConstant         = "ID"
	listHeaderNameConstant               = "NAME"
	listHeaderVersionConstant            = "VERSION"
	listHeaderSourceConstant             = "SOURCE"
	checkUpdatesCommandUseConstant       = "check-updates"
	checkUpdatesShortDescriptionConstant = "Poll framework sources for published updates"
	checkUpdatesLongDescriptionConstant  = "check-updates fetches each framework's publication page, looks for update phrases, and writes the aggregated results to a JSON document."
	frameworkFlagNameConstant            = "framework"
	frameworkFlagDescriptionConstant     = "Check a single framework source instead of every registered source"
	outputFlagNameConstant               = "output"
	outputFlagDescriptionConstant        = "Path for the JSON results document"
	watchFlagNameConstant                = "watch"
	watchFlagDescriptionConstant         = "Keep polling on a jittered interval until interrupted"
	intervalFlagNameConstant             = "interval"
	intervalFlagDescriptionConstant      = "Polling interval used with --watch (for example 24h or 30m)"
	updatesFoundMessageTemplateConstant  = "Updates detected for: %s\n"
	noUpdatesFoundMessageConstant        = "No framework updates detected"
	resultsWrittenMessageTemplateConstant = "Results written to %s\n"
	frameworkListJoinSeparatorConstant   = ", "
)

// CommandBuilder assembles the frameworks command group.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CheckUpdatesConfiguration
}

// Build constructs the frameworks command with its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupCommandUseConstant,
		Short: groupCommandShortDescriptionConstant,
	}

	groupCommand.AddCommand(builder.buildListCommand())
	groupCommand.AddCommand(builder.buildCheckUpdatesCommand())

	return groupCommand, nil
}

func (builder *CommandBuilder) buildListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			outputWriter := command.OutOrStdout()
			fmt.Fprintf(outputWriter, listRowTemplateConstant, listHeaderIdentifierConstant, listHeaderNameConstant, listHeaderVersionConstant, listHeaderSourceConstant)
			for _, sourceDefinition := range frameworks.BuiltinSources() {
				fmt.Fprintf(
					outputWriter,
					listRowTemplateConstant,
					sourceDefinition.ID,
					sourceDefinition.Name,
					sourceDefinition.CurrentVersion,
					sourceDefinition.CheckURL,
				)
			}
			return nil
		},
	}
}

func (builder *CommandBuilder) buildCheckUpdatesCommand() *cobra.Command {
	checkUpdatesCommand := &cobra.Command{
		Use:   checkUpdatesCommandUseConstant,
		Short: checkUpdatesShortDescriptionConstant,
		Long:  checkUpdatesLongDescriptionConstant,
		RunE:  builder.runCheckUpdates,
	}

	checkUpdatesCommand.Flags().String(frameworkFlagNameConstant, "", frameworkFlagDescriptionConstant)
	checkUpdatesCommand.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)
	checkUpdatesCommand.Flags().Bool(watchFlagNameConstant, false, watchFlagDescriptionConstant)
	checkUpdatesCommand.Flags().Duration(intervalFlagNameConstant, 0, intervalFlagDescriptionConstant)

	return checkUpdatesCommand
}

func (builder *CommandBuilder) runCheckUpdates(command *cobra.Command, arguments []string) error {
	commandConfiguration := builder.resolveConfiguration()

	frameworkIdentifier, _ := command.Flags().GetString(frameworkFlagNameConstant)

	outputPath := commandConfiguration.Output
	if command.Flags().Changed(outputFlagNameConstant) {
		outputPath, _ = command.Flags().GetString(outputFlagNameConstant)
	}

	pollInterval := commandConfiguration.ResolveInterval()
	if command.Flags().Changed(intervalFlagNameConstant) {
		if flagInterval, _ := command.Flags().GetDuration(intervalFlagNameConstant); flagInterval > 0 {
			pollInterval = flagInterval
		}
	}

	logger := resolveLogger(builder.LoggerProvider)
	updateService := updates.NewService(updates.NewChecker(), logger)
	runOptions := updates.RunOptions{FrameworkID: strings.TrimSpace(frameworkIdentifier), OutputPath: outputPath}

	watchRequested, _ := command.Flags().GetBool(watchFlagNameConstant)
	if watchRequested {
		return builder.watchUpdates(command, updateService, runOptions, pollInterval)
	}

	sweepDocument, sweepError := updateService.Run(command.Context(), runOptions)
	if sweepError != nil {
		return sweepError
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	if sweepDocument.UpdatesFound {
		fmt.Fprintf(outputWriter, updatesFoundMessageTemplateConstant, strings.Join(sweepDocument.Frameworks, frameworkListJoinSeparatorConstant))
	} else {
		fmt.Fprintln(outputWriter, noUpdatesFoundMessageConstant)
	}
	if len(outputPath) > 0 {
		fmt.Fprintf(outputWriter, resultsWrittenMessageTemplateConstant, outputPath)
	}

	return nil
}

func (builder *CommandBuilder) watchUpdates(command *cobra.Command, updateService *updates.Service, runOptions updates.RunOptions, pollInterval time.Duration) error {
	watchError := updateService.Watch(command.Context(), runOptions, pollInterval)
	if watchError != nil && command.Context().Err() != nil {
		return nil
	}
	return watchError
}

func (builder *CommandBuilder) resolveConfiguration() CheckUpdatesConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCheckUpdatesConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
