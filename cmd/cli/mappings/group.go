package mappings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/mappings"
)

const (
	groupCommandUseConstant                 = "map"
	groupCommandShortDescriptionConstant    = "Translate control identifiers between compliance frameworks"
	listCommandUseConstant                  = "list"
	listCommandShortDescriptionConstant     = "List the shipped mapping tables"
	listRowTemplateConstant                 = "%s -> %s (%d mappings)\n"
	translateCommandUseConstant             = "translate <control-id>"
	translateCommandShortDescription        = "Translate a control identifier into the target framework"
	translateCommandLongDescription         = "translate resolves a source control identifier to its mapped target identifiers. With --reverse the lookup runs from target identifier back to source controls, expanding ranges and lists."
	lintCommandUseConstant                  = "lint"
	lintCommandShortDescriptionConstant     = "Check mapping tables for duplicates and malformed identifiers"
	sourceFrameworkFlagNameConstant         = "from"
	sourceFrameworkFlagDescriptionConstant  = "Source framework identifier"
	targetFrameworkFlagNameConstant         = "to"
	targetFrameworkFlagDescriptionConstant  = "Target framework identifier"
	reverseFlagNameConstant                 = "reverse"
	reverseFlagDescriptionConstant          = "Resolve the target identifier back to its source controls"
	defaultSourceFrameworkConstant          = "soc2"
	defaultTargetFrameworkConstant          = "nist-csf"
	controlArgumentRequiredMessageConstant  = "control identifier argument required"
	translationRowTemplateConstant          = "%s -> %s\n"
	identifierJoinSeparatorConstant         = ", "
	lintFindingTemplateConstant             = "%s -> %s: %s (%s)\n"
	lintFindingsMessageTemplateConstant     = "mapping lint reported %d finding(s)"
	lintCleanMessageConstant                = "All mapping tables are consistent"
	lintCompletedLogMessageConstant         = "mapping lint completed"
	logFieldFindingCountConstant            = "finding_count"
)

// CommandBuilder assembles the map command group.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
}

// Build constructs the map command with its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupCommandUseConstant,
		Short: groupCommandShortDescriptionConstant,
	}

	groupCommand.AddCommand(builder.buildListCommand())
	groupCommand.AddCommand(builder.buildTranslateCommand())
	groupCommand.AddCommand(builder.buildLintCommand())

	return groupCommand, nil
}

func (builder *CommandBuilder) buildListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			outputWriter := command.OutOrStdout()
			for _, mappingTable := range mappings.BuiltinTables() {
				fmt.Fprintf(outputWriter, listRowTemplateConstant, mappingTable.SourceFramework, mappingTable.TargetFramework, len(mappingTable.Mappings))
			}
			return nil
		},
	}
}

func (builder *CommandBuilder) buildTranslateCommand() *cobra.Command {
	translateCommand := &cobra.Command{
		Use:   translateCommandUseConstant,
		Short: translateCommandShortDescription,
		Long:  translateCommandLongDescription,
		RunE:  builder.runTranslate,
	}

	translateCommand.Flags().String(sourceFrameworkFlagNameConstant, defaultSourceFrameworkConstant, sourceFrameworkFlagDescriptionConstant)
	translateCommand.Flags().String(targetFrameworkFlagNameConstant, defaultTargetFrameworkConstant, targetFrameworkFlagDescriptionConstant)
	translateCommand.Flags().Bool(reverseFlagNameConstant, false, reverseFlagDescriptionConstant)

	return translateCommand
}

func (builder *CommandBuilder) runTranslate(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return errors.New(controlArgumentRequiredMessageConstant)
	}

	sourceFramework, _ := command.Flags().GetString(sourceFrameworkFlagNameConstant)
	targetFramework, _ := command.Flags().GetString(targetFrameworkFlagNameConstant)
	reverseLookup, _ := command.Flags().GetBool(reverseFlagNameConstant)

	outputWriter := command.OutOrStdout()
	for _, controlIdentifier := range arguments {
		trimmedIdentifier := strings.TrimSpace(controlIdentifier)

		var resolvedIdentifiers []string
		var translationError error
		if reverseLookup {
			resolvedIdentifiers, translationError = mappings.ReverseLookup(sourceFramework, targetFramework, trimmedIdentifier)
		} else {
			resolvedIdentifiers, translationError = mappings.Translate(sourceFramework, targetFramework, trimmedIdentifier)
		}
		if translationError != nil {
			return translationError
		}

		fmt.Fprintf(outputWriter, translationRowTemplateConstant, trimmedIdentifier, strings.Join(resolvedIdentifiers, identifierJoinSeparatorConstant))
	}

	return nil
}

func (builder *CommandBuilder) buildLintCommand() *cobra.Command {
	lintCommand := &cobra.Command{
		Use:   lintCommandUseConstant,
		Short: lintCommandShortDescriptionConstant,
		RunE:  builder.runLint,
	}

	lintCommand.Flags().String(sourceFrameworkFlagNameConstant, "", sourceFrameworkFlagDescriptionConstant)
	lintCommand.Flags().String(targetFrameworkFlagNameConstant, "", targetFrameworkFlagDescriptionConstant)

	return lintCommand
}

func (builder *CommandBuilder) runLint(command *cobra.Command, arguments []string) error {
	sourceFramework, _ := command.Flags().GetString(sourceFrameworkFlagNameConstant)
	targetFramework, _ := command.Flags().GetString(targetFrameworkFlagNameConstant)

	var lintFindings []mappings.LintFinding
	if len(strings.TrimSpace(sourceFramework)) > 0 && len(strings.TrimSpace(targetFramework)) > 0 {
		selectedTable, tableError := mappings.TableFor(strings.TrimSpace(sourceFramework), strings.TrimSpace(targetFramework))
		if tableError != nil {
			return tableError
		}
		lintFindings = mappings.Lint(selectedTable)
	} else {
		lintFindings = mappings.LintAll()
	}

	logger := resolveLogger(builder.LoggerProvider)
	logger.Info(lintCompletedLogMessageConstant, zap.Int(logFieldFindingCountConstant, len(lintFindings)))

	outputWriter := command.OutOrStdout()
	if len(lintFindings) == 0 {
		fmt.Fprintln(outputWriter, lintCleanMessageConstant)
		return nil
	}

	for _, lintFinding := range lintFindings {
		fmt.Fprintf(
			outputWriter,
			lintFindingTemplateConstant,
			lintFinding.SourceFramework,
			lintFinding.TargetFramework,
			lintFinding.Issue,
			lintFinding.SourceControlID,
		)
	}

	return fmt.Errorf(lintFindingsMessageTemplateConstant, len(lintFindings))
}
