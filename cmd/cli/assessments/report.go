package assessments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironclad-grc/ironclad/internal/assess"
	"github.com/ironclad-grc/ironclad/internal/report"
)

const (
	reportCommandUseConstant              = "report"
	reportCommandShortDescription         = "Render an assessment document as a PDF report"
	assessmentFlagNameConstant            = "assessment"
	assessmentFlagDescriptionConstant     = "Path to the assessment findings document"
	assessmentFlagRequiredMessage         = "--assessment is required"
	reportOutputDirFlagNameConstant       = "output-dir"
	reportOutputDirFlagDescription        = "Directory the PDF report is written into"
	reportWrittenMessageTemplateConstant  = "Report written to %s\n"
)

// ReportCommandBuilder assembles the report command.
type ReportCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() ReportConfiguration
}

// Build constructs the report command.
func (builder *ReportCommandBuilder) Build() (*cobra.Command, error) {
	reportCommand := &cobra.Command{
		Use:   reportCommandUseConstant,
		Short: reportCommandShortDescription,
		RunE:  builder.run,
	}

	reportCommand.Flags().String(assessmentFlagNameConstant, "", assessmentFlagDescriptionConstant)
	reportCommand.Flags().String(reportOutputDirFlagNameConstant, "", reportOutputDirFlagDescription)

	return reportCommand, nil
}

func (builder *ReportCommandBuilder) run(command *cobra.Command, arguments []string) error {
	documentPath, _ := command.Flags().GetString(assessmentFlagNameConstant)
	if len(strings.TrimSpace(documentPath)) == 0 {
		return errors.New(assessmentFlagRequiredMessage)
	}

	assessmentDocument, documentError := assess.ReadDocument(strings.TrimSpace(documentPath))
	if documentError != nil {
		return documentError
	}

	commandConfiguration := builder.resolveConfiguration()
	outputDirectory := commandConfiguration.OutputDir
	if command.Flags().Changed(reportOutputDirFlagNameConstant) {
		outputDirectory, _ = command.Flags().GetString(reportOutputDirFlagNameConstant)
	}

	reportPath, buildError := report.Build(assessmentDocument, outputDirectory)
	if buildError != nil {
		return buildError
	}

	fmt.Fprintf(command.OutOrStdout(), reportWrittenMessageTemplateConstant, reportPath)
	return nil
}

func (builder *ReportCommandBuilder) resolveConfiguration() ReportConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultReportConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
