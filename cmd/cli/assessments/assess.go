package assessments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironclad-grc/ironclad/internal/assess"
)

const (
	assessCommandUseConstant             = "assess"
	assessCommandShortDescription        = "Run a preliminary evidence assessment against a framework catalog"
	assessCommandLongDescription         = "assess catalogs the evidence directory, extracts text from each supported file, matches evidence against every catalog control, and writes a findings document for downstream consensus analysis."
	clientFlagNameConstant               = "client-id"
	clientFlagDescriptionConstant        = "Client identifier the assessment belongs to"
	catalogFlagNameConstant              = "framework"
	catalogFlagDescriptionConstant       = "Path to the framework catalog (YAML or JSON)"
	evidenceFlagNameConstant             = "evidence-dir"
	evidenceFlagDescriptionConstant      = "Directory containing evidence files"
	assessmentTypeFlagNameConstant       = "assessment-type"
	assessmentTypeFlagDescription        = "Assessment type recorded in the document"
	assessOutputFlagNameConstant         = "output"
	assessOutputFlagDescriptionConstant  = "Path for the findings document"
	clientFlagRequiredMessageConstant    = "--client-id is required"
	catalogFlagRequiredMessageConstant   = "--framework is required"
	evidenceFlagRequiredMessageConstant  = "--evidence-dir is required"
	assessmentWrittenTemplateConstant    = "Assessment %s written to %s\n"
	summaryLineTemplateConstant          = "%d controls: %d potential compliant, %d potential partial, %d potential gap\n"
)

// AssessCommandBuilder assembles the assess command.
type AssessCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() AssessConfiguration
}

// Build constructs the assess command.
func (builder *AssessCommandBuilder) Build() (*cobra.Command, error) {
	assessCommand := &cobra.Command{
		Use:   assessCommandUseConstant,
		Short: assessCommandShortDescription,
		Long:  assessCommandLongDescription,
		RunE:  builder.run,
	}

	assessCommand.Flags().String(clientFlagNameConstant, "", clientFlagDescriptionConstant)
	assessCommand.Flags().String(catalogFlagNameConstant, "", catalogFlagDescriptionConstant)
	assessCommand.Flags().String(evidenceFlagNameConstant, "", evidenceFlagDescriptionConstant)
	assessCommand.Flags().String(assessmentTypeFlagNameConstant, "", assessmentTypeFlagDescription)
	assessCommand.Flags().String(assessOutputFlagNameConstant, "", assessOutputFlagDescriptionConstant)

	return assessCommand, nil
}

func (builder *AssessCommandBuilder) run(command *cobra.Command, arguments []string) error {
	clientIdentifier, _ := command.Flags().GetString(clientFlagNameConstant)
	if len(strings.TrimSpace(clientIdentifier)) == 0 {
		return errors.New(clientFlagRequiredMessageConstant)
	}

	catalogPath, _ := command.Flags().GetString(catalogFlagNameConstant)
	if len(strings.TrimSpace(catalogPath)) == 0 {
		return errors.New(catalogFlagRequiredMessageConstant)
	}

	evidenceDirectory, _ := command.Flags().GetString(evidenceFlagNameConstant)
	if len(strings.TrimSpace(evidenceDirectory)) == 0 {
		return errors.New(evidenceFlagRequiredMessageConstant)
	}

	commandConfiguration := builder.resolveConfiguration()

	assessmentType := commandConfiguration.AssessmentType
	if command.Flags().Changed(assessmentTypeFlagNameConstant) {
		assessmentType, _ = command.Flags().GetString(assessmentTypeFlagNameConstant)
	}

	outputPath := commandConfiguration.Output
	if command.Flags().Changed(assessOutputFlagNameConstant) {
		outputPath, _ = command.Flags().GetString(assessOutputFlagNameConstant)
	}

	assessmentService := assess.NewService(resolveLogger(builder.LoggerProvider))
	assessmentDocument, assessmentError := assessmentService.Run(command.Context(), assess.Options{
		ClientID:       strings.TrimSpace(clientIdentifier),
		CatalogPath:    strings.TrimSpace(catalogPath),
		EvidenceDir:    strings.TrimSpace(evidenceDirectory),
		AssessmentType: assessmentType,
		OutputPath:     outputPath,
	})
	if assessmentError != nil {
		return assessmentError
	}

	outputWriter := command.OutOrStdout()
	fmt.Fprintf(outputWriter, assessmentWrittenTemplateConstant, assessmentDocument.AssessmentID, outputPath)
	fmt.Fprintf(
		outputWriter,
		summaryLineTemplateConstant,
		assessmentDocument.PreliminarySummary.TotalControls,
		assessmentDocument.PreliminarySummary.PotentialCompliant,
		assessmentDocument.PreliminarySummary.PotentialPartial,
		assessmentDocument.PreliminarySummary.PotentialGap,
	)

	return nil
}

func (builder *AssessCommandBuilder) resolveConfiguration() AssessConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultAssessConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
