package assess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/evidence"
	"github.com/ironclad-grc/ironclad/internal/frameworks"
)

const (
	clientIdentifierRequiredMessageConstant = "client identifier must be provided"
	catalogPathRequiredMessageConstant      = "framework catalog path must be provided"
	evidenceDirectoryRequiredMessage        = "evidence directory must be provided"
	outputPathRequiredMessageConstant       = "assessment output path must be provided"
	evidenceCatalogErrorTemplateConstant    = "failed to catalog evidence: %w"
	documentEncodeErrorTemplateConstant     = "failed to encode assessment document: %w"
	documentWriteErrorTemplateConstant      = "failed to write assessment document: %w"
	defaultAssessmentTypeConstant           = "full"
	assessmentNoteConstant                  = "Preliminary assessment - requires AI consensus analysis for final determination"
	assessmentIdentifierTemplateConstant    = "%s-%s-%s"
	assessmentIdentifierTimeLayoutConstant  = "20060102150405"
	documentTimestampLayoutConstant         = time.RFC3339
	documentIndentPrefixConstant            = ""
	documentIndentConstant                  = "  "
	documentFilePermissionsConstant         = 0o644
	assessmentStartedMessageConstant        = "starting compliance assessment"
	catalogLoadedMessageConstant            = "framework catalog loaded"
	evidenceCatalogedMessageConstant        = "evidence cataloged"
	assessmentCompletedMessageConstant      = "preliminary assessment complete"
	logFieldClientConstant                  = "client_id"
	logFieldFrameworkConstant               = "framework"
	logFieldControlCountConstant            = "control_count"
	logFieldEvidenceFileCountConstant       = "evidence_file_count"
	logFieldExtractedFileCountConstant      = "extracted_file_count"
	logFieldAssessmentIdentifierConstant    = "assessment_id"
	logFieldPotentialCompliantConstant      = "potential_compliant"
	logFieldPotentialPartialConstant        = "potential_partial"
	logFieldPotentialGapConstant            = "potential_gap"
)

// Options configures one assessment run.
type Options struct {
	ClientID       string
	CatalogPath    string
	EvidenceDir    string
	AssessmentType string
	OutputPath     string
}

// Service runs preliminary evidence assessments.
type Service struct {
	logger *zap.Logger
	clock  func() time.Time
}

// NewService constructs an assessment service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, clock: time.Now}
}

// Run loads the framework catalog, catalogs and extracts evidence, matches
// evidence to every control, and writes the findings document.
func (service *Service) Run(executionContext context.Context, options Options) (Document, error) {
	if validationError := validateOptions(options); validationError != nil {
		return Document{}, validationError
	}

	service.logger.Info(
		assessmentStartedMessageConstant,
		zap.String(logFieldClientConstant, options.ClientID),
		zap.String(logFieldFrameworkConstant, options.CatalogPath),
	)

	frameworkCatalog, catalogError := frameworks.LoadCatalog(options.CatalogPath)
	if catalogError != nil {
		return Document{}, catalogError
	}
	service.logger.Info(catalogLoadedMessageConstant, zap.Int(logFieldControlCountConstant, len(frameworkCatalog.Controls)))

	evidenceFiles, evidenceError := evidence.Catalog(options.EvidenceDir)
	if evidenceError != nil {
		return Document{}, fmt.Errorf(evidenceCatalogErrorTemplateConstant, evidenceError)
	}

	extractedTexts := evidence.ExtractAll(evidenceFiles, service.logger)
	service.logger.Info(
		evidenceCatalogedMessageConstant,
		zap.Int(logFieldEvidenceFileCountConstant, len(evidenceFiles)),
		zap.Int(logFieldExtractedFileCountConstant, len(extractedTexts)),
	)

	if contextError := executionContext.Err(); contextError != nil {
		return Document{}, contextError
	}

	assessmentFindings := make([]Finding, 0, len(frameworkCatalog.Controls))
	for _, frameworkControl := range frameworkCatalog.Controls {
		assessmentFindings = append(assessmentFindings, matchControl(frameworkControl, extractedTexts))
	}

	assessmentDocument := Document{
		AssessmentID:       service.buildAssessmentIdentifier(options.ClientID, frameworkCatalog.Framework.ID),
		ClientID:           options.ClientID,
		Framework:          FrameworkReference(frameworkCatalog.Framework),
		AssessmentType:     resolveAssessmentType(options.AssessmentType),
		Timestamp:          service.clock().UTC().Format(documentTimestampLayoutConstant),
		EvidenceFiles:      evidenceFiles,
		PreliminarySummary: summarizeFindings(assessmentFindings),
		Findings:           assessmentFindings,
		Note:               assessmentNoteConstant,
	}

	if writeError := WriteDocument(assessmentDocument, options.OutputPath); writeError != nil {
		return Document{}, writeError
	}

	service.logger.Info(
		assessmentCompletedMessageConstant,
		zap.String(logFieldAssessmentIdentifierConstant, assessmentDocument.AssessmentID),
		zap.Int(logFieldPotentialCompliantConstant, assessmentDocument.PreliminarySummary.PotentialCompliant),
		zap.Int(logFieldPotentialPartialConstant, assessmentDocument.PreliminarySummary.PotentialPartial),
		zap.Int(logFieldPotentialGapConstant, assessmentDocument.PreliminarySummary.PotentialGap),
	)

	return assessmentDocument, nil
}

func validateOptions(options Options) error {
	switch {
	case len(strings.TrimSpace(options.ClientID)) == 0:
		return errors.New(clientIdentifierRequiredMessageConstant)
	case len(strings.TrimSpace(options.CatalogPath)) == 0:
		return errors.New(catalogPathRequiredMessageConstant)
	case len(strings.TrimSpace(options.EvidenceDir)) == 0:
		return errors.New(evidenceDirectoryRequiredMessage)
	case len(strings.TrimSpace(options.OutputPath)) == 0:
		return errors.New(outputPathRequiredMessageConstant)
	default:
		return nil
	}
}

func resolveAssessmentType(requestedType string) string {
	trimmedType := strings.TrimSpace(requestedType)
	if len(trimmedType) == 0 {
		return defaultAssessmentTypeConstant
	}
	return trimmedType
}

func (service *Service) buildAssessmentIdentifier(clientIdentifier string, frameworkIdentifier string) string {
	return fmt.Sprintf(
		assessmentIdentifierTemplateConstant,
		clientIdentifier,
		frameworkIdentifier,
		service.clock().UTC().Format(assessmentIdentifierTimeLayoutConstant),
	)
}

func summarizeFindings(assessmentFindings []Finding) Summary {
	findingsSummary := Summary{TotalControls: len(assessmentFindings)}
	for _, assessmentFinding := range assessmentFindings {
		switch assessmentFinding.PreliminaryStatus {
		case StatusPotentialCompliant:
			findingsSummary.PotentialCompliant++
		case StatusPotentialPartial:
			findingsSummary.PotentialPartial++
		case StatusPotentialGap:
			findingsSummary.PotentialGap++
		}
	}
	return findingsSummary
}

// WriteDocument persists an assessment document as indented JSON.
func WriteDocument(assessmentDocument Document, outputPath string) error {
	encodedDocument, encodeError := json.MarshalIndent(assessmentDocument, documentIndentPrefixConstant, documentIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(documentEncodeErrorTemplateConstant, encodeError)
	}
	if writeError := os.WriteFile(outputPath, encodedDocument, documentFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(documentWriteErrorTemplateConstant, writeError)
	}
	return nil
}

// ReadDocument loads a previously written assessment document.
func ReadDocument(documentPath string) (Document, error) {
	documentContent, readError := os.ReadFile(documentPath)
	if readError != nil {
		return Document{}, readError
	}
	var assessmentDocument Document
	if unmarshalError := json.Unmarshal(documentContent, &assessmentDocument); unmarshalError != nil {
		return Document{}, unmarshalError
	}
	return assessmentDocument, nil
}
