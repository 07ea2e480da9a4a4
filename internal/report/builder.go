package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/ironclad-grc/ironclad/internal/assess"
)

const (
	pageOrientationConstant            = "P"
	pageUnitConstant                   = "mm"
	pageSizeConstant                   = "A4"
	titleFontFamilyConstant            = "Helvetica"
	boldFontStyleConstant              = "B"
	regularFontStyleConstant           = ""
	titleFontSizeConstant              = 18
	headingFontSizeConstant            = 13
	bodyFontSizeConstant               = 10
	reportTitleConstant                = "Compliance Assessment Report"
	clientLineTemplateConstant         = "Client: %s"
	frameworkLineTemplateConstant      = "Framework: %s (version %s)"
	assessmentLineTemplateConstant     = "Assessment: %s"
	generatedLineTemplateConstant      = "Generated: %s"
	summaryHeadingConstant             = "Preliminary Summary"
	findingsHeadingConstant            = "Control Findings"
	consensusHeadingConstant           = "AI Consensus"
	consensusLineTemplateConstant      = "Severity %s at %.0f%% confidence"
	summaryRowTemplateConstant         = "%s: %d"
	summaryTotalLabelConstant          = "Total controls"
	summaryCompliantLabelConstant      = "Potential compliant"
	summaryPartialLabelConstant        = "Potential partial"
	summaryGapLabelConstant            = "Potential gap"
	findingLineTemplateConstant        = "%s  %s"
	findingDetailTemplateConstant      = "    status: %s, evidence files: %d"
	reportFileNameTemplateConstant     = "%s.pdf"
	reportRenderErrorTemplateConstant  = "failed to render report: %w"
	titleCellHeightConstant            = 12.0
	headingCellHeightConstant          = 9.0
	bodyCellHeightConstant             = 6.0
	fullWidthCellConstant              = 0.0
	sectionSpacingConstant             = 4.0
	confidencePercentMultiplierNumber  = 100
	lineBreakAlignmentValueConstant    = 1
)

// Build renders the assessment document to <assessment-id>.pdf inside
// outputDirectory and returns the written path.
func Build(assessmentDocument assess.Document, outputDirectory string) (string, error) {
	pdfDocument := fpdf.New(pageOrientationConstant, pageUnitConstant, pageSizeConstant, "")
	pdfDocument.AddPage()

	pdfDocument.SetFont(titleFontFamilyConstant, boldFontStyleConstant, titleFontSizeConstant)
	pdfDocument.CellFormat(fullWidthCellConstant, titleCellHeightConstant, reportTitleConstant, "", lineBreakAlignmentValueConstant, "", false, 0, "")

	pdfDocument.SetFont(titleFontFamilyConstant, regularFontStyleConstant, bodyFontSizeConstant)
	writeBodyLine(pdfDocument, fmt.Sprintf(clientLineTemplateConstant, assessmentDocument.ClientID))
	writeBodyLine(pdfDocument, fmt.Sprintf(frameworkLineTemplateConstant, assessmentDocument.Framework.Name, assessmentDocument.Framework.Version))
	writeBodyLine(pdfDocument, fmt.Sprintf(assessmentLineTemplateConstant, assessmentDocument.AssessmentID))
	writeBodyLine(pdfDocument, fmt.Sprintf(generatedLineTemplateConstant, assessmentDocument.Timestamp))
	pdfDocument.Ln(sectionSpacingConstant)

	writeHeading(pdfDocument, summaryHeadingConstant)
	writeBodyLine(pdfDocument, fmt.Sprintf(summaryRowTemplateConstant, summaryTotalLabelConstant, assessmentDocument.PreliminarySummary.TotalControls))
	writeBodyLine(pdfDocument, fmt.Sprintf(summaryRowTemplateConstant, summaryCompliantLabelConstant, assessmentDocument.PreliminarySummary.PotentialCompliant))
	writeBodyLine(pdfDocument, fmt.Sprintf(summaryRowTemplateConstant, summaryPartialLabelConstant, assessmentDocument.PreliminarySummary.PotentialPartial))
	writeBodyLine(pdfDocument, fmt.Sprintf(summaryRowTemplateConstant, summaryGapLabelConstant, assessmentDocument.PreliminarySummary.PotentialGap))
	pdfDocument.Ln(sectionSpacingConstant)

	if assessmentDocument.AIConsensus != nil {
		writeHeading(pdfDocument, consensusHeadingConstant)
		writeBodyLine(pdfDocument, fmt.Sprintf(
			consensusLineTemplateConstant,
			assessmentDocument.AIConsensus.Severity,
			assessmentDocument.AIConsensus.Confidence*confidencePercentMultiplierNumber,
		))
		pdfDocument.Ln(sectionSpacingConstant)
	}

	writeHeading(pdfDocument, findingsHeadingConstant)
	for _, assessmentFinding := range assessmentDocument.Findings {
		writeBodyLine(pdfDocument, fmt.Sprintf(findingLineTemplateConstant, assessmentFinding.ControlID, assessmentFinding.ControlName))
		writeBodyLine(pdfDocument, fmt.Sprintf(findingDetailTemplateConstant, assessmentFinding.PreliminaryStatus, len(assessmentFinding.EvidenceFound)))
	}

	reportPath := filepath.Join(outputDirectory, fmt.Sprintf(reportFileNameTemplateConstant, sanitizeFileName(assessmentDocument.AssessmentID)))
	if outputError := pdfDocument.OutputFileAndClose(reportPath); outputError != nil {
		return "", fmt.Errorf(reportRenderErrorTemplateConstant, outputError)
	}

	return reportPath, nil
}

func writeHeading(pdfDocument *fpdf.Fpdf, headingText string) {
	pdfDocument.SetFont(titleFontFamilyConstant, boldFontStyleConstant, headingFontSizeConstant)
	pdfDocument.CellFormat(fullWidthCellConstant, headingCellHeightConstant, headingText, "", lineBreakAlignmentValueConstant, "", false, 0, "")
	pdfDocument.SetFont(titleFontFamilyConstant, regularFontStyleConstant, bodyFontSizeConstant)
}

func writeBodyLine(pdfDocument *fpdf.Fpdf, lineText string) {
	pdfDocument.CellFormat(fullWidthCellConstant, bodyCellHeightConstant, lineText, "", lineBreakAlignmentValueConstant, "", false, 0, "")
}

func sanitizeFileName(rawName string) string {
	return strings.Map(func(nameRune rune) rune {
		switch nameRune {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		default:
			return nameRune
		}
	}, rawName)
}
