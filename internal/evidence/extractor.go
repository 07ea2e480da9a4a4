package evidence

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	extractedTextLimitConstant            = 5000
	extractedPDFPageLimitConstant         = 5
	extractedWorkbookSheetLimitConstant   = 2
	extractedWorkbookRowLimitConstant     = 50
	binaryPlaceholderTemplateConstant     = "[%s: %s]"
	workbookCellJoinSeparatorConstant     = " "
	workbookRowTerminatorConstant         = "\n"
	docxDocumentEntryNameConstant         = "word/document.xml"
	docxParagraphSeparatorConstant        = "\n"
	docxTextElementNameConstant           = "t"
	docxParagraphElementNameConstant      = "p"
	placeholderLabelPDFConstant           = "PDF"
	placeholderLabelDOCXConstant          = "DOCX"
	placeholderLabelXLSXConstant          = "XLSX"
	docxDocumentEntryMissingErrorTemplate = "docx archive %s has no document body"
	fileUnreadableLogMessageConstant      = "evidence file unreadable, skipping"
	logFieldEvidenceFileNameConstant      = "evidence_file"
)

var plainTextFileTypes = map[string]struct{}{
	"txt":  {},
	"md":   {},
	"csv":  {},
	"json": {},
}

// ExtractText returns a bounded text excerpt for the provided evidence file.
// The second return value reports whether the file type is supported at all.
// Unreadable plain-text files surface their read error; parse failures of
// supported binary types yield a filename placeholder instead.
func ExtractText(evidenceFile File) (string, bool, error) {
	switch {
	case isPlainTextType(evidenceFile.Type):
		extractedText, readError := extractPlainText(evidenceFile.Path)
		return extractedText, true, readError
	case evidenceFile.Type == "pdf":
		return extractWithFallback(extractPDFText, evidenceFile, placeholderLabelPDFConstant), true, nil
	case evidenceFile.Type == "docx":
		return extractWithFallback(extractDocxText, evidenceFile, placeholderLabelDOCXConstant), true, nil
	case evidenceFile.Type == "xlsx" || evidenceFile.Type == "xls":
		return extractWithFallback(extractWorkbookText, evidenceFile, placeholderLabelXLSXConstant), true, nil
	default:
		return "", false, nil
	}
}

// ExtractAll maps evidence file names to their extracted text. Unreadable
// files are logged and skipped, as are files that produced no text.
func ExtractAll(evidenceFiles []File, logger *zap.Logger) map[string]string {
	if logger == nil {
		logger = zap.NewNop()
	}

	extractedTexts := make(map[string]string, len(evidenceFiles))
	for _, evidenceFile := range evidenceFiles {
		extractedText, typeSupported, extractionError := ExtractText(evidenceFile)
		if extractionError != nil {
			logger.Warn(
				fileUnreadableLogMessageConstant,
				zap.String(logFieldEvidenceFileNameConstant, evidenceFile.Name),
				zap.Error(extractionError),
			)
			continue
		}
		if typeSupported && len(extractedText) > 0 {
			extractedTexts[evidenceFile.Name] = extractedText
		}
	}
	return extractedTexts
}

func isPlainTextType(fileType string) bool {
	_, isPlainText := plainTextFileTypes[fileType]
	return isPlainText
}

func extractWithFallback(extractor func(string) (string, error), evidenceFile File, placeholderLabel string) string {
	extractedText, extractionError := extractor(evidenceFile.Path)
	if extractionError != nil || len(strings.TrimSpace(extractedText)) == 0 {
		return fmt.Sprintf(binaryPlaceholderTemplateConstant, placeholderLabel, evidenceFile.Name)
	}
	return truncateText(extractedText)
}

func extractPlainText(filePath string) (string, error) {
	fileContent, readError := os.ReadFile(filePath)
	if readError != nil {
		return "", readError
	}
	return truncateText(string(fileContent)), nil
}

func extractPDFText(filePath string) (string, error) {
	fileHandle, pdfReader, openError := pdf.Open(filePath)
	if openError != nil {
		return "", openError
	}
	defer fileHandle.Close()

	pageTexts := make([]string, 0, extractedPDFPageLimitConstant)
	pageCount := pdfReader.NumPage()
	for pageNumber := 1; pageNumber <= pageCount && pageNumber <= extractedPDFPageLimitConstant; pageNumber++ {
		documentPage := pdfReader.Page(pageNumber)
		if documentPage.V.IsNull() {
			continue
		}
		pageText, pageError := documentPage.GetPlainText(nil)
		if pageError != nil {
			continue
		}
		pageTexts = append(pageTexts, pageText)
	}

	return strings.Join(pageTexts, workbookRowTerminatorConstant), nil
}

func extractWorkbookText(filePath string) (string, error) {
	workbook, openError := excelize.OpenFile(filePath)
	if openError != nil {
		return "", openError
	}
	defer workbook.Close()

	var workbookText strings.Builder
	for sheetIndex, sheetName := range workbook.GetSheetList() {
		if sheetIndex >= extractedWorkbookSheetLimitConstant {
			break
		}

		sheetRows, rowsError := workbook.GetRows(sheetName)
		if rowsError != nil {
			continue
		}

		for rowIndex, sheetRow := range sheetRows {
			if rowIndex >= extractedWorkbookRowLimitConstant {
				break
			}
			populatedCells := make([]string, 0, len(sheetRow))
			for _, cellValue := range sheetRow {
				if len(strings.TrimSpace(cellValue)) > 0 {
					populatedCells = append(populatedCells, cellValue)
				}
			}
			workbookText.WriteString(strings.Join(populatedCells, workbookCellJoinSeparatorConstant))
			workbookText.WriteString(workbookRowTerminatorConstant)
		}
	}

	return workbookText.String(), nil
}

// extractDocxText walks word/document.xml collecting run text, inserting a
// paragraph break at each closing paragraph element.
func extractDocxText(filePath string) (string, error) {
	documentArchive, openError := zip.OpenReader(filePath)
	if openError != nil {
		return "", openError
	}
	defer documentArchive.Close()

	var documentEntry *zip.File
	for _, archiveEntry := range documentArchive.File {
		if archiveEntry.Name == docxDocumentEntryNameConstant {
			documentEntry = archiveEntry
			break
		}
	}
	if documentEntry == nil {
		return "", fmt.Errorf(docxDocumentEntryMissingErrorTemplate, filePath)
	}

	documentReader, entryError := documentEntry.Open()
	if entryError != nil {
		return "", entryError
	}
	defer documentReader.Close()

	xmlDecoder := xml.NewDecoder(documentReader)
	var documentText strings.Builder
	insideTextElement := false

	for {
		nextToken, tokenError := xmlDecoder.Token()
		if tokenError == io.EOF {
			break
		}
		if tokenError != nil {
			return "", tokenError
		}

		switch typedToken := nextToken.(type) {
		case xml.StartElement:
			if typedToken.Name.Local == docxTextElementNameConstant {
				insideTextElement = true
			}
		case xml.EndElement:
			if typedToken.Name.Local == docxTextElementNameConstant {
				insideTextElement = false
			}
			if typedToken.Name.Local == docxParagraphElementNameConstant {
				documentText.WriteString(docxParagraphSeparatorConstant)
			}
		case xml.CharData:
			if insideTextElement {
				documentText.Write([]byte(typedToken))
			}
		}
	}

	return documentText.String(), nil
}

func truncateText(rawText string) string {
	if len(rawText) <= extractedTextLimitConstant {
		return rawText
	}
	return rawText[:extractedTextLimitConstant]
}
