package evidence_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/evidence"
)

const (
	longTextFileNameConstant          = "incident_log.txt"
	longTextRepeatedSegmentConstant   = "incident response drill completed "
	extractionCharacterLimitConstant  = 5000
	workbookFileNameConstant          = "user_access_review.xlsx"
	workbookSheetNameConstant         = "Sheet1"
	workbookHeaderCellConstant        = "username"
	workbookValueCellConstant         = "j.doe"
	corruptWorkbookFileNameConstant   = "broken.xlsx"
	corruptWorkbookContentConstant    = "not a real workbook"
	corruptWorkbookPlaceholderPrefix  = "[XLSX:"
	unsupportedImageFileNameConstant  = "badge_photo.jpg"
	unsupportedImageContentRawLiteral = "\xff\xd8\xff"
)

func TestExtractTextTruncatesPlainText(testInstance *testing.T) {
	evidenceDirectory := testInstance.TempDir()
	longContent := strings.Repeat(longTextRepeatedSegmentConstant, 400)
	longTextPath := filepath.Join(evidenceDirectory, longTextFileNameConstant)
	require.NoError(testInstance, os.WriteFile(longTextPath, []byte(longContent), 0o644))

	extractedText, typeSupported, extractionError := evidence.ExtractText(evidence.File{
		Name: longTextFileNameConstant,
		Path: longTextPath,
		Type: "txt",
	})
	require.NoError(testInstance, extractionError)
	require.True(testInstance, typeSupported)
	require.Len(testInstance, extractedText, extractionCharacterLimitConstant)
}

func TestExtractTextUnreadablePlainTextReturnsError(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), "deleted_policy.txt")

	unreadableFile := evidence.File{Name: "deleted_policy.txt", Path: missingPath, Type: "txt"}
	extractedText, typeSupported, extractionError := evidence.ExtractText(unreadableFile)
	require.Error(testInstance, extractionError)
	require.True(testInstance, typeSupported)
	require.Empty(testInstance, extractedText)
}

func TestExtractAllSkipsUnreadableFiles(testInstance *testing.T) {
	evidenceDirectory := testInstance.TempDir()
	readablePath := filepath.Join(evidenceDirectory, "policy.txt")
	require.NoError(testInstance, os.WriteFile(readablePath, []byte("access control policy"), 0o644))

	extractedTexts := evidence.ExtractAll([]evidence.File{
		{Name: "policy.txt", Path: readablePath, Type: "txt"},
		{Name: "ghost.txt", Path: filepath.Join(evidenceDirectory, "ghost.txt"), Type: "txt"},
	}, zap.NewNop())

	require.Len(testInstance, extractedTexts, 1)
	require.Contains(testInstance, extractedTexts, "policy.txt")
	require.NotContains(testInstance, extractedTexts, "ghost.txt")
}

func TestExtractTextWorkbook(testInstance *testing.T) {
	evidenceDirectory := testInstance.TempDir()
	workbookPath := filepath.Join(evidenceDirectory, workbookFileNameConstant)

	workbook := excelize.NewFile()
	require.NoError(testInstance, workbook.SetCellValue(workbookSheetNameConstant, "A1", workbookHeaderCellConstant))
	require.NoError(testInstance, workbook.SetCellValue(workbookSheetNameConstant, "A2", workbookValueCellConstant))
	require.NoError(testInstance, workbook.SaveAs(workbookPath))
	require.NoError(testInstance, workbook.Close())

	extractedText, typeSupported, extractionError := evidence.ExtractText(evidence.File{
		Name: workbookFileNameConstant,
		Path: workbookPath,
		Type: "xlsx",
	})
	require.NoError(testInstance, extractionError)
	require.True(testInstance, typeSupported)
	require.Contains(testInstance, extractedText, workbookHeaderCellConstant)
	require.Contains(testInstance, extractedText, workbookValueCellConstant)
}

func TestExtractTextCorruptWorkbookFallsBack(testInstance *testing.T) {
	evidenceDirectory := testInstance.TempDir()
	corruptPath := filepath.Join(evidenceDirectory, corruptWorkbookFileNameConstant)
	require.NoError(testInstance, os.WriteFile(corruptPath, []byte(corruptWorkbookContentConstant), 0o644))

	extractedText, typeSupported, extractionError := evidence.ExtractText(evidence.File{
		Name: corruptWorkbookFileNameConstant,
		Path: corruptPath,
		Type: "xlsx",
	})
	require.NoError(testInstance, extractionError)
	require.True(testInstance, typeSupported)
	require.True(testInstance, strings.HasPrefix(extractedText, corruptWorkbookPlaceholderPrefix))
	require.Contains(testInstance, extractedText, corruptWorkbookFileNameConstant)
}

func TestExtractTextUnsupportedType(testInstance *testing.T) {
	evidenceDirectory := testInstance.TempDir()
	imagePath := filepath.Join(evidenceDirectory, unsupportedImageFileNameConstant)
	require.NoError(testInstance, os.WriteFile(imagePath, []byte(unsupportedImageContentRawLiteral), 0o644))

	extractedText, typeSupported, extractionError := evidence.ExtractText(evidence.File{
		Name: unsupportedImageFileNameConstant,
		Path: imagePath,
		Type: "jpg",
	})
	require.NoError(testInstance, extractionError)
	require.False(testInstance, typeSupported)
	require.Empty(testInstance, extractedText)
}
