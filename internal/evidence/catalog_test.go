package evidence_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/evidence"
)

const (
	testPolicyFileNameConstant        = "access_policy.txt"
	testPolicyFileContentConstant     = "All production access requires multi-factor authentication."
	testNotesFileNameConstant         = "review_notes.md"
	testNotesFileContentConstant      = "# Quarterly user access review\ncompleted 2026-06-30"
	testNestedDirectoryNameConstant   = "archive"
	expectedCatalogFileCountConstant  = 2
	expectedPolicyFileTypeConstant    = "txt"
	expectedNotesFileTypeConstant     = "md"
	missingEvidenceDirectoryConstant  = "does-not-exist"
	unsupportedEvidenceFileName       = "diagram.png"
	unsupportedEvidenceFileContentRaw = "\x89PNG\r\n"
)

func writeEvidenceFixture(testInstance *testing.T) string {
	evidenceDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(evidenceDirectory, testPolicyFileNameConstant), []byte(testPolicyFileContentConstant), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(evidenceDirectory, testNotesFileNameConstant), []byte(testNotesFileContentConstant), 0o644))
	require.NoError(testInstance, os.Mkdir(filepath.Join(evidenceDirectory, testNestedDirectoryNameConstant), 0o755))
	return evidenceDirectory
}

func TestCatalog(testInstance *testing.T) {
	evidenceDirectory := writeEvidenceFixture(testInstance)

	catalogedFiles, catalogError := evidence.Catalog(evidenceDirectory)
	require.NoError(testInstance, catalogError)
	require.Len(testInstance, catalogedFiles, expectedCatalogFileCountConstant)

	fileTypesByName := make(map[string]string, len(catalogedFiles))
	for _, catalogedFile := range catalogedFiles {
		fileTypesByName[catalogedFile.Name] = catalogedFile.Type
		require.Positive(testInstance, catalogedFile.Size)
		require.NotEmpty(testInstance, catalogedFile.Path)
	}
	require.Equal(testInstance, expectedPolicyFileTypeConstant, fileTypesByName[testPolicyFileNameConstant])
	require.Equal(testInstance, expectedNotesFileTypeConstant, fileTypesByName[testNotesFileNameConstant])
}

func TestCatalogMissingDirectory(testInstance *testing.T) {
	_, catalogError := evidence.Catalog(filepath.Join(testInstance.TempDir(), missingEvidenceDirectoryConstant))
	require.Error(testInstance, catalogError)
}

func TestExtractAll(testInstance *testing.T) {
	evidenceDirectory := writeEvidenceFixture(testInstance)
	require.NoError(testInstance, os.WriteFile(filepath.Join(evidenceDirectory, unsupportedEvidenceFileName), []byte(unsupportedEvidenceFileContentRaw), 0o644))

	catalogedFiles, catalogError := evidence.Catalog(evidenceDirectory)
	require.NoError(testInstance, catalogError)

	extractedTexts := evidence.ExtractAll(catalogedFiles, zap.NewNop())
	require.Len(testInstance, extractedTexts, expectedCatalogFileCountConstant)
	require.Contains(testInstance, extractedTexts[testPolicyFileNameConstant], "multi-factor")
	require.NotContains(testInstance, extractedTexts, unsupportedEvidenceFileName)
}
