package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	catalogDirectoryErrorTemplateConstant = "failed to read evidence directory: %w"
	fileTypeSeparatorConstant             = "."
)

// File describes one cataloged evidence file.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Catalog lists the regular files directly inside the evidence directory.
func Catalog(evidenceDirectory string) ([]File, error) {
	directoryEntries, readError := os.ReadDir(evidenceDirectory)
	if readError != nil {
		return nil, fmt.Errorf(catalogDirectoryErrorTemplateConstant, readError)
	}

	catalogedFiles := make([]File, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}

		entryInformation, informationError := directoryEntry.Info()
		if informationError != nil {
			continue
		}

		catalogedFiles = append(catalogedFiles, File{
			Name: directoryEntry.Name(),
			Path: filepath.Join(evidenceDirectory, directoryEntry.Name()),
			Type: normalizedFileType(directoryEntry.Name()),
			Size: entryInformation.Size(),
		})
	}

	return catalogedFiles, nil
}

func normalizedFileType(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), fileTypeSeparatorConstant)
}
