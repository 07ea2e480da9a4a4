package frameworks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	catalogPathRequiredMessageConstant         = "framework catalog path must be provided"
	catalogReadErrorTemplateConstant           = "failed to read framework catalog: %w"
	catalogParseErrorTemplateConstant          = "failed to parse framework catalog: %w"
	catalogFrameworkIdentifierMissingMessage   = "framework catalog missing framework identifier"
	catalogFrameworkNameMissingMessageConstant = "framework catalog missing framework name"
	catalogControlsMissingMessageConstant      = "framework catalog defines no controls"
	catalogControlIdentifierMissingTemplate    = "framework catalog control %d missing identifier"
	catalogDuplicateControlTemplateConstant    = "framework catalog defines duplicate control %s"
	jsonCatalogExtensionConstant               = ".json"
)

// Framework identifies a compliance framework edition.
type Framework struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Control describes a single framework control.
type Control struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	Category       string   `yaml:"category" json:"category"`
	CommonEvidence []string `yaml:"common_evidence" json:"common_evidence"`
	PointsOfFocus  []string `yaml:"points_of_focus" json:"points_of_focus"`
}

// Catalog bundles a framework with its control set.
type Catalog struct {
	Framework Framework `yaml:"framework" json:"framework"`
	Controls  []Control `yaml:"controls" json:"controls"`
}

// LoadCatalog parses a framework catalog from a YAML or JSON file and validates its structure.
func LoadCatalog(catalogPath string) (Catalog, error) {
	trimmedPath := strings.TrimSpace(catalogPath)
	if len(trimmedPath) == 0 {
		return Catalog{}, errors.New(catalogPathRequiredMessageConstant)
	}

	catalogContent, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Catalog{}, fmt.Errorf(catalogReadErrorTemplateConstant, readError)
	}

	var parsedCatalog Catalog
	if strings.EqualFold(filepath.Ext(trimmedPath), jsonCatalogExtensionConstant) {
		if unmarshalError := json.Unmarshal(catalogContent, &parsedCatalog); unmarshalError != nil {
			return Catalog{}, fmt.Errorf(catalogParseErrorTemplateConstant, unmarshalError)
		}
	} else {
		if unmarshalError := yaml.Unmarshal(catalogContent, &parsedCatalog); unmarshalError != nil {
			return Catalog{}, fmt.Errorf(catalogParseErrorTemplateConstant, unmarshalError)
		}
	}

	if validationError := parsedCatalog.validate(); validationError != nil {
		return Catalog{}, validationError
	}

	return parsedCatalog, nil
}

func (catalog Catalog) validate() error {
	if len(strings.TrimSpace(catalog.Framework.ID)) == 0 {
		return errors.New(catalogFrameworkIdentifierMissingMessage)
	}
	if len(strings.TrimSpace(catalog.Framework.Name)) == 0 {
		return errors.New(catalogFrameworkNameMissingMessageConstant)
	}
	if len(catalog.Controls) == 0 {
		return errors.New(catalogControlsMissingMessageConstant)
	}

	seenControlIdentifiers := make(map[string]struct{}, len(catalog.Controls))
	for controlIndex, control := range catalog.Controls {
		controlIdentifier := strings.TrimSpace(control.ID)
		if len(controlIdentifier) == 0 {
			return fmt.Errorf(catalogControlIdentifierMissingTemplate, controlIndex)
		}
		if _, alreadySeen := seenControlIdentifiers[controlIdentifier]; alreadySeen {
			return fmt.Errorf(catalogDuplicateControlTemplateConstant, controlIdentifier)
		}
		seenControlIdentifiers[controlIdentifier] = struct{}{}
	}

	return nil
}

// ControlByID returns the control with the provided identifier when present.
func (catalog Catalog) ControlByID(controlIdentifier string) (Control, bool) {
	for _, control := range catalog.Controls {
		if control.ID == controlIdentifier {
			return control, true
		}
	}
	return Control{}, false
}
