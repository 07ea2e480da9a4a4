package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant       = "failed to load pipeline configuration: %w"
	configurationParseErrorTemplateConstant      = "failed to parse pipeline configuration: %w"
	configurationPathRequiredMessageConstant     = "pipeline configuration path must be provided"
	configurationEmptyStepsMessageConstant       = "pipeline configuration must define at least one step"
	configurationOperationMissingMessageConstant = "pipeline step missing operation name"
	configurationUnknownOperationTemplateConstant = "unsupported pipeline operation: %s"
	configurationClientRequiredMessageConstant   = "pipeline params require client_id"
	configurationFrameworkRequiredMessageConstant = "pipeline params require framework"
	configurationEvidenceRequiredMessageConstant = "pipeline params require evidence_path"
	defaultOutputDirectoryConstant               = "."
)

// StepType identifies supported pipeline operations.
type StepType string

// Supported pipeline operations.
const (
	StepTypeAssess    StepType = StepType("assess")
	StepTypeConsensus StepType = StepType("consensus")
	StepTypeReport    StepType = StepType("report")
	StepTypeStore     StepType = StepType("store")
)

// Parameters are shared across every step of a pipeline run.
type Parameters struct {
	ClientID     string `yaml:"client_id" json:"client_id"`
	CatalogPath  string `yaml:"framework" json:"framework"`
	EvidencePath string `yaml:"evidence_path" json:"evidence_path"`
	OutputDir    string `yaml:"output_dir" json:"output_dir"`
}

// Configuration describes the ordered pipeline steps loaded from YAML or JSON.
type Configuration struct {
	Params Parameters          `yaml:"params" json:"params"`
	Steps  []StepConfiguration `yaml:"steps" json:"steps"`
}

// StepConfiguration associates an operation type with declarative options.
type StepConfiguration struct {
	Operation StepType       `yaml:"operation" json:"operation"`
	Options   map[string]any `yaml:"with" json:"with"`
}

// LoadConfiguration reads the pipeline definition from disk and performs basic validation.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(configuration.Steps) == 0 {
		var wrapper struct {
			Pipeline Configuration `yaml:"pipeline" json:"pipeline"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil && len(wrapper.Pipeline.Steps) > 0 {
			configuration = wrapper.Pipeline
		}
	}

	if validationError := validateConfiguration(&configuration); validationError != nil {
		return Configuration{}, validationError
	}

	return configuration, nil
}

func validateConfiguration(configuration *Configuration) error {
	switch {
	case len(strings.TrimSpace(configuration.Params.ClientID)) == 0:
		return errors.New(configurationClientRequiredMessageConstant)
	case len(strings.TrimSpace(configuration.Params.CatalogPath)) == 0:
		return errors.New(configurationFrameworkRequiredMessageConstant)
	case len(strings.TrimSpace(configuration.Params.EvidencePath)) == 0:
		return errors.New(configurationEvidenceRequiredMessageConstant)
	}

	if len(strings.TrimSpace(configuration.Params.OutputDir)) == 0 {
		configuration.Params.OutputDir = defaultOutputDirectoryConstant
	}

	if len(configuration.Steps) == 0 {
		return errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		trimmedOperation := strings.TrimSpace(string(configuration.Steps[stepIndex].Operation))
		if len(trimmedOperation) == 0 {
			return errors.New(configurationOperationMissingMessageConstant)
		}
		stepOperation := StepType(trimmedOperation)
		switch stepOperation {
		case StepTypeAssess, StepTypeConsensus, StepTypeReport, StepTypeStore:
			configuration.Steps[stepIndex].Operation = stepOperation
		default:
			return fmt.Errorf(configurationUnknownOperationTemplateConstant, trimmedOperation)
		}
	}

	return nil
}
