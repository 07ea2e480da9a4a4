package frameworks

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	unknownFrameworkSourceTemplateConstant = "unknown framework source %q"
)

//go:embed sources.yaml
var embeddedSourceRegistryContent []byte

// SourceDefinition describes where a framework's official updates are published.
type SourceDefinition struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	CheckURL       string   `yaml:"check_url"`
	Keywords       []string `yaml:"keywords"`
	CurrentVersion string   `yaml:"current_version"`
}

// UnknownSourceError reports a lookup for a framework absent from the registry.
type UnknownSourceError struct {
	FrameworkID string
}

// Error describes the missing framework source.
func (unknownSource UnknownSourceError) Error() string {
	return fmt.Sprintf(unknownFrameworkSourceTemplateConstant, unknownSource.FrameworkID)
}

type sourceRegistryDocument struct {
	Sources []SourceDefinition `yaml:"sources"`
}

var builtinSourceRegistry = mustParseSourceRegistry()

func mustParseSourceRegistry() map[string]SourceDefinition {
	var registryDocument sourceRegistryDocument
	if unmarshalError := yaml.Unmarshal(embeddedSourceRegistryContent, &registryDocument); unmarshalError != nil {
		panic(unmarshalError)
	}

	registry := make(map[string]SourceDefinition, len(registryDocument.Sources))
	for _, sourceDefinition := range registryDocument.Sources {
		registry[sourceDefinition.ID] = sourceDefinition
	}
	return registry
}

// BuiltinSources returns every registered framework source ordered by identifier.
func BuiltinSources() []SourceDefinition {
	sourceDefinitions := make([]SourceDefinition, 0, len(builtinSourceRegistry))
	for _, sourceDefinition := range builtinSourceRegistry {
		sourceDefinitions = append(sourceDefinitions, sourceDefinition)
	}
	sort.Slice(sourceDefinitions, func(firstIndex int, secondIndex int) bool {
		return sourceDefinitions[firstIndex].ID < sourceDefinitions[secondIndex].ID
	})
	return sourceDefinitions
}

// SourceByID resolves a registered framework source by identifier.
func SourceByID(frameworkIdentifier string) (SourceDefinition, error) {
	sourceDefinition, sourceRegistered := builtinSourceRegistry[frameworkIdentifier]
	if !sourceRegistered {
		return SourceDefinition{}, UnknownSourceError{FrameworkID: frameworkIdentifier}
	}
	return sourceDefinition, nil
}
