package mappings

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	targetListSeparatorConstant           = ","
	targetRangeSeparatorConstant          = ".."
	unknownMappingTableTemplateConstant   = "no mapping table from %s to %s"
	unmappedControlTemplateConstant       = "control %s has no %s mapping"
	embeddedTableDirectoryNameConstant    = "tables"
	embeddedTablePathTemplateConstant     = embeddedTableDirectoryNameConstant + "/%s"
	reverseTargetNotFoundTemplateConstant = "no %s control maps to %s"
)

//go:embed tables/*.yaml
var embeddedTableFiles embed.FS

// ControlMapping relates one source control to its target framework identifier.
// The target may be a single identifier, a comma-separated list, or a range
// joined with "..".
type ControlMapping struct {
	SourceControlID string `yaml:"source"`
	TargetControlID string `yaml:"target"`
}

// MappingTable holds the directed cross-reference between two frameworks.
type MappingTable struct {
	SourceFramework string           `yaml:"source_framework"`
	TargetFramework string           `yaml:"target_framework"`
	Mappings        []ControlMapping `yaml:"mappings"`
}

// UnknownTableError reports a lookup for a direction without a shipped table.
type UnknownTableError struct {
	SourceFramework string
	TargetFramework string
}

// Error describes the missing table direction.
func (unknownTable UnknownTableError) Error() string {
	return fmt.Sprintf(unknownMappingTableTemplateConstant, unknownTable.SourceFramework, unknownTable.TargetFramework)
}

// UnmappedControlError reports a source control absent from a table.
type UnmappedControlError struct {
	SourceControlID string
	TargetFramework string
}

// Error describes the unmapped control.
func (unmappedControl UnmappedControlError) Error() string {
	return fmt.Sprintf(unmappedControlTemplateConstant, unmappedControl.SourceControlID, unmappedControl.TargetFramework)
}

var builtinTables = mustParseBuiltinTables()

func mustParseBuiltinTables() []MappingTable {
	tableEntries, readError := embeddedTableFiles.ReadDir(embeddedTableDirectoryNameConstant)
	if readError != nil {
		panic(readError)
	}

	parsedTables := make([]MappingTable, 0, len(tableEntries))
	for _, tableEntry := range tableEntries {
		tableContent, contentError := embeddedTableFiles.ReadFile(fmt.Sprintf(embeddedTablePathTemplateConstant, tableEntry.Name()))
		if contentError != nil {
			panic(contentError)
		}

		var parsedTable MappingTable
		if unmarshalError := yaml.Unmarshal(tableContent, &parsedTable); unmarshalError != nil {
			panic(unmarshalError)
		}
		parsedTables = append(parsedTables, parsedTable)
	}

	sort.Slice(parsedTables, func(firstIndex int, secondIndex int) bool {
		if parsedTables[firstIndex].SourceFramework != parsedTables[secondIndex].SourceFramework {
			return parsedTables[firstIndex].SourceFramework < parsedTables[secondIndex].SourceFramework
		}
		return parsedTables[firstIndex].TargetFramework < parsedTables[secondIndex].TargetFramework
	})

	return parsedTables
}

// BuiltinTables returns every shipped mapping table.
func BuiltinTables() []MappingTable {
	duplicatedTables := make([]MappingTable, len(builtinTables))
	copy(duplicatedTables, builtinTables)
	return duplicatedTables
}

// TableFor resolves the shipped table translating sourceFramework identifiers into targetFramework identifiers.
func TableFor(sourceFramework string, targetFramework string) (MappingTable, error) {
	for _, candidateTable := range builtinTables {
		if candidateTable.SourceFramework == sourceFramework && candidateTable.TargetFramework == targetFramework {
			return candidateTable, nil
		}
	}
	return MappingTable{}, UnknownTableError{SourceFramework: sourceFramework, TargetFramework: targetFramework}
}

// Translate maps a source control identifier to its target identifiers.
func Translate(sourceFramework string, targetFramework string, sourceControlID string) ([]string, error) {
	resolvedTable, tableError := TableFor(sourceFramework, targetFramework)
	if tableError != nil {
		return nil, tableError
	}

	trimmedControlID := strings.TrimSpace(sourceControlID)
	for _, controlMapping := range resolvedTable.Mappings {
		if controlMapping.SourceControlID == trimmedControlID {
			return splitTargetIdentifiers(controlMapping.TargetControlID), nil
		}
	}

	return nil, UnmappedControlError{SourceControlID: trimmedControlID, TargetFramework: targetFramework}
}

// ReverseLookup returns the source controls whose targets contain the provided target identifier.
func ReverseLookup(sourceFramework string, targetFramework string, targetControlID string) ([]string, error) {
	resolvedTable, tableError := TableFor(sourceFramework, targetFramework)
	if tableError != nil {
		return nil, tableError
	}

	trimmedTargetID := strings.TrimSpace(targetControlID)
	matchedSourceControls := make([]string, 0)
	for _, controlMapping := range resolvedTable.Mappings {
		for _, targetIdentifier := range splitTargetIdentifiers(controlMapping.TargetControlID) {
			if targetIdentifierContains(targetIdentifier, trimmedTargetID) {
				matchedSourceControls = append(matchedSourceControls, controlMapping.SourceControlID)
				break
			}
		}
	}

	if len(matchedSourceControls) == 0 {
		return nil, fmt.Errorf(reverseTargetNotFoundTemplateConstant, sourceFramework, trimmedTargetID)
	}

	return matchedSourceControls, nil
}

func splitTargetIdentifiers(rawTarget string) []string {
	rawSegments := strings.Split(rawTarget, targetListSeparatorConstant)
	targetIdentifiers := make([]string, 0, len(rawSegments))
	for _, rawSegment := range rawSegments {
		trimmedSegment := strings.TrimSpace(rawSegment)
		if len(trimmedSegment) > 0 {
			targetIdentifiers = append(targetIdentifiers, trimmedSegment)
		}
	}
	return targetIdentifiers
}

func targetIdentifierContains(targetIdentifier string, candidateID string) bool {
	if targetIdentifier == candidateID {
		return true
	}

	rangeEndpoints := strings.SplitN(targetIdentifier, targetRangeSeparatorConstant, 2)
	if len(rangeEndpoints) != 2 {
		return false
	}

	lowerEndpoint := strings.TrimSpace(rangeEndpoints[0])
	upperEndpoint := strings.TrimSpace(rangeEndpoints[1])
	lowerPrefix, lowerIndex, lowerParsed := splitIndexedIdentifier(lowerEndpoint)
	upperPrefix, upperIndex, upperParsed := splitIndexedIdentifier(upperEndpoint)
	candidatePrefix, candidateIndex, candidateParsed := splitIndexedIdentifier(candidateID)

	if !lowerParsed || !upperParsed || !candidateParsed {
		return false
	}
	if lowerPrefix != upperPrefix || candidatePrefix != lowerPrefix {
		return false
	}
	return candidateIndex >= lowerIndex && candidateIndex <= upperIndex
}
