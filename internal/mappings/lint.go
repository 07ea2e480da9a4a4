package mappings

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	lintIssueDuplicateSourceTemplateConstant  = "duplicate mapping for source control %s"
	lintIssueEmptySourceMessageConstant       = "empty source control identifier"
	lintIssueEmptyTargetTemplateConstant      = "control %s has an empty target"
	lintIssueMalformedSourceTemplate          = "source identifier %s does not match the %s identifier shape"
	lintIssueMalformedTargetTemplateConstant  = "target identifier %s does not match the %s identifier shape"
	lintIssueMalformedRangeTemplateConstant   = "target range %s is malformed"
	lintIssueDescendingRangeTemplateConstant  = "target range %s endpoints do not ascend"
	lintIssueMixedRangePrefixTemplateConstant = "target range %s endpoints cross categories"
	identifierIndexSeparatorConstant          = "-"
)

// LintFinding reports a single consistency issue discovered in a mapping table.
type LintFinding struct {
	SourceFramework string
	TargetFramework string
	SourceControlID string
	Issue           string
}

var identifierShapeByFramework = map[string]*regexp.Regexp{
	"soc2":     regexp.MustCompile(`^(CC|A|C|PI|P)\d+\.\d+$`),
	"nist-csf": regexp.MustCompile(`^[A-Z]{2}\.[A-Z]{2}-\d{2}$`),
	"hipaa":    regexp.MustCompile(`^§164\.\d{3}(\([A-Za-z0-9]+\))*$`),
}

// Lint validates a mapping table: every source control appears exactly once and
// every target is a well-formed identifier, list, or range for its framework.
func Lint(table MappingTable) []LintFinding {
	lintFindings := make([]LintFinding, 0)
	seenSourceControls := make(map[string]struct{}, len(table.Mappings))

	appendFinding := func(sourceControlID string, issue string) {
		lintFindings = append(lintFindings, LintFinding{
			SourceFramework: table.SourceFramework,
			TargetFramework: table.TargetFramework,
			SourceControlID: sourceControlID,
			Issue:           issue,
		})
	}

	for _, controlMapping := range table.Mappings {
		sourceControlID := strings.TrimSpace(controlMapping.SourceControlID)
		if len(sourceControlID) == 0 {
			appendFinding(sourceControlID, lintIssueEmptySourceMessageConstant)
			continue
		}

		if _, alreadyMapped := seenSourceControls[sourceControlID]; alreadyMapped {
			appendFinding(sourceControlID, fmt.Sprintf(lintIssueDuplicateSourceTemplateConstant, sourceControlID))
		}
		seenSourceControls[sourceControlID] = struct{}{}

		if sourceShape, shapeKnown := identifierShapeByFramework[table.SourceFramework]; shapeKnown && !sourceShape.MatchString(sourceControlID) {
			appendFinding(sourceControlID, fmt.Sprintf(lintIssueMalformedSourceTemplate, sourceControlID, table.SourceFramework))
		}

		targetIdentifiers := splitTargetIdentifiers(controlMapping.TargetControlID)
		if len(targetIdentifiers) == 0 {
			appendFinding(sourceControlID, fmt.Sprintf(lintIssueEmptyTargetTemplateConstant, sourceControlID))
			continue
		}

		for _, targetIdentifier := range targetIdentifiers {
			for _, rangeIssue := range lintTargetIdentifier(table.TargetFramework, targetIdentifier) {
				appendFinding(sourceControlID, rangeIssue)
			}
		}
	}

	return lintFindings
}

// LintAll lints every shipped table.
func LintAll() []LintFinding {
	allFindings := make([]LintFinding, 0)
	for _, shippedTable := range BuiltinTables() {
		allFindings = append(allFindings, Lint(shippedTable)...)
	}
	return allFindings
}

func lintTargetIdentifier(targetFramework string, targetIdentifier string) []string {
	targetShape, shapeKnown := identifierShapeByFramework[targetFramework]

	rangeEndpoints := strings.SplitN(targetIdentifier, targetRangeSeparatorConstant, 2)
	if len(rangeEndpoints) == 1 {
		if shapeKnown && !targetShape.MatchString(targetIdentifier) {
			return []string{fmt.Sprintf(lintIssueMalformedTargetTemplateConstant, targetIdentifier, targetFramework)}
		}
		return nil
	}

	lowerEndpoint := strings.TrimSpace(rangeEndpoints[0])
	upperEndpoint := strings.TrimSpace(rangeEndpoints[1])
	if shapeKnown && (!targetShape.MatchString(lowerEndpoint) || !targetShape.MatchString(upperEndpoint)) {
		return []string{fmt.Sprintf(lintIssueMalformedRangeTemplateConstant, targetIdentifier)}
	}

	lowerPrefix, lowerIndex, lowerParsed := splitIndexedIdentifier(lowerEndpoint)
	upperPrefix, upperIndex, upperParsed := splitIndexedIdentifier(upperEndpoint)
	if !lowerParsed || !upperParsed {
		return []string{fmt.Sprintf(lintIssueMalformedRangeTemplateConstant, targetIdentifier)}
	}
	if lowerPrefix != upperPrefix {
		return []string{fmt.Sprintf(lintIssueMixedRangePrefixTemplateConstant, targetIdentifier)}
	}
	if upperIndex <= lowerIndex {
		return []string{fmt.Sprintf(lintIssueDescendingRangeTemplateConstant, targetIdentifier)}
	}

	return nil
}

// splitIndexedIdentifier separates identifiers shaped like PR.AA-01 into their
// category prefix and numeric index.
func splitIndexedIdentifier(identifier string) (string, int, bool) {
	separatorIndex := strings.LastIndex(identifier, identifierIndexSeparatorConstant)
	if separatorIndex <= 0 || separatorIndex == len(identifier)-1 {
		return "", 0, false
	}

	categoryPrefix := identifier[:separatorIndex]
	numericIndex, parseError := strconv.Atoi(identifier[separatorIndex+1:])
	if parseError != nil {
		return "", 0, false
	}

	return categoryPrefix, numericIndex, true
}
