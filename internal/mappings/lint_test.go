package mappings_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/internal/mappings"
)

const (
	lintSubtestNameTemplateConstant        = "%d_%s"
	testCaseDuplicateSourceNameConstant    = "duplicate_source_detected"
	testCaseEmptyTargetNameConstant        = "empty_target_detected"
	testCaseMalformedTargetNameConstant    = "malformed_target_detected"
	testCaseMalformedRangeNameConstant     = "malformed_range_detected"
	testCaseDescendingRangeNameConstant    = "descending_range_detected"
	testCaseCrossCategoryRangeNameConstant = "cross_category_range_detected"
	testCaseCleanTableNameConstant         = "clean_table_passes"
)

func lintFixtureTable(tableMappings []mappings.ControlMapping) mappings.MappingTable {
	return mappings.MappingTable{
		SourceFramework: soc2FrameworkNameConstant,
		TargetFramework: nistFrameworkNameConstant,
		Mappings:        tableMappings,
	}
}

func TestLint(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		table                mappings.MappingTable
		expectedFindingCount int
	}{
		{
			name: testCaseDuplicateSourceNameConstant,
			table: lintFixtureTable([]mappings.ControlMapping{
				{SourceControlID: "CC6.1", TargetControlID: "PR.AA-01"},
				{SourceControlID: "CC6.1", TargetControlID: "PR.AA-02"},
			}),
			expectedFindingCount: 1,
		},
		{
			name: testCaseEmptyTargetNameConstant,
			table: lintFixtureTable([]mappings.ControlMapping{
				{SourceControlID: "CC6.1", TargetControlID: "   "},
			}),
			expectedFindingCount: 1,
		},
		{
			name: testCaseMalformedTargetNameConstant,
			table: lintFixtureTable([]mappings.ControlMapping{
				{SourceControlID: "CC6.1", TargetControlID: "PRAA01"},
			}),
			expectedFindingCount: 1,
		},
		{
			name: testCaseMalformedRangeNameConstant,
			table: lintFixtureTable([]mappings.ControlMapping{
				{SourceControlID: "CC6.1", TargetControlID: "PR.AA-01..broken"},
			}),
			expectedFindingCount: 1,
		},
		{
			name: testCaseDescendingRangeNameConstant,
			table: lintFixtureTable([]mappings.ControlMapping{
				{SourceControlID: "CC6.1", TargetControlID: "PR.AA-05..PR.AA-01"},
			}),
			expectedFindingCount: 1,
		},
		{
			name: testCaseCrossCategoryRangeNameConstant,
			table: lintFixtureTable([]mappings.ControlMapping{
				{SourceControlID: "CC6.1", TargetControlID: "PR.AA-01..PR.DS-05"},
			}),
			expectedFindingCount: 1,
		},
		{
			name: testCaseCleanTableNameConstant,
			table: lintFixtureTable([]mappings.ControlMapping{
				{SourceControlID: "CC6.1", TargetControlID: "PR.AA-01..PR.AA-05"},
				{SourceControlID: "CC6.7", TargetControlID: "PR.DS-01,PR.DS-02"},
			}),
			expectedFindingCount: 0,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(lintSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			lintFindings := mappings.Lint(testCase.table)
			require.Len(subtestInstance, lintFindings, testCase.expectedFindingCount)
			for _, lintFinding := range lintFindings {
				require.Equal(subtestInstance, soc2FrameworkNameConstant, lintFinding.SourceFramework)
				require.NotEmpty(subtestInstance, lintFinding.Issue)
			}
		})
	}
}

// The shipped tables are the product's authoritative cross-reference data; they
// must always lint clean.
func TestLintAllShippedTables(testInstance *testing.T) {
	lintFindings := mappings.LintAll()
	require.Empty(testInstance, lintFindings)
}
