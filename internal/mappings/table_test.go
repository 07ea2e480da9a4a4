package mappings_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/internal/mappings"
)

const (
	soc2FrameworkNameConstant               = "soc2"
	nistFrameworkNameConstant               = "nist-csf"
	hipaaFrameworkNameConstant              = "hipaa"
	unknownFrameworkNameConstant            = "iso-27001"
	expectedBuiltinTableCountConstant       = 2
	translateSubtestNameTemplateConstant    = "%d_%s"
	testCaseSingleTargetNameConstant        = "single_target_translates"
	testCaseRangeTargetNameConstant         = "range_target_translates"
	testCaseMultiTargetNameConstant         = "multi_target_translates"
	testCaseHIPAATargetNameConstant         = "hipaa_target_translates"
	testCaseUnmappedControlNameConstant     = "unmapped_control_rejected"
	logicalAccessControlIdentifierConstant  = "CC6.1"
	monitoringControlIdentifierConstant     = "CC7.1"
	encryptionControlIdentifierConstant     = "CC6.7"
	unmappedControlIdentifierConstant       = "CC99.9"
	expectedMonitoringTargetConstant        = "DE.CM-01"
	expectedAccessRangeTargetConstant       = "PR.AA-01..PR.AA-05"
	expectedHIPAAAccessTargetConstant       = "§164.312(a)(1)"
	reverseLookupTargetIdentifierConstant   = "PR.AA-03"
	reverseLookupListTargetConstant         = "PR.DS-02"
	expectedReverseLookupSourceConstant     = "CC6.1"
	expectedListReverseLookupSourceConstant = "CC6.7"
)

func TestBuiltinTables(testInstance *testing.T) {
	builtinTables := mappings.BuiltinTables()
	require.Len(testInstance, builtinTables, expectedBuiltinTableCountConstant)
	for _, shippedTable := range builtinTables {
		require.Equal(testInstance, soc2FrameworkNameConstant, shippedTable.SourceFramework)
		require.NotEmpty(testInstance, shippedTable.Mappings)
	}
}

func TestTableForUnknownDirection(testInstance *testing.T) {
	_, tableError := mappings.TableFor(soc2FrameworkNameConstant, unknownFrameworkNameConstant)
	require.Error(testInstance, tableError)
	require.IsType(testInstance, mappings.UnknownTableError{}, tableError)

	_, reversedError := mappings.TableFor(nistFrameworkNameConstant, soc2FrameworkNameConstant)
	require.Error(testInstance, reversedError)
}

func TestTranslate(testInstance *testing.T) {
	testCases := []struct {
		name            string
		targetFramework string
		sourceControlID string
		expectedTargets []string
		expectFailure   bool
	}{
		{
			name:            testCaseSingleTargetNameConstant,
			targetFramework: nistFrameworkNameConstant,
			sourceControlID: monitoringControlIdentifierConstant,
			expectedTargets: []string{expectedMonitoringTargetConstant},
		},
		{
			name:            testCaseRangeTargetNameConstant,
			targetFramework: nistFrameworkNameConstant,
			sourceControlID: logicalAccessControlIdentifierConstant,
			expectedTargets: []string{expectedAccessRangeTargetConstant},
		},
		{
			name:            testCaseMultiTargetNameConstant,
			targetFramework: nistFrameworkNameConstant,
			sourceControlID: encryptionControlIdentifierConstant,
			expectedTargets: []string{"PR.DS-01", "PR.DS-02"},
		},
		{
			name:            testCaseHIPAATargetNameConstant,
			targetFramework: hipaaFrameworkNameConstant,
			sourceControlID: logicalAccessControlIdentifierConstant,
			expectedTargets: []string{expectedHIPAAAccessTargetConstant},
		},
		{
			name:            testCaseUnmappedControlNameConstant,
			targetFramework: nistFrameworkNameConstant,
			sourceControlID: unmappedControlIdentifierConstant,
			expectFailure:   true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(translateSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			translatedTargets, translateError := mappings.Translate(soc2FrameworkNameConstant, testCase.targetFramework, testCase.sourceControlID)
			if testCase.expectFailure {
				require.Error(subtestInstance, translateError)
				require.IsType(subtestInstance, mappings.UnmappedControlError{}, translateError)
				return
			}
			require.NoError(subtestInstance, translateError)
			require.Equal(subtestInstance, testCase.expectedTargets, translatedTargets)
		})
	}
}

func TestReverseLookup(testInstance *testing.T) {
	rangeMatches, rangeLookupError := mappings.ReverseLookup(soc2FrameworkNameConstant, nistFrameworkNameConstant, reverseLookupTargetIdentifierConstant)
	require.NoError(testInstance, rangeLookupError)
	require.Contains(testInstance, rangeMatches, expectedReverseLookupSourceConstant)

	listMatches, listLookupError := mappings.ReverseLookup(soc2FrameworkNameConstant, nistFrameworkNameConstant, reverseLookupListTargetConstant)
	require.NoError(testInstance, listLookupError)
	require.Contains(testInstance, listMatches, expectedListReverseLookupSourceConstant)

	_, missingLookupError := mappings.ReverseLookup(soc2FrameworkNameConstant, nistFrameworkNameConstant, "ZZ.ZZ-99")
	require.Error(testInstance, missingLookupError)
}
