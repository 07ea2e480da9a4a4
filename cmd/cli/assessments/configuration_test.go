package assessments_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/cmd/cli/assessments"
)

func TestAssessConfigurationSanitize(t *testing.T) {
	testCases := []struct {
		name           string
		configuration  assessments.AssessConfiguration
		expectedOutput string
		expectedType   string
	}{
		{
			name:           "empty_values_default",
			configuration:  assessments.AssessConfiguration{},
			expectedOutput: "assessment.json",
			expectedType:   "full",
		},
		{
			name: "whitespace_values_default",
			configuration: assessments.AssessConfiguration{
				Output:         "   ",
				AssessmentType: "\t",
			},
			expectedOutput: "assessment.json",
			expectedType:   "full",
		},
		{
			name: "configured_values_preserved",
			configuration: assessments.AssessConfiguration{
				Output:         "findings.json",
				AssessmentType: "readiness",
			},
			expectedOutput: "findings.json",
			expectedType:   "readiness",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(subtest *testing.T) {
			sanitized := testCase.configuration.Sanitize()
			require.Equal(subtest, testCase.expectedOutput, sanitized.Output)
			require.Equal(subtest, testCase.expectedType, sanitized.AssessmentType)
		})
	}
}

func TestReportConfigurationSanitize(t *testing.T) {
	require.Equal(t, ".", assessments.ReportConfiguration{}.Sanitize().OutputDir)
	require.Equal(t, "reports", assessments.ReportConfiguration{OutputDir: "reports"}.Sanitize().OutputDir)
}

func TestDefaultConfigurationValueMaps(t *testing.T) {
	assessDefaults := assessments.DefaultAssessConfigurationValues("tools.assess")
	require.Equal(t, "assessment.json", assessDefaults["tools.assess.output"])
	require.Equal(t, "full", assessDefaults["tools.assess.type"])

	consensusDefaults := assessments.DefaultConsensusConfigurationValues("tools.consensus")
	require.Equal(t, "", consensusDefaults["tools.consensus.base_url"])
	require.Equal(t, 0, consensusDefaults["tools.consensus.timeout_seconds"])

	reportDefaults := assessments.DefaultReportConfigurationValues("tools.report")
	require.Equal(t, ".", reportDefaults["tools.report.output_dir"])

	storageDefaults := assessments.DefaultStorageConfigurationValues("tools.storage")
	require.Equal(t, "", storageDefaults["tools.storage.bucket"])
	require.Equal(t, "", storageDefaults["tools.storage.project"])
	require.Equal(t, "", storageDefaults["tools.storage.endpoint"])
}
