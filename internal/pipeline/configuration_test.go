package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/internal/pipeline"
)

const (
	flatPipelineConfigurationConstant = `
params:
  client_id: acme-corp
  framework: catalogs/soc2.yaml
  evidence_path: ./evidence
  output_dir: ./out
steps:
  - operation: assess
    with:
      assessment_type: readiness
  - operation: consensus
    with:
      wait: false
  - operation: report
  - operation: store
`
	nestedPipelineConfigurationConstant = `
pipeline:
  params:
    client_id: acme-corp
    framework: catalogs/soc2.yaml
    evidence_path: ./evidence
  steps:
    - operation: assess
`
	missingClientConfigurationConstant = `
params:
  framework: catalogs/soc2.yaml
  evidence_path: ./evidence
steps:
  - operation: assess
`
	unknownOperationConfigurationConstant = `
params:
  client_id: acme-corp
  framework: catalogs/soc2.yaml
  evidence_path: ./evidence
steps:
  - operation: publish
`
	emptyStepsConfigurationConstant = `
params:
  client_id: acme-corp
  framework: catalogs/soc2.yaml
  evidence_path: ./evidence
steps: []
`
)

func writePipelineConfiguration(testInstance *testing.T, configurationContent string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), "pipeline.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o644))
	return configurationPath
}

func TestLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		configurationContent string
		expectError          bool
		expectedStepCount    int
		expectedOutputDir    string
	}{
		{
			name:                 "flat_configuration",
			configurationContent: flatPipelineConfigurationConstant,
			expectedStepCount:    4,
			expectedOutputDir:    "./out",
		},
		{
			name:                 "nested_pipeline_configuration",
			configurationContent: nestedPipelineConfigurationConstant,
			expectedStepCount:    1,
			expectedOutputDir:    ".",
		},
		{
			name:                 "missing_client_identifier",
			configurationContent: missingClientConfigurationConstant,
			expectError:          true,
		},
		{
			name:                 "unknown_operation",
			configurationContent: unknownOperationConfigurationConstant,
			expectError:          true,
		},
		{
			name:                 "empty_steps",
			configurationContent: emptyStepsConfigurationConstant,
			expectError:          true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			configurationPath := writePipelineConfiguration(subtestInstance, testCase.configurationContent)

			loadedConfiguration, loadError := pipeline.LoadConfiguration(configurationPath)
			if testCase.expectError {
				require.Error(subtestInstance, loadError)
				return
			}

			require.NoError(subtestInstance, loadError)
			require.Len(subtestInstance, loadedConfiguration.Steps, testCase.expectedStepCount)
			require.Equal(subtestInstance, "acme-corp", loadedConfiguration.Params.ClientID)
			require.Equal(subtestInstance, testCase.expectedOutputDir, loadedConfiguration.Params.OutputDir)
		})
	}
}

func TestLoadConfigurationMissingPath(testInstance *testing.T) {
	_, loadError := pipeline.LoadConfiguration("   ")
	require.Error(testInstance, loadError)
}

func TestBuildSteps(testInstance *testing.T) {
	configurationPath := writePipelineConfiguration(testInstance, flatPipelineConfigurationConstant)
	loadedConfiguration, loadError := pipeline.LoadConfiguration(configurationPath)
	require.NoError(testInstance, loadError)

	pipelineSteps, buildError := pipeline.BuildSteps(loadedConfiguration)
	require.NoError(testInstance, buildError)
	require.Len(testInstance, pipelineSteps, 4)
	require.Equal(testInstance, pipeline.StepTypeAssess, pipelineSteps[0].Name())
	require.Equal(testInstance, pipeline.StepTypeConsensus, pipelineSteps[1].Name())
	require.Equal(testInstance, pipeline.StepTypeReport, pipelineSteps[2].Name())
	require.Equal(testInstance, pipeline.StepTypeStore, pipelineSteps[3].Name())
}
