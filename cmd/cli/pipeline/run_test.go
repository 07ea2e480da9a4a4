package pipeline_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pipelinecmd "github.com/ironclad-grc/ironclad/cmd/cli/pipeline"
)

const pipelineFileTemplateConstant = `
pipeline:
  params:
    client_id: acme-corp
    framework: %s
    evidence_path: %s
  steps:
    - operation: assess
    - operation: consensus
    - operation: report
    - operation: store
`

func writePipelineFixture(t *testing.T) string {
	t.Helper()

	fixtureDirectory := t.TempDir()
	catalogPath := filepath.Join(fixtureDirectory, "soc2.yaml")
	catalogContent := `
framework:
  id: soc2
  name: SOC 2 Trust Service Criteria
  version: "2017"
controls:
  - id: CC6.1
    name: Logical Access Security
    common_evidence:
      - access control policy
`
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogContent), 0o644))

	evidenceDirectory := filepath.Join(fixtureDirectory, "evidence")
	require.NoError(t, os.Mkdir(evidenceDirectory, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(evidenceDirectory, "policy.txt"), []byte("access control policy"), 0o644))

	pipelineFilePath := filepath.Join(fixtureDirectory, "pipeline.yaml")
	pipelineContent := fmt.Sprintf(pipelineFileTemplateConstant, catalogPath, evidenceDirectory)
	require.NoError(t, os.WriteFile(pipelineFilePath, []byte(pipelineContent), 0o644))

	return pipelineFilePath
}

func buildPipelineCommand(t *testing.T) (*bytes.Buffer, func(arguments ...string) error) {
	t.Helper()

	builder := pipelinecmd.CommandBuilder{}
	pipelineCommand, buildError := builder.Build()
	require.NoError(t, buildError)

	outputBuffer := &bytes.Buffer{}
	pipelineCommand.SetOut(outputBuffer)
	pipelineCommand.SetErr(outputBuffer)

	return outputBuffer, func(arguments ...string) error {
		pipelineCommand.SetArgs(arguments)
		return pipelineCommand.Execute()
	}
}

func TestPipelineCommandDryRun(t *testing.T) {
	t.Setenv("GCS_BUCKET", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	pipelineFilePath := writePipelineFixture(t)

	_, executeCommand := buildPipelineCommand(t)
	require.NoError(t, executeCommand(pipelineFilePath, "--dry-run"))
}

func TestPipelineCommandMissingFile(t *testing.T) {
	_, executeCommand := buildPipelineCommand(t)

	executionError := executeCommand(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "unable to load pipeline configuration")
}

func TestPipelineCommandRejectsUnknownOperation(t *testing.T) {
	pipelineFilePath := filepath.Join(t.TempDir(), "pipeline.yaml")
	pipelineContent := `
params:
  client_id: acme-corp
  framework: soc2.yaml
  evidence_path: evidence
steps:
  - operation: publish
`
	require.NoError(t, os.WriteFile(pipelineFilePath, []byte(pipelineContent), 0o644))

	_, executeCommand := buildPipelineCommand(t)

	executionError := executeCommand(pipelineFilePath)
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "unsupported pipeline operation")
}
