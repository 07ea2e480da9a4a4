package mappings_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	mappingscmd "github.com/ironclad-grc/ironclad/cmd/cli/mappings"
)

func buildMapCommand(t *testing.T) (*bytes.Buffer, func(arguments ...string) error) {
	t.Helper()
	builder := mappingscmd.CommandBuilder{}
	groupCommand, buildError := builder.Build()
	require.NoError(t, buildError)

	outputBuffer := &bytes.Buffer{}
	groupCommand.SetOut(outputBuffer)
	groupCommand.SetErr(outputBuffer)

	return outputBuffer, func(arguments ...string) error {
		groupCommand.SetArgs(arguments)
		return groupCommand.Execute()
	}
}

func TestMapListCommand(t *testing.T) {
	outputBuffer, executeCommand := buildMapCommand(t)

	require.NoError(t, executeCommand("list"))
	require.Contains(t, outputBuffer.String(), "soc2 -> nist-csf")
	require.Contains(t, outputBuffer.String(), "soc2 -> hipaa")
}

func TestMapTranslateCommand(t *testing.T) {
	outputBuffer, executeCommand := buildMapCommand(t)

	require.NoError(t, executeCommand("translate", "CC6.1"))
	require.Contains(t, outputBuffer.String(), "CC6.1 -> ")
	require.Contains(t, outputBuffer.String(), "PR.AA-01..PR.AA-05")
}

func TestMapTranslateReverseCommand(t *testing.T) {
	outputBuffer, executeCommand := buildMapCommand(t)

	require.NoError(t, executeCommand("translate", "--reverse", "PR.AA-03"))
	require.Contains(t, outputBuffer.String(), "CC6.1")
}

func TestMapTranslateUnknownControl(t *testing.T) {
	_, executeCommand := buildMapCommand(t)
	require.Error(t, executeCommand("translate", "ZZ9.9"))
}

func TestMapTranslateMissingArgument(t *testing.T) {
	_, executeCommand := buildMapCommand(t)
	require.Error(t, executeCommand("translate"))
}

func TestMapLintCommandCleanTables(t *testing.T) {
	outputBuffer, executeCommand := buildMapCommand(t)

	require.NoError(t, executeCommand("lint"))
	require.Contains(t, outputBuffer.String(), "All mapping tables are consistent")
}

func TestMapLintUnknownTable(t *testing.T) {
	_, executeCommand := buildMapCommand(t)
	require.Error(t, executeCommand("lint", "--from", "soc2", "--to", "iso27001"))
}
