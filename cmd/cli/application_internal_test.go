package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	logLevelEnvironmentVariableConstant = "IRONCLAD_COMMON_LOG_LEVEL"
	debugLogLevelValueConstant          = "debug"
)

func TestNewApplicationRegistersCommands(t *testing.T) {
	application := NewApplication()

	expectedCommandNames := []string{
		"frameworks",
		"map",
		"assess",
		"consensus",
		"report",
		"store",
		"pipeline",
	}

	registeredCommandNames := make(map[string]struct{})
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames[registeredCommand.Name()] = struct{}{}
	}

	for _, expectedCommandName := range expectedCommandNames {
		require.Contains(t, registeredCommandNames, expectedCommandName)
	}
}

func TestInitializeConfigurationAppliesEmbeddedDefaults(t *testing.T) {
	application := NewApplication()
	application.rootCommand.SetContext(context.Background())

	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	require.Equal(t, "info", application.configuration.Common.LogLevel)
	require.Equal(t, "structured", application.configuration.Common.LogFormat)
	require.Equal(t, "assessment.json", application.configuration.Tools.Assess.Output)
	require.Equal(t, "framework_updates.json", application.configuration.Tools.Updates.Output)
	require.Equal(t, "pipeline.yaml", application.configuration.Tools.Pipeline.File)
}

func TestInitializeConfigurationHonorsEnvironmentOverride(t *testing.T) {
	t.Setenv(logLevelEnvironmentVariableConstant, debugLogLevelValueConstant)

	application := NewApplication()
	application.rootCommand.SetContext(context.Background())

	require.NoError(t, application.initializeConfiguration(application.rootCommand))
	require.Equal(t, debugLogLevelValueConstant, application.configuration.Common.LogLevel)
}

func TestInitializeConfigurationHonorsFlagOverride(t *testing.T) {
	application := NewApplication()
	application.rootCommand.SetContext(context.Background())

	require.NoError(t, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "console"))

	require.NoError(t, application.initializeConfiguration(application.rootCommand))
	require.Equal(t, "console", application.configuration.Common.LogFormat)
	require.True(t, application.humanReadableLoggingEnabled())
}

func TestApplicationExecuteHelp(t *testing.T) {
	application := NewApplication()
	application.rootCommand.SetArgs([]string{"--help"})

	require.NoError(t, application.Execute())
}
