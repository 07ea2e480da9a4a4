package utils

import "context"

type commandContextKey string

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	humanReadableLoggingContextKeyConstant  = commandContextKey("humanReadableLogging")
)

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the resolved configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the resolved configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, pathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	return configurationFilePath, pathAvailable
}

// WithHumanReadableLogging records whether console logging was selected.
func (accessor CommandContextAccessor) WithHumanReadableLogging(parentContext context.Context, humanReadable bool) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, humanReadableLoggingContextKeyConstant, humanReadable)
}

// HumanReadableLogging reports whether console logging was selected.
func (accessor CommandContextAccessor) HumanReadableLogging(executionContext context.Context) bool {
	if executionContext == nil {
		return false
	}
	humanReadable, valueAvailable := executionContext.Value(humanReadableLoggingContextKeyConstant).(bool)
	return valueAvailable && humanReadable
}
