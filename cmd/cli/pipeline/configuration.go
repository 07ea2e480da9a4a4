package pipeline

import "strings"

const (
	defaultPipelineFileConstant    = "pipeline.yaml"
	fileKeySuffixConstant          = ".file"
	dryRunKeySuffixConstant        = ".dry_run"
)

// CommandConfiguration captures configuration values for pipeline.
type CommandConfiguration struct {
	File   string `mapstructure:"file"`
	DryRun bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides default pipeline command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{File: defaultPipelineFileConstant}
}

// DefaultConfigurationValues exposes pipeline defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationPrefix + fileKeySuffixConstant:   defaults.File,
		configurationPrefix + dryRunKeySuffixConstant: defaults.DryRun,
	}
}

// Sanitize normalizes configuration values, applying defaults for empty fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if len(strings.TrimSpace(sanitized.File)) == 0 {
		sanitized.File = defaultPipelineFileConstant
	}
	return sanitized
}
