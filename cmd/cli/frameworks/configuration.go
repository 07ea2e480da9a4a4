package frameworks

import (
	"strings"
	"time"
)

const (
	defaultUpdatesOutputPathConstant     = "framework_updates.json"
	defaultUpdatesIntervalConstant       = 24 * time.Hour
	outputConfigurationKeySuffixConstant = ".output"
	intervalConfigurationKeySuffixConstant = ".interval"
)

// CheckUpdatesConfiguration captures configuration values for check-updates.
type CheckUpdatesConfiguration struct {
	Output   string `mapstructure:"output"`
	Interval string `mapstructure:"interval"`
}

// DefaultCheckUpdatesConfiguration provides default check-updates settings.
func DefaultCheckUpdatesConfiguration() CheckUpdatesConfiguration {
	return CheckUpdatesConfiguration{
		Output:   defaultUpdatesOutputPathConstant,
		Interval: defaultUpdatesIntervalConstant.String(),
	}
}

// DefaultConfigurationValues exposes check-updates defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCheckUpdatesConfiguration()
	return map[string]any{
		configurationPrefix + outputConfigurationKeySuffixConstant:   defaults.Output,
		configurationPrefix + intervalConfigurationKeySuffixConstant: defaults.Interval,
	}
}

// Sanitize normalizes configuration values, applying defaults for empty fields.
func (configuration CheckUpdatesConfiguration) Sanitize() CheckUpdatesConfiguration {
	sanitized := configuration
	if len(strings.TrimSpace(sanitized.Output)) == 0 {
		sanitized.Output = defaultUpdatesOutputPathConstant
	}
	if len(strings.TrimSpace(sanitized.Interval)) == 0 {
		sanitized.Interval = defaultUpdatesIntervalConstant.String()
	}
	return sanitized
}

// ResolveInterval parses the configured interval, falling back to the default on malformed values.
func (configuration CheckUpdatesConfiguration) ResolveInterval() time.Duration {
	parsedInterval, parseError := time.ParseDuration(strings.TrimSpace(configuration.Interval))
	if parseError != nil || parsedInterval <= 0 {
		return defaultUpdatesIntervalConstant
	}
	return parsedInterval
}
