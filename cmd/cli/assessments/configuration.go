package assessments

import "strings"

const (
	defaultAssessmentOutputPathConstant = "assessment.json"
	defaultAssessmentTypeConstant       = "full"
	defaultReportOutputDirectoryConstant = "."
	outputKeySuffixConstant             = ".output"
	typeKeySuffixConstant               = ".type"
	baseURLKeySuffixConstant            = ".base_url"
	timeoutKeySuffixConstant            = ".timeout_seconds"
	outputDirKeySuffixConstant          = ".output_dir"
	bucketKeySuffixConstant             = ".bucket"
	projectKeySuffixConstant            = ".project"
	endpointKeySuffixConstant           = ".endpoint"
)

// AssessConfiguration captures configuration values for assess.
type AssessConfiguration struct {
	Output         string `mapstructure:"output"`
	AssessmentType string `mapstructure:"type"`
}

// ConsensusConfiguration captures configuration values for consensus submission.
type ConsensusConfiguration struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ReportConfiguration captures configuration values for report rendering.
type ReportConfiguration struct {
	OutputDir string `mapstructure:"output_dir"`
}

// StorageConfiguration captures configuration values for result persistence.
type StorageConfiguration struct {
	Bucket   string `mapstructure:"bucket"`
	Project  string `mapstructure:"project"`
	Endpoint string `mapstructure:"endpoint"`
}

// DefaultAssessConfiguration provides default assess settings.
func DefaultAssessConfiguration() AssessConfiguration {
	return AssessConfiguration{
		Output:         defaultAssessmentOutputPathConstant,
		AssessmentType: defaultAssessmentTypeConstant,
	}
}

// DefaultReportConfiguration provides default report settings.
func DefaultReportConfiguration() ReportConfiguration {
	return ReportConfiguration{OutputDir: defaultReportOutputDirectoryConstant}
}

// DefaultAssessConfigurationValues exposes assess defaults keyed beneath the provided prefix.
func DefaultAssessConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultAssessConfiguration()
	return map[string]any{
		configurationPrefix + outputKeySuffixConstant: defaults.Output,
		configurationPrefix + typeKeySuffixConstant:   defaults.AssessmentType,
	}
}

// DefaultConsensusConfigurationValues exposes consensus defaults keyed beneath the provided prefix.
func DefaultConsensusConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + baseURLKeySuffixConstant: "",
		configurationPrefix + timeoutKeySuffixConstant: 0,
	}
}

// DefaultReportConfigurationValues exposes report defaults keyed beneath the provided prefix.
func DefaultReportConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultReportConfiguration()
	return map[string]any{
		configurationPrefix + outputDirKeySuffixConstant: defaults.OutputDir,
	}
}

// DefaultStorageConfigurationValues exposes storage defaults keyed beneath the provided prefix.
func DefaultStorageConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + bucketKeySuffixConstant:   "",
		configurationPrefix + projectKeySuffixConstant:  "",
		configurationPrefix + endpointKeySuffixConstant: "",
	}
}

// Sanitize normalizes assess configuration values.
func (configuration AssessConfiguration) Sanitize() AssessConfiguration {
	sanitized := configuration
	if len(strings.TrimSpace(sanitized.Output)) == 0 {
		sanitized.Output = defaultAssessmentOutputPathConstant
	}
	if len(strings.TrimSpace(sanitized.AssessmentType)) == 0 {
		sanitized.AssessmentType = defaultAssessmentTypeConstant
	}
	return sanitized
}

// Sanitize normalizes report configuration values.
func (configuration ReportConfiguration) Sanitize() ReportConfiguration {
	sanitized := configuration
	if len(strings.TrimSpace(sanitized.OutputDir)) == 0 {
		sanitized.OutputDir = defaultReportOutputDirectoryConstant
	}
	return sanitized
}
