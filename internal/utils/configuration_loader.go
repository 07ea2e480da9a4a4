package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant           = "."
	environmentKeySeparatorConstant             = "_"
	userConfigurationDirectoryNameConstant      = ".ironclad"
	configurationReadErrorTemplateConstant      = "failed to read configuration: %w"
	configurationDecodeErrorTemplateConstant    = "failed to decode configuration: %w"
	embeddedConfigurationErrorTemplateConstant  = "failed to merge embedded configuration: %w"
	workingDirectorySearchPathDefaultConstant   = "."
)

// ConfigurationLoader resolves CLI configuration from embedded defaults, configuration files, and environment variables.
type ConfigurationLoader struct {
	configurationName     string
	configurationType     string
	environmentPrefix     string
	embeddedConfiguration []byte
}

// LoadedConfiguration reports metadata about a completed load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader constructs a loader for the named configuration file type and environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
	}
}

// SetEmbeddedConfiguration registers embedded configuration content merged beneath user-provided files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationContent []byte) {
	if loader == nil {
		return
	}
	duplicatedContent := make([]byte, len(configurationContent))
	copy(duplicatedContent, configurationContent)
	loader.embeddedConfiguration = duplicatedContent
}

// SearchPaths lists the directories consulted when no explicit configuration file is provided.
func (loader *ConfigurationLoader) SearchPaths() []string {
	searchPaths := []string{workingDirectorySearchPathDefaultConstant}
	if homeDirectory, homeDirectoryError := os.UserHomeDir(); homeDirectoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}

// Load populates target using embedded defaults, default values, configuration files, and environment overrides.
func (loader *ConfigurationLoader) Load(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationErrorTemplateConstant, mergeError)
		}
	}

	for _, searchPath := range loader.SearchPaths() {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(strings.TrimSpace(configurationFilePath)) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		if _, configurationMissing := readError.(viper.ConfigFileNotFoundError); !configurationMissing {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	if decodeError := viperInstance.Unmarshal(target); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
