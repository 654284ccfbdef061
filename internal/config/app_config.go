package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/repomap/repomap/internal/utils"
)

// FileConfiguration holds overrides read from a .repomap.yaml file.
// Pointer fields distinguish "unset" from an explicit false.
type FileConfiguration struct {
	Output  string               `mapstructure:"output"`
	Backup  *bool                `mapstructure:"backup"`
	Commit  *bool                `mapstructure:"commit"`
	Exclude ExcludeConfiguration `mapstructure:"exclude"`
}

// ExcludeConfiguration extends the compiled-in exclusion sets.
type ExcludeConfiguration struct {
	Files       []string `mapstructure:"files"`
	Directories []string `mapstructure:"directories"`
}

// LoadFileConfiguration reads the configuration file for the run. When
// explicitFilePath is empty the file is looked up as ConfigFileName inside
// workingDirectory; a missing file yields an empty configuration.
func LoadFileConfiguration(workingDirectory string, explicitFilePath string) (FileConfiguration, error) {
	configurationPath := explicitFilePath
	if configurationPath == "" {
		configurationPath = filepath.Join(workingDirectory, ConfigFileName)
	} else if !filepath.IsAbs(configurationPath) {
		configurationPath = filepath.Join(workingDirectory, configurationPath)
	}

	pathInfo, statError := os.Stat(configurationPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			if explicitFilePath != "" {
				return FileConfiguration{}, fmt.Errorf("configuration file %s does not exist", configurationPath)
			}
			return FileConfiguration{}, nil
		}
		return FileConfiguration{}, fmt.Errorf("stat configuration %s: %w", configurationPath, statError)
	}
	if pathInfo.IsDir() {
		return FileConfiguration{}, fmt.Errorf("configuration path %s is a directory", configurationPath)
	}

	reader := viper.New()
	reader.SetConfigFile(configurationPath)
	if readError := reader.ReadInConfig(); readError != nil {
		return FileConfiguration{}, fmt.Errorf("read configuration from %s: %w", configurationPath, readError)
	}
	var configuration FileConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return FileConfiguration{}, fmt.Errorf("decode configuration from %s: %w", configurationPath, decodeError)
	}
	return configuration, nil
}

// Apply overlays the file configuration onto settings and returns the merged
// value. Exclusion lists extend the defaults; the output name replaces it.
func (configuration FileConfiguration) Apply(settings Settings) Settings {
	result := settings
	if configuration.Output != "" {
		result.OutputFileName = configuration.Output
	}
	if len(configuration.Exclude.Files) > 0 {
		result.ExcludedFilePatterns = utils.DeduplicatePatterns(
			append(append([]string{}, result.ExcludedFilePatterns...), configuration.Exclude.Files...))
	}
	if len(configuration.Exclude.Directories) > 0 {
		result.ExcludedDirectoryPatterns = utils.DeduplicatePatterns(
			append(append([]string{}, result.ExcludedDirectoryPatterns...), configuration.Exclude.Directories...))
	}
	return result
}

// BackupEnabled resolves the backup default: the flag value wins unless the
// configuration file set one and the flag was left at its default.
func (configuration FileConfiguration) BackupEnabled(flagValue bool, flagChanged bool) bool {
	if !flagChanged && configuration.Backup != nil {
		return *configuration.Backup
	}
	return flagValue
}

// CommitEnabled resolves the commit default analogously to BackupEnabled.
func (configuration FileConfiguration) CommitEnabled(flagValue bool, flagChanged bool) bool {
	if !flagChanged && configuration.Commit != nil {
		return *configuration.Commit
	}
	return flagValue
}
