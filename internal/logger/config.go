package logger

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration.
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// LoggingConfig wraps the Config for YAML parsing.
type LoggingConfig struct {
	Logging Config `yaml:"logging"`
}

// LoadConfig loads logging configuration from a YAML file and applies
// environment variable overrides. Missing or unparsable files fall
// back to the defaults.
func LoadConfig(configPath string) (Config, error) {
	config := Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/gridkit.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			var loaded LoggingConfig
			if err := yaml.Unmarshal(data, &loaded); err == nil {
				if loaded.Logging.Level != "" {
					config.Level = loaded.Logging.Level
				}
				config.ConsoleEnabled = loaded.Logging.ConsoleEnabled
				if loaded.Logging.ConsoleFormat != "" {
					config.ConsoleFormat = loaded.Logging.ConsoleFormat
				}
				config.FileEnabled = loaded.Logging.FileEnabled
				if loaded.Logging.FilePath != "" {
					config.FilePath = loaded.Logging.FilePath
				}
				if loaded.Logging.FileFormat != "" {
					config.FileFormat = loaded.Logging.FileFormat
				}
				if loaded.Logging.FileMaxSizeMB > 0 {
					config.FileMaxSizeMB = loaded.Logging.FileMaxSizeMB
				}
				if loaded.Logging.FileMaxBackups > 0 {
					config.FileMaxBackups = loaded.Logging.FileMaxBackups
				}
				if loaded.Logging.FileMaxAgeDays > 0 {
					config.FileMaxAgeDays = loaded.Logging.FileMaxAgeDays
				}
			}
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Level = logLevel
	}
	if consoleFormat := os.Getenv("LOG_CONSOLE_FORMAT"); consoleFormat != "" {
		config.ConsoleFormat = consoleFormat
	}
	if fileEnabled := os.Getenv("LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			config.FileEnabled = enabled
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		config.FilePath = filePath
	}

	return config, nil
}
