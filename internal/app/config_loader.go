package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	// Set up viper
	v := viper.New()
	v.SetConfigType("yaml")

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.tunefetch")
		v.AddConfigPath("/etc/tunefetch")
	}

	// Read environment variables
	v.SetEnvPrefix("TUNEFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in paths
	config = expandPaths(config)

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Resolve.YouTubeCookies = expandPath(config.Resolve.YouTubeCookies)
	config.Pipeline.WorkDir = expandPath(config.Pipeline.WorkDir)
	config.Pipeline.CompletedDir = expandPath(config.Pipeline.CompletedDir)
	config.Journal.DatabasePath = expandPath(config.Journal.DatabasePath)
	config.Logging.EventsDir = expandPath(config.Logging.EventsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	// Expand environment variables
	path = os.ExpandEnv(path)

	// Expand home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if err := config.Resolve.Order().Validate(); err != nil {
		return err
	}

	if config.Resolve.SearchLimit < 1 {
		return fmt.Errorf("search limit must be at least 1")
	}

	if config.Resolve.AdapterTimeout <= 0 {
		return fmt.Errorf("adapter timeout must be positive")
	}

	if config.Pipeline.WorkDir == "" {
		return fmt.Errorf("pipeline work directory not configured")
	}

	if config.Pipeline.CompletedDir == "" {
		return fmt.Errorf("pipeline completed directory not configured")
	}

	if config.Pipeline.AudioFormat == "" {
		return fmt.Errorf("audio format not configured")
	}

	if config.Journal.DatabasePath == "" {
		return fmt.Errorf("journal database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
