// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "driverpro-notifier/internal/common/errors"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like STORE_URI, EMAIL_POSTMARK_SERVER_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location where one exists.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from well-known env vars when the
// config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Store.URI == "" {
		if val := os.Getenv("MONGODB_URI"); val != "" {
			cfg.Store.URI = val
		}
	}
	if cfg.Store.Database == "" {
		if val := os.Getenv("MONGODB_DATABASE"); val != "" {
			cfg.Store.Database = val
		}
	}

	if cfg.Email.Postmark.ServerToken == "" {
		if val := os.Getenv("POSTMARK_SERVER_TOKEN"); val != "" {
			cfg.Email.Postmark.ServerToken = val
		}
	}
	if cfg.Email.Postmark.AccountToken == "" {
		if val := os.Getenv("POSTMARK_ACCOUNT_TOKEN"); val != "" {
			cfg.Email.Postmark.AccountToken = val
		}
	}
	if cfg.Email.FromEmail == "" {
		if val := os.Getenv("EMAIL_FROM_ADDRESS"); val != "" {
			cfg.Email.FromEmail = val
		}
	}
	if cfg.Email.TestRecipient == "" {
		if val := os.Getenv("EMAIL_TEST_RECIPIENT"); val != "" {
			cfg.Email.TestRecipient = val
		}
	}

	if cfg.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Redis.Address = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "driverpro-notifier"
	}

	if cfg.Store.ReservationsCollection == "" {
		cfg.Store.ReservationsCollection = "reservations"
	}
	if cfg.Store.DriversCollection == "" {
		cfg.Store.DriversCollection = "drivers"
	}
	if cfg.Store.ConnectTimeout == 0 {
		cfg.Store.ConnectTimeout = 10000
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "postmark"
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "DriverPro Notifications"
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}

	if cfg.Subscription.ReconnectDelay == 0 {
		cfg.Subscription.ReconnectDelay = 5000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Store.URI == "" {
		return apperrors.NewConfigMissingError("store.uri")
	}
	if cfg.Store.Database == "" {
		return apperrors.NewConfigMissingError("store.database")
	}

	if cfg.Email.FromEmail == "" {
		return apperrors.NewConfigMissingError("email.from_email")
	}

	switch cfg.Email.Provider {
	case "postmark":
		if cfg.Email.Postmark.ServerToken == "" {
			return apperrors.NewConfigMissingError("email.postmark.server_token")
		}
	case "ses":
		if cfg.Email.SES.Region == "" {
			return apperrors.NewConfigMissingError("email.ses.region")
		}
	default:
		return apperrors.NewConfigMissingError("email.provider")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
