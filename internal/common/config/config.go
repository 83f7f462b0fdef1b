// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Store        StoreConfig        `mapstructure:"store"`
	Email        EmailConfig        `mapstructure:"email"`
	Redis        RedisConfig        `mapstructure:"redis"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// StoreConfig holds settings for the MongoDB reservation store.
type StoreConfig struct {
	URI                    string `mapstructure:"uri"`
	Database               string `mapstructure:"database"`
	ReservationsCollection string `mapstructure:"reservations_collection"`
	DriversCollection      string `mapstructure:"drivers_collection"`
	ConnectTimeout         int    `mapstructure:"connect_timeout"` // milliseconds
}

// EmailConfig holds settings for the transactional email provider.
type EmailConfig struct {
	Provider  string `mapstructure:"provider"` // "postmark" or "ses"
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`

	// TestRecipient is the address used by GET /test-email diagnostics.
	TestRecipient string `mapstructure:"test_recipient"`

	Postmark struct {
		ServerToken  string `mapstructure:"server_token"`
		AccountToken string `mapstructure:"account_token"`
	} `mapstructure:"postmark"`

	SES struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"ses"`
}

// RedisConfig holds settings for the optional resume-checkpoint store.
// An empty address disables checkpointing entirely.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether checkpointing is configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// SubscriptionConfig holds settings for the change subscription loop.
type SubscriptionConfig struct {
	ReconnectDelay int `mapstructure:"reconnect_delay"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
