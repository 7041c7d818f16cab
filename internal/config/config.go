package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Billing   BillingConfig   `yaml:"billing"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// GatewayConfig contains the WhatsApp gateway settings
type GatewayConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// EmailConfig contains SendGrid settings for admin alerts
type EmailConfig struct {
	SendGridKey string `yaml:"sendgrid_key"`
	From        string `yaml:"from"`
	FromName    string `yaml:"from_name"`
	AdminEmail  string `yaml:"admin_email"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BillingConfig contains settlement tuning knobs
type BillingConfig struct {
	// SettledThresholdCents is the absolute balance at or under which a
	// group counts as settled.
	SettledThresholdCents int64 `yaml:"settled_threshold_cents"`
	// TentMergePolicy is "sum" or "min"; how tent counts combine when
	// duplicate stays are fused.
	TentMergePolicy string `yaml:"tent_merge_policy"`
	// SelectionTTLMinutes is how long buffered parcel selections survive
	// before the expiry job clears them.
	SelectionTTLMinutes int `yaml:"selection_ttl_minutes"`
}

// SchedulerConfig contains cron expressions for the background jobs
type SchedulerConfig struct {
	ExpireParcelSelections string `yaml:"expire_parcel_selections"`
	SendDebtorReminders    string `yaml:"send_debtor_reminders"`
	FlagOverdueStays       string `yaml:"flag_overdue_stays"`
	DailyCashSummary       string `yaml:"daily_cash_summary"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Gateway
	if val := os.Getenv("GATEWAY_URL"); val != "" {
		c.Gateway.URL = val
	}
	if val := os.Getenv("GATEWAY_TOKEN"); val != "" {
		c.Gateway.Token = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Email.AdminEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Billing
	if val := os.Getenv("BILLING_THRESHOLD_CENTS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Billing.SettledThresholdCents)
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 12 * 60 // one shift
	}

	// Billing defaults
	if c.Billing.SettledThresholdCents == 0 {
		c.Billing.SettledThresholdCents = 1000 // Default $10.00
	}
	switch c.Billing.TentMergePolicy {
	case "":
		c.Billing.TentMergePolicy = "sum"
	case "sum", "min":
	default:
		return fmt.Errorf("invalid tent merge policy: %q", c.Billing.TentMergePolicy)
	}
	if c.Billing.SelectionTTLMinutes <= 0 {
		c.Billing.SelectionTTLMinutes = 120
	}

	// Scheduler defaults
	if c.Scheduler.ExpireParcelSelections == "" {
		c.Scheduler.ExpireParcelSelections = "0 */15 * * * *" // Every 15 minutes
	}
	if c.Scheduler.SendDebtorReminders == "" {
		c.Scheduler.SendDebtorReminders = "0 0 10 * * *" // 10 AM daily
	}
	if c.Scheduler.FlagOverdueStays == "" {
		c.Scheduler.FlagOverdueStays = "0 0 12 * * *" // Noon daily
	}
	if c.Scheduler.DailyCashSummary == "" {
		c.Scheduler.DailyCashSummary = "0 30 23 * * *" // End of the evening shift
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
