package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Path        string `mapstructure:"path"`
	LogMode     bool   `mapstructure:"log_mode"`
	BusyTimeout int    `mapstructure:"busy_timeout_ms"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ReportConfig selects which periods each report surface accepts.
type ReportConfig struct {
	BasicPeriods   []string `mapstructure:"basic_periods"`
	PremiumPeriods []string `mapstructure:"premium_periods"`
}

type StorageConfig struct {
	Driver          string        `mapstructure:"driver"` // local / gcs
	LocalDir        string        `mapstructure:"local_dir"`
	Bucket          string        `mapstructure:"bucket"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	URLTTL          time.Duration `mapstructure:"url_ttl"`
}

type PaymentConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	APIVersion   string `mapstructure:"api_version"`
	PremiumPrice string `mapstructure:"premium_price"`
	Currency     string `mapstructure:"currency"`

	// ReturnURL may contain {order_id}, replaced per order.
	ReturnURL     string `mapstructure:"return_url"`
	CustomerPhone string `mapstructure:"customer_phone"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Report   ReportConfig   `mapstructure:"report"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Mail     MailConfig     `mapstructure:"mail"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:3000")

	v.SetDefault("database.path", "./data/expense.db")
	v.SetDefault("database.busy_timeout_ms", 5000)

	v.SetDefault("jwt.issuer", "expense-tracker")
	v.SetDefault("jwt.expire_hours", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("report.basic_periods", []string{"daily", "monthly", "yearly"})
	v.SetDefault("report.premium_periods", []string{"daily", "weekly", "monthly"})

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./data/exports")
	v.SetDefault("storage.url_ttl", time.Hour)

	v.SetDefault("payment.base_url", "https://sandbox.cashfree.com")
	v.SetDefault("payment.api_version", "2022-09-01")
	v.SetDefault("payment.premium_price", "499")
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.customer_phone", "9999999999")

	v.SetDefault("mail.port", 587)

	v.SetDefault("amqp.exchange", "expense-tracker")
	v.SetDefault("amqp.queue", "payment_notifications")
}

// Load reads configuration from the given file path (e.g. "config.yaml").
// A missing file is not an error when path is empty; defaults and
// environment variables (ET_SERVER_PORT=9000, ...) still apply.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("ET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Storage.Driver {
	case "local":
	case "gcs":
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for the gcs driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
