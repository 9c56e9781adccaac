package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-this-secret-in-production"

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Email        EmailConfig
	Report       ReportConfig
	Redis        RedisConfig
	Printer      PrinterConfig
	OAuth        OAuthConfig
	Housekeeping HousekeepingConfig
}

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	Debug     bool
	Timezone  string
	LogLevel  string
	LogFormat string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	UseTLS       bool
	FromEmail    string
	FromName     string
}

type ReportConfig struct {
	PollInterval      time.Duration
	Debounce          time.Duration
	Dir               string
	XLSXEnabled       bool
	FallbackRecipient string
	CurrencySymbol    string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	CharWidth int
}

type HousekeepingConfig struct {
	Schedule       string
	IdempotencyTTL time.Duration
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendSuccessURL string
	FrontendErrorURL   string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "restopos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "restopos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "restopos-api")
	viper.SetDefault("JWT_ACCESS_EXPIRY_MINUTES", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY_DAYS", 7)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USE_TLS", true)
	viper.SetDefault("SMTP_FROM_EMAIL", "noreply@restaurant.com")
	viper.SetDefault("SMTP_FROM_NAME", "RestoPOS")
	viper.SetDefault("REPORT_POLL_SECONDS", 30)
	viper.SetDefault("REPORT_DEBOUNCE_MINUTES", 60)
	viper.SetDefault("REPORT_DIR", "./reports")
	viper.SetDefault("REPORT_XLSX_ENABLED", false)
	viper.SetDefault("REPORT_FALLBACK_RECIPIENT", "admin@restaurant.com")
	viper.SetDefault("REPORT_CURRENCY_SYMBOL", "₹")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_CHAR_WIDTH", 32)
	viper.SetDefault("HOUSEKEEPING_CRON", "@every 1h")
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback")
	viper.SetDefault("FRONTEND_OAUTH_SUCCESS_URL", "http://localhost:3000/auth/callback")
	viper.SetDefault("FRONTEND_OAUTH_ERROR_URL", "http://localhost:3000/login")

	return &Config{
		App: AppConfig{
			Name:      viper.GetString("APP_NAME"),
			Env:       viper.GetString("APP_ENV"),
			Port:      viper.GetString("APP_PORT"),
			Debug:     viper.GetBool("APP_DEBUG"),
			Timezone:  viper.GetString("APP_TIMEZONE"),
			LogLevel:  viper.GetString("LOG_LEVEL"),
			LogFormat: viper.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			Issuer:        viper.GetString("JWT_ISSUER"),
			AccessExpiry:  time.Duration(viper.GetInt("JWT_ACCESS_EXPIRY_MINUTES")) * time.Minute,
			RefreshExpiry: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_DAYS")) * 24 * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			UseTLS:       viper.GetBool("SMTP_USE_TLS"),
			FromEmail:    viper.GetString("SMTP_FROM_EMAIL"),
			FromName:     viper.GetString("SMTP_FROM_NAME"),
		},
		Report: ReportConfig{
			PollInterval:      time.Duration(viper.GetInt("REPORT_POLL_SECONDS")) * time.Second,
			Debounce:          time.Duration(viper.GetInt("REPORT_DEBOUNCE_MINUTES")) * time.Minute,
			Dir:               viper.GetString("REPORT_DIR"),
			XLSXEnabled:       viper.GetBool("REPORT_XLSX_ENABLED"),
			FallbackRecipient: viper.GetString("REPORT_FALLBACK_RECIPIENT"),
			CurrencySymbol:    viper.GetString("REPORT_CURRENCY_SYMBOL"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			CharWidth: viper.GetInt("PRINTER_CHAR_WIDTH"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
			FrontendSuccessURL: viper.GetString("FRONTEND_OAUTH_SUCCESS_URL"),
			FrontendErrorURL:   viper.GetString("FRONTEND_OAUTH_ERROR_URL"),
		},
		Housekeeping: HousekeepingConfig{
			Schedule:       viper.GetString("HOUSEKEEPING_CRON"),
			IdempotencyTTL: time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
	}
}

// Validate reports settings that must stop the process at startup
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	} else if c.App.Env == "production" && c.JWT.Secret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.JWT.AccessExpiry <= 0 || c.JWT.RefreshExpiry <= 0 {
		errs = append(errs, errors.New("JWT expiries must be positive"))
	}

	// A schedule matches on a whole minute, so the loop must poll inside every
	// minute and a fired slot must stay suppressed for the rest of that minute.
	poll, debounce := c.Report.PollInterval, c.Report.Debounce
	if poll <= 0 || poll >= time.Minute {
		errs = append(errs, fmt.Errorf("REPORT_POLL_SECONDS must be between 1 and 59, got %s", poll))
	}
	if debounce <= 2*poll {
		errs = append(errs, fmt.Errorf("REPORT_DEBOUNCE_MINUTES (%s) must exceed twice the poll interval (%s)", debounce, poll))
	}
	if c.Report.FallbackRecipient == "" {
		errs = append(errs, errors.New("REPORT_FALLBACK_RECIPIENT must be set"))
	}

	return errors.Join(errs...)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
