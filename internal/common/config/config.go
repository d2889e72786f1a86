package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AlibekovAA/gym-api/internal/common/constants"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
)

type Config struct {
	HTTPPort       string        `mapstructure:"http_port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogDir         string        `mapstructure:"log_dir"`
	LogLevel       string        `mapstructure:"log_level"`
	// TrustProxyHeaders keys rate limits on X-Real-IP/X-Forwarded-For.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`

	Auth    AuthConfig    `mapstructure:"auth"`
	Store   StoreConfig   `mapstructure:"store"`
	Email   EmailConfig   `mapstructure:"email"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type AuthConfig struct {
	SecretKey      string        `mapstructure:"secret_key"`
	Algorithm      string        `mapstructure:"algorithm"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	// ExpirationMinutes mirrors the legacy AUTH_EXPIRATION variable and wins
	// over AccessTokenTTL when positive.
	ExpirationMinutes int `mapstructure:"expiration_minutes"`
	BcryptCost        int `mapstructure:"bcrypt_cost"`
}

type StoreConfig struct {
	Driver      string      `mapstructure:"driver"`
	DatabaseURL string      `mapstructure:"database_url"`
	MongoURI    string      `mapstructure:"mongo_uri"`
	Database    string      `mapstructure:"database"`
	Collections Collections `mapstructure:"collections"`
}

type Collections struct {
	Users          string `mapstructure:"users"`
	Trainings      string `mapstructure:"trainings"`
	Availabilities string `mapstructure:"availabilities"`
	Notifications  string `mapstructure:"notifications"`
}

type EmailConfig struct {
	Provider string         `mapstructure:"provider"`
	From     string         `mapstructure:"from"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
	Mailgun  MailgunConfig  `mapstructure:"mailgun"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
}

type SendGridConfig struct {
	Key string `mapstructure:"key"`
}

type MailgunConfig struct {
	Domain string `mapstructure:"domain"`
	Key    string `mapstructure:"key"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type TracingConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Load reads configuration once at process start: defaults, then the optional
// YAML file at path, then GYM_* environment variables. The legacy variable
// names of the previous deployment are honoured as fallbacks.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GYM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Auth.ExpirationMinutes > 0 {
		cfg.Auth.AccessTokenTTL = time.Duration(cfg.Auth.ExpirationMinutes) * time.Minute
	}
	cfg.Auth.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Auth.Algorithm))
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Email.Provider = strings.ToLower(strings.TrimSpace(cfg.Email.Provider))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", constants.DefaultHTTPPort)
	v.SetDefault("request_timeout", constants.DefaultRequestTimeout)
	v.SetDefault("log_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("trust_proxy_headers", false)

	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.algorithm", constants.DefaultAlgorithm)
	v.SetDefault("auth.access_token_ttl", constants.DefaultAccessTokenTTL)
	v.SetDefault("auth.expiration_minutes", 0)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("store.driver", constants.DefaultStoreDriver)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.database", constants.DefaultDatabaseName)
	v.SetDefault("store.collections.users", constants.DefaultUsersCollection)
	v.SetDefault("store.collections.trainings", constants.DefaultTrainingsCollection)
	v.SetDefault("store.collections.availabilities", constants.DefaultAvailabilitiesCollection)
	v.SetDefault("store.collections.notifications", constants.DefaultNotificationsCollection)

	v.SetDefault("email.provider", "log")
	v.SetDefault("email.from", "")
	v.SetDefault("email.sendgrid.key", "")
	v.SetDefault("email.mailgun.domain", "")
	v.SetDefault("email.mailgun.key", "")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", "587")
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "gym-api")
	v.SetDefault("tracing.sampling_rate", 1.0)
}

func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("auth.secret_key", "GYM_AUTH_SECRET_KEY", "AUTH_SECRET_KEY")
	_ = v.BindEnv("auth.algorithm", "GYM_AUTH_ALGORITHM", "AUTH_ALGORITHM")
	_ = v.BindEnv("auth.expiration_minutes", "GYM_AUTH_EXPIRATION_MINUTES", "AUTH_EXPIRATION")
	_ = v.BindEnv("store.database_url", "GYM_STORE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("store.database", "GYM_STORE_DATABASE", "COSMOS_DB_DATABASE")
	_ = v.BindEnv("email.from", "GYM_EMAIL_FROM", "EMAIL_ADDRESS")
	_ = v.BindEnv("log_dir", "GYM_LOG_DIR", "LOG_DIR")
	_ = v.BindEnv("log_level", "GYM_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("tracing.endpoint", "GYM_TRACING_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func (c Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return commonerrors.ErrMissingRequiredConfig.WithCause(fmt.Errorf("auth.secret_key"))
	}
	if len(c.Auth.SecretKey) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("got %d bytes", len(c.Auth.SecretKey)))
	}
	if _, ok := supportedAlgorithms[c.Auth.Algorithm]; !ok {
		return invalid("unsupported signing algorithm %q", c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return invalid("access token ttl must be positive")
	}

	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return commonerrors.ErrMissingRequiredConfig.WithCause(fmt.Errorf("store.database_url"))
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return commonerrors.ErrMissingRequiredConfig.WithCause(fmt.Errorf("store.mongo_uri"))
		}
	case "memory":
	default:
		return invalid("unsupported store driver %q", c.Store.Driver)
	}

	cols := c.Store.Collections
	if cols.Users == "" || cols.Trainings == "" || cols.Availabilities == "" || cols.Notifications == "" {
		return invalid("collection names must not be empty")
	}

	return c.Email.validate()
}

func (e EmailConfig) validate() error {
	switch e.Provider {
	case "", "log":
		return nil
	case "sendgrid":
		if e.SendGrid.Key == "" || e.From == "" {
			return invalid("sendgrid requires email.sendgrid.key and email.from")
		}
	case "mailgun":
		if e.Mailgun.Domain == "" || e.Mailgun.Key == "" || e.From == "" {
			return invalid("mailgun requires email.mailgun.domain, email.mailgun.key and email.from")
		}
	case "smtp":
		if e.SMTP.Host == "" || e.SMTP.Port == "" || e.From == "" {
			return invalid("smtp requires email.smtp.host, email.smtp.port and email.from")
		}
	default:
		return invalid("unsupported email provider %q", e.Provider)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf(format, args...))
}
