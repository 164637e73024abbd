package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	Storage     StorageConfig   `yaml:"storage"`
	Auth        AuthConfig      `yaml:"auth"`
	Invites     InviteConfig    `yaml:"invites"`
	Activity    ActivityConfig  `yaml:"activity"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	CORSOrigins    []string `yaml:"cors_origins"`
	TrustedOrigins []string `yaml:"trusted_origins"`
	CSRFEnabled    bool     `yaml:"csrf_enabled"`
	BodyLimit      string   `yaml:"body_limit"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `yaml:"auto_migrate"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	Issuer     string        `yaml:"issuer"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	// JWKSURL enables tokens issued by an external identity provider.
	JWKSURL string `yaml:"jwks_url"`
}

type InviteConfig struct {
	TTL time.Duration `yaml:"ttl"`
	// Retention keeps expired invites around this long before purge-invites removes them.
	Retention time.Duration `yaml:"retention"`
}

type ActivityConfig struct {
	BufferSize   int           `yaml:"buffer_size"`
	Workers      int           `yaml:"workers"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

func Default() *Config {
	return &Config{
		Environment: "development",
		HTTP: HTTPConfig{
			Addr:           ":8080",
			CORSOrigins:    []string{"http://localhost:3000"},
			CSRFEnabled:    true,
			BodyLimit:      "30M",
			MaxUploadBytes: 25 << 20,
		},
		Database: DatabaseConfig{
			MaxConns: 20,
			MinConns: 2,
		},
		Redis: RedisConfig{
			URL: "localhost:6379",
		},
		Storage: StorageConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "materials",
		},
		Auth: AuthConfig{
			Issuer:     "dealtracker",
			SessionTTL: 7 * 24 * time.Hour,
		},
		Invites: InviteConfig{
			TTL:       7 * 24 * time.Hour,
			Retention: 30 * 24 * time.Hour,
		},
		Activity: ActivityConfig{
			BufferSize:   256,
			Workers:      2,
			WriteTimeout: 5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "dealtracker",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and environment overrides, in that order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}
	integer := func(key string, dst *int) error {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}

	str("ENVIRONMENT", &c.Environment)
	str("HTTP_ADDR", &c.HTTP.Addr)
	list("CORS_ORIGINS", &c.HTTP.CORSOrigins)
	list("CSRF_TRUSTED_ORIGINS", &c.HTTP.TrustedOrigins)
	str("DATABASE_URL", &c.Database.URL)
	str("REDIS_URL", &c.Redis.URL)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("MINIO_ENDPOINT", &c.Storage.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Storage.AccessKey)
	str("MINIO_SECRET_KEY", &c.Storage.SecretKey)
	str("MINIO_BUCKET", &c.Storage.Bucket)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWKS_URL", &c.Auth.JWKSURL)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)

	return errors.Join(
		boolean("CSRF_ENABLED", &c.HTTP.CSRFEnabled),
		boolean("MINIO_USE_SSL", &c.Storage.UseSSL),
		boolean("DATABASE_AUTO_MIGRATE", &c.Database.AutoMigrate),
		integer("REDIS_DB", &c.Redis.DB),
		duration("SESSION_TTL", &c.Auth.SessionTTL),
		duration("INVITE_TTL", &c.Invites.TTL),
		duration("INVITE_RETENTION", &c.Invites.Retention),
	)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsProduction reports whether cookies must be Secure.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database url is required (DATABASE_URL)"))
	}
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("jwt secret must be at least 32 bytes (JWT_SECRET)"))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage bucket is required (MINIO_BUCKET)"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Invites.TTL <= 0 {
		errs = append(errs, errors.New("invite ttl must be positive"))
	}
	if c.Invites.Retention < 0 {
		errs = append(errs, errors.New("invite retention must not be negative"))
	}
	if c.Activity.BufferSize <= 0 || c.Activity.Workers <= 0 {
		errs = append(errs, errors.New("activity buffer size and workers must be positive"))
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}
	return errors.Join(errs...)
}
