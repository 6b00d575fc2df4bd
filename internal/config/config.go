package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig describes how to reach the message store
type DatabaseConfig struct {
	Type            string        `yaml:"type"` // postgres|memory
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// DSN returns the connection string, building one from the parts if no URL is set
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	port := d.Port
	if port == "" {
		port = "5432"
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, port, d.Name, sslMode)
}

// Config is the process configuration. Values come from defaults, then an
// optional YAML file, then environment variables.
type Config struct {
	Env      string `yaml:"env"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	JWTSecret string `yaml:"jwt_secret"`

	Database DatabaseConfig `yaml:"database"`

	Redis struct {
		URL      string        `yaml:"url"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	RateLimit struct {
		SendRPS   float64 `yaml:"send_rps"`
		SendBurst int     `yaml:"send_burst"`
	} `yaml:"rate_limit"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	cfg := &Config{
		Env:             "development",
		Port:            "8080",
		ShutdownTimeout: 5 * time.Second,
	}
	cfg.Database.Type = "postgres"
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = 30 * time.Minute
	cfg.Redis.CacheTTL = 5 * time.Minute
	cfg.RateLimit.SendRPS = 2
	cfg.RateLimit.SendBurst = 10
	return cfg
}

// LoadDotEnv loads .env.local and .env if present. godotenv never overwrites
// variables that are already set, so the OS environment always wins.
// A file that exists but does not parse is reported; missing files are not.
func LoadDotEnv() ([]string, error) {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) == 0 {
		return nil, nil
	}
	if err := godotenv.Load(loaded...); err != nil {
		return loaded, fmt.Errorf("load %s: %w", strings.Join(loaded, ", "), err)
	}
	return loaded, nil
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	envString("ENV", &c.Env)
	envString("PORT", &c.Port)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("LOG_FILE", &c.LogFile)
	envString("JWT_SECRET", &c.JWTSecret)

	envString("DB_TYPE", &c.Database.Type)
	envString("DATABASE_URL", &c.Database.URL)
	envString("DB_HOST", &c.Database.Host)
	envString("DB_PORT", &c.Database.Port)
	envString("DB_NAME", &c.Database.Name)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_SSLMODE", &c.Database.SSLMode)

	envString("REDIS_URL", &c.Redis.URL)

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}

	var errs []error
	errs = append(errs,
		envInt("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns),
		envInt("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns),
		envDuration("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime),
		envBool("DB_AUTO_MIGRATE", &c.Database.AutoMigrate),
		envDuration("DIRECTORY_CACHE_TTL", &c.Redis.CacheTTL),
		envFloat("SEND_RATE_PER_SEC", &c.RateLimit.SendRPS),
		envInt("SEND_BURST", &c.RateLimit.SendBurst),
		envDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout),
	)
	return errors.Join(errs...)
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.Database.Type {
	case "postgres":
		if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "") {
			return errors.New("database connection details missing: set DATABASE_URL or individual DB_* variables")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	return nil
}

// IsProduction reports whether ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
