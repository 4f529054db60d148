package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/db"
)

// InsecureJWTSecret is the built-in default; Validate only accepts it in development.
const InsecureJWTSecret = "supersecretkey"

const DefaultEventChannel = "fams.events"

type Config struct {
	Addr           string         `yaml:"addr"`
	JWTSecret      string         `yaml:"jwt_secret"`
	APITimeout     time.Duration  `yaml:"timeout"`
	TokenDuration  time.Duration  `yaml:"token_duration"`
	MigrateOnStart bool           `yaml:"migrate_on_start"`
	Database       DatabaseConfig `yaml:"database"`
	Redis          RedisConfig    `yaml:"redis"`
	Log            LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables event publishing when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig layers defaults, a .env file (when present), FAMS_* environment
// variables and finally the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	envFile := getEnv("FAMS_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	apiTimeout, err := getDuration("FAMS_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	tokenDuration, err := getDuration("FAMS_TOKEN_DURATION", 1*time.Hour)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("FAMS_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:           getEnv("FAMS_ADDR", ":8080"),
		JWTSecret:      getEnv("FAMS_JWT_SECRET", InsecureJWTSecret),
		APITimeout:     apiTimeout,
		TokenDuration:  tokenDuration,
		MigrateOnStart: getEnv("FAMS_MIGRATE_ON_START", "true") == "true",
		Database: DatabaseConfig{
			Driver: getEnv("FAMS_DATABASE_DRIVER", "sqlite"),
			DSN:    getEnv("FAMS_DATABASE_DSN", "fams.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("FAMS_REDIS_ADDR", ""),
			Password: getEnv("FAMS_REDIS_PASSWORD", ""),
			DB:       redisDB,
			Channel:  getEnv("FAMS_REDIS_CHANNEL", DefaultEventChannel),
		},
		Log: LogConfig{
			Level:  getEnv("FAMS_LOG_LEVEL", "info"),
			Format: getEnv("FAMS_LOG_FORMAT", "json"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the settings the server cannot start without and fills
// in defaults for optional ones.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == InsecureJWTSecret && os.Getenv("FAMS_ENV") != "development" {
		return errors.New("jwt_secret uses the insecure default; set FAMS_JWT_SECRET or FAMS_ENV=development")
	}
	if c.APITimeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.TokenDuration <= 0 {
		return errors.New("token_duration must be positive")
	}
	if _, err := db.ParseDialect(c.Database.Driver); err != nil {
		return err
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = DefaultEventChannel
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format %q: want json or text", c.Log.Format)
	}
	return nil
}

// NewLogger builds the slog logger described by lc, writing to w.
func NewLogger(lc LogConfig, w io.Writer) *slog.Logger {
	level, err := parseLevel(lc.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level %q: want debug, info, warn or error", s)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
