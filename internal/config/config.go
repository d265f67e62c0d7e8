// Package config loads server settings from flags, environment variables and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/erazemk/najdeno/internal/model"
)

// EnvPrefix is the prefix for environment variables, e.g. NAJDENO_DB_PATH.
const EnvPrefix = "NAJDENO"

// Storage and media drivers.
const (
	DriverSQLite     = "sqlite"
	DriverMongo      = "mongo"
	MediaLocal       = "local"
	MediaCloudinary  = "cloudinary"
	defaultAddr      = ":5000"
	defaultDBPath    = "najdeno.sqlite3"
	defaultMongoDB   = "lostfound"
	defaultUploadDir = "uploads"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved server configuration.
type Config struct {
	Addr           string
	DB             DBConfig
	JWT            JWTConfig
	Media          MediaConfig
	ContactPrefix  string
	CORSOrigins    []string
	MaxUploadBytes int64
	// SecureCookies marks the web session cookie Secure.
	SecureCookies bool
	Log           LogConfig
}

type DBConfig struct {
	Driver        string
	Path          string
	MongoURI      string
	MongoDatabase string
}

type JWTConfig struct {
	// Secret signs tokens. When empty the server generates one and persists it
	// in the store.
	Secret string
	Expiry time.Duration
}

type MediaConfig struct {
	Driver     string
	Dir        string
	Cloudinary CloudinaryConfig
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type LogConfig struct {
	File      string
	Level     string
	MaxSizeMB int
	MaxFiles  int
}

// legacyEnv maps config keys to the bare variable names used by earlier
// deployments of the service.
var legacyEnv = map[string]string{
	"jwt.secret":            "JWT_SECRET",
	"mongo.uri":             "MONGODB_URI",
	"cloudinary.cloud_name": "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":    "CLOUDINARY_API_KEY",
	"cloudinary.api_secret": "CLOUDINARY_API_SECRET",
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", defaultDBPath)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", defaultMongoDB)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "168h")
	v.SetDefault("media.driver", MediaLocal)
	v.SetDefault("media.dir", defaultUploadDir)
	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.folder", "lost_found_items")
	v.SetDefault("contact.prefix", "+91")
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("upload.max_bytes", model.DefaultMaxUploadBytes)
	v.SetDefault("cookie.secure", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_files", 5)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range legacyEnv {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, envKey, name)
	}

	return v
}

// LoadDotEnv loads variables from path into the process environment. A
// missing file is not an error. Variables already set take precedence.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ReadFile merges a YAML, TOML or JSON config file into v. Environment
// variables and flags still take precedence over its values.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr: v.GetString("addr"),
		DB: DBConfig{
			Driver:        strings.ToLower(v.GetString("db.driver")),
			Path:          v.GetString("db.path"),
			MongoURI:      v.GetString("mongo.uri"),
			MongoDatabase: v.GetString("mongo.database"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Expiry: v.GetDuration("jwt.expiry"),
		},
		Media: MediaConfig{
			Driver: strings.ToLower(v.GetString("media.driver")),
			Dir:    v.GetString("media.dir"),
			Cloudinary: CloudinaryConfig{
				CloudName: v.GetString("cloudinary.cloud_name"),
				APIKey:    v.GetString("cloudinary.api_key"),
				APISecret: v.GetString("cloudinary.api_secret"),
				Folder:    v.GetString("cloudinary.folder"),
			},
		},
		ContactPrefix:  v.GetString("contact.prefix"),
		CORSOrigins:    splitList(v.GetStringSlice("cors.origins")),
		MaxUploadBytes: v.GetInt64("upload.max_bytes"),
		SecureCookies:  v.GetBool("cookie.secure"),
		Log: LogConfig{
			File:      v.GetString("log.file"),
			Level:     strings.ToLower(v.GetString("log.level")),
			MaxSizeMB: v.GetInt("log.max_size_mb"),
			MaxFiles:  v.GetInt("log.max_files"),
		},
	}

	// PORT is honoured when no address was configured explicitly.
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
		if port := os.Getenv("PORT"); port != "" {
			cfg.Addr = ":" + port
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or conflicting values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: listen address is required", ErrInvalidConfig)
	}

	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("%w: db.path is required for sqlite", ErrInvalidConfig)
		}
	case DriverMongo:
		if c.DB.MongoURI == "" {
			return fmt.Errorf("%w: mongo.uri is required for mongo", ErrInvalidConfig)
		}
		if c.DB.MongoDatabase == "" {
			return fmt.Errorf("%w: mongo.database is required for mongo", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown db.driver %q", ErrInvalidConfig, c.DB.Driver)
	}

	switch c.Media.Driver {
	case MediaLocal:
		if c.Media.Dir == "" {
			return fmt.Errorf("%w: media.dir is required for local media", ErrInvalidConfig)
		}
	case MediaCloudinary:
		cl := c.Media.Cloudinary
		if cl.CloudName == "" || cl.APIKey == "" || cl.APISecret == "" {
			return fmt.Errorf("%w: cloudinary cloud_name, api_key and api_secret are required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown media.driver %q", ErrInvalidConfig, c.Media.Driver)
	}

	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("%w: jwt.expiry must be positive", ErrInvalidConfig)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: upload.max_bytes must be positive", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.ContactPrefix, "+") {
		return fmt.Errorf("%w: contact.prefix must start with '+'", ErrInvalidConfig)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// splitList accepts both space and comma separated list values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q", l.Level)
	}
	return level, nil
}
