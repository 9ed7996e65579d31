package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/travelplaner/travelplaner/internal/db"
)

// DefaultFile is the settings file used when no --config path is given.
const DefaultFile = "travelplaner.yaml"

// Config holds the full application configuration.
type Config struct {
	Google   GoogleConfig   `yaml:"google" mapstructure:"google"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Google Maps Platform credentials and endpoints.
type GoogleConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	GeocodeURL  string `yaml:"geocode_url,omitempty" mapstructure:"geocode_url"`
	PlacesURL   string `yaml:"places_url,omitempty" mapstructure:"places_url"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty" mapstructure:"timeout_secs"`
}

// DatabaseConfig configures the location store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Name     string `yaml:"name" mapstructure:"name"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	SSLMode  string `yaml:"sslmode,omitempty" mapstructure:"sslmode"`
	Path     string `yaml:"path,omitempty" mapstructure:"path"`
	Table    string `yaml:"table" mapstructure:"table"`
}

// ConnParams returns the Postgres connection parameters.
func (d DatabaseConfig) ConnParams() db.ConnParams {
	return db.ConnParams{
		Host:     d.Host,
		Port:     d.Port,
		Name:     d.Name,
		User:     d.User,
		Password: d.Password,
		SSLMode:  d.SSLMode,
	}
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from defaults, the settings file at path, an
// optional .env file, and TRAVELPLANER_* environment variables, in that order
// of increasing precedence. A missing settings file is not an error.
func Load(path string) (*Config, error) {
	// .env values only fill variables that are not already set.
	_ = godotenv.Load(".env")

	v := viper.New()

	if path == "" {
		path = DefaultFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TRAVELPLANER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("google.api_key", "")
	v.SetDefault("google.geocode_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("google.places_url", "https://maps.googleapis.com/maps/api/place/details/json")
	v.SetDefault("google.timeout_secs", 10)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "travelplaner.db")
	v.SetDefault("database.table", "locations")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
// The file holds credentials, so it is written owner-readable only.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "config: create settings dir")
		}
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal settings")
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
}

// Validate checks that the settings needed by the given command are present.
// All problems are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "add":
		if c.Google.APIKey == "" {
			problems = append(problems, "google.api_key is required (-a)")
		}
		problems = append(problems, c.Database.problems()...)
	case "list", "init":
		problems = append(problems, c.Database.problems()...)
	}

	if c.Google.TimeoutSecs < 0 {
		problems = append(problems, "google.timeout_secs must not be negative")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (d DatabaseConfig) problems() []string {
	var problems []string
	if d.Table == "" {
		problems = append(problems, "database.table is required (-T)")
	}
	switch d.Driver {
	case "postgres":
		if d.Name == "" {
			problems = append(problems, "database.name is required (-d)")
		}
		if d.User == "" {
			problems = append(problems, "database.user is required (-u)")
		}
		if d.Port <= 0 || d.Port > 65535 {
			problems = append(problems, "database.port must be between 1 and 65535")
		}
	case "sqlite":
		if d.Path == "" {
			problems = append(problems, "database.path is required for sqlite")
		}
	default:
		problems = append(problems, "database.driver must be postgres or sqlite")
	}
	return problems
}

// InitLogger configures the global zap logger based on config.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
