package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp moves into a fresh directory so no stray settings or .env file is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Google.APIKey)
	assert.Equal(t, "https://maps.googleapis.com/maps/api/geocode/json", cfg.Google.GeocodeURL)
	assert.Equal(t, "https://maps.googleapis.com/maps/api/place/details/json", cfg.Google.PlacesURL)
	assert.Equal(t, 10, cfg.Google.TimeoutSecs)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "locations", cfg.Database.Table)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
google:
  api_key: file-key
database:
  name: travel
  user: planner
  port: 5433
  table: trips.places
log:
  level: debug
`
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Google.APIKey)
	assert.Equal(t, "travel", cfg.Database.Name)
	assert.Equal(t, "planner", cfg.Database.User)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "trips.places", cfg.Database.Table)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 10, cfg.Google.TimeoutSecs)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := chdirTemp(t)

	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("google: [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
database:
  host: file-host
log:
  level: debug
`
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("TRAVELPLANER_DATABASE_HOST", "env-host")
	t.Setenv("TRAVELPLANER_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRAVELPLANER_GOOGLE_API_KEY=dotenv-key\n"), 0644))
	// godotenv sets the variable for the whole process; restore it afterwards.
	t.Setenv("TRAVELPLANER_GOOGLE_API_KEY", "")
	require.NoError(t, os.Unsetenv("TRAVELPLANER_GOOGLE_API_KEY"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.Google.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "nested", "travelplaner.yaml")

	cfg := &Config{
		Google: GoogleConfig{APIKey: "saved-key", TimeoutSecs: 5},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "db.local",
			Port:     5433,
			Name:     "travel",
			User:     "planner",
			Password: "secret",
			Table:    "places",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-key", loaded.Google.APIKey)
	assert.Equal(t, 5, loaded.Google.TimeoutSecs)
	assert.Equal(t, "db.local", loaded.Database.Host)
	assert.Equal(t, 5433, loaded.Database.Port)
	assert.Equal(t, "secret", loaded.Database.Password)
	assert.Equal(t, "places", loaded.Database.Table)
	assert.Equal(t, "json", loaded.Log.Format)
}

func TestDatabaseConfig_ConnParams(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 1, Name: "n", User: "u", Password: "p", SSLMode: "require"}
	p := d.ConnParams()
	assert.Equal(t, "h", p.Host)
	assert.Equal(t, 1, p.Port)
	assert.Equal(t, "n", p.Name)
	assert.Equal(t, "u", p.User)
	assert.Equal(t, "p", p.Password)
	assert.Equal(t, "require", p.SSLMode)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Google.APIKey = "key"
	cfg.Google.TimeoutSecs = 10
	cfg.Database.Driver = "postgres"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.Name = "travel"
	cfg.Database.User = "planner"
	cfg.Database.Table = "locations"
	return cfg
}

func TestValidateAdd_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("add"))
}

func TestValidateAdd_MissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Driver = "postgres"

	err := cfg.Validate("add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.api_key is required")
	assert.Contains(t, err.Error(), "database.name is required")
	assert.Contains(t, err.Error(), "database.user is required")
	assert.Contains(t, err.Error(), "database.table is required")
	assert.Contains(t, err.Error(), "database.port")
}

func TestValidateList_NoAPIKeyNeeded(t *testing.T) {
	cfg := validDefaults()
	cfg.Google.APIKey = ""

	assert.NoError(t, cfg.Validate("list"))
	assert.Error(t, cfg.Validate("add"))
}

func TestValidate_SQLite(t *testing.T) {
	cfg := validDefaults()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Name = ""
	cfg.Database.User = ""
	cfg.Database.Path = "local.db"
	assert.NoError(t, cfg.Validate("init"))

	cfg.Database.Path = ""
	err := cfg.Validate("init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.path")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Database.Driver = "mysql"

	err := cfg.Validate("list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := validDefaults()
	cfg.Google.TimeoutSecs = -1

	err := cfg.Validate("add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout_secs")
}
