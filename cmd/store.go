package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/travelplaner/travelplaner/internal/config"
	"github.com/travelplaner/travelplaner/internal/store"
	"github.com/travelplaner/travelplaner/pkg/geocode"
	"github.com/travelplaner/travelplaner/pkg/google"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		dsn := cfg.Database.Path
		if dsn == "" {
			dsn = "travelplaner.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Database.ConnParams().URL())
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Database.Driver)
	}
}

func googleHTTPClient() *http.Client {
	timeout := time.Duration(cfg.Google.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func initGeocoder() geocode.Client {
	opts := []geocode.Option{geocode.WithHTTPClient(googleHTTPClient())}
	if cfg.Google.GeocodeURL != "" {
		opts = append(opts, geocode.WithBaseURL(cfg.Google.GeocodeURL))
	}
	return geocode.NewClient(cfg.Google.APIKey, opts...)
}

func initPlaces() google.Client {
	opts := []google.Option{google.WithHTTPClient(googleHTTPClient())}
	if cfg.Google.PlacesURL != "" {
		opts = append(opts, google.WithBaseURL(cfg.Google.PlacesURL))
	}
	return google.NewClient(cfg.Google.APIKey, opts...)
}

// connFlags are the connection settings that can be given on the command
// line and remembered in the settings file.
type connFlags struct {
	apiKey   string
	dbName   string
	host     string
	port     int
	user     string
	password string
	table    string
}

func (f *connFlags) register(fs *pflag.FlagSet, withAPIKey bool) {
	if withAPIKey {
		fs.StringVarP(&f.apiKey, "api_key", "a", "", "Google Maps API key")
	}
	fs.StringVarP(&f.dbName, "dbname", "d", "", "database name")
	fs.StringVarP(&f.host, "host", "H", "", "database host")
	fs.IntVarP(&f.port, "port", "p", 0, "database port")
	fs.StringVarP(&f.user, "user", "u", "", "database user")
	fs.StringVarP(&f.password, "password", "w", "", "database password")
	fs.StringVarP(&f.table, "tablename", "T", "", "table to store locations in (table or schema.table)")
}

// apply copies every flag given on the command line into c and reports
// whether any of them was set.
func (f *connFlags) apply(fs *pflag.FlagSet, c *config.Config) bool {
	changed := false
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
			changed = true
		}
	}
	set("api_key", func() { c.Google.APIKey = f.apiKey })
	set("dbname", func() { c.Database.Name = f.dbName })
	set("host", func() { c.Database.Host = f.host })
	set("port", func() { c.Database.Port = f.port })
	set("user", func() { c.Database.User = f.user })
	set("password", func() { c.Database.Password = f.password })
	set("tablename", func() { c.Database.Table = f.table })
	return changed
}

// rememberSettings writes c to the settings file when save is set and a
// connection flag changed it. Failing to save is not fatal.
func rememberSettings(c *config.Config, changed, save bool) {
	if !changed || !save {
		return
	}
	if err := config.Save(configPath, c); err != nil {
		zap.L().Warn("could not save settings", zap.String("path", configPath), zap.Error(err))
		return
	}
	zap.L().Debug("settings saved", zap.String("path", configPath))
}
