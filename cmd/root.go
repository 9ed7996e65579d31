package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/travelplaner/travelplaner/internal/config"
	"github.com/travelplaner/travelplaner/internal/failure"
)

var (
	cfg        *config.Config
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "travelplaner",
	Short: "Save Google Maps places to a spatial database",
	Long: "Extracts the place name and coordinates from a Google Maps link, resolves the address through the " +
		"Google Geocoding API, adds opening hours from Place Details, and stores the result in a PostGIS table.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if cmd.Flags().Changed("log-level") {
			c.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			c.Log.Format = logFormat
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
}

// reportError prints err with its failure kind and returns the exit code.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return failure.ExitOK
	}
	if kind := failure.KindOf(err); kind != failure.KindUnknown {
		_, _ = fmt.Fprintf(w, "Error (%s): %v\n", kind, err)
	} else {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	}
	return failure.ExitCode(err)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}
