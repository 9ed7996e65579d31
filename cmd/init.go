package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	initConn connFlags
	initSave bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the locations table if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		changed := initConn.apply(cmd.Flags(), cfg)
		if err := cfg.Validate("init"); err != nil {
			return err
		}
		rememberSettings(cfg, changed, initSave)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.EnsureTable(ctx, cfg.Database.Table); err != nil {
			return eris.Wrap(err, "init")
		}

		zap.L().Info("table ready",
			zap.String("driver", cfg.Database.Driver),
			zap.String("table", cfg.Database.Table),
		)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Table %s is ready.\n", cfg.Database.Table)
		return nil
	},
}

func init() {
	initConn.register(initCmd.Flags(), false)
	initCmd.Flags().BoolVar(&initSave, "save", true, "remember connection flags in the settings file")
	rootCmd.AddCommand(initCmd)
}
