package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/travelplaner/travelplaner/internal/model"
)

var (
	listConn  connFlags
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored locations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		listConn.apply(cmd.Flags(), cfg)
		if err := cfg.Validate("list"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		locations, err := st.List(ctx, cfg.Database.Table, listLimit)
		if err != nil {
			return eris.Wrap(err, "list")
		}

		if len(locations) == 0 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No locations found.")
			return nil
		}

		formatLocations(cmd.OutOrStdout(), locations)
		return nil
	},
}

func init() {
	listConn.register(listCmd.Flags(), false)
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "max number of locations to display")
	rootCmd.AddCommand(listCmd)
}

func formatLocations(out io.Writer, locations []model.StoredLocation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPLACE\tLAT\tLON\tCITY\tCOUNTRY\tTYPE")
	_, _ = fmt.Fprintln(w, "--\t-----\t---\t---\t----\t-------\t----")

	for _, l := range locations {
		place := l.Place
		if len([]rune(place)) > 40 {
			place = string([]rune(place)[:37]) + "..."
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%.6f\t%.6f\t%s\t%s\t%s\n",
			l.ID,
			place,
			l.Latitude,
			l.Longitude,
			model.Deref(l.CityMunicipality),
			model.Deref(l.Country),
			model.Deref(l.LocationType),
		)
	}
	_ = w.Flush()
}
