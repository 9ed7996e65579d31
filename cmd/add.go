package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"

	"github.com/travelplaner/travelplaner/internal/model"
	"github.com/travelplaner/travelplaner/internal/pipeline"
	"github.com/travelplaner/travelplaner/internal/store"
)

var (
	addConn    connFlags
	addType    string
	addComment string
	addSave    bool
)

var addCmd = &cobra.Command{
	Use:   "add <google-maps-link>",
	Short: "Geocode a Google Maps link and store it",
	Long: "Parses the place name and coordinates from the link, looks up the address and opening hours, " +
		"and inserts one row into the table. Connection flags fall back to the settings file and are " +
		"saved back to it unless --save=false.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		changed := addConn.apply(cmd.Flags(), cfg)
		if err := cfg.Validate("add"); err != nil {
			return err
		}
		rememberSettings(cfg, changed, addSave)

		// The database is only opened once the link has been geocoded.
		st := store.NewLazy(initStore)
		defer st.Close() //nolint:errcheck

		p := pipeline.New(initGeocoder(), initPlaces(), st)

		req := pipeline.Request{
			Link:  args[0],
			Table: cfg.Database.Table,
			Metadata: model.Metadata{
				LocationType: model.StringPtr(addType),
				Comment:      model.StringPtr(addComment),
			},
		}

		res, err := p.Run(ctx, req)
		out := cmd.OutOrStdout()
		if res != nil && res.Row != nil {
			printSummary(out, res.Row)
		}
		if err != nil {
			return eris.Wrap(err, "add")
		}

		zap.L().Info("location added",
			zap.String("run_id", res.RunID),
			zap.String("place", res.Row.Place),
			zap.String("table", cfg.Database.Table),
		)
		_, _ = fmt.Fprintln(out, "Data inserted into database successfully.")
		return nil
	},
}

func init() {
	addConn.register(addCmd.Flags(), true)
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "kind of location (bar, museum, restaurant, ...)")
	addCmd.Flags().StringVarP(&addComment, "comment", "c", "", "free-text comment about the location")
	addCmd.Flags().BoolVar(&addSave, "save", true, "remember connection flags in the settings file")
	rootCmd.AddCommand(addCmd)
}

// printSummary writes one line per stored field. Missing values print as "-".
func printSummary(w io.Writer, row *model.LocationRow) {
	opt := func(s *string) string {
		if s == nil || *s == "" {
			return "-"
		}
		return *s
	}
	a := row.Address

	lines := []struct {
		label string
		value string
	}{
		{"Place", row.Place},
		{"Latitude", row.Coordinates.Lat},
		{"Longitude", row.Coordinates.Lon},
		{"Geometry", geometryText(row.Coordinates)},
		{"Opening hours", opt(row.Details.OpeningHoursText())},
		{"Full address", opt(a.FormattedAddress)},
		{"Street address", opt(&a.StreetAddress)},
		{"Street name", opt(a.StreetName)},
		{"Street number", opt(a.StreetNumber)},
		{"Postal code", opt(a.PostalCode)},
		{"City / Municipality", opt(a.CityMunicipality)},
		{"Region", opt(a.Region)},
		{"Country", opt(a.Country)},
		{"Place_id", opt(a.PlaceID)},
		{"Type", opt(row.Metadata.LocationType)},
		{"Comment", opt(row.Metadata.Comment)},
		{"Link", row.Link},
	}
	for _, l := range lines {
		if l.label == "Opening hours" && l.value != "-" {
			_, _ = fmt.Fprintf(w, "%s:\n%s\n", l.label, l.value)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", l.label, l.value)
	}
}

// geometryText renders the stored point as WKT with its SRID.
func geometryText(c model.Coordinates) string {
	pt, err := c.Point()
	if err != nil {
		return "-"
	}
	text, err := wkt.Marshal(pt)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("SRID=%d;%s", pt.SRID(), text)
}
