// Package store persists location rows in a spatially enabled table.
package store

import (
	"context"

	"github.com/travelplaner/travelplaner/internal/model"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store defines the persistence interface for geocoded locations.
type Store interface {
	// EnsureTable creates the table if it does not exist.
	EnsureTable(ctx context.Context, table string) error
	// Save ensures the table and inserts row in one transaction. A row whose
	// place already exists fails with failure.ErrDuplicatePlace.
	Save(ctx context.Context, table string, row *model.LocationRow) error
	// List returns up to limit stored rows ordered by id.
	List(ctx context.Context, table string, limit int) ([]model.StoredLocation, error)
	Close() error
}

// attributeColumns are the non-key columns written after place and geom, in
// the order returned by attributeValues.
var attributeColumns = []string{
	"opening_hours",
	"full_address",
	"street_address",
	"street_name",
	"street_number",
	"postal_code",
	"city_municipality",
	"region",
	"country",
	"place_id",
	"location_type",
	"description",
	"url",
}

func attributeValues(row *model.LocationRow) []any {
	a := row.Address
	return []any{
		row.Details.OpeningHoursText(),
		a.FormattedAddress,
		a.StreetAddress,
		a.StreetName,
		a.StreetNumber,
		a.PostalCode,
		a.CityMunicipality,
		a.Region,
		a.Country,
		a.PlaceID,
		row.Metadata.LocationType,
		row.Metadata.Comment,
		row.Link,
	}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
