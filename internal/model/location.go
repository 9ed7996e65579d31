// Package model defines the records that flow through the link → geocode →
// enrich → store pipeline.
package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// SRID is the spatial reference of stored points (WGS84 longitude/latitude).
const SRID = 4326

// Coordinates holds a latitude/longitude pair exactly as it appeared in a map link.
type Coordinates struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// LatLng formats the pair the way the geocoding API expects it: "lat,lon".
func (c Coordinates) LatLng() string {
	return c.Lat + "," + c.Lon
}

// Point builds the geometry for storage. Points are longitude first, so the
// parsed (lat, lon) order is reversed here and nowhere else.
func (c Coordinates) Point() (*geom.Point, error) {
	lat, err := strconv.ParseFloat(c.Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "model: parse latitude %q", c.Lat)
	}
	lon, err := strconv.ParseFloat(c.Lon, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "model: parse longitude %q", c.Lon)
	}
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(SRID), nil
}

// AddressRecord is the normalized result of a reverse geocode. Nil fields
// were absent from the API response.
type AddressRecord struct {
	PlaceID          *string `json:"place_id"`
	FormattedAddress *string `json:"formatted_address"`
	StreetName       *string `json:"street_name"`
	StreetNumber     *string `json:"street_number"`
	StreetAddress    string  `json:"street_address"`
	PostalCode       *string `json:"postal_code"`
	CityMunicipality *string `json:"city_municipality"`
	Region           *string `json:"region"`
	Country          *string `json:"country"`
}

// JoinStreetAddress combines street name and number, skipping missing parts.
func JoinStreetAddress(name, number *string) string {
	return strings.TrimSpace(Deref(name) + " " + Deref(number))
}

// PlaceDetails holds supplementary data from the place details API.
type PlaceDetails struct {
	PlaceID      string   `json:"place_id"`
	Name         *string  `json:"name"`
	OpeningHours []string `json:"opening_hours"`
	OpenNow      *bool    `json:"open_now"`

	// Fields keeps every requested field of the API result, undecoded.
	Fields map[string]json.RawMessage `json:"fields,omitempty"`
}

// OpeningHoursText returns the weekday lines joined by newlines, or nil when
// no hours are known.
func (d *PlaceDetails) OpeningHoursText() *string {
	if d == nil || len(d.OpeningHours) == 0 {
		return nil
	}
	s := strings.Join(d.OpeningHours, "\n")
	return &s
}

// Metadata is user supplied information about a location.
type Metadata struct {
	LocationType *string `json:"location_type"`
	Comment      *string `json:"comment"`
}

// LocationRow is the record persisted for one map link.
type LocationRow struct {
	Place       string        `json:"place"`
	Coordinates Coordinates   `json:"coordinates"`
	Address     AddressRecord `json:"address"`
	Details     *PlaceDetails `json:"details,omitempty"`
	Metadata    Metadata      `json:"metadata"`
	Link        string        `json:"link"`
}

// StoredLocation is a row read back from a locations table.
type StoredLocation struct {
	ID               int64   `json:"id"`
	Place            string  `json:"place"`
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	StreetAddress    *string `json:"street_address"`
	CityMunicipality *string `json:"city_municipality"`
	Country          *string `json:"country"`
	LocationType     *string `json:"location_type"`
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for empty strings and a pointer otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
