package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/travelplaner/travelplaner/internal/failure"
	"github.com/travelplaner/travelplaner/internal/model"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
// Every field is optional; a missing key decodes to its zero value.
type googleGeocodeResponse struct {
	Results      []googleResult `json:"results"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
}

type googleResult struct {
	PlaceID           string                   `json:"place_id"`
	FormattedAddress  string                   `json:"formatted_address"`
	AddressComponents []googleAddressComponent `json:"address_components"`
}

type googleAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// outcome is the shape of a decoded response.
type outcome int

const (
	outcomeResults outcome = iota
	outcomeEmpty
	outcomeFailed
)

// classify sorts a response into results, empty, or failed. ZERO_RESULTS
// counts as empty, not as a failure.
func (r *googleGeocodeResponse) classify() outcome {
	switch r.Status {
	case "OK":
		if len(r.Results) == 0 {
			return outcomeEmpty
		}
		return outcomeResults
	case "ZERO_RESULTS":
		return outcomeEmpty
	default:
		return outcomeFailed
	}
}

// Component type priorities; the first type any component carries wins.
var (
	streetNameTypes   = []string{"route"}
	streetNumberTypes = []string{"street_number"}
	postalCodeTypes   = []string{"postal_code"}
	cityTypes         = []string{"administrative_area_level_2", "administrative_area_level_1"}
	regionTypes       = []string{"administrative_area_level_1"}
	countryTypes      = []string{"country"}
)

// reverseGoogle performs a single reverse geocode request. No retries.
func (g *geocoder) reverseGoogle(ctx context.Context, coords model.Coordinates) (*model.AddressRecord, error) {
	if g.apiKey == "" {
		return nil, failure.Wrap(failure.KindAPI, eris.New("geocode: google api key not configured"))
	}

	params := url.Values{
		"latlng": {coords.LatLng()},
		"key":    {g.apiKey},
	}

	reqURL := g.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, failure.Wrap(failure.KindAPI, eris.Wrap(err, "geocode: google build request"))
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, failure.Wrap(failure.KindNetwork, eris.Wrap(err, "geocode: google request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, failure.HTTPStatus(eris.Errorf("geocode: google returned status %d", resp.StatusCode), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Wrap(failure.KindNetwork, eris.Wrap(err, "geocode: google read body"))
	}

	var googleResp googleGeocodeResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		return nil, failure.Wrap(failure.KindAPI, eris.Wrap(err, "geocode: google parse response"))
	}

	switch googleResp.classify() {
	case outcomeEmpty:
		zap.L().Warn("geocode: no address found for coordinates",
			zap.String("latlng", coords.LatLng()),
			zap.String("status", googleResp.Status),
		)
		return nil, nil
	case outcomeFailed:
		msg := eris.Errorf("geocode: google api status %q", googleResp.Status)
		if googleResp.ErrorMessage != "" {
			msg = eris.Errorf("geocode: google api status %q: %s", googleResp.Status, googleResp.ErrorMessage)
		}
		return nil, failure.APIStatus(msg, googleResp.Status)
	}

	return normalize(googleResp.Results[0]), nil
}

// normalize maps the first geocoding result into an AddressRecord.
func normalize(result googleResult) *model.AddressRecord {
	comps := result.AddressComponents
	rec := &model.AddressRecord{
		PlaceID:          model.StringPtr(result.PlaceID),
		FormattedAddress: model.StringPtr(result.FormattedAddress),
		StreetName:       component(comps, streetNameTypes...),
		StreetNumber:     component(comps, streetNumberTypes...),
		PostalCode:       component(comps, postalCodeTypes...),
		CityMunicipality: component(comps, cityTypes...),
		Region:           component(comps, regionTypes...),
		Country:          component(comps, countryTypes...),
	}
	rec.StreetAddress = model.JoinStreetAddress(rec.StreetName, rec.StreetNumber)
	return rec
}

// component returns the long name of the first component carrying the
// highest priority type in types, or nil if none carries any of them.
func component(comps []googleAddressComponent, types ...string) *string {
	for _, t := range types {
		for _, c := range comps {
			if slices.Contains(c.Types, t) {
				name := c.LongName
				return &name
			}
		}
	}
	return nil
}
