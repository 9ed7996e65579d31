// Package google provides a client for the Google Place Details API.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/travelplaner/travelplaner/internal/failure"
	"github.com/travelplaner/travelplaner/internal/model"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/details/json"

// DefaultFields are requested when PlaceDetails is called without fields.
var DefaultFields = []string{"opening_hours", "name"}

// Client performs Google Place Details lookups.
type Client interface {
	// PlaceDetails fetches the requested fields of a place.
	PlaceDetails(ctx context.Context, placeID string, fields ...string) (*model.PlaceDetails, error)
}

// detailsResponse is the JSON response from Place Details.
type detailsResponse struct {
	Status       string                     `json:"status"`
	ErrorMessage string                     `json:"error_message"`
	Result       map[string]json.RawMessage `json:"result"`
}

type openingHours struct {
	OpenNow     *bool    `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Place Details client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string, fields ...string) (*model.PlaceDetails, error) {
	if placeID == "" {
		return nil, eris.New("google: place id is required")
	}
	if len(fields) == 0 {
		fields = DefaultFields
	}

	params := url.Values{
		"place_id": {placeID},
		"fields":   {strings.Join(fields, ",")},
		"key":      {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failure.Wrap(failure.KindNetwork, eris.Wrap(err, "google: send request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Wrap(failure.KindNetwork, eris.Wrap(err, "google: read response"))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, failure.HTTPStatus(eris.Errorf("google: unexpected status %d", resp.StatusCode), resp.StatusCode)
	}

	var result detailsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, failure.Wrap(failure.KindAPI, eris.Wrap(err, "google: unmarshal response"))
	}

	if result.Status != "OK" {
		msg := eris.Errorf("google: api status %q", result.Status)
		if result.ErrorMessage != "" {
			msg = eris.Errorf("google: api status %q: %s", result.Status, result.ErrorMessage)
		}
		return nil, failure.APIStatus(msg, result.Status)
	}

	return decodeDetails(placeID, result.Result)
}

// decodeDetails extracts the typed fields and keeps everything else raw.
func decodeDetails(placeID string, fields map[string]json.RawMessage) (*model.PlaceDetails, error) {
	details := &model.PlaceDetails{
		PlaceID: placeID,
		Fields:  fields,
	}

	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, failure.Wrap(failure.KindAPI, eris.Wrap(err, "google: decode name"))
		}
		details.Name = model.StringPtr(name)
	}

	if raw, ok := fields["opening_hours"]; ok {
		var hours openingHours
		if err := json.Unmarshal(raw, &hours); err != nil {
			return nil, failure.Wrap(failure.KindAPI, eris.Wrap(err, "google: decode opening hours"))
		}
		details.OpeningHours = hours.WeekdayText
		details.OpenNow = hours.OpenNow
	}

	return details, nil
}
