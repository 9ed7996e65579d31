// Package geocode resolves coordinates to structured addresses via the Google
// Geocoding API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"github.com/travelplaner/travelplaner/internal/model"
)

// Client reverse geocodes coordinates.
type Client interface {
	// ReverseGeocode returns the address at coords. A nil record with a nil
	// error means the API answered but found nothing.
	ReverseGeocode(ctx context.Context, coords model.Coordinates) (*model.AddressRecord, error)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the Geocoding API endpoint.
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		g.baseURL = u
	}
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a geocoding Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    googleGeocodeURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ReverseGeocode implements Client.
func (g *geocoder) ReverseGeocode(ctx context.Context, coords model.Coordinates) (*model.AddressRecord, error) {
	return g.reverseGoogle(ctx, coords)
}
