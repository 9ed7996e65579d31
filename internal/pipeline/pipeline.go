// Package pipeline sequences the stages that turn one Google Maps link into
// a stored location: parse, geocode, enrich and persist.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/travelplaner/travelplaner/internal/failure"
	"github.com/travelplaner/travelplaner/internal/maplink"
	"github.com/travelplaner/travelplaner/internal/model"
	"github.com/travelplaner/travelplaner/internal/store"
	"github.com/travelplaner/travelplaner/pkg/geocode"
	"github.com/travelplaner/travelplaner/pkg/google"
)

// Stage names, in execution order.
const (
	StageParse   = "parse"
	StageGeocode = "geocode"
	StageEnrich  = "enrich"
	StagePersist = "persist"
)

// StageStatus is the outcome of a single stage.
type StageStatus string

const (
	StageComplete StageStatus = "complete"
	StageSkipped  StageStatus = "skipped"
	StageFailed   StageStatus = "failed"
)

// StageResult records how one stage went.
type StageResult struct {
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Duration int64       `json:"duration_ms"`
	Error    string      `json:"error,omitempty"`
}

// Request is one link to process.
type Request struct {
	Link     string
	Table    string
	Metadata model.Metadata
}

// Result is what a run produced. Row is nil when the run failed before the
// record could be assembled.
type Result struct {
	RunID  string             `json:"run_id"`
	Row    *model.LocationRow `json:"row,omitempty"`
	Stages []StageResult      `json:"stages"`
}

// Stage returns the result of the named stage, if it ran.
func (r *Result) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// Pipeline runs the stages for one link at a time.
type Pipeline struct {
	geocoder geocode.Client
	places   google.Client
	store    store.Store
}

// New creates a Pipeline. places may be nil, which disables enrichment.
func New(geocoder geocode.Client, places google.Client, st store.Store) *Pipeline {
	return &Pipeline{
		geocoder: geocoder,
		places:   places,
		store:    st,
	}
}

// Run processes req. Each stage runs only if the previous one succeeded; the
// first fatal error stops the run and is returned together with the partial
// Result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{RunID: uuid.New().String()}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Debug("pipeline: starting", zap.String("link", req.Link))

	track := func(name string, fn func() (StageStatus, error)) error {
		start := time.Now()
		status, err := fn()
		sr := StageResult{Name: name, Status: status, Duration: time.Since(start).Milliseconds()}

		if err != nil {
			sr.Status = StageFailed
			sr.Error = err.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", sr.Duration),
				zap.Stringer("kind", failure.KindOf(err)),
				zap.Error(err),
			)
		} else {
			log.Info("pipeline: stage "+string(status),
				zap.String("stage", name),
				zap.Int64("duration_ms", sr.Duration),
			)
		}
		result.Stages = append(result.Stages, sr)
		return err
	}

	// Parse.
	var (
		coords model.Coordinates
		place  string
	)
	if err := track(StageParse, func() (StageStatus, error) {
		var err error
		coords, place, err = parseLink(req.Link)
		return StageComplete, err
	}); err != nil {
		return result, err
	}

	// Geocode.
	var address *model.AddressRecord
	if err := track(StageGeocode, func() (StageStatus, error) {
		addr, err := p.geocoder.ReverseGeocode(ctx, coords)
		if err != nil {
			return StageFailed, eris.Wrap(err, "pipeline: reverse geocode")
		}
		if addr == nil {
			return StageFailed, failure.Wrap(failure.KindNoResults,
				eris.Errorf("pipeline: no geocoding results for %s", coords.LatLng()))
		}
		address = addr
		return StageComplete, nil
	}); err != nil {
		return result, err
	}

	// Enrich. Never fatal.
	var details *model.PlaceDetails
	_ = track(StageEnrich, func() (StageStatus, error) {
		if p.places == nil || address.PlaceID == nil {
			return StageSkipped, nil
		}
		details = p.FetchPlaceDetails(ctx, *address.PlaceID)
		if details == nil {
			return StageSkipped, nil
		}
		return StageComplete, nil
	})

	result.Row = &model.LocationRow{
		Place:       place,
		Coordinates: coords,
		Address:     *address,
		Details:     details,
		Metadata:    req.Metadata,
		Link:        req.Link,
	}

	// Persist.
	if err := track(StagePersist, func() (StageStatus, error) {
		if err := p.store.Save(ctx, req.Table, result.Row); err != nil {
			return StageFailed, eris.Wrap(err, "pipeline: save location")
		}
		return StageComplete, nil
	}); err != nil {
		return result, err
	}

	log.Info("pipeline: location stored",
		zap.String("place", place),
		zap.String("table", req.Table),
	)
	return result, nil
}

// FetchPlaceDetails looks up opening hours and name for placeID. Failures
// are logged and yield nil; enrichment never stops a run.
func (p *Pipeline) FetchPlaceDetails(ctx context.Context, placeID string) *model.PlaceDetails {
	if p.places == nil {
		return nil
	}
	details, err := p.places.PlaceDetails(ctx, placeID, google.DefaultFields...)
	if err != nil {
		zap.L().Warn("pipeline: place details unavailable",
			zap.String("place_id", placeID),
			zap.Stringer("kind", failure.KindOf(err)),
			zap.Error(err),
		)
		return nil
	}
	return details
}

// parseLink extracts the coordinates and the decoded place name from link.
func parseLink(link string) (model.Coordinates, string, error) {
	coords, ok := maplink.ExtractCoordinates(link)
	if !ok {
		return model.Coordinates{}, "", failure.Wrap(failure.KindParse,
			eris.Errorf("pipeline: no coordinates found in link %q", link))
	}

	raw, ok := maplink.ExtractPlaceName(link)
	if !ok {
		return model.Coordinates{}, "", failure.Wrap(failure.KindParse,
			eris.Errorf("pipeline: no place name found in link %q", link))
	}
	place := strings.TrimSpace(maplink.DecodePlaceName(raw))
	if place == "" {
		return model.Coordinates{}, "", failure.Wrap(failure.KindParse,
			eris.Errorf("pipeline: empty place name in link %q", link))
	}
	return coords, place, nil
}
