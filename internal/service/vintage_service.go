package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"forecast-vintage-api/internal/model"
	"forecast-vintage-api/pkg/apierror"
)

const (
	DefaultMinVintage = "2000-01-01"
	DefaultMaxVintage = "9999-12-31"
)

var (
	vintageDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	validFrequencies   = map[string]struct{}{"m": {}, "q": {}}
)

type observationStore interface {
	AllVintages(ctx context.Context, q model.VintageRangeQuery) ([]model.Observation, error)
	LatestRevisions(ctx context.Context, q model.SeriesQuery) ([]model.Observation, error)
}

type VintageService struct {
	store observationStore
}

func NewVintageService(store observationStore) *VintageService {
	return &VintageService{store: store}
}

// AllVintages returns the raw revision history of a series within the
// vintage range, without deduplication.
func (s *VintageService) AllVintages(ctx context.Context, q model.VintageRangeQuery) ([]model.ObservationPoint, error) {
	rows, err := s.store.AllVintages(ctx, q)
	if err != nil {
		return nil, err
	}

	return toPoints(rows), nil
}

// LastVintage returns every observation of the series as of its most recent
// vintage date.
func (s *VintageService) LastVintage(ctx context.Context, q model.SeriesQuery) ([]model.ObservationPoint, error) {
	rows, err := s.store.LatestRevisions(ctx, q)
	if err != nil {
		return nil, err
	}

	resolved, err := ResolveLastVintage(rows)
	if err != nil {
		return nil, err
	}

	return toPoints(resolved), nil
}

// ParseSeriesQuery validates the series name and frequency.
func ParseSeriesQuery(varname string, freq string) (model.SeriesQuery, error) {
	varname = strings.TrimSpace(varname)
	if varname == "" {
		return model.SeriesQuery{}, apierror.BadRequest("invalid parameters", "varname")
	}
	if _, ok := validFrequencies[freq]; !ok {
		return model.SeriesQuery{}, apierror.BadRequest("invalid parameters", "freq")
	}

	return model.SeriesQuery{Varname: varname, Frequency: freq}, nil
}

// ParseVintageRangeQuery validates a series query with an optional
// inclusive vintage-date range. Empty bounds take the open defaults.
func ParseVintageRangeQuery(varname string, freq string, minVdate string, maxVdate string) (model.VintageRangeQuery, error) {
	series, err := ParseSeriesQuery(varname, freq)
	if err != nil {
		return model.VintageRangeQuery{}, err
	}

	minVintage, err := parseVintageDate(minVdate, DefaultMinVintage, "min_vdate")
	if err != nil {
		return model.VintageRangeQuery{}, err
	}
	maxVintage, err := parseVintageDate(maxVdate, DefaultMaxVintage, "max_vdate")
	if err != nil {
		return model.VintageRangeQuery{}, err
	}

	return model.VintageRangeQuery{SeriesQuery: series, MinVintage: minVintage, MaxVintage: maxVintage}, nil
}

func parseVintageDate(raw string, fallback string, field string) (time.Time, error) {
	if raw == "" {
		raw = fallback
	}
	if !vintageDatePattern.MatchString(raw) {
		return time.Time{}, apierror.BadRequest("invalid parameters", field)
	}

	parsed, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, apierror.BadRequest("invalid parameters", field)
	}
	return parsed, nil
}

func toPoints(rows []model.Observation) []model.ObservationPoint {
	if len(rows) > model.MaxObservationRows {
		rows = rows[:model.MaxObservationRows]
	}

	points := make([]model.ObservationPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, row.Point())
	}
	return points
}
