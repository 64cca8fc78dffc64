package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forecast-vintage-api/internal/model"
)

// Both queries are limited to published ("d1") values of internal series and
// skip the "now" nowcast pseudo-forecast.
const observationFilter = `
		WHERE v.varname = $1::text
		  AND v.form = 'd1'
		  AND v.freq = $2::text
		  AND v.forecast <> 'now'
		  AND f.external = FALSE`

type ObservationRepository struct {
	pool *pgxpool.Pool
}

func NewObservationRepository(pool *pgxpool.Pool) *ObservationRepository {
	return &ObservationRepository{pool: pool}
}

// AllVintages returns every row of the series whose vintage date lies in the
// inclusive range, ordered by forecast, vintage date and observation date.
func (r *ObservationRepository) AllVintages(ctx context.Context, q model.VintageRangeQuery) ([]model.Observation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT v.forecast, f.shortname, v.freq, v.varname, v.vdate, v.date, v.value::float8
		 FROM forecast_values v
		 JOIN forecasts f ON v.forecast = f.id`+observationFilter+`
		  AND v.vdate >= $3::date
		  AND v.vdate <= $4::date
		 ORDER BY v.forecast, v.vdate, v.date
		 LIMIT $5`,
		q.Varname, q.Frequency, q.MinVintage, q.MaxVintage, model.MaxObservationRows)
	if err != nil {
		return nil, fmt.Errorf("query all vintages: %w", err)
	}

	return collectObservations(rows)
}

// LatestRevisions returns, for every observation date of the series, the
// rows carrying that date's greatest vintage date. Rows sharing that vintage
// date are all returned so the caller can reject the tie. The result is not
// capped; it holds at most one row per (forecast, date) in a clean table.
func (r *ObservationRepository) LatestRevisions(ctx context.Context, q model.SeriesQuery) ([]model.Observation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT forecast, shortname, freq, varname, vdate, date, value
		 FROM (
		   SELECT v.forecast, f.shortname, v.freq, v.varname, v.vdate, v.date, v.value::float8 AS value,
		          max(v.vdate) OVER (PARTITION BY v.forecast, v.date) AS top_vdate
		   FROM forecast_values v
		   JOIN forecasts f ON v.forecast = f.id`+observationFilter+`
		 ) latest
		 WHERE vdate = top_vdate
		 ORDER BY forecast, date, vdate`,
		q.Varname, q.Frequency)
	if err != nil {
		return nil, fmt.Errorf("query latest revisions: %w", err)
	}

	return collectObservations(rows)
}

func collectObservations(rows pgx.Rows) ([]model.Observation, error) {
	defer rows.Close()

	out := make([]model.Observation, 0)
	for rows.Next() {
		var o model.Observation
		if err := rows.Scan(&o.ForecastID, &o.Forecast, &o.Frequency, &o.Varname, &o.VintageDate, &o.Date, &o.Value); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return out, nil
}
