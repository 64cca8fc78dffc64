package service

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"forecast-vintage-api/internal/model"
)

type seriesKey struct {
	forecast  string
	frequency string
	varname   string
}

type observationKey struct {
	seriesKey
	date string
}

// ResolveLastVintage reduces a revision history to the most recent vintage
// of each series. It first keeps, per (forecast, frequency, varname, date),
// the row with the greatest vintage date; it then keeps only those rows
// whose vintage date equals the greatest vintage date of their series.
//
// Two rows sharing the greatest vintage date of the same observation break
// the one-row-per-vintage invariant and are reported as ErrDuplicateVintage.
func ResolveLastVintage(rows []model.Observation) ([]model.Observation, error) {
	latest := make(map[observationKey]int, len(rows))
	tied := make(map[observationKey]bool)
	order := make([]observationKey, 0, len(rows))

	for i, row := range rows {
		key := observationKey{
			seriesKey: seriesKey{forecast: row.ForecastID, frequency: row.Frequency, varname: row.Varname},
			date:      row.Date.Format(model.DateLayout),
		}

		current, seen := latest[key]
		switch {
		case !seen:
			latest[key] = i
			order = append(order, key)
		case row.VintageDate.After(rows[current].VintageDate):
			latest[key] = i
			delete(tied, key)
		case row.VintageDate.Equal(rows[current].VintageDate):
			tied[key] = true
		}
	}

	for _, key := range order {
		if tied[key] {
			row := rows[latest[key]]
			return nil, fmt.Errorf("%w: forecast %s date %s vintage %s",
				model.ErrDuplicateVintage, row.ForecastID, key.date, row.VintageDate.Format(model.DateLayout))
		}
	}

	seriesMax := make(map[seriesKey]time.Time)
	for _, key := range order {
		vdate := rows[latest[key]].VintageDate
		if best, ok := seriesMax[key.seriesKey]; !ok || vdate.After(best) {
			seriesMax[key.seriesKey] = vdate
		}
	}

	out := make([]model.Observation, 0, len(order))
	for _, key := range order {
		row := rows[latest[key]]
		if row.VintageDate.Equal(seriesMax[key.seriesKey]) {
			out = append(out, row)
		}
	}

	slices.SortStableFunc(out, func(a, b model.Observation) int {
		if c := a.VintageDate.Compare(b.VintageDate); c != 0 {
			return c
		}
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ForecastID, b.ForecastID)
	})

	return out, nil
}
