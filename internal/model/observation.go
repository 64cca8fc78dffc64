package model

import "time"

const (
	DateLayout = "2006-01-02"

	// MaxObservationRows caps every observation query.
	MaxObservationRows = 10000
)

// Observation is one forecast_values row: the value for Date as known on
// VintageDate.
type Observation struct {
	ForecastID  string
	Forecast    string
	Frequency   string
	Varname     string
	VintageDate time.Time
	Date        time.Time
	Value       float64
}

type ObservationPoint struct {
	Forecast    string  `json:"forecast"`
	VintageDate string  `json:"vdate"`
	Date        string  `json:"date"`
	Value       float64 `json:"value"`
}

func (o Observation) Point() ObservationPoint {
	return ObservationPoint{
		Forecast:    o.Forecast,
		VintageDate: o.VintageDate.Format(DateLayout),
		Date:        o.Date.Format(DateLayout),
		Value:       o.Value,
	}
}

type SeriesQuery struct {
	Varname   string
	Frequency string
}

type VintageRangeQuery struct {
	SeriesQuery
	MinVintage time.Time
	MaxVintage time.Time
}
