package clima

import (
	"time"

	"github.com/ibonuribe/clima-gateway/internal/fault"
)

// DateLayout is the calendar-date format accepted and emitted everywhere.
const DateLayout = "2006-01-02"

// ParseDate validates a YYYY-MM-DD string. Malformed input is an
// InvalidArgument, reported before any outbound call is made.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fault.Newf(fault.InvalidArgument, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Coordinate is a WGS 84 coordinate pair produced by the geocoder.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather holds provider current conditions. Every field is a
// pointer because the provider may omit any of them.
type CurrentWeather struct {
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"wind_speed"`
	WindDirection *float64 `json:"wind_direction"`
	ObservedAt    *string  `json:"observed_at"`
}

// DailySeries is an aligned per-day series: index i of Dates, TempMax and
// TempMin refers to the same day, and the three slices are equal length.
type DailySeries struct {
	Dates   []string   `json:"dates"`
	TempMax []*float64 `json:"temp_max"`
	TempMin []*float64 `json:"temp_min"`
}

// Len returns the number of days in the series.
func (d DailySeries) Len() int {
	return len(d.Dates)
}

// HistoricalObservation is one daily record sourced from a provider or the
// relational store. Numeric fields are nullable; providers and stores have
// gaps.
type HistoricalObservation struct {
	StationID       string   `json:"station_id,omitempty"`
	Location        string   `json:"station_location,omitempty"`
	Date            string   `json:"date"`
	TempMax         *float64 `json:"temp_max"`
	TempMin         *float64 `json:"temp_min"`
	ApparentTempMax *float64 `json:"apparent_temp_max,omitempty"`
	ApparentTempMin *float64 `json:"apparent_temp_min,omitempty"`
	Precipitation   *float64 `json:"precipitation,omitempty"`
	WindSpeed       *float64 `json:"wind_speed,omitempty"`
	WindDirection   *float64 `json:"wind_direction,omitempty"`
	Humidity        *float64 `json:"humidity,omitempty"`
	PressureMin     *float64 `json:"pressure_min,omitempty"`
	PressureMax     *float64 `json:"pressure_max,omitempty"`
}

// ForecastPrediction is one model output for a single day index.
type ForecastPrediction struct {
	DayIndex         int     `json:"day_index"`
	PredictedTempMax float64 `json:"predicted_temp_max"`
	PredictedTempMin float64 `json:"predicted_temp_min"`
}
