package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/ibonuribe/clima-gateway/internal/fault"
	"github.com/sony/gobreaker"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"
)

// OpenMeteoClient implements the clima.WeatherFetcher interface against the
// Open-Meteo forecast and archive APIs. All three operations are stateless
// idempotent reads; none require an API key.
type OpenMeteoClient struct {
	client      *http.Client
	forecastURL string
	archiveURL  string
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	return &OpenMeteoClient{
		client:      client,
		forecastURL: defaultForecastURL,
		archiveURL:  defaultArchiveURL,
		circuit:     newCircuit("openmeteo"),
	}
}

// CurrentWeather requests current conditions for a coordinate.
func (c *OpenMeteoClient) CurrentWeather(ctx context.Context, coord clima.Coordinate) (clima.CurrentWeather, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(coord.Latitude))
	values.Set("longitude", formatCoord(coord.Longitude))
	values.Set("current_weather", "true")

	resp, err := doGet(ctx, c.client, c.circuit, c.forecastURL+"?"+values.Encode())
	if err != nil {
		return clima.CurrentWeather{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather *struct {
			Temperature   *float64 `json:"temperature"`
			WindSpeed     *float64 `json:"windspeed"`
			WindDirection *float64 `json:"winddirection"`
			Time          *string  `json:"time"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return clima.CurrentWeather{}, fault.Wrap(fault.Upstream, "decode current weather response", err)
	}
	if payload.CurrentWeather == nil {
		return clima.CurrentWeather{}, fault.New(fault.UpstreamMissingField, "provider response lacks current_weather block")
	}

	return clima.CurrentWeather{
		Temperature:   payload.CurrentWeather.Temperature,
		WindSpeed:     payload.CurrentWeather.WindSpeed,
		WindDirection: payload.CurrentWeather.WindDirection,
		ObservedAt:    payload.CurrentWeather.Time,
	}, nil
}

// DailyForecast requests per-day max/min temperature aggregates.
func (c *OpenMeteoClient) DailyForecast(ctx context.Context, coord clima.Coordinate, days int) (clima.DailySeries, error) {
	if days < 1 || days > 16 {
		return clima.DailySeries{}, fault.Newf(fault.InvalidArgument, "days must be between 1 and 16, got %d", days)
	}

	values := url.Values{}
	values.Set("latitude", formatCoord(coord.Latitude))
	values.Set("longitude", formatCoord(coord.Longitude))
	values.Set("daily", "temperature_2m_max,temperature_2m_min")
	values.Set("forecast_days", fmt.Sprintf("%d", days))
	values.Set("timezone", "UTC")

	resp, err := doGet(ctx, c.client, c.circuit, c.forecastURL+"?"+values.Encode())
	if err != nil {
		return clima.DailySeries{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily *struct {
			Time    []string   `json:"time"`
			TempMax []*float64 `json:"temperature_2m_max"`
			TempMin []*float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return clima.DailySeries{}, fault.Wrap(fault.Upstream, "decode daily forecast response", err)
	}
	if payload.Daily == nil || len(payload.Daily.Time) == 0 {
		return clima.DailySeries{}, fault.New(fault.UpstreamMissingField, "provider response lacks daily block")
	}
	if len(payload.Daily.TempMax) != len(payload.Daily.Time) || len(payload.Daily.TempMin) != len(payload.Daily.Time) {
		return clima.DailySeries{}, fault.New(fault.UpstreamMissingField, "daily series lengths do not match")
	}

	return clima.DailySeries{
		Dates:   payload.Daily.Time,
		TempMax: payload.Daily.TempMax,
		TempMin: payload.Daily.TempMin,
	}, nil
}

// HistoricalDay requests a single-day range from the archive API with the
// extended field set.
func (c *OpenMeteoClient) HistoricalDay(ctx context.Context, coord clima.Coordinate, date string) (clima.HistoricalObservation, error) {
	if _, err := clima.ParseDate(date); err != nil {
		return clima.HistoricalObservation{}, err
	}

	values := url.Values{}
	values.Set("latitude", formatCoord(coord.Latitude))
	values.Set("longitude", formatCoord(coord.Longitude))
	values.Set("start_date", date)
	values.Set("end_date", date)
	values.Set("daily", "temperature_2m_max,temperature_2m_min,apparent_temperature_max,apparent_temperature_min,precipitation_sum")
	values.Set("timezone", "UTC")

	resp, err := doGet(ctx, c.client, c.circuit, c.archiveURL+"?"+values.Encode())
	if err != nil {
		return clima.HistoricalObservation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily *struct {
			Time            []string   `json:"time"`
			TempMax         []*float64 `json:"temperature_2m_max"`
			TempMin         []*float64 `json:"temperature_2m_min"`
			ApparentTempMax []*float64 `json:"apparent_temperature_max"`
			ApparentTempMin []*float64 `json:"apparent_temperature_min"`
			Precipitation   []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return clima.HistoricalObservation{}, fault.Wrap(fault.Upstream, "decode historical response", err)
	}
	if payload.Daily == nil || len(payload.Daily.Time) == 0 {
		return clima.HistoricalObservation{}, fault.Newf(fault.NotFound, "no historical record for %s", date)
	}

	return clima.HistoricalObservation{
		Date:            payload.Daily.Time[0],
		TempMax:         first(payload.Daily.TempMax),
		TempMin:         first(payload.Daily.TempMin),
		ApparentTempMax: first(payload.Daily.ApparentTempMax),
		ApparentTempMin: first(payload.Daily.ApparentTempMin),
		Precipitation:   first(payload.Daily.Precipitation),
	}, nil
}

func first(vals []*float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%f", v)
}
