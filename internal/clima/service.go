package clima

import (
	"context"

	"github.com/ibonuribe/clima-gateway/internal/fault"
	"github.com/rs/zerolog"
)

// GeoResolver turns a place name into a coordinate pair.
type GeoResolver interface {
	Resolve(ctx context.Context, placeName string) (Coordinate, error)
}

// WeatherFetcher is the external forecast provider, in its three query shapes.
type WeatherFetcher interface {
	CurrentWeather(ctx context.Context, coord Coordinate) (CurrentWeather, error)
	DailyForecast(ctx context.Context, coord Coordinate, days int) (DailySeries, error)
	HistoricalDay(ctx context.Context, coord Coordinate, date string) (HistoricalObservation, error)
}

// ObservationStore is read-only access to persisted daily observations.
type ObservationStore interface {
	Query(ctx context.Context, location string, limit int) ([]HistoricalObservation, error)
}

// Forecaster produces day-indexed temperature predictions.
type Forecaster interface {
	Predict(ctx context.Context, days int) ([]ForecastPrediction, error)
}

// View selects which response shape a request asks for. The choice is always
// explicit; it is never inferred from the other request fields.
type View string

const (
	ViewCurrent      View = "current"
	ViewDaily        View = "daily"
	ViewHistorical   View = "historical"
	ViewObservations View = "observations"
	ViewForecast     View = "forecast"
)

// Request is the caller-facing input to the assembler.
type Request struct {
	View      View
	PlaceName string
	Location  string
	Date      string
	Days      int
	Render    bool
}

// CurrentResponse is the current-weather response shape.
type CurrentResponse struct {
	PlaceName     string   `json:"place_name"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"wind_speed"`
	WindDirection *float64 `json:"wind_direction"`
	ObservedAt    *string  `json:"observed_at"`
}

// DailyResponse is the daily-forecast response shape.
type DailyResponse struct {
	PlaceName      string     `json:"place_name"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Dates          []string   `json:"dates"`
	TempMax        []*float64 `json:"temp_max"`
	TempMin        []*float64 `json:"temp_min"`
	RenderedSeries string     `json:"rendered_series,omitempty"`
}

// HistoricalResponse is the single-day historical response shape.
type HistoricalResponse struct {
	PlaceName       string   `json:"place_name"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Date            string   `json:"date"`
	TempMax         *float64 `json:"temp_max"`
	TempMin         *float64 `json:"temp_min"`
	ApparentTempMax *float64 `json:"apparent_temp_max"`
	ApparentTempMin *float64 `json:"apparent_temp_min"`
	Precipitation   *float64 `json:"precipitation"`
}

// Service is the response assembler: it runs the geocode → fetch → reshape
// chain for every view and maps collaborator failures into the fault
// taxonomy. It holds no mutable state of its own.
type Service struct {
	geo     GeoResolver
	weather WeatherFetcher
	store   ObservationStore
	model   Forecaster
	log     zerolog.Logger
}

// NewService creates a Service.
func NewService(geo GeoResolver, weather WeatherFetcher, store ObservationStore, model Forecaster, log zerolog.Logger) *Service {
	return &Service{
		geo:     geo,
		weather: weather,
		store:   store,
		model:   model,
		log:     log,
	}
}

// Handle dispatches a request to the view it names.
func (s *Service) Handle(ctx context.Context, req Request) (any, error) {
	switch req.View {
	case ViewCurrent:
		return s.Current(ctx, req.PlaceName)
	case ViewDaily:
		return s.Daily(ctx, req.PlaceName, req.Days, req.Render)
	case ViewHistorical:
		return s.Historical(ctx, req.PlaceName, req.Date)
	case ViewObservations:
		return s.Observations(ctx, req.Location, req.Days)
	case ViewForecast:
		return s.Forecast(ctx, req.Location, req.Days)
	default:
		return nil, fault.Newf(fault.InvalidArgument, "unknown view %q", req.View)
	}
}

// Current resolves a place name and returns its current conditions.
func (s *Service) Current(ctx context.Context, placeName string) (CurrentResponse, error) {
	coord, err := s.resolve(ctx, placeName)
	if err != nil {
		return CurrentResponse{}, err
	}

	current, err := s.weather.CurrentWeather(ctx, coord)
	if err != nil {
		return CurrentResponse{}, err
	}

	return CurrentResponse{
		PlaceName:     placeName,
		Latitude:      coord.Latitude,
		Longitude:     coord.Longitude,
		Temperature:   current.Temperature,
		WindSpeed:     current.WindSpeed,
		WindDirection: current.WindDirection,
		ObservedAt:    current.ObservedAt,
	}, nil
}

// Daily resolves a place name and returns a multi-day max/min series,
// optionally with a bar-chart rendering attached.
func (s *Service) Daily(ctx context.Context, placeName string, days int, render bool) (DailyResponse, error) {
	if days < 1 || days > 16 {
		return DailyResponse{}, fault.Newf(fault.InvalidArgument, "days must be between 1 and 16, got %d", days)
	}

	coord, err := s.resolve(ctx, placeName)
	if err != nil {
		return DailyResponse{}, err
	}

	series, err := s.weather.DailyForecast(ctx, coord, days)
	if err != nil {
		return DailyResponse{}, err
	}

	resp := DailyResponse{
		PlaceName: placeName,
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		Dates:     series.Dates,
		TempMax:   series.TempMax,
		TempMin:   series.TempMin,
	}
	if render {
		resp.RenderedSeries = RenderSeries(series)
	}
	return resp, nil
}

// Historical resolves a place name and returns the observation for one
// calendar date. The date is validated before any outbound call.
func (s *Service) Historical(ctx context.Context, placeName, date string) (HistoricalResponse, error) {
	if _, err := ParseDate(date); err != nil {
		return HistoricalResponse{}, err
	}

	coord, err := s.resolve(ctx, placeName)
	if err != nil {
		return HistoricalResponse{}, err
	}

	obs, err := s.weather.HistoricalDay(ctx, coord, date)
	if err != nil {
		return HistoricalResponse{}, err
	}

	return HistoricalResponse{
		PlaceName:       placeName,
		Latitude:        coord.Latitude,
		Longitude:       coord.Longitude,
		Date:            obs.Date,
		TempMax:         obs.TempMax,
		TempMin:         obs.TempMin,
		ApparentTempMax: obs.ApparentTempMax,
		ApparentTempMin: obs.ApparentTempMin,
		Precipitation:   obs.Precipitation,
	}, nil
}

// Observations reads persisted daily observations, newest first.
func (s *Service) Observations(ctx context.Context, location string, limit int) ([]HistoricalObservation, error) {
	if limit <= 0 {
		limit = 7
	}
	return s.store.Query(ctx, location, limit)
}

// Forecast returns day-indexed model predictions. The location is part of
// the request surface but the models are trained on the day index alone, so
// it only appears in logs.
func (s *Service) Forecast(ctx context.Context, location string, days int) ([]ForecastPrediction, error) {
	if days < 1 {
		return nil, fault.Newf(fault.InvalidArgument, "days must be at least 1, got %d", days)
	}

	s.log.Debug().Str("location", location).Int("days", days).Msg("running model forecast")
	return s.model.Predict(ctx, days)
}

func (s *Service) resolve(ctx context.Context, placeName string) (Coordinate, error) {
	if placeName == "" {
		return Coordinate{}, fault.New(fault.InvalidArgument, "place_name is required")
	}
	coord, err := s.geo.Resolve(ctx, placeName)
	if err != nil {
		return Coordinate{}, err
	}
	s.log.Debug().Str("place", placeName).Float64("lat", coord.Latitude).Float64("lon", coord.Longitude).Msg("resolved place name")
	return coord, nil
}
