package clima

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ibonuribe/clima-gateway/internal/fault"
)

type fakeGeo struct {
	calls int
	coord Coordinate
	err   error
}

func (f *fakeGeo) Resolve(_ context.Context, _ string) (Coordinate, error) {
	f.calls++
	return f.coord, f.err
}

type fakeWeather struct {
	calls   int
	current CurrentWeather
	series  DailySeries
	obs     HistoricalObservation
	err     error
}

func (f *fakeWeather) CurrentWeather(_ context.Context, _ Coordinate) (CurrentWeather, error) {
	f.calls++
	return f.current, f.err
}

func (f *fakeWeather) DailyForecast(_ context.Context, _ Coordinate, days int) (DailySeries, error) {
	f.calls++
	return f.series, f.err
}

func (f *fakeWeather) HistoricalDay(_ context.Context, _ Coordinate, _ string) (HistoricalObservation, error) {
	f.calls++
	return f.obs, f.err
}

type fakeStore struct {
	rows []HistoricalObservation
	err  error
}

func (f *fakeStore) Query(_ context.Context, _ string, limit int) ([]HistoricalObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

type fakeModel struct {
	err error
}

func (f *fakeModel) Predict(_ context.Context, days int) ([]ForecastPrediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ForecastPrediction, 0, days)
	for i := 1; i <= days; i++ {
		out = append(out, ForecastPrediction{DayIndex: i})
	}
	return out, nil
}

func newTestService(geo *fakeGeo, weather *fakeWeather, st *fakeStore, m *fakeModel) *Service {
	return NewService(geo, weather, st, m, zerolog.Nop())
}

func TestHistoricalValidatesDateBeforeResolving(t *testing.T) {
	geo := &fakeGeo{}
	weather := &fakeWeather{}
	svc := newTestService(geo, weather, &fakeStore{}, &fakeModel{})

	_, err := svc.Historical(context.Background(), "Bilbao", "2026-13-40")
	if !fault.Is(err, fault.InvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
	if geo.calls != 0 || weather.calls != 0 {
		t.Fatalf("expected no collaborator calls, got geo=%d weather=%d", geo.calls, weather.calls)
	}
}

func TestCurrentPropagatesUpstreamKind(t *testing.T) {
	geo := &fakeGeo{coord: Coordinate{Latitude: 43.26, Longitude: -2.93}}
	weather := &fakeWeather{err: fault.New(fault.UpstreamMissingField, "provider response lacks current_weather block")}
	svc := newTestService(geo, weather, &fakeStore{}, &fakeModel{})

	_, err := svc.Current(context.Background(), "Bilbao")
	if !fault.Is(err, fault.UpstreamMissingField) {
		t.Fatalf("expected upstream_missing_field to pass through, got %v", err)
	}
}

func TestDailyRejectsOutOfRangeDays(t *testing.T) {
	geo := &fakeGeo{}
	svc := newTestService(geo, &fakeWeather{}, &fakeStore{}, &fakeModel{})

	for _, days := range []int{0, -1, 17} {
		_, err := svc.Daily(context.Background(), "Bilbao", days, false)
		if !fault.Is(err, fault.InvalidArgument) {
			t.Fatalf("days=%d: expected invalid_argument, got %v", days, err)
		}
	}
	if geo.calls != 0 {
		t.Fatalf("expected no geocoding calls, got %d", geo.calls)
	}
}

func TestDailyAttachesRendering(t *testing.T) {
	tmax := 24.0
	tmin := 15.0
	geo := &fakeGeo{coord: Coordinate{Latitude: 43.26, Longitude: -2.93}}
	weather := &fakeWeather{series: DailySeries{
		Dates:   []string{"2026-08-30"},
		TempMax: []*float64{&tmax},
		TempMin: []*float64{&tmin},
	}}
	svc := newTestService(geo, weather, &fakeStore{}, &fakeModel{})

	plain, err := svc.Daily(context.Background(), "Bilbao", 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain.RenderedSeries != "" {
		t.Error("expected no rendering when render=false")
	}

	rendered, err := svc.Daily(context.Background(), "Bilbao", 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.RenderedSeries == "" {
		t.Error("expected rendered series when render=true")
	}
}

func TestHandleUnknownView(t *testing.T) {
	svc := newTestService(&fakeGeo{}, &fakeWeather{}, &fakeStore{}, &fakeModel{})

	_, err := svc.Handle(context.Background(), Request{View: View("graphical")})
	if !fault.Is(err, fault.InvalidArgument) {
		t.Fatalf("expected invalid_argument for unknown view, got %v", err)
	}
}

func TestObservationsDefaultLimit(t *testing.T) {
	rows := make([]HistoricalObservation, 10)
	for i := range rows {
		rows[i] = HistoricalObservation{Date: "2026-08-20"}
	}
	svc := newTestService(&fakeGeo{}, &fakeWeather{}, &fakeStore{rows: rows}, &fakeModel{})

	got, err := svc.Observations(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected default limit of 7, got %d rows", len(got))
	}
}

func TestForecastPropagatesStoreAndModelFailures(t *testing.T) {
	svc := newTestService(&fakeGeo{}, &fakeWeather{},
		&fakeStore{err: fault.New(fault.StoreUnavailable, "connection refused")},
		&fakeModel{err: fault.New(fault.ModelUnavailable, "artifact fetch failed")})

	if _, err := svc.Observations(context.Background(), "Bilbao", 3); !fault.Is(err, fault.StoreUnavailable) {
		t.Fatalf("expected store_unavailable, got %v", err)
	}
	if _, err := svc.Forecast(context.Background(), "Bilbao", 3); !fault.Is(err, fault.ModelUnavailable) {
		t.Fatalf("expected model_unavailable, got %v", err)
	}
}
