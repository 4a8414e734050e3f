// Package model loads offline-trained regression artifacts from object
// storage and produces naive day-indexed temperature forecasts.
package model

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/ibonuribe/clima-gateway/internal/fault"
	"golang.org/x/sync/singleflight"
)

// ArtifactFetcher retrieves a serialized model blob by key.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// LinearModel is a deserialized regression artifact. The only feature the
// models were trained on is the day index; that is a property of the
// training pipeline, not something to compensate for here.
type LinearModel struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Predict evaluates the model for a day index.
func (m *LinearModel) Predict(dayIndex int) float64 {
	p := m.Intercept
	if len(m.Coefficients) > 0 {
		p += m.Coefficients[0] * float64(dayIndex)
	}
	return p
}

type artifactPair struct {
	tempMax *LinearModel
	tempMin *LinearModel
}

// Runner memoizes the two artifacts after a single successful load.
// Concurrent first callers share one in-flight load; a failed load is not
// cached, so the next request retries it.
type Runner struct {
	fetcher ArtifactFetcher
	maxKey  string
	minKey  string

	group  singleflight.Group
	loaded atomic.Pointer[artifactPair]
}

// NewRunner creates a Runner. fetcher may be nil when no artifact store is
// configured; Predict then reports ModelUnavailable.
func NewRunner(fetcher ArtifactFetcher, maxKey, minKey string) *Runner {
	return &Runner{
		fetcher: fetcher,
		maxKey:  maxKey,
		minKey:  minKey,
	}
}

// Predict returns one prediction per day index 1..days, in order.
func (r *Runner) Predict(ctx context.Context, days int) ([]clima.ForecastPrediction, error) {
	if days < 1 {
		return nil, fault.Newf(fault.InvalidArgument, "days must be at least 1, got %d", days)
	}

	pair, err := r.models(ctx)
	if err != nil {
		return nil, err
	}

	predictions := make([]clima.ForecastPrediction, 0, days)
	for day := 1; day <= days; day++ {
		predictions = append(predictions, clima.ForecastPrediction{
			DayIndex:         day,
			PredictedTempMax: pair.tempMax.Predict(day),
			PredictedTempMin: pair.tempMin.Predict(day),
		})
	}
	return predictions, nil
}

func (r *Runner) models(ctx context.Context) (*artifactPair, error) {
	if pair := r.loaded.Load(); pair != nil {
		return pair, nil
	}

	v, err, _ := r.group.Do("artifacts", func() (any, error) {
		if pair := r.loaded.Load(); pair != nil {
			return pair, nil
		}

		tempMax, err := r.load(ctx, r.maxKey)
		if err != nil {
			return nil, err
		}
		tempMin, err := r.load(ctx, r.minKey)
		if err != nil {
			return nil, err
		}

		pair := &artifactPair{tempMax: tempMax, tempMin: tempMin}
		r.loaded.Store(pair)
		return pair, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*artifactPair), nil
}

func (r *Runner) load(ctx context.Context, key string) (*LinearModel, error) {
	if r.fetcher == nil {
		return nil, fault.New(fault.ModelUnavailable, "artifact store is not configured")
	}

	blob, err := r.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, fault.Wrap(fault.ModelUnavailable, "fetch model artifact "+key, err)
	}

	var m LinearModel
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, fault.Wrap(fault.ModelUnavailable, "deserialize model artifact "+key, err)
	}
	if len(m.Coefficients) == 0 {
		return nil, fault.Newf(fault.ModelUnavailable, "model artifact %s has no coefficients", key)
	}
	return &m, nil
}
