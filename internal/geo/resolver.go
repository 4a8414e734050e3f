// Package geo resolves place names to coordinates through the Open-Meteo
// geocoding API, optionally falling back to the Google geocoder when a key
// is configured.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/ibonuribe/clima-gateway/internal/fault"
	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

const defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// Resolver maps a place name to its best-match coordinate. The provider's
// relevance ordering is trusted: the first match wins, no local re-ranking.
type Resolver struct {
	client    *http.Client
	baseURL   string
	circuit   *gobreaker.CircuitBreaker
	googleKey string
}

// NewResolver creates a Resolver. googleKey may be empty, in which case the
// Google fallback is disabled and a zero-match answer is final.
func NewResolver(client *http.Client, googleKey string) *Resolver {
	if googleKey != "" {
		geocoder.ApiKey = googleKey
	}
	return &Resolver{
		client: client,
		baseURL: defaultGeocodingURL,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "geocoding",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		googleKey: googleKey,
	}
}

// Resolve returns the coordinate for a place name. Zero matches yield a
// NotFound error; transport or status failures yield an upstream error.
func (r *Resolver) Resolve(ctx context.Context, placeName string) (clima.Coordinate, error) {
	if placeName == "" {
		return clima.Coordinate{}, fault.New(fault.InvalidArgument, "place_name is required")
	}

	values := url.Values{}
	values.Set("name", placeName)
	values.Set("count", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return clima.Coordinate{}, fault.Wrap(fault.Upstream, "build geocoding request", err)
	}

	result, err := r.circuit.Execute(func() (interface{}, error) {
		resp, execErr := r.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return clima.Coordinate{}, fault.Wrap(fault.Upstream, "geocoding request failed", err)
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return clima.Coordinate{}, fault.Wrap(fault.Upstream, "decode geocoding response", err)
	}

	if len(payload.Results) == 0 {
		if r.googleKey != "" {
			return r.resolveGoogle(placeName)
		}
		return clima.Coordinate{}, fault.Newf(fault.NotFound, "no geocoding match for %q", placeName)
	}

	return clima.Coordinate{
		Latitude:  payload.Results[0].Latitude,
		Longitude: payload.Results[0].Longitude,
	}, nil
}

// resolveGoogle is the fallback path through the Google geocoder. Its errors
// collapse into NotFound: the primary provider already reported zero
// matches, so a fallback miss means the place is unresolvable.
func (r *Resolver) resolveGoogle(placeName string) (clima.Coordinate, error) {
	location, err := geocoder.Geocoding(geocoder.Address{City: placeName})
	if err != nil {
		return clima.Coordinate{}, fault.Wrap(fault.NotFound, fmt.Sprintf("no geocoding match for %q", placeName), err)
	}
	return clima.Coordinate{
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}, nil
}
