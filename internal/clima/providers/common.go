package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ibonuribe/clima-gateway/internal/fault"
	"github.com/sony/gobreaker"
)

// doGet executes a single GET against a provider through its circuit
// breaker. There are no retries: a failed call surfaces immediately as a
// typed upstream error, and an open circuit fails fast the same way. The
// caller owns the response body.
func doGet(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, url string) (*http.Response, error) {
	if client == nil {
		return nil, fault.New(fault.Upstream, "http client not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fault.Wrap(fault.Upstream, "build provider request", err)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fault.Newf(fault.Upstream, "provider returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fault.Wrap(fault.Upstream, "provider circuit open", err)
		}
		var fe *fault.Error
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, fault.Wrap(fault.Upstream, "provider request failed", err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fault.New(fault.Upstream, "unexpected result type from circuit breaker")
	}
	return resp, nil
}

func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}
