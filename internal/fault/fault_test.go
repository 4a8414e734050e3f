package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(NotFound, "no geocoding match")
	wrapped := fmt.Errorf("handling request: %w", base)

	kind, ok := KindOf(wrapped)
	if !ok || kind != NotFound {
		t.Fatalf("expected not_found through wrapping, got %v (%v)", kind, ok)
	}
	if !Is(wrapped, NotFound) {
		t.Error("Is should see through wrapping")
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(StoreUnavailable, "acquire store connection", cause)

	if !errors.Is(err, cause) {
		t.Error("expected cause to remain in the chain")
	}
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{InvalidArgument, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Upstream, http.StatusBadGateway},
		{UpstreamMissingField, http.StatusBadGateway},
		{StoreUnavailable, http.StatusServiceUnavailable},
		{ModelUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := StatusCode(New(tc.kind, "x")); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.kind, tc.want, got)
		}
	}

	if got := StatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("unclassified error: expected 500, got %d", got)
	}
}
