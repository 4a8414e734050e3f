package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ibonuribe/clima-gateway/internal/clima"
)

// MemoryStore is a concurrency-safe in-memory observation store. It backs
// tests and local runs without a database; the production store is
// PostgresStore.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []clima.HistoricalObservation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Query filters and orders rows with the same semantics as the SQL store:
// exact case-insensitive location match, newest first, at most limit rows.
func (s *MemoryStore) Query(_ context.Context, location string, limit int) ([]clima.HistoricalObservation, error) {
	if limit <= 0 {
		limit = 7
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []clima.HistoricalObservation
	for _, row := range s.rows {
		if location == "" || strings.EqualFold(row.Location, location) {
			result = append(result, row)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// UpsertObservations replaces rows sharing a (station, date) key and appends
// the rest.
func (s *MemoryStore) UpsertObservations(_ context.Context, observations []clima.HistoricalObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obs := range observations {
		replaced := false
		for i, row := range s.rows {
			if row.StationID == obs.StationID && row.Date == obs.Date {
				s.rows[i] = obs
				replaced = true
				break
			}
		}
		if !replaced {
			s.rows = append(s.rows, obs)
		}
	}
	return nil
}
