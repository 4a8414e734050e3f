// Package scheduler periodically pulls recent station observations into the
// relational store. The HTTP read path never writes; this job is the only
// writer.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/rs/zerolog"
)

// StationSource provides daily records for a location over a date range.
type StationSource interface {
	DailyRecords(ctx context.Context, location string, from, to time.Time) ([]clima.HistoricalObservation, error)
}

// ObservationSink persists daily records.
type ObservationSink interface {
	UpsertObservations(ctx context.Context, observations []clima.HistoricalObservation) error
}

// syncWindowDays is how far back each run reaches. Station data lags by a
// few days, so runs overlap and the upsert absorbs the duplicates.
const syncWindowDays = 7

// Scheduler periodically syncs observations for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    StationSource
	sink      ObservationSink
	locations []string
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a Scheduler.
func New(locations []string, interval time.Duration, source StationSource, sink ObservationSink, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		source:    source,
		sink:      sink,
		locations: locations,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.log.Info().Msg("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce syncs every configured location concurrently. Failures are logged
// per location and never abort the other locations.
func (s *Scheduler) RunOnce() {
	s.log.Info().Msg("scheduler: running observation sync")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.syncLocation(ctx, loc); err != nil {
				s.log.Error().Err(err).Str("location", loc).Msg("scheduler: sync failed")
			}
		}()
	}
	wg.Wait()

	s.log.Info().Msg("scheduler: completed observation sync")
}

func (s *Scheduler) syncLocation(ctx context.Context, location string) error {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -syncWindowDays)

	records, err := s.source.DailyRecords(ctx, location, from, to)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.log.Debug().Str("location", location).Msg("scheduler: no records in window")
		return nil
	}
	if err := s.sink.UpsertObservations(ctx, records); err != nil {
		return err
	}

	s.log.Info().Str("location", location).Int("records", len(records)).Msg("scheduler: synced observations")
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
