// Package store provides access to persisted daily weather observations.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/ibonuribe/clima-gateway/internal/fault"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads and writes the observations table. Connections are
// acquired from the pool per request and released unconditionally, so a
// request never holds a connection beyond its own lifetime.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store from a DSN. The pool connects lazily; an
// unreachable database surfaces per request as StoreUnavailable rather than
// failing process startup.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Query returns up to limit observations newest first. A non-empty location
// filters exactly, case-insensitively, on the stored location name. Rows
// sharing a date come back in the store's natural order.
func (s *PostgresStore) Query(ctx context.Context, location string, limit int) ([]clima.HistoricalObservation, error) {
	if limit <= 0 {
		limit = 7
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "acquire store connection", err)
	}
	defer conn.Release()

	query := `SELECT station_id, location, obs_date, temp_max, temp_min, apparent_temp_max, apparent_temp_min,
	                 precipitation, wind_speed, wind_direction, humidity, pressure_min, pressure_max
	          FROM observations`
	args := []any{}
	if location != "" {
		query += ` WHERE lower(location) = lower($1)`
		args = append(args, location)
	}
	query += fmt.Sprintf(` ORDER BY obs_date DESC LIMIT %d`, limit)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "query observations", err)
	}
	defer rows.Close()

	var result []clima.HistoricalObservation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fault.Wrap(fault.StoreUnavailable, "scan observation row", err)
		}
		result = append(result, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Wrap(fault.StoreUnavailable, "read observation rows", err)
	}
	return result, nil
}

// UpsertObservations batch-writes daily records, used only by the sync job;
// the HTTP read path never mutates the table.
func (s *PostgresStore) UpsertObservations(ctx context.Context, observations []clima.HistoricalObservation) error {
	if len(observations) == 0 {
		return nil
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fault.Wrap(fault.StoreUnavailable, "acquire store connection", err)
	}
	defer conn.Release()

	batch := &pgx.Batch{}
	for _, o := range observations {
		obsDate, err := clima.ParseDate(o.Date)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO observations (
				station_id, location, obs_date, temp_max, temp_min, apparent_temp_max, apparent_temp_min,
				precipitation, wind_speed, wind_direction, humidity, pressure_min, pressure_max
			)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (station_id, obs_date) DO UPDATE SET
			   location = $2, temp_max = $4, temp_min = $5, apparent_temp_max = $6, apparent_temp_min = $7,
			   precipitation = $8, wind_speed = $9, wind_direction = $10, humidity = $11,
			   pressure_min = $12, pressure_max = $13`,
			o.StationID, o.Location, obsDate, o.TempMax, o.TempMin, o.ApparentTempMax, o.ApparentTempMin,
			o.Precipitation, o.WindSpeed, o.WindDirection, o.Humidity, o.PressureMin, o.PressureMax,
		)
	}

	br := conn.SendBatch(ctx, batch)
	defer br.Close()
	for range observations {
		if _, err := br.Exec(); err != nil {
			return fault.Wrap(fault.StoreUnavailable, "upsert observation", err)
		}
	}
	return nil
}

func scanObservation(rows pgx.Rows) (clima.HistoricalObservation, error) {
	var (
		obs     clima.HistoricalObservation
		obsDate time.Time
		numeric [10]pgtype.Numeric
	)
	if err := rows.Scan(
		&obs.StationID, &obs.Location, &obsDate,
		&numeric[0], &numeric[1], &numeric[2], &numeric[3], &numeric[4],
		&numeric[5], &numeric[6], &numeric[7], &numeric[8], &numeric[9],
	); err != nil {
		return clima.HistoricalObservation{}, err
	}

	obs.Date = obsDate.Format(clima.DateLayout)
	obs.TempMax = numericToFloat(numeric[0])
	obs.TempMin = numericToFloat(numeric[1])
	obs.ApparentTempMax = numericToFloat(numeric[2])
	obs.ApparentTempMin = numericToFloat(numeric[3])
	obs.Precipitation = numericToFloat(numeric[4])
	obs.WindSpeed = numericToFloat(numeric[5])
	obs.WindDirection = numericToFloat(numeric[6])
	obs.Humidity = numericToFloat(numeric[7])
	obs.PressureMin = numericToFloat(numeric[8])
	obs.PressureMax = numericToFloat(numeric[9])
	return obs, nil
}

// numericToFloat converts a NUMERIC column to float64 at the store boundary.
// NULL and unrepresentable values map to nil.
func numericToFloat(n pgtype.Numeric) *float64 {
	if !n.Valid {
		return nil
	}
	v, err := n.Float64Value()
	if err != nil || !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
