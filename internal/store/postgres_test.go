package store

import (
	"context"
	"math/big"
	"os"
	"strings"
	"testing"

	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/jackc/pgx/v5/pgtype"
)

// testPostgres connects to the database named by TEST_DATABASE_URL and skips
// the test when it is unreachable. The observations table must exist.
func testPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewPostgres(context.Background(), dsn)
	if err != nil {
		t.Skipf("database not available: %v", err)
	}
	if _, err := s.pool.Exec(context.Background(), "SELECT 1"); err != nil {
		t.Skipf("database not reachable: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestPostgresQueryRoundTrip(t *testing.T) {
	s := testPostgres(t)
	ctx := context.Background()

	tmax := 27.4
	tmin := 16.2
	rows := []clima.HistoricalObservation{
		{StationID: "test-1082", Location: "Bilbao", Date: "2026-08-27", TempMax: &tmax, TempMin: &tmin},
		{StationID: "test-1082", Location: "Bilbao", Date: "2026-08-28", TempMax: &tmax},
		{StationID: "test-1082", Location: "Bilbao", Date: "2026-08-26"},
		{StationID: "test-3195", Location: "Madrid", Date: "2026-08-28"},
	}
	if err := s.UpsertObservations(ctx, rows); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Query(ctx, "bilbao", 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) > 3 {
		t.Fatalf("expected at most 3 rows, got %d", len(got))
	}
	for i, row := range got {
		if !strings.EqualFold(row.Location, "Bilbao") {
			t.Errorf("row %d: unexpected location %q", i, row.Location)
		}
		if i > 0 && got[i-1].Date < row.Date {
			t.Errorf("rows not ordered newest first: %s before %s", got[i-1].Date, row.Date)
		}
	}
}

func TestNumericToFloat(t *testing.T) {
	if got := numericToFloat(pgtype.Numeric{}); got != nil {
		t.Errorf("expected nil for NULL numeric, got %v", *got)
	}

	// 27.4 stored as 274 * 10^-1.
	n := pgtype.Numeric{Int: big.NewInt(274), Exp: -1, Valid: true}
	got := numericToFloat(n)
	if got == nil || *got != 27.4 {
		t.Errorf("expected 27.4, got %v", got)
	}

	neg := pgtype.Numeric{Int: big.NewInt(-32), Exp: -1, Valid: true}
	got = numericToFloat(neg)
	if got == nil || *got != -3.2 {
		t.Errorf("expected -3.2, got %v", got)
	}
}
