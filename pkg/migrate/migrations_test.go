package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kigurumiya/reserve-backend/pkg/migrate"
)

func TestReservationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_reservations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no reservations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS reservations",
		"FOREIGN KEY (item_id) REFERENCES rental_items(id) ON DELETE RESTRICT",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_confirmation_code",
		"CREATE INDEX IF NOT EXISTS idx_reservations_date_item_status",
		"CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed'))",
		"DROP TABLE IF EXISTS reservations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCalendarOverridesMigrationContainsUniquePair(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_calendar_overrides.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no calendar overrides migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS calendar_overrides",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_calendar_overrides_item_date ON calendar_overrides (item_id, date)",
		"FOREIGN KEY (item_id) REFERENCES rental_items(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS calendar_overrides",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
