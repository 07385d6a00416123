package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/wrenhall/homehub/internal/infrastructure/database"
	_ "github.com/wrenhall/homehub/migrations" // register embedded migrations
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func TestEnergyAppendAndSummary(t *testing.T) {
	repo := NewSQLiteEnergyRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	samples := []EnergySample{
		{DeviceID: "bedroom_ac", PowerWatts: 10, RecordedAt: base},
		{DeviceID: "bedroom_ac", PowerWatts: 20, RecordedAt: base.Add(time.Minute)},
		{DeviceID: "bedroom_ac", PowerWatts: 30, RecordedAt: base.Add(2 * time.Minute)},
		{DeviceID: "living_room_light", PowerWatts: 10, RecordedAt: base},
	}
	for _, s := range samples {
		if err := repo.Append(ctx, s); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	summaries, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	// Ordered by device_id: bedroom_ac first.
	ac := summaries[0]
	if ac.DeviceID != "bedroom_ac" {
		t.Fatalf("summaries[0] = %s", ac.DeviceID)
	}
	if ac.AverageWatts != 20 {
		t.Errorf("average = %v, want 20", ac.AverageWatts)
	}
	if ac.PeakWatts != 30 {
		t.Errorf("peak = %v, want 30", ac.PeakWatts)
	}
	if ac.SampleCount != 3 {
		t.Errorf("count = %d, want 3", ac.SampleCount)
	}
}

func TestEnergyRecentNewestFirst(t *testing.T) {
	repo := NewSQLiteEnergyRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := repo.Append(ctx, EnergySample{
			DeviceID:   "bedroom_ac",
			PowerWatts: float64(100 * i),
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, "bedroom_ac", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d samples, want 3", len(recent))
	}
	if recent[0].PowerWatts != 400 || recent[2].PowerWatts != 200 {
		t.Errorf("order wrong: %v, %v, %v", recent[0].PowerWatts, recent[1].PowerWatts, recent[2].PowerWatts)
	}
}

func TestSecurityRecentNewestFirst(t *testing.T) {
	repo := NewSQLiteSecurityRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := repo.Append(ctx, SecurityEvent{
			DeviceID:   "hallway_motion",
			EventType:  "motion_detected",
			Detail:     "Motion detected in hallway",
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	events, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if !events[0].OccurredAt.After(events[2].OccurredAt) {
		t.Error("events not newest first")
	}
	if events[0].EventType != "motion_detected" {
		t.Errorf("event type = %s", events[0].EventType)
	}
}

func TestSecurityRecentHonoursLimit(t *testing.T) {
	repo := NewSQLiteSecurityRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := repo.Append(ctx, SecurityEvent{
			DeviceID:   "hallway_motion",
			EventType:  "motion_detected",
			OccurredAt: time.Now().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	events, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}
