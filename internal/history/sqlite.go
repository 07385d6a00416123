package history

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenhall/homehub/internal/infrastructure/database"
)

// defaultRecentLimit caps Recent queries when the caller passes no limit.
const defaultRecentLimit = 50

// SQLiteEnergyRepository implements EnergyRepository on the hub database.
type SQLiteEnergyRepository struct {
	db *database.DB
}

// NewSQLiteEnergyRepository creates an energy repository.
func NewSQLiteEnergyRepository(db *database.DB) *SQLiteEnergyRepository {
	return &SQLiteEnergyRepository{db: db}
}

// Append stores one power sample.
func (r *SQLiteEnergyRepository) Append(ctx context.Context, sample EnergySample) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO energy_samples (device_id, power_watts, recorded_at)
		VALUES (?, ?, ?)
	`,
		sample.DeviceID,
		sample.PowerWatts,
		sample.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("appending energy sample: %w", err)
	}
	return nil
}

// Summary aggregates retained samples per device. Devices with no
// samples are absent from the result; callers decide how to present
// them.
func (r *SQLiteEnergyRepository) Summary(ctx context.Context) ([]EnergySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT device_id, AVG(power_watts), MAX(power_watts), COUNT(*)
		FROM energy_samples
		GROUP BY device_id
		ORDER BY device_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying energy summary: %w", err)
	}
	defer rows.Close()

	var summaries []EnergySummary
	for rows.Next() {
		var s EnergySummary
		if err := rows.Scan(&s.DeviceID, &s.AverageWatts, &s.PeakWatts, &s.SampleCount); err != nil {
			return nil, fmt.Errorf("scanning energy summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating energy summary: %w", err)
	}
	return summaries, nil
}

// Recent returns a device's newest samples, newest first.
func (r *SQLiteEnergyRepository) Recent(ctx context.Context, deviceID string, limit int) ([]EnergySample, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, device_id, power_watts, recorded_at
		FROM energy_samples
		WHERE device_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying energy samples: %w", err)
	}
	defer rows.Close()

	var samples []EnergySample
	for rows.Next() {
		var s EnergySample
		var recordedAt string
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.PowerWatts, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning energy sample row: %w", err)
		}
		s.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing sample timestamp: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating energy samples: %w", err)
	}
	return samples, nil
}

// SQLiteSecurityRepository implements SecurityRepository on the hub database.
type SQLiteSecurityRepository struct {
	db *database.DB
}

// NewSQLiteSecurityRepository creates a security event repository.
func NewSQLiteSecurityRepository(db *database.DB) *SQLiteSecurityRepository {
	return &SQLiteSecurityRepository{db: db}
}

// Append stores one security event.
func (r *SQLiteSecurityRepository) Append(ctx context.Context, event SecurityEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO security_events (device_id, event_type, detail, occurred_at)
		VALUES (?, ?, ?, ?)
	`,
		event.DeviceID,
		event.EventType,
		event.Detail,
		event.OccurredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("appending security event: %w", err)
	}
	return nil
}

// Recent returns the newest events, newest first.
func (r *SQLiteSecurityRepository) Recent(ctx context.Context, limit int) ([]SecurityEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, device_id, event_type, detail, occurred_at
		FROM security_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying security events: %w", err)
	}
	defer rows.Close()

	var events []SecurityEvent
	for rows.Next() {
		var e SecurityEvent
		var occurredAt string
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.EventType, &e.Detail, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning security event row: %w", err)
		}
		e.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing event timestamp: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating security events: %w", err)
	}
	return events, nil
}
