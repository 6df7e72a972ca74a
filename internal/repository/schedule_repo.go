package repository

import (
	"context"
	"database/sql"
	"fmt"

	"food-order-service/internal/hours"
)

// ScheduleRepo persists the weekly business-hours schedule, one row per
// weekday (0=Monday .. 6=Sunday). Times are stored as "HH:MM" strings.
type ScheduleRepo struct {
	db *sql.DB
}

func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// LoadWeek reads the full schedule. Days without a row are absent from the
// map, which the gate reports as no_hours_defined.
func (r *ScheduleRepo) LoadWeek(ctx context.Context) (hours.Schedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT weekday, open_time, close_time, is_closed FROM business_hours`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sched := hours.Schedule{}
	for rows.Next() {
		var (
			weekday           int
			openRaw, closeRaw *string
			closed            bool
		)
		if err := rows.Scan(&weekday, &openRaw, &closeRaw, &closed); err != nil {
			return nil, err
		}
		day := hours.DayHours{Closed: closed}
		if openRaw != nil {
			t, err := hours.ParseTimeOfDay(*openRaw)
			if err != nil {
				return nil, fmt.Errorf("weekday %d open_time: %w", weekday, err)
			}
			day.Open = &t
		}
		if closeRaw != nil {
			t, err := hours.ParseTimeOfDay(*closeRaw)
			if err != nil {
				return nil, fmt.Errorf("weekday %d close_time: %w", weekday, err)
			}
			day.Close = &t
		}
		sched[weekday] = day
	}
	return sched, rows.Err()
}

// UpsertDay writes the hours for one weekday.
func (r *ScheduleRepo) UpsertDay(ctx context.Context, weekday int, day hours.DayHours) error {
	if weekday < 0 || weekday > 6 {
		return fmt.Errorf("weekday must be 0..6, got %d", weekday)
	}
	var openRaw, closeRaw *string
	if day.Open != nil {
		s := day.Open.String()
		openRaw = &s
	}
	if day.Close != nil {
		s := day.Close.String()
		closeRaw = &s
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO business_hours (weekday, open_time, close_time, is_closed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (weekday)
		DO UPDATE SET open_time = $2, close_time = $3, is_closed = $4
	`, weekday, openRaw, closeRaw, day.Closed)
	return err
}
