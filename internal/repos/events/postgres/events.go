package events

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuslink/points-engine/internal/repos/events"
)

var _ events.Events = (*eventsRepo)(nil)

type eventsRepo struct{ db *sql.DB }

func New(db *sql.DB) *eventsRepo {
	return &eventsRepo{db: db}
}

func (r *eventsRepo) Get(tx *sql.Tx, eventID int64) (events.Event, error) {
	var ev events.Event

	err := tx.QueryRow(`
		SELECT id, host_id, title, starts_at, ends_at
		FROM events
		WHERE id = $1
	`, eventID).Scan(&ev.ID, &ev.HostID, &ev.Title, &ev.StartsAt, &ev.EndsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Event{}, events.ErrEventNotFound
		}

		return events.Event{}, fmt.Errorf("get event: %w", err)
	}

	return ev, nil
}

func (r *eventsRepo) IsRegistered(tx *sql.Tx, eventID, accountID int64) (bool, error) {
	var registered bool

	err := tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM event_registrations
			WHERE event_id = $1 AND account_id = $2
		)
	`, eventID, accountID).Scan(&registered)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}

	return registered, nil
}

func (r *eventsRepo) MarkAttended(tx *sql.Tx, eventID, accountID int64) error {
	_, err := tx.Exec(`
		UPDATE event_registrations
		SET status = 'attended'
		WHERE event_id = $1 AND account_id = $2
	`, eventID, accountID)
	if err != nil {
		return fmt.Errorf("mark attended: %w", err)
	}

	return nil
}
