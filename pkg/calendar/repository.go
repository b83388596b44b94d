package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("calendar event not found")

type Repository interface {
	StoreEvent(ctx context.Context, event LocalEvent) (uuid.UUID, error)
	GetEvents(ctx context.Context, from, to time.Time) ([]LocalEvent, error)
	UpdateEvent(ctx context.Context, event LocalEvent) error
	DeleteEvent(ctx context.Context, uid uuid.UUID) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, event LocalEvent) (uuid.UUID, error) {
	query := `INSERT INTO calendar_event (uid, title, start_time, end_time, all_day, location)
				VALUES ($1, $2, $3, $4, $5, $6)`
	uid := uuid.New()
	_, err := r.db.Exec(ctx, query, uid.String(), event.Title, event.StartTime, event.EndTime, event.AllDay, event.Location)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return uuid.Nil, err
	}
	return uid, nil
}

// GetEvents returns events overlapping [from, to), ordered by start.
func (r *RepositoryImpl) GetEvents(ctx context.Context, from, to time.Time) ([]LocalEvent, error) {
	query := `SELECT uid::text, title, start_time, end_time, all_day, location
              FROM calendar_event
              WHERE start_time < $1 AND end_time > $2
			  ORDER BY start_time, uid`

	rows, err := r.db.Query(ctx, query, to, from)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]LocalEvent, 0, 10)
	for rows.Next() {
		var e LocalEvent
		var uid string
		if err := rows.Scan(&uid, &e.Title, &e.StartTime, &e.EndTime, &e.AllDay, &e.Location); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		e.UID, err = uuid.Parse(uid)
		if err != nil {
			return nil, fmt.Errorf("invalid event uid %q: %w", uid, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read calendar events: %w", err)
	}
	return events, nil
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, event LocalEvent) error {
	query := `UPDATE calendar_event SET title = $1, start_time = $2, end_time = $3, all_day = $4, location = $5
				WHERE uid = $6`
	tag, err := r.db.Exec(ctx, query, event.Title, event.StartTime, event.EndTime, event.AllDay, event.Location, event.UID.String())
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, uid uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM calendar_event WHERE uid = $1", uid.String())
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
