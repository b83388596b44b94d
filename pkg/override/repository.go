package override

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	FindAll(ctx context.Context) ([]Override, error)
	StoreBatch(ctx context.Context, batch []Override) error
	Reconcile(ctx context.Context, changed []Override, dropped []string) error
	Delete(ctx context.Context, eventId string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const upsertQuery = `INSERT INTO event_override (event_id, start_time, end_time, batch_id, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id) DO UPDATE SET
				start_time = COALESCE(EXCLUDED.start_time, event_override.start_time),
				end_time = COALESCE(EXCLUDED.end_time, event_override.end_time),
				batch_id = EXCLUDED.batch_id,
				updated_at = EXCLUDED.updated_at`

const overwriteQuery = `INSERT INTO event_override (event_id, start_time, end_time, batch_id, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id) DO UPDATE SET
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				batch_id = EXCLUDED.batch_id,
				updated_at = EXCLUDED.updated_at`

func (r *RepositoryImpl) FindAll(ctx context.Context) ([]Override, error) {
	query := `SELECT event_id, start_time, end_time, batch_id::text, updated_at FROM event_override ORDER BY event_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query event overrides: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	overrides := make([]Override, 0, 10)
	for rows.Next() {
		var o Override
		var start, end *time.Time
		var batchId string
		if err := rows.Scan(&o.EventId, &start, &end, &batchId, &o.UpdatedAt); err != nil {
			err := fmt.Errorf("could not scan event override: %w", err)
			log.Error(err)
			return nil, err
		}
		o.StartTime = start
		o.EndTime = end
		o.BatchId, _ = uuid.Parse(batchId)
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read event overrides: %w", err)
	}
	return overrides, nil
}

// StoreBatch upserts a batch in one transaction. Fields left nil keep their stored value,
// matching Set.With merge semantics.
func (r *RepositoryImpl) StoreBatch(ctx context.Context, batch []Override) error {
	return r.withTransaction(ctx, func(tx pgx.Tx) error {
		for _, o := range batch {
			if _, err := tx.Exec(ctx, upsertQuery, o.EventId, o.StartTime, o.EndTime, o.BatchId.String(), o.UpdatedAt); err != nil {
				return fmt.Errorf("could not store override for event %s: %w", o.EventId, err)
			}
		}
		return nil
	})
}

// Reconcile writes the outcome of a refresh in one transaction: changed overrides are
// stored exactly as given, including cleared fields, and dropped ones are removed.
func (r *RepositoryImpl) Reconcile(ctx context.Context, changed []Override, dropped []string) error {
	return r.withTransaction(ctx, func(tx pgx.Tx) error {
		if len(dropped) > 0 {
			if _, err := tx.Exec(ctx, "DELETE FROM event_override WHERE event_id = ANY($1)", dropped); err != nil {
				return fmt.Errorf("could not delete dropped overrides: %w", err)
			}
		}
		for _, o := range changed {
			if _, err := tx.Exec(ctx, overwriteQuery, o.EventId, o.StartTime, o.EndTime, o.BatchId.String(), o.UpdatedAt); err != nil {
				return fmt.Errorf("could not store override for event %s: %w", o.EventId, err)
			}
		}
		return nil
	})
}

func (r *RepositoryImpl) Delete(ctx context.Context, eventId string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM event_override WHERE event_id = $1", eventId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		log.Error(err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
