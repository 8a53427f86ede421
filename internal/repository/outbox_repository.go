package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-sync-server/internal/domain"
)

type OutboxRepository interface {
	// Enqueue appends a pending intent. Outside of attempt bookkeeping,
	// existing items are never mutated.
	Enqueue(ctx context.Context, item *domain.OutboxItem) error
	// NextBatch returns up to limit items, oldest first, so early failures
	// are never starved by newer traffic.
	NextBatch(ctx context.Context, limit int) ([]*domain.OutboxItem, error)
	MarkAttempt(ctx context.Context, id string, attemptErr string) error
	Delete(ctx context.Context, id string) error
	CountPending(ctx context.Context) (int64, error)
}

type outboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, item *domain.OutboxItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outbox (id, entity_type, entity_id, operation, created_at, attempt_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`, item.ID, item.EntityType, item.EntityID, item.Operation, item.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox item: %w", err)
	}
	return nil
}

func (r *outboxRepository) NextBatch(ctx context.Context, limit int) ([]*domain.OutboxItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, operation, created_at, attempt_count, last_attempt_at, error
		FROM outbox
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox batch: %w", err)
	}
	defer rows.Close()

	var items []*domain.OutboxItem
	for rows.Next() {
		var item domain.OutboxItem
		var lastAttempt sql.NullTime
		var lastErr sql.NullString
		if err := rows.Scan(&item.ID, &item.EntityType, &item.EntityID, &item.Operation, &item.CreatedAt, &item.AttemptCount, &lastAttempt, &lastErr); err != nil {
			return nil, err
		}
		if lastAttempt.Valid {
			item.LastAttemptAt = &lastAttempt.Time
		}
		if lastErr.Valid {
			item.Error = &lastErr.String
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *outboxRepository) MarkAttempt(ctx context.Context, id string, attemptErr string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE outbox SET attempt_count = attempt_count + 1, last_attempt_at = ?, error = ?
		WHERE id = ?
	`, time.Now().UTC(), attemptErr, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox attempt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *outboxRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete outbox item: %w", err)
	}
	return nil
}

func (r *outboxRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count outbox items: %w", err)
	}
	return n, nil
}
