package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Senders and recipients may be patients or nutritionists, so participant
// names are resolved against the union of both tables.
const notificationQuery = `
	WITH users AS (
		SELECT id, name, email FROM patients
		UNION ALL
		SELECT id, name, email FROM nutritionists
	)
	SELECT nt.id, nt.from_id, uf.name, uf.email,
		nt.to_id, ut.name, ut.email,
		nt.message, nt.read, nt.related_entity_id, nt.created_at
	FROM notifications nt
	JOIN users ut ON ut.id = nt.to_id
	LEFT JOIN users uf ON uf.id = nt.from_id`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var fromID *uuid.UUID
	var fromName, fromEmail *string

	err := row.Scan(
		&n.ID,
		&fromID,
		&fromName,
		&fromEmail,
		&n.To.ID,
		&n.To.Name,
		&n.To.Email,
		&n.Message,
		&n.Read,
		&n.RelatedEntityID,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if fromID != nil {
		n.From = &scheduling.Participant{ID: *fromID}
		if fromName != nil {
			n.From.Name = *fromName
		}
		if fromEmail != nil {
			n.From.Email = *fromEmail
		}
	}
	return &n, nil
}

func (r *PgRepository) Insert(ctx context.Context, n *Notification) error {
	var fromID *uuid.UUID
	if n.From != nil {
		fromID = &n.From.ID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, from_id, to_id, message, read, related_entity_id, created_at)
		VALUES ($1, $2, $3, $4, false, $5, now())
	`, n.ID, fromID, n.To.ID, n.Message, n.RelatedEntityID)
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	row := r.pool.QueryRow(ctx, notificationQuery+` WHERE nt.id = $1`, id)
	return scanNotification(row)
}

func (r *PgRepository) ListByRecipient(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int64, error) {
	rows, err := r.pool.Query(ctx, notificationQuery+`
		WHERE nt.to_id = $1
		ORDER BY nt.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE to_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PgRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = true WHERE id = $1 AND to_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
