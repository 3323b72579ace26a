package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"unichat-backend/internal/domain"
)

type DirectMessageRepo struct {
	db *sql.DB
}

func NewDirectMessageRepo(db *sql.DB) *DirectMessageRepo {
	return &DirectMessageRepo{db: db}
}

var _ domain.DirectMessageRepository = (*DirectMessageRepo)(nil)

func (r *DirectMessageRepo) Create(ctx context.Context, m *domain.DirectMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO direct_messages (sender_id, receiver_id, body, created_at)
		VALUES (?, ?, ?, ?)
	`, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert direct message: %w", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r *DirectMessageRepo) GetByID(ctx context.Context, id int64) (*domain.DirectMessage, error) {
	m := &domain.DirectMessage{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, body, created_at, read_at
		FROM direct_messages WHERE id = ?
	`, id).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt, &m.ReadAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get direct message: %w", err)
	}
	return m, nil
}

func (r *DirectMessageRepo) ListBetween(ctx context.Context, a, b int64) ([]*domain.DirectMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, body, created_at, read_at
		FROM direct_messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at, id
	`, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("list direct messages: %w", err)
	}
	return r.scanMessages(rows)
}

func (r *DirectMessageRepo) ListLatestPerCounterpart(ctx context.Context, userID int64) ([]*domain.DirectMessage, error) {
	// The per-store id is monotonic in write order, so MAX(id) per
	// counterpart is the most recent message of that pair.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, body, created_at, read_at
		FROM direct_messages
		WHERE id IN (
			SELECT MAX(id) FROM direct_messages
			WHERE sender_id = ?1 OR receiver_id = ?1
			GROUP BY CASE WHEN sender_id = ?1 THEN receiver_id ELSE sender_id END
		)
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list latest per counterpart: %w", err)
	}
	return r.scanMessages(rows)
}

func (r *DirectMessageRepo) CountUnread(ctx context.Context, userID, counterpartID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM direct_messages
		WHERE receiver_id = ? AND sender_id = ? AND read_at IS NULL
	`, userID, counterpartID).Scan(&count)
	return count, err
}

func (r *DirectMessageRepo) MarkRead(ctx context.Context, userID, counterpartID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE direct_messages SET read_at = ?
		WHERE receiver_id = ? AND sender_id = ? AND read_at IS NULL
	`, time.Now().UTC(), userID, counterpartID)
	return err
}

func (r *DirectMessageRepo) ToggleLike(ctx context.Context, messageID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO direct_message_likes (message_id, user_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, messageID, userID)
	if err != nil {
		return false, fmt.Errorf("like direct message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	_, err = r.db.ExecContext(ctx, `
		DELETE FROM direct_message_likes WHERE message_id = ? AND user_id = ?
	`, messageID, userID)
	return false, err
}

func (r *DirectMessageRepo) scanMessages(rows *sql.Rows) ([]*domain.DirectMessage, error) {
	defer rows.Close()
	var res []*domain.DirectMessage
	for rows.Next() {
		m := &domain.DirectMessage{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt, &m.ReadAt); err != nil {
			return nil, fmt.Errorf("scan direct message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
