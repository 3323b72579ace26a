package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"unichat-backend/internal/domain"
)

type GroupMessageRepo struct {
	db *sql.DB
}

func NewGroupMessageRepo(db *sql.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

var _ domain.GroupMessageRepository = (*GroupMessageRepo)(nil)

func (r *GroupMessageRepo) Create(ctx context.Context, m *domain.GroupMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO group_messages (group_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, m.GroupID, m.SenderID, m.Body, m.CreatedAt).Scan(&m.ID)
}

func (r *GroupMessageRepo) GetByID(ctx context.Context, id int64) (*domain.GroupMessage, error) {
	m := &domain.GroupMessage{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, sender_id, body, created_at
		FROM group_messages WHERE id = $1
	`, id).Scan(&m.ID, &m.GroupID, &m.SenderID, &m.Body, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group message: %w", err)
	}
	return m, nil
}

func (r *GroupMessageRepo) ListForGroup(ctx context.Context, groupID int64) ([]*domain.GroupMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, sender_id, body, created_at
		FROM group_messages
		WHERE group_id = $1
		ORDER BY created_at, id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group messages: %w", err)
	}
	return r.scanMessages(rows)
}

func (r *GroupMessageRepo) LatestForGroup(ctx context.Context, groupID int64) (*domain.GroupMessage, error) {
	m := &domain.GroupMessage{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, sender_id, body, created_at
		FROM group_messages
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, groupID).Scan(&m.ID, &m.GroupID, &m.SenderID, &m.Body, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest group message: %w", err)
	}
	return m, nil
}

func (r *GroupMessageRepo) CountUnread(ctx context.Context, groupID, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM group_messages m
		WHERE m.group_id = $1
		  AND m.sender_id != $2
		  AND NOT EXISTS (
			SELECT 1 FROM group_message_reads r
			WHERE r.message_id = m.id AND r.user_id = $2
		  )
	`, groupID, userID).Scan(&count)
	return count, err
}

func (r *GroupMessageRepo) MarkAllRead(ctx context.Context, groupID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_message_reads (message_id, user_id, read_at)
		SELECT m.id, $2, NOW()
		FROM group_messages m
		WHERE m.group_id = $1 AND m.sender_id != $2
		ON CONFLICT DO NOTHING
	`, groupID, userID)
	return err
}

func (r *GroupMessageRepo) ToggleLike(ctx context.Context, messageID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO group_message_likes (message_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, messageID, userID)
	if err != nil {
		return false, fmt.Errorf("like group message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	_, err = r.db.ExecContext(ctx, `
		DELETE FROM group_message_likes WHERE message_id = $1 AND user_id = $2
	`, messageID, userID)
	return false, err
}

func (r *GroupMessageRepo) scanMessages(rows *sql.Rows) ([]*domain.GroupMessage, error) {
	defer rows.Close()
	var res []*domain.GroupMessage
	for rows.Next() {
		m := &domain.GroupMessage{}
		if err := rows.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
