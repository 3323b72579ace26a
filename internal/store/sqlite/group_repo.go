package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"unichat-backend/internal/domain"
)

type GroupRepo struct {
	db *sql.DB
}

func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

var _ domain.GroupRepository = (*GroupRepo)(nil)

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group, memberIDs []int64) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO groups (name, description, creator_id, is_private, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, g.Name, g.Description, g.CreatorID, g.IsPrivate, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	for _, uid := range memberIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, user_id, added_at)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, g.ID, uid, time.Now().UTC()); err != nil {
			return fmt.Errorf("insert member %d: %w", uid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	g.MemberIDs = memberIDs
	return nil
}

func (r *GroupRepo) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	g := &domain.Group{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, creator_id, is_private, created_at
		FROM groups WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.IsPrivate, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	ids, err := r.ListMemberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	g.MemberIDs = ids
	return g, nil
}

func (r *GroupRepo) ListForMember(ctx context.Context, userID int64) ([]*domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.creator_id, g.is_private, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups for member: %w", err)
	}
	defer rows.Close()

	var res []*domain.Group
	for rows.Next() {
		g := &domain.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.IsPrivate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

func (r *GroupRepo) Update(ctx context.Context, g *domain.Group) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE groups SET name=?, description=?, is_private=? WHERE id=?
	`, g.Name, g.Description, g.IsPrivate, g.ID)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return requireRow(res)
}

func (r *GroupRepo) Delete(ctx context.Context, id int64) error {
	// group_members, group_messages and their reads/likes cascade.
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return requireRow(res)
}

func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, groupID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = ? AND user_id = ?
	`, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return requireRow(res)
}

func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?
		)
	`, groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return exists, nil
}

func (r *GroupRepo) ListMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *GroupRepo) ListMembers(ctx context.Context, groupID int64) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prefixed("u", userColumns)+`
		FROM users u
		JOIN group_members gm ON gm.user_id = u.id
		WHERE gm.group_id = ?
		ORDER BY u.first_name, u.last_name
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return scanUsers(rows)
}
