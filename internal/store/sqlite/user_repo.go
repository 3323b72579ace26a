package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"unichat-backend/internal/domain"
)

const userColumns = `id, first_name, last_name, username, email, hashed_password, role, bio, is_approved,
	program, program_type, expected_grad_at, overall_gpa, proof, grad_at, current_job, created_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users
			(first_name, last_name, username, email, hashed_password, role, bio, is_approved,
			 program, program_type, expected_grad_at, overall_gpa, proof, grad_at, current_job, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.FirstName, u.LastName, u.Username, u.Email, u.HashedPassword, u.Role, u.Bio, u.IsApproved,
		u.Program, u.ProgramType, u.ExpectedGradAt, u.OverallGPA, u.Proof, u.GradAt, u.CurrentJob, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	for _, c := range u.Courses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO course_enrollments (user_id, course, semester, year)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, u.ID, c.Course, c.Semester, c.Year); err != nil {
			return fmt.Errorf("insert enrollment %s: %w", c.Course, err)
		}
	}

	return tx.Commit()
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)`, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]*domain.User, error) {
	where := []string{"TRUE"}
	args := []any{}
	if f.Role != nil {
		where = append(where, "role = ?")
		args = append(args, *f.Role)
	}
	if f.Approved != nil {
		where = append(where, "is_approved = ?")
		args = append(args, *f.Approved)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		where = append(where,
			"(lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR lower(username) LIKE ?)")
		args = append(args, pattern, pattern, pattern, pattern)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, f.Offset)

	query := fmt.Sprintf(`
		SELECT `+userColumns+` FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, strings.Join(where, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return scanUsers(rows)
}

func (r *UserRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
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

func (r *UserRepo) ListPendingApproval(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE is_approved = FALSE AND role IN (?, ?)
		ORDER BY created_at ASC
	`, domain.RoleMentor, domain.RoleAlumni)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return scanUsers(rows)
}

func (r *UserRepo) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?
		ORDER BY first_name, last_name
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return scanUsers(rows)
}

func (r *UserRepo) SetApproval(ctx context.Context, id int64, approved bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_approved = ? WHERE id = ?`, approved, id)
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	return requireRow(res)
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET first_name=?, last_name=?, bio=?, program=?, program_type=?, current_job=?
		WHERE id=?
	`, u.FirstName, u.LastName, u.Bio, u.Program, u.ProgramType, u.CurrentJob, u.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

func (r *UserRepo) ListEnrollments(ctx context.Context, userID int64) ([]domain.CourseEnrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT course, semester, year FROM course_enrollments
		WHERE user_id = ?
		ORDER BY year, semester, course
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()
	var res []domain.CourseEnrollment
	for rows.Next() {
		var c domain.CourseEnrollment
		if err := rows.Scan(&c.Course, &c.Semester, &c.Year); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *UserRepo) FindCoursePeers(ctx context.Context, userID int64, c domain.CourseEnrollment) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prefixed("u", userColumns)+`
		FROM users u
		JOIN course_enrollments ce ON ce.user_id = u.id
		WHERE ce.course = ? AND ce.semester = ? AND ce.year = ? AND u.id != ?
		ORDER BY u.id
	`, c.Course, c.Semester, c.Year, userID)
	if err != nil {
		return nil, fmt.Errorf("find course peers: %w", err)
	}
	return scanUsers(rows)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *UserRepo) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(userFields(u)...)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	defer rows.Close()
	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(userFields(u)...); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func userFields(u *domain.User) []any {
	return []any{
		&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.HashedPassword,
		&u.Role, &u.Bio, &u.IsApproved,
		&u.Program, &u.ProgramType, &u.ExpectedGradAt, &u.OverallGPA, &u.Proof,
		&u.GradAt, &u.CurrentJob, &u.CreatedAt,
	}
}

// prefixed qualifies a comma-separated column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i := range parts {
		parts[i] = alias + "." + strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
