package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the unichat schema on
// PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users: one table for every role, discriminated by the role column.
		`CREATE TABLE IF NOT EXISTS users (
			id               BIGSERIAL    PRIMARY KEY,
			first_name       VARCHAR(50)  NOT NULL,
			last_name        VARCHAR(50)  NOT NULL DEFAULT '',
			username         VARCHAR(50)  UNIQUE NOT NULL,
			email            VARCHAR(100) UNIQUE NOT NULL,
			hashed_password  VARCHAR(255) NOT NULL,
			role             VARCHAR(10)  NOT NULL,
			bio              TEXT         NOT NULL DEFAULT '',
			is_approved      BOOLEAN      NOT NULL DEFAULT TRUE,
			program          VARCHAR(100),
			program_type     VARCHAR(20),
			expected_grad_at TIMESTAMPTZ,
			overall_gpa      DOUBLE PRECISION,
			proof            TEXT,
			grad_at          TIMESTAMPTZ,
			current_job      VARCHAR(100),
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS course_enrollments (
			user_id  BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			course   VARCHAR(50) NOT NULL,
			semester VARCHAR(20) NOT NULL,
			year     INT         NOT NULL,
			PRIMARY KEY (user_id, course, semester, year)
		)`,

		`CREATE TABLE IF NOT EXISTS direct_messages (
			id          BIGSERIAL   PRIMARY KEY,
			sender_id   BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body        TEXT        NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			read_at     TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS direct_message_likes (
			message_id BIGINT NOT NULL REFERENCES direct_messages(id) ON DELETE CASCADE,
			user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (message_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS groups (
			id          BIGSERIAL    PRIMARY KEY,
			name        VARCHAR(100) NOT NULL,
			description TEXT         NOT NULL DEFAULT '',
			creator_id  BIGINT       NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_private  BOOLEAN      NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			group_id BIGINT      NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id  BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (group_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS group_messages (
			id         BIGSERIAL   PRIMARY KEY,
			group_id   BIGINT      NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			sender_id  BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body       TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS group_message_reads (
			message_id BIGINT      NOT NULL REFERENCES group_messages(id) ON DELETE CASCADE,
			user_id    BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			read_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (message_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS group_message_likes (
			message_id BIGINT NOT NULL REFERENCES group_messages(id) ON DELETE CASCADE,
			user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (message_id, user_id)
		)`,

		// No FK on user_id: notification creation deliberately does not
		// re-validate recipient existence (configurable at the service layer).
		`CREATE TABLE IF NOT EXISTS notifications (
			id           UUID        PRIMARY KEY,
			user_id      BIGINT      NOT NULL,
			type         VARCHAR(20) NOT NULL,
			message      TEXT        NOT NULL,
			related_kind VARCHAR(20) NOT NULL DEFAULT '',
			related_id   BIGINT      NOT NULL DEFAULT 0,
			is_read      BOOLEAN     NOT NULL DEFAULT FALSE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_course ON course_enrollments(course, semester, year)`,
		`CREATE INDEX IF NOT EXISTS idx_dm_sender ON direct_messages(sender_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_dm_receiver ON direct_messages(receiver_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_gm_group_created ON group_messages(group_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(user_id) WHERE is_read = FALSE`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}
