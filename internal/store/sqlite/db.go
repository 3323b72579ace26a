package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at the given path. Use
// ":memory:" for an in-process throwaway database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc's driver does not support concurrent writers on one file.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the unichat schema on SQLite.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name       TEXT    NOT NULL,
			last_name        TEXT    NOT NULL DEFAULT '',
			username         TEXT    UNIQUE NOT NULL,
			email            TEXT    UNIQUE NOT NULL,
			hashed_password  TEXT    NOT NULL,
			role             TEXT    NOT NULL,
			bio              TEXT    NOT NULL DEFAULT '',
			is_approved      BOOLEAN NOT NULL DEFAULT TRUE,
			program          TEXT,
			program_type     TEXT,
			expected_grad_at TIMESTAMP,
			overall_gpa      REAL,
			proof            TEXT,
			grad_at          TIMESTAMP,
			current_job      TEXT,
			created_at       TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS course_enrollments (
			user_id  INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			course   TEXT    NOT NULL,
			semester TEXT    NOT NULL,
			year     INTEGER NOT NULL,
			PRIMARY KEY (user_id, course, semester, year)
		)`,

		`CREATE TABLE IF NOT EXISTS direct_messages (
			id          INTEGER   PRIMARY KEY AUTOINCREMENT,
			sender_id   INTEGER   NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id INTEGER   NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body        TEXT      NOT NULL,
			created_at  TIMESTAMP NOT NULL,
			read_at     TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS direct_message_likes (
			message_id INTEGER NOT NULL REFERENCES direct_messages(id) ON DELETE CASCADE,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (message_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS groups (
			id          INTEGER   PRIMARY KEY AUTOINCREMENT,
			name        TEXT      NOT NULL,
			description TEXT      NOT NULL DEFAULT '',
			creator_id  INTEGER   NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_private  BOOLEAN   NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			group_id INTEGER   NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id  INTEGER   NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			added_at TIMESTAMP NOT NULL,
			PRIMARY KEY (group_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS group_messages (
			id         INTEGER   PRIMARY KEY AUTOINCREMENT,
			group_id   INTEGER   NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			sender_id  INTEGER   NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body       TEXT      NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS group_message_reads (
			message_id INTEGER   NOT NULL REFERENCES group_messages(id) ON DELETE CASCADE,
			user_id    INTEGER   NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			read_at    TIMESTAMP NOT NULL,
			PRIMARY KEY (message_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS group_message_likes (
			message_id INTEGER NOT NULL REFERENCES group_messages(id) ON DELETE CASCADE,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (message_id, user_id)
		)`,

		// No FK on user_id: notification creation deliberately does not
		// re-validate recipient existence (configurable at the service layer).
		`CREATE TABLE IF NOT EXISTS notifications (
			id           TEXT      PRIMARY KEY,
			user_id      INTEGER   NOT NULL,
			type         TEXT      NOT NULL,
			message      TEXT      NOT NULL,
			related_kind TEXT      NOT NULL DEFAULT '',
			related_id   INTEGER   NOT NULL DEFAULT 0,
			is_read      BOOLEAN   NOT NULL DEFAULT FALSE,
			created_at   TIMESTAMP NOT NULL
		)`,

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
