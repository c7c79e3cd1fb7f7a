package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/memorymatch-web/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// DB is the single data-access handle for users, games, statistics and
// achievements. It implements Store.
type DB struct {
	*sqlx.DB
	driver string
}

// NewDB opens a connection for the given driver and ensures the schema exists.
func NewDB(driver, dsn string) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}

	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "memorymatch.db" // Default SQLite file
		}
		if !strings.Contains(dsn, "_foreign_keys") {
			if strings.Contains(dsn, "?") {
				dsn += "&_foreign_keys=on"
			} else {
				dsn += "?_foreign_keys=on"
			}
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires a dsn")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// A single writer avoids "database is locked" and keeps :memory: on one connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}

	dbWrapper := &DB{DB: db, driver: driver}

	if err := dbWrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.New().Info(fmt.Sprintf("Database connection established (%s) and tables initialized", driver))
	return dbWrapper, nil
}

// Driver reports which SQL dialect the handle speaks.
func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) createTables() error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamp := "DATETIME"
	if db.driver == DriverPostgres {
		idColumn = "SERIAL PRIMARY KEY"
		timestamp = "TIMESTAMPTZ"
	}

	usersTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS users (
		id %[1]s,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at %[2]s NOT NULL,
		updated_at %[2]s NOT NULL,
		last_login_at %[2]s,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`, idColumn, timestamp)

	sessionsTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS game_sessions (
		id %[1]s,
		session_id TEXT UNIQUE NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		difficulty TEXT NOT NULL,
		grid_size INTEGER NOT NULL,
		started_at %[2]s NOT NULL,
		finished_at %[2]s,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		score INTEGER NOT NULL DEFAULT 0,
		moves INTEGER NOT NULL DEFAULT 0,
		matches INTEGER NOT NULL DEFAULT 0,
		time_ms BIGINT
	);`, idColumn, timestamp)

	achievementsTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS user_achievements (
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		achievement_id TEXT NOT NULL,
		unlocked_at %[1]s NOT NULL,
		PRIMARY KEY (user_id, achievement_id)
	);`, timestamp)

	activitiesTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS game_activities (
		id %[1]s,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		created_at %[2]s NOT NULL
	);`, idColumn, timestamp)

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON game_sessions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_completed ON game_sessions(completed, difficulty);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user_id ON game_activities(user_id, created_at);`,
	}

	for _, query := range []string{usersTable, sessionsTable, achievementsTable, activitiesTable} {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// get, sel and exec rebind ? placeholders for the active driver.
func (db *DB) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := db.GetContext(ctx, dest, db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (db *DB) sel(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return db.SelectContext(ctx, dest, db.Rebind(query), args...)
}

func (db *DB) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.ExecContext(ctx, db.Rebind(query), args...)
}

// isUniqueViolation recognises duplicate key errors from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
