package entity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository on the embedded file-backed store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed entity repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// EnsureSchema provisions the entities table if it does not exist yet.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS entities (
        eid TEXT PRIMARY KEY,
        msisdn_hash TEXT NOT NULL UNIQUE,
        username TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        created_at INTEGER NOT NULL
    )`)
	return err
}

// Create inserts a new entity. Uniqueness violations map to ErrDuplicate.
func (r *SQLiteRepository) Create(ctx context.Context, e Entity) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO entities (eid, msisdn_hash, username, password_hash, created_at)
        VALUES (?, ?, ?, ?, ?)`, e.EID, e.MSISDNHash, e.Username, e.PasswordHash, e.CreatedAt.UTC().UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByMSISDN fetches the entity owning the given phone number.
func (r *SQLiteRepository) FindByMSISDN(ctx context.Context, msisdn string) (Entity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT eid, msisdn_hash, username, password_hash, created_at
        FROM entities WHERE msisdn_hash = ?`, msisdn)
	return scanSQLiteEntity(row)
}

// FindByUsername fetches the entity owning the given username.
func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (Entity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT eid, msisdn_hash, username, password_hash, created_at
        FROM entities WHERE username = ?`, username)
	return scanSQLiteEntity(row)
}

func scanSQLiteEntity(row *sql.Row) (Entity, error) {
	var (
		e      Entity
		millis int64
	)
	if err := row.Scan(&e.EID, &e.MSISDNHash, &e.Username, &e.PasswordHash, &millis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entity{}, ErrNotFound
		}
		return Entity{}, err
	}
	e.CreatedAt = time.UnixMilli(millis).UTC()
	return e, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
