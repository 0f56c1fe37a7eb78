package entity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists entities. Create must enforce both uniqueness
// constraints (phone number and username) atomically, returning ErrDuplicate
// when either one is violated.
type Repository interface {
	FindByMSISDN(ctx context.Context, msisdn string) (Entity, error)
	FindByUsername(ctx context.Context, username string) (Entity, error)
	Create(ctx context.Context, e Entity) error
}

const pgUniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed entity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema provisions the entities table if it does not exist yet. It is
// idempotent and expected to run once at process startup.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS entities (
        eid TEXT PRIMARY KEY,
        msisdn_hash TEXT NOT NULL UNIQUE,
        username TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	return err
}

// Create inserts a new entity. Uniqueness violations map to ErrDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, e Entity) error {
	_, err := r.db.Exec(ctx, `INSERT INTO entities (eid, msisdn_hash, username, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)`, e.EID, e.MSISDNHash, e.Username, e.PasswordHash, e.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByMSISDN fetches the entity owning the given phone number.
func (r *PostgresRepository) FindByMSISDN(ctx context.Context, msisdn string) (Entity, error) {
	row := r.db.QueryRow(ctx, `SELECT eid, msisdn_hash, username, password_hash, created_at
        FROM entities WHERE msisdn_hash = $1`, msisdn)
	return scanEntity(row)
}

// FindByUsername fetches the entity owning the given username.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (Entity, error) {
	row := r.db.QueryRow(ctx, `SELECT eid, msisdn_hash, username, password_hash, created_at
        FROM entities WHERE username = $1`, username)
	return scanEntity(row)
}

func scanEntity(row pgx.Row) (Entity, error) {
	var (
		e         Entity
		createdAt time.Time
	)
	if err := row.Scan(&e.EID, &e.MSISDNHash, &e.Username, &e.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entity{}, ErrNotFound
		}
		return Entity{}, err
	}
	e.CreatedAt = createdAt.UTC()
	return e, nil
}
