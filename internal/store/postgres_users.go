package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

// PostgresUserStore is the pgx-backed UserStore.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

// NewPostgresUserStore creates a Postgres-backed user store.
func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `u.id, u.name, u.birthday, u.gender, u.email, u.phone, u.photo_url,
	u.created_at, u.updated_at, a.street, a.city, a.zip_code`

const userSelect = `SELECT ` + userColumns + `
	FROM users u LEFT JOIN addresses a ON a.user_id = u.id`

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u        models.User
		photoURL *string
		street   *string
		city     *string
		zipCode  *string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Birthday, &u.Gender, &u.Email, &u.Phone,
		&photoURL, &u.CreatedAt, &u.UpdatedAt, &street, &city, &zipCode)
	if err != nil {
		return nil, err
	}
	if photoURL != nil {
		u.PhotoURL = *photoURL
	}
	if street != nil {
		u.Address = &models.Address{Street: *street, City: *city, ZipCode: *zipCode}
	}
	return &u, nil
}

// Create inserts the user and, when present, its owned address in one
// transaction.
func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperr.Dependency("begin user insert", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, name, birthday, gender, email, phone, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)`,
		user.ID, user.Name, user.Birthday, user.Gender, user.Email, user.Phone,
		user.PhotoURL, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Validationf("email %s is already registered", user.Email)
		}
		return apperr.Dependency("insert user", err)
	}

	if user.Address != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO addresses (user_id, street, city, zip_code) VALUES ($1, $2, $3, $4)`,
			user.ID, user.Address.Street, user.Address.City, user.Address.ZipCode,
		)
		if err != nil {
			return apperr.Dependency("insert address", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Dependency("commit user insert", err)
	}
	return nil
}

// GetByID fetches a user with its address hydrated.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user", id.String())
	}
	if err != nil {
		return nil, apperr.Dependency("select user", err)
	}
	return u, nil
}

// GetByEmail fetches a user by its unique email.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRow(ctx, userSelect+` WHERE u.email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user", email)
	}
	if err != nil {
		return nil, apperr.Dependency("select user by email", err)
	}
	return u, nil
}

// List returns every directory entry with addresses hydrated.
func (s *PostgresUserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, userSelect+` ORDER BY u.created_at`)
	if err != nil {
		return nil, apperr.Dependency("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Dependency("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("list users", err)
	}
	return users, nil
}

// Update merges the provided fields; a supplied address is created or
// replaced as a unit.
func (s *PostgresUserStore) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperr.Dependency("begin user update", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users SET
			name       = COALESCE($2, name),
			birthday   = COALESCE($3::date, birthday),
			gender     = COALESCE($4, gender),
			email      = COALESCE($5, email),
			phone      = COALESCE($6, phone),
			photo_url  = COALESCE($7, photo_url),
			updated_at = now()
		WHERE id = $1`,
		id, upd.Name, upd.Birthday, upd.Gender, upd.Email, upd.Phone, upd.PhotoURL,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.Validation("email is already registered")
		}
		return nil, apperr.Dependency("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("user", id.String())
	}

	if upd.Address != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO addresses (user_id, street, city, zip_code)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO UPDATE
			SET street = EXCLUDED.street, city = EXCLUDED.city, zip_code = EXCLUDED.zip_code`,
			id, upd.Address.Street, upd.Address.City, upd.Address.ZipCode,
		)
		if err != nil {
			return nil, apperr.Dependency("upsert address", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Dependency("commit user update", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the user; the owned address goes with it via cascade.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.Dependency(fmt.Sprintf("delete user %s", id), err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user", id.String())
	}
	return nil
}
