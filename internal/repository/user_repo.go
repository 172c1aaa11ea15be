package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"user_management/internal/models"
	"user_management/internal/repository/db"
)

type UserRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewUserRepository(conn *sql.DB, dialect db.Dialect) *UserRepository {
	return &UserRepository{db: conn, dialect: dialect}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	userColumns = `id, name, email, password_hash, role, created_at, updated_at`

	insertUserSQL = `INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`

	upsertUserSQL = `INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET role = excluded.role, updated_at = excluded.updated_at
		RETURNING id`

	selectUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	selectUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	selectUsersSQL       = `SELECT ` + userColumns + ` FROM users ORDER BY id ASC`

	updateUserSQL = `UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?`
	deleteUserSQL = `DELETE FROM users WHERE id = ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// stamp fills zero timestamps with the current UTC time.
func stamp(u *models.User) {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	} else {
		u.CreatedAt = u.CreatedAt.UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	} else {
		u.UpdatedAt = u.UpdatedAt.UTC()
	}
}

// Create inserts a new user and returns its ID.
// A taken email yields ErrDuplicateEmail and no row is written.
func (r *UserRepository) Create(ctx context.Context, u models.User) (int64, error) {
	stamp(&u)
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertUserSQL),
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return id, nil
}

// Upsert inserts the user or, when the email exists, resets only its role.
func (r *UserRepository) Upsert(ctx context.Context, u models.User) (int64, error) {
	stamp(&u)
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(upsertUserSQL),
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert user %q: %w", u.Email, err)
	}
	return id, nil
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(selectUserByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return &u, nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(selectUserByEmailSQL), email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", email, err)
	}
	return &u, nil
}

// List returns every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]models.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return out, nil
}

// Update overwrites name, email and password hash of an existing user.
// Returns ErrNotFound when the id matches nothing and ErrDuplicateEmail
// when the email belongs to another row.
func (r *UserRepository) Update(ctx context.Context, u models.User) error {
	updatedAt := u.UpdatedAt.UTC()
	if u.UpdatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(updateUserSQL),
		u.Name, u.Email, u.PasswordHash, updatedAt, u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", u.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user permanently. Returns ErrNotFound for unknown ids.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteUserSQL), id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
