package repository

import (
	"context"
	"database/sql"

	"user_management/internal/models"
	"user_management/internal/repository/db"
)

// Users is the persistence boundary for user records.
type Users interface {
	Create(ctx context.Context, u models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id int64) error
	Upsert(ctx context.Context, u models.User) (int64, error)
	Ping(ctx context.Context) error
}

type Repository struct {
	Users Users
}

func NewRepository(conn *sql.DB, dialect db.Dialect) *Repository {
	return &Repository{
		Users: NewUserRepository(conn, dialect),
	}
}
