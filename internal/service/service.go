package service

import (
	"context"

	"user_management/internal/models"
	"user_management/internal/repository"
)

// Users exposes the user record lifecycle.
type Users interface {
	Create(ctx context.Context, in models.UserInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int64, in models.UserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Seed(ctx context.Context, accounts []models.SeedAccount) error
}

// Authorization issues and verifies bearer tokens.
type Authorization interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	ParseToken(accessToken string) (models.Identity, error)
	IssueToken(userID int64, role models.Role) (string, error)
}

// Feed broadcasts user lifecycle events to live subscribers.
// Cancel the subscription via the returned func.
type Feed interface {
	Publish(e models.UserEvent)
	Subscribe() (<-chan models.UserEvent, func())
}

// Health reports whether the backing store is reachable.
type Health interface {
	Ping(ctx context.Context) error
}

type Service struct {
	Users
	Authorization
	Feed
	Health
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, auth AuthConfig) *Service {
	feed := NewFeedHub(defaultFeedBuffer)
	return &Service{
		Users:         NewUserService(repos.Users, feed),
		Authorization: NewAuthService(repos.Users, auth),
		Feed:          feed,
		Health:        repos.Users,
	}
}
