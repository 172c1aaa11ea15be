package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"user_management/internal/models"
	"user_management/internal/repository"
)

// Domain errors for user record flows.
var (
	ErrEmailTaken   = errors.New("email already in use")
	ErrUserNotFound = errors.New("user not found")
)

// UserService applies lifecycle rules on top of the user repository.
type UserService struct {
	repo repository.Users
	feed Feed
	now  func() time.Time
}

func NewUserService(repo repository.Users, feed Feed) *UserService {
	return &UserService{repo: repo, feed: feed, now: time.Now}
}

// Create hashes the password and stores a USER-role account.
func (s *UserService) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	now := s.now().UTC()
	u := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	u.ID = id

	s.publish(models.UserCreated, id, &u)
	return &u, nil
}

// List returns every user ordered by id.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// Update overwrites name, email and password. The password is always re-hashed.
func (s *UserService) Update(ctx context.Context, id int64, in models.UserInput) (*models.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	err = s.repo.Update(ctx, models.User{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		UpdatedAt:    s.now().UTC(),
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// removed between the update and the read-back
		return nil, ErrUserNotFound
	}

	s.publish(models.UserUpdated, id, u)
	return u, nil
}

// Delete permanently removes the user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.publish(models.UserDeleted, id, nil)
	return nil
}

// Seed upserts the given accounts by email. Existing accounts only get
// their role reset; name and password are left as they are.
func (s *UserService) Seed(ctx context.Context, accounts []models.SeedAccount) error {
	for _, a := range accounts {
		if !a.Role.Valid() {
			return fmt.Errorf("seed %q: unknown role %q", a.Email, a.Role)
		}
		hash, err := hashPassword(a.Password)
		if err != nil {
			return fmt.Errorf("seed %q: %w", a.Email, err)
		}

		now := s.now().UTC()
		id, err := s.repo.Upsert(ctx, models.User{
			Name:         strings.TrimSpace(a.Name),
			Email:        normalizeEmail(a.Email),
			PasswordHash: hash,
			Role:         a.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("seed %q: %w", a.Email, err)
		}
		s.publish(models.UserUpdated, id, nil)
	}
	return nil
}

func (s *UserService) publish(typ string, id int64, u *models.User) {
	if s.feed == nil {
		return
	}
	var snapshot *models.User
	if u != nil {
		cp := *u
		cp.PasswordHash = ""
		snapshot = &cp
	}
	s.feed.Publish(models.UserEvent{
		Type:       typ,
		UserID:     id,
		OccurredAt: s.now().UTC(),
		User:       snapshot,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
