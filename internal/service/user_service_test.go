package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"user_management/internal/models"
	"user_management/internal/repository"
)

// mockUserRepo is a lightweight in-test mock for repository.Users.
type mockUserRepo struct {
	CreateFn     func(u models.User) (int64, error)
	GetByIDFn    func(id int64) (*models.User, error)
	GetByEmailFn func(email string) (*models.User, error)
	ListFn       func() ([]models.User, error)
	UpdateFn     func(u models.User) error
	DeleteFn     func(id int64) error
	UpsertFn     func(u models.User) (int64, error)

	created  []models.User
	updated  []models.User
	upserted []models.User
}

func (m *mockUserRepo) Create(_ context.Context, u models.User) (int64, error) {
	m.created = append(m.created, u)
	return m.CreateFn(u)
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return m.GetByIDFn(id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.GetByEmailFn(email)
}

func (m *mockUserRepo) List(_ context.Context) ([]models.User, error) {
	return m.ListFn()
}

func (m *mockUserRepo) Update(_ context.Context, u models.User) error {
	m.updated = append(m.updated, u)
	return m.UpdateFn(u)
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	return m.DeleteFn(id)
}

func (m *mockUserRepo) Upsert(_ context.Context, u models.User) (int64, error) {
	m.upserted = append(m.upserted, u)
	return m.UpsertFn(u)
}

func (m *mockUserRepo) Ping(_ context.Context) error { return nil }

// recordingFeed captures published events.
type recordingFeed struct {
	events []models.UserEvent
}

func (f *recordingFeed) Publish(e models.UserEvent) { f.events = append(f.events, e) }

func (f *recordingFeed) Subscribe() (<-chan models.UserEvent, func()) {
	ch := make(chan models.UserEvent)
	return ch, func() {}
}

func fixedClock() time.Time {
	return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestUserService(repo *mockUserRepo) (*UserService, *recordingFeed) {
	feed := &recordingFeed{}
	svc := NewUserService(repo, feed)
	svc.now = fixedClock
	return svc, feed
}

// --- Create tests ---

func TestUserService_Create_HashesPasswordAndAssignsUserRole(t *testing.T) {
	repo := &mockUserRepo{
		CreateFn: func(u models.User) (int64, error) { return 42, nil },
	}
	svc, feed := newTestUserService(repo)

	u, err := svc.Create(context.Background(), models.UserInput{
		Name: "Alice Doe", Email: " Alice@Example.com ", Password: "s3cr3tpassword1",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.ID != 42 {
		t.Fatalf("expected id 42, got %d", u.ID)
	}
	if u.Role != models.RoleUser {
		t.Fatalf("expected role USER, got %q", u.Role)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if !u.CreatedAt.Equal(fixedClock()) || !u.UpdatedAt.Equal(fixedClock()) {
		t.Fatalf("expected timestamps from clock, got %v / %v", u.CreatedAt, u.UpdatedAt)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(repo.created))
	}
	stored := repo.created[0].PasswordHash
	if stored == "s3cr3tpassword1" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(stored, "s3cr3tpassword1"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}

	if len(feed.events) != 1 || feed.events[0].Type != models.UserCreated || feed.events[0].UserID != 42 {
		t.Fatalf("unexpected feed events: %+v", feed.events)
	}
	if feed.events[0].User == nil || feed.events[0].User.PasswordHash != "" {
		t.Fatalf("expected snapshot without hash, got %+v", feed.events[0].User)
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		CreateFn: func(u models.User) (int64, error) { return 0, repository.ErrDuplicateEmail },
	}
	svc, feed := newTestUserService(repo)

	_, err := svc.Create(context.Background(), models.UserInput{
		Name: "Alice Doe", Email: "alice@example.com", Password: "s3cr3tpassword1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(feed.events) != 0 {
		t.Fatalf("expected no events on conflict, got %d", len(feed.events))
	}
}

func TestUserService_Create_EmptyPassword(t *testing.T) {
	repo := &mockUserRepo{
		CreateFn: func(u models.User) (int64, error) {
			t.Fatal("Create should not be called for empty password")
			return 0, nil
		},
	}
	svc, _ := newTestUserService(repo)

	if _, err := svc.Create(context.Background(), models.UserInput{Name: "Bobby", Email: "b@example.com", Password: "   "}); err == nil {
		t.Fatalf("expected error for empty password, got nil")
	}
}

func TestUserService_Create_RepoError(t *testing.T) {
	repo := &mockUserRepo{
		CreateFn: func(u models.User) (int64, error) { return 0, errors.New("db down") },
	}
	svc, _ := newTestUserService(repo)

	_, err := svc.Create(context.Background(), models.UserInput{Name: "Carla", Email: "c@example.com", Password: "pass123456789"})
	if err == nil || errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected raw repo error, got %v", err)
	}
}

// --- Update tests ---

func TestUserService_Update_AlwaysHashes(t *testing.T) {
	stored := &models.User{ID: 5, Name: "New Name", Email: "new@example.com", Role: models.RoleUser}
	repo := &mockUserRepo{
		UpdateFn:  func(u models.User) error { return nil },
		GetByIDFn: func(id int64) (*models.User, error) { return stored, nil },
	}
	svc, feed := newTestUserService(repo)

	u, err := svc.Update(context.Background(), 5, models.UserInput{
		Name: "New Name", Email: "new@example.com", Password: "changedPassw0rd",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if u.ID != 5 {
		t.Fatalf("expected id 5, got %d", u.ID)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("expected 1 Update call, got %d", len(repo.updated))
	}
	written := repo.updated[0]
	if written.PasswordHash == "changedPassw0rd" {
		t.Fatalf("update stored the raw password")
	}
	if err := verifyPassword(written.PasswordHash, "changedPassw0rd"); err != nil {
		t.Fatalf("updated hash does not verify: %v", err)
	}
	if !written.UpdatedAt.Equal(fixedClock()) {
		t.Fatalf("expected updated_at from clock, got %v", written.UpdatedAt)
	}
	if len(feed.events) != 1 || feed.events[0].Type != models.UserUpdated {
		t.Fatalf("unexpected feed events: %+v", feed.events)
	}
}

func TestUserService_Update_Errors(t *testing.T) {
	tests := []struct {
		name      string
		updateErr error
		readBack  *models.User
		wantErr   error
	}{
		{name: "unknown id", updateErr: repository.ErrNotFound, wantErr: ErrUserNotFound},
		{name: "email taken", updateErr: repository.ErrDuplicateEmail, wantErr: ErrEmailTaken},
		{name: "removed before read-back", readBack: nil, wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				UpdateFn:  func(u models.User) error { return tt.updateErr },
				GetByIDFn: func(id int64) (*models.User, error) { return tt.readBack, nil },
			}
			svc, feed := newTestUserService(repo)

			_, err := svc.Update(context.Background(), 9, models.UserInput{
				Name: "Someone", Email: "s@example.com", Password: "longenough123",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(feed.events) != 0 {
				t.Fatalf("expected no events, got %d", len(feed.events))
			}
		})
	}
}

// --- Delete tests ---

func TestUserService_Delete(t *testing.T) {
	repo := &mockUserRepo{
		DeleteFn: func(id int64) error {
			if id == 3 {
				return nil
			}
			return repository.ErrNotFound
		},
	}
	svc, feed := newTestUserService(repo)

	if err := svc.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete(3): %v", err)
	}
	if err := svc.Delete(context.Background(), 4); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Delete(4): expected ErrUserNotFound, got %v", err)
	}
	if len(feed.events) != 1 || feed.events[0].Type != models.UserDeleted || feed.events[0].User != nil {
		t.Fatalf("unexpected feed events: %+v", feed.events)
	}
}

// --- Seed tests ---

func TestUserService_Seed_UpsertsHashedAccounts(t *testing.T) {
	var next int64
	repo := &mockUserRepo{
		UpsertFn: func(u models.User) (int64, error) {
			next++
			return next, nil
		},
	}
	svc, feed := newTestUserService(repo)

	err := svc.Seed(context.Background(), []models.SeedAccount{
		{Name: "ADMIN", Email: "admin@123.com", Password: "AG3ND4DM-123_", Role: models.RoleAdmin},
		{Name: "USER", Email: "user@123.com", Password: "U$3R-2025_", Role: models.RoleUser},
	})
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if len(repo.upserted) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(repo.upserted))
	}
	if repo.upserted[0].Role != models.RoleAdmin || repo.upserted[1].Role != models.RoleUser {
		t.Fatalf("unexpected roles: %+v", repo.upserted)
	}
	if err := verifyPassword(repo.upserted[0].PasswordHash, "AG3ND4DM-123_"); err != nil {
		t.Fatalf("seeded admin hash does not verify: %v", err)
	}
	if len(feed.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(feed.events))
	}
}

func TestUserService_Seed_RejectsUnknownRole(t *testing.T) {
	repo := &mockUserRepo{
		UpsertFn: func(u models.User) (int64, error) {
			t.Fatal("Upsert should not be called for an unknown role")
			return 0, nil
		},
	}
	svc, _ := newTestUserService(repo)

	err := svc.Seed(context.Background(), []models.SeedAccount{
		{Name: "ROOT", Email: "root@123.com", Password: "whatever-123", Role: "ROOT"},
	})
	if err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
