package handlers

import (
	"context"
	"net/http"

	"user_management/internal/models"
	"user_management/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockUsers struct {
	createResp *models.User
	createErr  error
	listResp   []models.User
	listErr    error
	updateResp *models.User
	updateErr  error
	deleteErr  error
	seedErr    error

	lastCreate   models.UserInput
	lastUpdateID int64
	lastUpdate   models.UserInput
	lastDeleteID int64
	createCalls  int
	listCalls    int
	updateCalls  int
	deleteCalls  int
}

func (m *mockUsers) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	m.createCalls++
	m.lastCreate = in
	return m.createResp, m.createErr
}
func (m *mockUsers) List(ctx context.Context) ([]models.User, error) {
	m.listCalls++
	return m.listResp, m.listErr
}
func (m *mockUsers) Update(ctx context.Context, id int64, in models.UserInput) (*models.User, error) {
	m.updateCalls++
	m.lastUpdateID = id
	m.lastUpdate = in
	return m.updateResp, m.updateErr
}
func (m *mockUsers) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	m.lastDeleteID = id
	return m.deleteErr
}
func (m *mockUsers) Seed(ctx context.Context, accounts []models.SeedAccount) error {
	return m.seedErr
}

type mockAuth struct {
	tokens      map[string]models.Identity
	signInToken string
	signInErr   error

	lastEmail      string
	lastPassword   string
	lastParseToken string
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) (string, error) {
	m.lastEmail = email
	m.lastPassword = password
	return m.signInToken, m.signInErr
}
func (m *mockAuth) ParseToken(token string) (models.Identity, error) {
	m.lastParseToken = token
	if id, ok := m.tokens[token]; ok {
		return id, nil
	}
	return models.Identity{}, service.ErrInvalidToken
}
func (m *mockAuth) IssueToken(userID int64, role models.Role) (string, error) {
	return "issued", nil
}

type mockHealth struct {
	err error
}

func (m *mockHealth) Ping(ctx context.Context) error { return m.err }

// ---- Shared Test Helpers ----

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

func newMockAuth() *mockAuth {
	return &mockAuth{tokens: map[string]models.Identity{
		adminToken: {UserID: 1, Role: models.RoleAdmin},
		userToken:  {UserID: 2, Role: models.RoleUser},
	}}
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
