package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kagisomabe/luma-events/internal/config"
	"github.com/kagisomabe/luma-events/internal/model"
	"github.com/kagisomabe/luma-events/internal/repository"
)

type fakeUserStore struct{}

func (fakeUserStore) Create(ctx context.Context, email, password, displayName, phone string, cost int) (uint64, error) {
	return 1, nil
}

func (fakeUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return model.User{}, repository.ErrNotFound
}

func (fakeUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return model.User{}, repository.ErrNotFound
}

func (fakeUserStore) UpdateProfile(ctx context.Context, u model.User) error { return nil }

type fakeTokenStore struct {
	stored        int
	revokedHashes []string
	revokedUsers  []uint64
}

func (f *fakeTokenStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.stored++
	return nil
}

func (f *fakeTokenStore) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	return 0, repository.ErrNotFound
}

func (f *fakeTokenStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	f.revokedHashes = append(f.revokedHashes, tokenHash)
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(ctx context.Context, userID uint64) error {
	f.revokedUsers = append(f.revokedUsers, userID)
	return nil
}

// authContext builds an echo context the way the JWT middleware leaves
// it for an authenticated request; userID 0 means unauthenticated.
func authContext(userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout-all", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	tokens := &fakeTokenStore{}
	h := NewAuthHandler(config.Config{}, fakeUserStore{}, tokens)

	c, rec := authContext(7)
	if err := h.LogoutAll(c); err != nil {
		t.Fatalf("LogoutAll error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(tokens.revokedUsers) != 1 || tokens.revokedUsers[0] != 7 {
		t.Errorf("revoked users = %v, want [7]", tokens.revokedUsers)
	}
}

func TestLogoutAllRequiresAuth(t *testing.T) {
	tokens := &fakeTokenStore{}
	h := NewAuthHandler(config.Config{}, fakeUserStore{}, tokens)

	c, rec := authContext(0)
	if err := h.LogoutAll(c); err != nil {
		t.Fatalf("LogoutAll error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(tokens.revokedUsers) != 0 {
		t.Errorf("tokens revoked for an unauthenticated request: %v", tokens.revokedUsers)
	}
}
