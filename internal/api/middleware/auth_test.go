package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-service/internal/core/domain"
)

type stubVerifier struct {
	userID string
	err    error
}

func (v stubVerifier) Verify(string) (string, error) {
	return v.userID, v.err
}

type stubSessions struct {
	user     *domain.User
	err      error
	gotID    string
	gotToken string
	calls    int
}

func (s *stubSessions) FindByIDAndToken(_ context.Context, id, token string) (*domain.User, error) {
	s.calls++
	s.gotID = id
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func runAuth(t *testing.T, verifier stubVerifier, sessions *stubSessions, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(verifier, sessions)(next)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	user := &domain.User{ID: "user_1", Name: "Maria"}
	sessions := &stubSessions{user: user}

	called := false
	rec := runAuth(t, stubVerifier{userID: "user_1"}, sessions, "Bearer good-token", func(c echo.Context) error {
		called = true
		got, ok := c.Get("user").(*domain.User)
		if !ok || got.ID != "user_1" {
			t.Fatalf("user not injected: %v", c.Get("user"))
		}
		if c.Get("token") != "good-token" {
			t.Fatalf("raw token not injected: %v", c.Get("token"))
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatal("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ScopesLookupToToken(t *testing.T) {
	sessions := &stubSessions{user: &domain.User{ID: "user_1"}}

	runAuth(t, stubVerifier{userID: "user_1"}, sessions, "Bearer the-raw-token", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if sessions.gotID != "user_1" || sessions.gotToken != "the-raw-token" {
		t.Fatalf("lookup must be scoped to {id, token}, got id=%q token=%q", sessions.gotID, sessions.gotToken)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec := runAuth(t, stubVerifier{}, &stubSessions{}, "", func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec := runAuth(t, stubVerifier{}, &stubSessions{}, "Token abc", func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_BadSignature(t *testing.T) {
	sessions := &stubSessions{}
	rec := runAuth(t, stubVerifier{err: domain.ErrInvalidToken}, sessions, "Bearer forged", func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if sessions.calls != 0 {
		t.Error("store must not be consulted for an unverifiable token")
	}
}

func TestAuthMiddleware_RevokedTokenLooksLikeForgedOne(t *testing.T) {
	forged := runAuth(t, stubVerifier{err: domain.ErrInvalidToken}, &stubSessions{}, "Bearer forged", func(c echo.Context) error {
		return nil
	})
	revoked := runAuth(t, stubVerifier{userID: "user_1"}, &stubSessions{err: domain.ErrUserNotFound}, "Bearer revoked", func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})

	if revoked.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a revoked token, got %d", revoked.Code)
	}
	if forged.Body.String() != revoked.Body.String() {
		t.Errorf("revoked and forged tokens must be indistinguishable: %q vs %q", forged.Body.String(), revoked.Body.String())
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	rec := runAuth(t, stubVerifier{err: domain.ErrTokenExpired}, &stubSessions{}, "Bearer old", func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
