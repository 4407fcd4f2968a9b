package ports

import (
	"context"

	"github.com/taskhub/task-service/internal/core/domain"
)

// SignupInput carries the already shape-validated registration payload.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// AuthResult is returned by signup and login: the account plus the freshly
// minted session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// UserService covers the account lifecycle: registration, the session state
// machine (login/logout/logout-all), profile updates and avatar handling.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	// Login authenticates by normalized email and password. Unknown email
	// and wrong password are deliberately the same failure.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Logout revokes exactly the presented session token.
	Logout(ctx context.Context, userID, token string) error
	// LogoutAll revokes every active session at once.
	LogoutAll(ctx context.Context, userID string) error

	// UpdateProfile applies a partial update restricted to the allow-list
	// {name, email, password, age}. Any unknown key rejects the whole
	// update before anything is written.
	UpdateProfile(ctx context.Context, user *domain.User, fields map[string]any) (*domain.User, error)
	// DeleteAccount removes the account, then its tasks (two steps, not
	// atomic), then queues the cancellation notice.
	DeleteAccount(ctx context.Context, user *domain.User) error

	SetAvatar(ctx context.Context, userID string, avatar []byte) error
	DeleteAvatar(ctx context.Context, userID string) error
	// Avatar serves the stored blob for the public avatar endpoint.
	Avatar(ctx context.Context, userID string) ([]byte, error)
}
