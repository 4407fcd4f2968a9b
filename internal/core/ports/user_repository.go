package ports

import (
	"context"

	"github.com/taskhub/task-service/internal/core/domain"
)

// UserRepository defines persistence for user accounts and their sessions.
// Token-list mutations rely on the store's atomic single-document updates;
// no caller-side locking is used.
type UserRepository interface {
	// Create inserts a new account. A duplicate email surfaces as
	// domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDAndToken resolves a user only while token is still in the
	// user's session list, in a single scoped query. A revoked token is
	// indistinguishable from a missing user.
	FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error)

	// UpdateProfile persists name, email, password hash and age. The
	// session list and avatar are never touched by this call.
	UpdateProfile(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error

	AppendToken(ctx context.Context, id string, token domain.SessionToken) error
	// RemoveToken removes exactly the matching session entry; removing an
	// absent token is a no-op.
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error

	UpdateAvatar(ctx context.Context, id string, avatar []byte) error
	ClearAvatar(ctx context.Context, id string) error
	// FindAvatar returns the stored blob; a missing user and a missing
	// avatar both surface as domain.ErrUserNotFound.
	FindAvatar(ctx context.Context, id string) ([]byte, error)
}
