package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/task-service/internal/core/domain"
	"github.com/taskhub/task-service/internal/core/ports"
)

// AvatarCache abstracts the avatar byte cache (Redis). Every cache failure
// is treated as a miss; the store stays authoritative.
type AvatarCache interface {
	Get(ctx context.Context, userID string) ([]byte, bool, error)
	Set(ctx context.Context, userID string, avatar []byte) error
	Invalidate(ctx context.Context, userID string) error
}

// profileUpdateFields is the allow-list for PATCH /users/me.
var profileUpdateFields = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"age":      {},
}

// UserService orchestrates the account lifecycle and the per-user session
// state machine.
type UserService struct {
	repo   ports.UserRepository
	tasks  ports.TaskRepository
	tokens ports.TokenService
	cache  AvatarCache
	mail   ports.EmailDispatcher
	log    zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	tasks ports.TaskRepository,
	tokens ports.TokenService,
	cache AvatarCache,
	mail ports.EmailDispatcher,
	log zerolog.Logger,
) *UserService {
	return &UserService{repo: repo, tasks: tasks, tokens: tokens, cache: cache, mail: mail, log: log}
}

// Signup registers a new account and opens its first session. The plaintext
// password exists only on the stack here; only the bcrypt hash is stored.
func (s *UserService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        domain.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Age:          in.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.openSession(ctx, created)
	if err != nil {
		return nil, err
	}

	s.enqueueEmail(domain.EmailWelcome, created.Email, created.Name)
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return &ports.AuthResult{User: created, Token: token}, nil
}

// Login authenticates by email and password. An unknown email and a failed
// password comparison produce the same error so callers cannot enumerate
// accounts.
func (s *UserService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Int("sessions", len(user.Tokens)).Msg("login")
	return &ports.AuthResult{User: user, Token: token}, nil
}

// openSession mints a token and durably appends it to the user's session
// list before the credential is handed out.
func (s *UserService) openSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	entry := domain.SessionToken{Token: token, IssuedAt: time.Now().UTC()}
	if err := s.repo.AppendToken(ctx, user.ID, entry); err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, entry)
	return token, nil
}

// Logout removes exactly the presented session token; other sessions stay
// untouched.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	if err := s.repo.RemoveToken(ctx, userID, token); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("session closed")
	return nil
}

// LogoutAll clears the whole session list, revoking every device at once.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.ClearTokens(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("all sessions closed")
	return nil
}

// UpdateProfile applies a partial update. The whole update is rejected
// before any write when a key falls outside the allow-list; the password
// hash is regenerated only when the password key is present. Changing the
// password deliberately leaves other sessions active.
func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, fields map[string]any) (*domain.User, error) {
	if err := checkAllowedFields(fields, profileUpdateFields); err != nil {
		return nil, err
	}

	updated := *user
	for name, value := range fields {
		switch name {
		case "name":
			v, ok := value.(string)
			if !ok || strings.TrimSpace(v) == "" {
				return nil, fmt.Errorf("%w: name must be a non-empty string", domain.ErrValidation)
			}
			updated.Name = strings.TrimSpace(v)
		case "email":
			v, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: email must be a string", domain.ErrValidation)
			}
			normalized := domain.NormalizeEmail(v)
			if err := domain.ValidateEmail(normalized); err != nil {
				return nil, err
			}
			updated.Email = normalized
		case "password":
			v, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: password must be a string", domain.ErrValidation)
			}
			if err := domain.ValidatePassword(v); err != nil {
				return nil, err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(v), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			updated.PasswordHash = string(hash)
		case "age":
			n, ok := toInt(value)
			if !ok {
				return nil, fmt.Errorf("%w: age must be an integer", domain.ErrValidation)
			}
			if err := domain.ValidateAge(n); err != nil {
				return nil, err
			}
			updated.Age = n
		}
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProfile(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", updated.ID).Msg("profile updated")
	return &updated, nil
}

// DeleteAccount removes the account and cascades to its tasks. The cascade
// is a second, separate write: a crash between the two steps leaves
// orphaned tasks behind. A failing cascade is logged but does not undo the
// account deletion.
func (s *UserService) DeleteAccount(ctx context.Context, user *domain.User) error {
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}

	removed, err := s.tasks.DeleteByOwner(ctx, user.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("cascade task delete failed")
	} else {
		s.log.Info().Str("user_id", user.ID).Int64("tasks_removed", removed).Msg("account deleted")
	}

	s.enqueueEmail(domain.EmailCancellation, user.Email, user.Name)
	return nil
}

// SetAvatar stores the (already sniffed and size-checked) image bytes.
func (s *UserService) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	if err := s.repo.UpdateAvatar(ctx, userID, avatar); err != nil {
		return err
	}
	s.invalidateAvatar(ctx, userID)
	return nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	if err := s.repo.ClearAvatar(ctx, userID); err != nil {
		return err
	}
	s.invalidateAvatar(ctx, userID)
	return nil
}

// Avatar serves the stored blob, read through the cache. A missing user and
// a missing avatar are the same not-found outcome.
func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("avatar cache read failed")
		} else if ok {
			return data, nil
		}
	}

	data, err := s.repo.FindAvatar(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, data); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("avatar cache write failed")
		}
	}
	return data, nil
}

func (s *UserService) invalidateAvatar(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("avatar cache invalidation failed")
	}
}

func (s *UserService) enqueueEmail(kind domain.EmailKind, to, name string) {
	if s.mail == nil {
		return
	}
	s.mail.Enqueue(domain.EmailJob{
		ID:   uuid.NewString(),
		Kind: kind,
		To:   to,
		Name: name,
	})
}

// checkAllowedFields rejects the whole update when any key falls outside
// allowed. Nothing may be written before this check passes.
func checkAllowedFields(fields map[string]any, allowed map[string]struct{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: update payload is empty", domain.ErrValidation)
	}

	var unknown []string
	for name := range fields {
		if _, ok := allowed[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", domain.ErrInvalidUpdateFields, strings.Join(unknown, ", "))
	}
	return nil
}

// toInt accepts the whole numbers JSON decoding produces (float64) plus
// plain ints from internal callers.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
