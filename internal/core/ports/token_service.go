package ports

// TokenService mints and verifies signed session credentials. Verification
// only proves the signature; whether the session is still active is decided
// by the credential store's token list.
type TokenService interface {
	Issue(userID string) (string, error)
	// Verify returns the user id embedded in the token, or
	// domain.ErrInvalidToken / domain.ErrTokenExpired.
	Verify(token string) (string, error)
}
