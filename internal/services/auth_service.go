package services

import (
	"errors"
	"strings"

	"stitchline/internal/domain"
	"stitchline/internal/repos"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadCreds covers both unknown email and wrong password. Which of the two
// failed is never surfaced.
var ErrBadCreds = errors.New("invalid email or password")

// decoyHash keeps a bcrypt comparison on the unknown-email path so login
// latency does not reveal whether an address is registered.
var decoyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type AuthService struct {
	Users *repos.UserRepo
}

// Login verifies credentials and binds the sid cookie to the account.
func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(strings.TrimSpace(email))
	if err != nil {
		bcrypt.CompareHashAndPassword(decoyHash, []byte(password))
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout detaches the account from the sid but keeps the session row, so the
// same cookie can log in again later.
func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

// CurrentUser resolves a sid to its account and refreshes the session's
// last_seen on the way.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(sid)
	if err != nil {
		return nil, err
	}
	if err := s.Users.TouchSession(sid); err != nil {
		return nil, err
	}
	return u, nil
}
