package user

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/errors"
)

// LoginResult carries a mock session token. Tokens are not checked anywhere.
type LoginResult struct {
	Token string        `json:"token"`
	User  document.User `json:"user"`
}

// Service looks up seeded back-office users
type Service struct {
	session *document.Session
}

// NewService creates a new user service
func NewService(session *document.Session) *Service {
	return &Service{session: session}
}

// Login returns a mock token for a known username
func (s *Service) Login(ctx context.Context, username string) (*LoginResult, error) {
	if username == "" {
		return nil, errors.NewMissingFieldError("username")
	}

	var result *LoginResult
	err := s.session.View(ctx, func(doc *document.Document) error {
		u, ok := doc.FindUser(username)
		if !ok {
			return errors.NewAuthenticationError("unknown user")
		}
		result = &LoginResult{Token: "mock-" + ulid.Make().String(), User: u}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
