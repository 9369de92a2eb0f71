// Path: internal/services/authenticator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"
	"bank-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Principal is the authenticated identity of a request.
type Principal struct {
	UserID      uint
	Username    string
	Role        models.UserRole
	Authorities []string
}

// NewPrincipal derives a principal from user. Authorities are "ROLE_" plus the role name.
func NewPrincipal(user *models.User) *Principal {
	return &Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Authorities: []string{"ROLE_" + string(user.Role)},
	}
}

func (p *Principal) HasAuthority(authority string) bool {
	return p != nil && slices.Contains(p.Authorities, authority)
}

func (p *Principal) IsAdmin() bool {
	return p.HasAuthority("ROLE_" + string(models.RoleAdmin))
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// RequestAuthenticator resolves the bearer token of a request into a principal.
type RequestAuthenticator interface {
	// Authenticate returns (nil, nil) for anonymous requests and for tokens that fail validation.
	// An error is returned only when the user behind a readable token cannot be loaded.
	Authenticate(ctx context.Context, authorizationHeader string) (*Principal, error)
}

type requestAuthenticator struct {
	users repository.UserStore
	codec JWTService
	auth  AuthService
	log   *logrus.Logger
}

func NewRequestAuthenticator(users repository.UserStore, codec JWTService, auth AuthService, log *logrus.Logger) RequestAuthenticator {
	return &requestAuthenticator{users: users, codec: codec, auth: auth, log: log}
}

func (a *requestAuthenticator) Authenticate(ctx context.Context, authorizationHeader string) (*Principal, error) {
	token, ok := utils.BearerToken(authorizationHeader)
	if !ok {
		return nil, nil
	}

	username, err := a.codec.ExtractUsername(token)
	if err != nil || username == "" {
		a.log.WithError(err).Debug("Ignoring unreadable bearer token")
		return nil, nil
	}

	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user details: %w", ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to load user details: %w", err)
	}

	if !a.auth.IsValid(ctx, token, user) {
		a.log.WithField("username", username).Debug("Bearer token rejected")
		return nil, nil
	}
	return NewPrincipal(user), nil
}
