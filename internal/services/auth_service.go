// Path: internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"
	"bank-backend/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	msgRegistered     = "User Registration Was Successful."
	msgLoggedIn       = "User Login Was Successful."
	msgTokenRefreshed = "New Token Generated."
)

// AuthService handles user authentication and registration.
type AuthService interface {
	Register(ctx context.Context, req *models.UserRequest) (*models.AuthenticationResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthenticationResponse, error)
	// RefreshToken expects the refresh token in a "Bearer <token>" header value.
	RefreshToken(ctx context.Context, authorizationHeader string) (*models.AuthenticationResponse, error)
	// Logout revokes the presented access token. It never fails.
	Logout(ctx context.Context, authorizationHeader string)
	IsValid(ctx context.Context, token string, user *models.User) bool
	IsValidRefreshToken(ctx context.Context, token string, user *models.User) bool
}

type authService struct {
	store     repository.Store
	codec     JWTService
	encoder   PasswordEncoder
	validate  *validator.Validate
	log       *logrus.Logger
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, codec JWTService, encoder PasswordEncoder, log *logrus.Logger) (AuthService, error) {
	// Compared against for unknown usernames so both login failures cost one bcrypt round.
	dummy, err := encoder.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &authService{
		store:     store,
		codec:     codec,
		encoder:   encoder,
		validate:  validator.New(),
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Register creates the user and its first token pair in one transaction.
func (s *authService) Register(ctx context.Context, req *models.UserRequest) (*models.AuthenticationResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, s.reject("register", req.Username, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}

	var resp *models.AuthenticationResponse
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		exists, err := tx.Users().ExistsByUsername(ctx, req.Username)
		if err != nil {
			return internalError("Failed to check user existence", err)
		}
		if exists {
			return badRequest(fmt.Errorf("%w: username already taken", ErrInvalidRequest))
		}

		hashed, err := s.encoder.Hash(req.Password)
		if err != nil {
			return badRequest(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		}

		user := &models.User{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Username:    req.Username,
			Password:    hashed,
			Role:        req.Role,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return badRequest(fmt.Errorf("%w: username already taken", ErrInvalidRequest))
			}
			return internalError("Failed to insert user", err)
		}

		resp, err = s.issue(ctx, tx, user, false, msgRegistered)
		return err
	})
	if err != nil {
		return nil, s.reject("register", req.Username, err)
	}

	s.log.Infof("User registered: %s", req.Username)
	return resp, nil
}

// Login verifies the credentials and replaces every active session of the user with a new pair.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthenticationResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, s.reject("login", req.Username, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}

	user, err := s.store.Users().FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = s.encoder.Matches(req.Password, s.dummyHash)
			return nil, s.reject("login", req.Username, badRequest(fmt.Errorf("%w: unknown username", ErrInvalidRequest)))
		}
		return nil, s.reject("login", req.Username, internalError("Failed to query user", err))
	}

	ok, err := s.encoder.Matches(req.Password, user.Password)
	if err != nil {
		return nil, s.reject("login", req.Username, internalError("Failed to verify password", err))
	}
	if !ok {
		return nil, s.reject("login", req.Username, badRequest(ErrAuthentication))
	}

	var resp *models.AuthenticationResponse
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		locked, err := tx.Users().LockByUsername(ctx, user.Username)
		if err != nil {
			return userLookupError(err)
		}
		resp, err = s.issue(ctx, tx, locked, true, msgLoggedIn)
		return err
	})
	if err != nil {
		return nil, s.reject("login", req.Username, err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return resp, nil
}

// RefreshToken exchanges a valid refresh token for a new pair and revokes every older session.
func (s *authService) RefreshToken(ctx context.Context, authorizationHeader string) (*models.AuthenticationResponse, error) {
	token, ok := utils.BearerToken(authorizationHeader)
	if !ok {
		return nil, s.reject("refresh", "", badRequest(fmt.Errorf("%w: missing bearer token", ErrInvalidRequest)))
	}

	username, err := s.codec.ExtractUsername(token)
	if err != nil || username == "" {
		return nil, s.reject("refresh", "", badRequest(fmt.Errorf("%w: cannot read subject", ErrInvalidToken)))
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.reject("refresh", username, badRequest(fmt.Errorf("%w: %v", ErrInvalidToken, ErrUserNotFound)))
		}
		return nil, s.reject("refresh", username, internalError("Failed to query user", err))
	}

	if !s.IsValidRefreshToken(ctx, token, user) {
		return nil, s.reject("refresh", username, badRequest(ErrInvalidToken))
	}

	var resp *models.AuthenticationResponse
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		locked, err := tx.Users().LockByUsername(ctx, username)
		if err != nil {
			return userLookupError(err)
		}
		// A concurrent refresh or login may have revoked it while we waited for the lock.
		stored, err := tx.Tokens().FindByRefreshToken(ctx, token)
		if err != nil || stored.LoggedOut {
			return badRequest(fmt.Errorf("%w: revoked", ErrInvalidToken))
		}
		resp, err = s.issue(ctx, tx, locked, true, msgTokenRefreshed)
		return err
	})
	if err != nil {
		return nil, s.reject("refresh", username, err)
	}

	s.log.Infof("Token refreshed for user: %s", username)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, authorizationHeader string) {
	token, ok := utils.BearerToken(authorizationHeader)
	if !ok {
		return
	}

	stored, err := s.store.Tokens().FindByAccessToken(ctx, token)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).Error("Failed to look up token on logout")
		}
		return
	}

	if err := s.store.Tokens().Revoke(ctx, stored); err != nil {
		s.log.WithError(err).WithField("token_id", stored.ID).Error("Failed to revoke token on logout")
		return
	}
	s.log.WithField("user_id", stored.UserID).Info("User logged out")
}

func (s *authService) IsValid(ctx context.Context, token string, user *models.User) bool {
	return s.isValid(ctx, token, user, s.store.Tokens().FindByAccessToken)
}

func (s *authService) IsValidRefreshToken(ctx context.Context, token string, user *models.User) bool {
	return s.isValid(ctx, token, user, s.store.Tokens().FindByRefreshToken)
}

// isValid requires a good signature, a matching subject, an unexpired token and a stored record that is not logged out.
func (s *authService) isValid(
	ctx context.Context,
	token string,
	user *models.User,
	find func(context.Context, string) (*models.Token, error),
) bool {
	if user == nil {
		return false
	}
	username, err := s.codec.ExtractUsername(token)
	if err != nil || username != user.Username {
		return false
	}
	expired, err := s.codec.IsTokenExpired(token)
	if err != nil || expired {
		return false
	}
	stored, err := find(ctx, token)
	if err != nil {
		return false
	}
	return !stored.LoggedOut
}

// issue mints a pair for user and persists it through tx. With revokeOthers the
// user's active tokens are revoked first, so the new pair is the only live one.
func (s *authService) issue(
	ctx context.Context,
	tx repository.Store,
	user *models.User,
	revokeOthers bool,
	message string,
) (*models.AuthenticationResponse, error) {
	accessToken, err := s.codec.GenerateAccessToken(user)
	if err != nil {
		return nil, internalError("Failed to sign token", err)
	}
	refreshToken, err := s.codec.GenerateRefreshToken(user)
	if err != nil {
		return nil, internalError("Failed to sign token", err)
	}

	if revokeOthers {
		n, err := tx.Tokens().RevokeAllForUser(ctx, user.ID)
		if err != nil {
			return nil, internalError("Failed to revoke tokens", err)
		}
		s.log.WithFields(logrus.Fields{"user_id": user.ID, "revoked": n}).Debug("Revoked active tokens")
	}

	record := &models.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
	}
	if err := tx.Tokens().Save(ctx, record); err != nil {
		return nil, internalError("Failed to save token", err)
	}

	return &models.AuthenticationResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      message,
	}, nil
}

// reject logs the real reason and returns err as an AppError.
func (s *authService) reject(op, username string, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = badRequest(err)
	}
	entry := s.log.WithFields(logrus.Fields{"op": op, "username": username}).WithError(appErr.Err)
	if appErr.Code >= 500 {
		entry.Error(appErr.Message)
	} else {
		entry.Info("Request rejected")
	}
	return appErr
}
