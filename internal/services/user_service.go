// Path: internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// UserService manages profiles. The *ByID operations are for administrators.
type UserService interface {
	GetLoggedInUser(ctx context.Context, principal *Principal) (*models.User, error)
	UpdateLoggedInUser(ctx context.Context, principal *Principal, req *models.UserRequest) (*models.User, error)
	DeleteLoggedInUser(ctx context.Context, principal *Principal) error
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUserByID(ctx context.Context, id uint, req *models.UserRequest) (*models.User, error)
	DeleteUserByID(ctx context.Context, id uint) error
}

type userService struct {
	store    repository.Store
	encoder  PasswordEncoder
	validate *validator.Validate
	log      *logrus.Logger
}

func NewUserService(store repository.Store, encoder PasswordEncoder, log *logrus.Logger) UserService {
	return &userService{
		store:    store,
		encoder:  encoder,
		validate: validator.New(),
		log:      log,
	}
}

func (s *userService) GetLoggedInUser(ctx context.Context, principal *Principal) (*models.User, error) {
	return s.GetUserByID(ctx, principal.UserID)
}

// UpdateLoggedInUser applies req to the caller's profile. Only admins may change their role.
func (s *userService) UpdateLoggedInUser(ctx context.Context, principal *Principal, req *models.UserRequest) (*models.User, error) {
	if !principal.IsAdmin() && req.Role != principal.Role {
		s.log.WithField("user_id", principal.UserID).Info("Role change denied")
		return nil, badRequest(ErrAuthorization)
	}
	return s.update(ctx, principal.UserID, req)
}

func (s *userService) DeleteLoggedInUser(ctx context.Context, principal *Principal) error {
	return s.DeleteUserByID(ctx, principal.UserID)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().FindAll(ctx)
	if err != nil {
		return nil, internalError("Failed to query users", err)
	}
	return users, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

func (s *userService) UpdateUserByID(ctx context.Context, id uint, req *models.UserRequest) (*models.User, error) {
	return s.update(ctx, id, req)
}

// DeleteUserByID removes the user with its accounts, their transactions and its tokens.
func (s *userService) DeleteUserByID(ctx context.Context, id uint) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return userLookupError(err)
	}
	s.log.WithField("user_id", id).Info("User deleted")
	return nil
}

// update rewrites the profile and, when the username or password changed, revokes every session in the same transaction.
func (s *userService) update(ctx context.Context, id uint, req *models.UserRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, badRequest(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}

	var updated *models.User
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return userLookupError(err)
		}

		samePassword, err := s.encoder.Matches(req.Password, user.Password)
		if err != nil {
			return internalError("Failed to verify password", err)
		}
		credentialsChanged := !samePassword || user.Username != req.Username

		if !samePassword {
			hashed, err := s.encoder.Hash(req.Password)
			if err != nil {
				return badRequest(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			}
			user.Password = hashed
		}
		user.FirstName = req.FirstName
		user.LastName = req.LastName
		user.Email = req.Email
		user.PhoneNumber = req.PhoneNumber
		user.Username = req.Username
		user.Role = req.Role

		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return badRequest(fmt.Errorf("%w: username already taken", ErrInvalidRequest))
			}
			return userLookupError(err)
		}

		if credentialsChanged {
			n, err := tx.Tokens().RevokeAllForUser(ctx, user.ID)
			if err != nil {
				return internalError("Failed to revoke tokens", err)
			}
			s.log.WithFields(logrus.Fields{"user_id": user.ID, "revoked": n}).Info("Credentials changed, sessions revoked")
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return badRequest(ErrUserNotFound)
	}
	return internalError("Failed to query user", err)
}
