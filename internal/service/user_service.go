package service

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
)

type UserService struct {
	users  domain.UserRepository
	logger *slog.Logger
}

func NewUserService(users domain.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

func (s *UserService) CreateUser(name, email, password string) (*domain.User, error) {
	s.logger.Info("Creating user", "email", email)

	if err := validateUserFields(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to hash password")
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	}

	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) GetUser(id uuid.UUID) (*domain.User, error) {
	return s.users.GetUser(id)
}

func (s *UserService) ListUsers() ([]domain.User, error) {
	return s.users.ListUsers()
}

func (s *UserService) UpdateUser(id uuid.UUID, name, email, password string) (*domain.User, error) {
	s.logger.Info("Updating user", "user_id", id)

	if err := validateUserFields(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to hash password")
	}

	user := &domain.User{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	}

	if err := s.users.UpdateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) DeleteUser(id uuid.UUID) error {
	s.logger.Info("Deleting user", "user_id", id)
	return s.users.DeleteUser(id)
}

func validateUserFields(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewAppError(errors.InvalidInput, "invalid name: must be a non-empty string")
	}
	if strings.TrimSpace(email) == "" {
		return errors.NewAppError(errors.InvalidInput, "invalid email: must be a non-empty string")
	}
	if password == "" {
		return errors.NewAppError(errors.InvalidInput, "invalid password: must be a non-empty string")
	}
	return nil
}
