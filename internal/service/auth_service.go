package service

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
)

const tokenTTL = time.Hour

// AuthService authenticates users and issues HS256 bearer tokens.
type AuthService struct {
	users  domain.UserRepository
	secret []byte
	logger *slog.Logger
}

func NewAuthService(users domain.UserRepository, secret string, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		logger: logger,
	}
}

// Authenticate checks the credentials and returns the user plus a signed
// token. Unknown email and wrong password produce the same error so the
// endpoint cannot be used to enumerate users.
func (s *AuthService) Authenticate(email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.UserNotFound {
			return nil, "", errors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Failed login attempt", "email", email)
		return nil, "", errors.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign token", "error", err)
		return nil, "", errors.NewAppError(errors.InternalError, "failed to sign token")
	}

	s.logger.Info("User authenticated", "user_id", user.ID)
	return user, token, nil
}

// VerifyToken validates a bearer token and returns the user id it was
// issued for.
func (s *AuthService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, errors.ErrUnauthorized
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errors.ErrUnauthorized
	}

	return userID, nil
}
