package service

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
)

type AccountService struct {
	accounts domain.AccountRepository
	logger   *slog.Logger
}

func NewAccountService(accounts domain.AccountRepository, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		logger:   logger,
	}
}

func (s *AccountService) CreateAccount(name, email, number string) (*domain.CheckingAccount, error) {
	s.logger.Info("Creating checking account", "name", name)

	if err := validateAccountFields(name, email, number); err != nil {
		return nil, err
	}

	account := &domain.CheckingAccount{
		Name:   strings.TrimSpace(name),
		Email:  strings.TrimSpace(email),
		Number: strings.TrimSpace(number),
	}

	if err := s.accounts.CreateAccount(account); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AccountService) GetAccount(id uuid.UUID) (*domain.CheckingAccount, error) {
	return s.accounts.GetAccount(id)
}

func (s *AccountService) ListAccounts() ([]domain.CheckingAccount, error) {
	return s.accounts.ListAccounts()
}

func (s *AccountService) SearchAccountsByName(name string) ([]domain.CheckingAccount, error) {
	return s.accounts.SearchAccountsByName(strings.TrimSpace(name))
}

func (s *AccountService) UpdateAccount(id uuid.UUID, name, email, number string) (*domain.CheckingAccount, error) {
	s.logger.Info("Updating checking account", "account_id", id)

	if err := validateAccountFields(name, email, number); err != nil {
		return nil, err
	}

	account := &domain.CheckingAccount{
		ID:     id,
		Name:   strings.TrimSpace(name),
		Email:  strings.TrimSpace(email),
		Number: strings.TrimSpace(number),
	}

	if err := s.accounts.UpdateAccount(account); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AccountService) DeleteAccount(id uuid.UUID) error {
	s.logger.Info("Deleting checking account", "account_id", id)
	return s.accounts.DeleteAccount(id)
}

// Exists reports whether the account id resolves to a registered account.
// The router uses it to guard account-scoped routes before the ledger
// handlers run.
func (s *AccountService) Exists(id uuid.UUID) (bool, error) {
	_, err := s.accounts.GetAccount(id)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.AccountNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validateAccountFields(name, email, number string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewAppError(errors.InvalidInput, "invalid name: must be a non-empty string")
	}
	if strings.TrimSpace(email) == "" {
		return errors.NewAppError(errors.InvalidInput, "invalid email: must be a non-empty string")
	}
	if strings.TrimSpace(number) == "" {
		return errors.NewAppError(errors.InvalidInput, "invalid number: must be a non-empty string")
	}
	return nil
}
