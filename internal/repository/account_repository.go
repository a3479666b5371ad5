package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(account *domain.CheckingAccount) error {
	query := `
		INSERT INTO checking_accounts (id, name, email, number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	account.ID = uuid.New()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.db.Exec(
		query,
		account.ID,
		account.Name,
		account.Email,
		account.Number,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create checking account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create checking account").WithDetails(err.Error())
	}

	r.logger.Info("Checking account created", "account_id", account.ID)
	return nil
}

func (r *accountRepository) GetAccount(id uuid.UUID) (*domain.CheckingAccount, error) {
	query := `
		SELECT id, name, email, number, created_at, updated_at
		FROM checking_accounts WHERE id = $1
	`

	var account domain.CheckingAccount
	err := r.db.QueryRow(query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Number,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get checking account", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get checking account").WithDetails(err.Error())
	}

	return &account, nil
}

func (r *accountRepository) ListAccounts() ([]domain.CheckingAccount, error) {
	query := `
		SELECT id, name, email, number, created_at, updated_at
		FROM checking_accounts
		ORDER BY name ASC
	`

	return r.listAccounts(query)
}

func (r *accountRepository) SearchAccountsByName(name string) ([]domain.CheckingAccount, error) {
	query := `
		SELECT id, name, email, number, created_at, updated_at
		FROM checking_accounts
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`

	return r.listAccounts(query, name)
}

func (r *accountRepository) listAccounts(query string, args ...any) ([]domain.CheckingAccount, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list checking accounts", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list checking accounts").WithDetails(err.Error())
	}
	defer rows.Close()

	var accounts []domain.CheckingAccount
	for rows.Next() {
		var account domain.CheckingAccount
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Email,
			&account.Number,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan checking account").WithDetails(err.Error())
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to read checking accounts").WithDetails(err.Error())
	}

	return accounts, nil
}

func (r *accountRepository) UpdateAccount(account *domain.CheckingAccount) error {
	query := `
		UPDATE checking_accounts
		SET name = $1, email = $2, number = $3, updated_at = $4
		WHERE id = $5
	`

	account.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(query, account.Name, account.Email, account.Number, account.UpdatedAt, account.ID)
	if err != nil {
		r.logger.Error("Failed to update checking account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update checking account").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		return errors.ErrAccountNotFound
	}

	r.logger.Info("Checking account updated", "account_id", account.ID)
	return nil
}

func (r *accountRepository) DeleteAccount(id uuid.UUID) error {
	query := `DELETE FROM checking_accounts WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				r.logger.Warn("Refusing to delete account with ledger history", "account_id", id)
				return errors.ErrAccountHasEntries
			}
		}
		r.logger.Error("Failed to delete checking account", "account_id", id, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to delete checking account").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		return errors.ErrAccountNotFound
	}

	r.logger.Info("Checking account deleted", "account_id", id)
	return nil
}
