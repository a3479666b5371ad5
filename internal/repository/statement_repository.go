package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
)

type statementRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewStatementRepository(db SQLExecutor, logger *slog.Logger) domain.StatementRepository {
	return &statementRepository{
		db:     db,
		logger: logger,
	}
}

// CreateEntry persists a new ledger entry. The ID and timestamp are
// assigned here; the row is never touched again.
func (r *statementRepository) CreateEntry(entry *domain.StatementEntry) error {
	query := `
		INSERT INTO statement_entries (id, account_id, amount, description, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(
		query,
		entry.ID,
		entry.AccountID,
		entry.Amount.String(),
		entry.Description,
		string(entry.Type),
		entry.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				r.logger.Warn("Entry references unknown account", "account_id", entry.AccountID)
				return errors.ErrAccountNotFound
			}
		}
		r.logger.Error("Failed to create statement entry",
			"account_id", entry.AccountID,
			"amount", entry.Amount,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to create statement entry").WithDetails(err.Error())
	}

	r.logger.Info("Statement entry created",
		"entry_id", entry.ID,
		"account_id", entry.AccountID,
		"type", entry.Type)
	return nil
}

func (r *statementRepository) GetEntry(id uuid.UUID) (*domain.StatementEntry, error) {
	query := `
		SELECT id, account_id, amount, description, type, created_at
		FROM statement_entries WHERE id = $1
	`

	var entry domain.StatementEntry
	var amountStr string
	var entryType string

	err := r.db.QueryRow(query, id).Scan(
		&entry.ID,
		&entry.AccountID,
		&amountStr,
		&entry.Description,
		&entryType,
		&entry.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrEntryNotFound
		}
		r.logger.Error("Failed to get statement entry", "entry_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get statement entry").WithDetails(err.Error())
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
	}
	entry.Amount = amount
	entry.Type = domain.EntryType(entryType)

	return &entry, nil
}

func (r *statementRepository) ListByAccount(accountID uuid.UUID) ([]domain.StatementEntry, error) {
	query := `
		SELECT id, account_id, amount, description, type, created_at
		FROM statement_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id
	`

	return r.listEntries(query, accountID)
}

func (r *statementRepository) ListByAccountAndPeriod(accountID uuid.UUID, start, end time.Time) ([]domain.StatementEntry, error) {
	query := `
		SELECT id, account_id, amount, description, type, created_at
		FROM statement_entries
		WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC, id
	`

	return r.listEntries(query, accountID, start, end)
}

func (r *statementRepository) listEntries(query string, args ...any) ([]domain.StatementEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list statement entries", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list statement entries").WithDetails(err.Error())
	}
	defer rows.Close()

	var entries []domain.StatementEntry
	for rows.Next() {
		var entry domain.StatementEntry
		var amountStr string
		var entryType string

		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&amountStr,
			&entry.Description,
			&entryType,
			&entry.CreatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan statement entry").WithDetails(err.Error())
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
		}
		entry.Amount = amount
		entry.Type = domain.EntryType(entryType)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to read statement entries").WithDetails(err.Error())
	}

	return entries, nil
}

// Balance sums all entry amounts for the account. An account with no
// history has a zero balance, not an error.
func (r *statementRepository) Balance(accountID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM statement_entries
		WHERE account_id = $1
	`

	var balanceStr string
	if err := r.db.QueryRow(query, accountID).Scan(&balanceStr); err != nil {
		r.logger.Error("Failed to get balance", "account_id", accountID, "error", err)
		return decimal.Zero, errors.NewAppError(errors.InternalError, "failed to get balance").WithDetails(err.Error())
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}

	return balance, nil
}

// WithAccountLock serializes ledger writes per account. It opens a
// database transaction and locks the account row with SELECT ... FOR
// UPDATE, so a balance read followed by an insert inside fn cannot
// interleave with another locked operation on the same account. Only one
// account is ever locked at a time, so no lock ordering is needed.
func (r *statementRepository) WithAccountLock(accountID uuid.UUID, fn func(repo domain.StatementRepository) error) error {
	db, ok := r.db.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to begin transaction").WithDetails(err.Error())
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	var lockedID uuid.UUID
	err = tx.QueryRow(`SELECT id FROM checking_accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&lockedID)
	if err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to lock account row", "account_id", accountID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to lock account").WithDetails(err.Error())
	}

	txRepo := &statementRepository{db: tx, logger: r.logger}
	if err := fn(txRepo); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewAppError(errors.InternalError, "failed to commit transaction").WithDetails(err.Error())
	}
	return nil
}
