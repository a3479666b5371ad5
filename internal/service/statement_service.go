package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
	"checking-account-api/internal/events"
)

// StatementService executes the ledger operations: deposits, the three
// debit variants, and statement queries. Balance is always derived from
// the entry log; debits are serialized per account via the repository's
// account lock so the balance can never go negative.
type StatementService struct {
	statements domain.StatementRepository
	publisher  events.Publisher
	logger     *slog.Logger
}

// NewStatementService creates the service. publisher may be nil when
// event publishing is disabled.
func NewStatementService(statements domain.StatementRepository, publisher events.Publisher, logger *slog.Logger) *StatementService {
	return &StatementService{
		statements: statements,
		publisher:  publisher,
		logger:     logger,
	}
}

// Deposit appends a credit entry. Crediting can never violate the
// non-negative balance invariant, so no account lock is taken and
// concurrent deposits proceed in parallel.
func (s *StatementService) Deposit(accountID uuid.UUID, amount decimal.Decimal, description string) (*domain.StatementEntry, error) {
	s.logger.Info("Processing deposit", "account_id", accountID, "amount", amount)

	if amount.Cmp(decimal.Zero) <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	entry := &domain.StatementEntry{
		AccountID:   accountID,
		Amount:      amount,
		Description: description,
		Type:        domain.EntryTypeCredit,
	}

	if err := s.statements.CreateEntry(entry); err != nil {
		return nil, err
	}

	s.publish(entry)
	return entry, nil
}

// Withdraw appends a debit entry if the balance covers the amount.
func (s *StatementService) Withdraw(accountID uuid.UUID, amount decimal.Decimal, description string) (*domain.StatementEntry, error) {
	return s.createDebit(accountID, amount, description)
}

// Pix is a withdrawal tagged as an instant transfer.
func (s *StatementService) Pix(accountID uuid.UUID, amount decimal.Decimal, description string) (*domain.StatementEntry, error) {
	return s.createDebit(accountID, amount, "PIX - "+description)
}

// Ted is a withdrawal tagged as a wire transfer.
func (s *StatementService) Ted(accountID uuid.UUID, amount decimal.Decimal, description string) (*domain.StatementEntry, error) {
	return s.createDebit(accountID, amount, "TED - "+description)
}

// createDebit is the single funnel for every debit variant. The balance
// read, the comparison, and the append all happen under the account lock;
// two concurrent debits that jointly exceed the balance cannot both
// commit.
func (s *StatementService) createDebit(accountID uuid.UUID, amount decimal.Decimal, description string) (*domain.StatementEntry, error) {
	s.logger.Info("Processing debit", "account_id", accountID, "amount", amount)

	if amount.Cmp(decimal.Zero) <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	var entry *domain.StatementEntry
	err := s.statements.WithAccountLock(accountID, func(repo domain.StatementRepository) error {
		balance, err := repo.Balance(accountID)
		if err != nil {
			return err
		}

		if amount.GreaterThan(balance) {
			s.logger.Info("Debit rejected, insufficient funds",
				"account_id", accountID,
				"amount", amount,
				"balance", balance)
			return errors.ErrInsufficientFunds
		}

		entry = &domain.StatementEntry{
			AccountID:   accountID,
			Amount:      amount.Neg(),
			Description: description,
			Type:        domain.EntryTypeDebit,
		}
		return repo.CreateEntry(entry)
	})

	if err != nil {
		return nil, err
	}

	s.publish(entry)
	return entry, nil
}

// GetBalance returns the sum of all entries for the account; zero for an
// account with no history.
func (s *StatementService) GetBalance(accountID uuid.UUID) (decimal.Decimal, error) {
	return s.statements.Balance(accountID)
}

// GetStatement returns all entries for the account, newest first.
func (s *StatementService) GetStatement(accountID uuid.UUID) ([]domain.StatementEntry, error) {
	return s.statements.ListByAccount(accountID)
}

// GetByPeriod returns the entries with created_at in [start, end],
// newest first.
func (s *StatementService) GetByPeriod(accountID uuid.UUID, start, end time.Time) ([]domain.StatementEntry, error) {
	if end.Before(start) {
		return nil, errors.ErrInvalidPeriod
	}
	return s.statements.ListByAccountAndPeriod(accountID, start, end)
}

// GetEntry returns a single entry, scoped to the account it belongs to.
func (s *StatementService) GetEntry(accountID, entryID uuid.UUID) (*domain.StatementEntry, error) {
	entry, err := s.statements.GetEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.AccountID != accountID {
		return nil, errors.ErrEntryNotFound
	}
	return entry, nil
}

// publish emits the entry-posted event after commit. Publishing is
// fire-and-forget: the ledger's correctness must not depend on the
// broker, so failures are logged and swallowed.
func (s *StatementService) publish(entry *domain.StatementEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntryPosted(events.FromEntry(entry)); err != nil {
		s.logger.Error("Failed to publish entry-posted event",
			"entry_id", entry.ID,
			"account_id", entry.AccountID,
			"error", err)
	}
}
