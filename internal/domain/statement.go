package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType tags an entry as money in or money out. It is derived from
// the sign of the amount when the entry is created and kept explicit for
// querying and reporting.
type EntryType string

const (
	EntryTypeCredit EntryType = "credit"
	EntryTypeDebit  EntryType = "debit"
)

// StatementEntry is one immutable signed record in an account's ledger.
// Positive amounts are credits, negative amounts are debits. Entries are
// never updated or deleted; an account's balance is the sum of its entries.
type StatementEntry struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        EntryType       `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StatementRepository is the append-only entry store. There are no update
// or delete operations; immutability is enforced by the interface shape.
type StatementRepository interface {
	// CreateEntry assigns the entry's ID and timestamp and persists it.
	// Business rules are the caller's responsibility.
	CreateEntry(entry *StatementEntry) error
	GetEntry(id uuid.UUID) (*StatementEntry, error)
	// ListByAccount returns all entries for the account, newest first.
	ListByAccount(accountID uuid.UUID) ([]StatementEntry, error)
	// ListByAccountAndPeriod filters to created_at within [start, end],
	// newest first.
	ListByAccountAndPeriod(accountID uuid.UUID, start, end time.Time) ([]StatementEntry, error)
	// Balance returns the sum of all entry amounts for the account, or
	// zero for an account with no history.
	Balance(accountID uuid.UUID) (decimal.Decimal, error)
	// WithAccountLock runs fn while holding exclusive access to the
	// account's ledger. The repository passed to fn operates under the
	// lock, so a balance read followed by CreateEntry inside fn is atomic
	// with respect to other locked operations on the same account.
	WithAccountLock(accountID uuid.UUID, fn func(repo StatementRepository) error) error
}
