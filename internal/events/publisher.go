package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checking-account-api/internal/domain"
)

// EntryPosted is emitted after a ledger entry has been committed.
type EntryPosted struct {
	EntryID     uuid.UUID        `json:"entry_id"`
	AccountID   uuid.UUID        `json:"account_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        domain.EntryType `json:"type"`
	Description string           `json:"description"`
	PostedAt    time.Time        `json:"posted_at"`
}

type Publisher interface {
	PublishEntryPosted(event EntryPosted) error
}

// FromEntry builds the event payload for a committed entry.
func FromEntry(entry *domain.StatementEntry) EntryPosted {
	return EntryPosted{
		EntryID:     entry.ID,
		AccountID:   entry.AccountID,
		Amount:      entry.Amount,
		Type:        entry.Type,
		Description: entry.Description,
		PostedAt:    entry.CreatedAt,
	}
}
