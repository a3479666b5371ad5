package domain

import (
	"time"

	"github.com/google/uuid"
)

// CheckingAccount is the registry record a statement entry references.
// The ledger never mutates accounts; it only requires that an ID resolve
// to an existing account before entries are appended.
type CheckingAccount struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AccountRepository interface {
	CreateAccount(account *CheckingAccount) error
	GetAccount(id uuid.UUID) (*CheckingAccount, error)
	ListAccounts() ([]CheckingAccount, error)
	SearchAccountsByName(name string) ([]CheckingAccount, error)
	UpdateAccount(account *CheckingAccount) error
	DeleteAccount(id uuid.UUID) error
}
