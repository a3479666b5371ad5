package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
)

func seedAccount(t *testing.T, store *MemoryStore) uuid.UUID {
	t.Helper()
	account := &domain.CheckingAccount{Name: "Maria Silva", Email: "maria@example.com", Number: "12345-6"}
	require.NoError(t, store.CreateAccount(account))
	return account.ID
}

func appendEntry(t *testing.T, store *MemoryStore, accountID uuid.UUID, amount string) *domain.StatementEntry {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	entryType := domain.EntryTypeCredit
	if d.IsNegative() {
		entryType = domain.EntryTypeDebit
	}
	entry := &domain.StatementEntry{
		AccountID:   accountID,
		Amount:      d,
		Description: "test",
		Type:        entryType,
	}
	require.NoError(t, store.CreateEntry(entry))
	return entry
}

func TestMemoryListByAccountNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	accountID := seedAccount(t, store)

	first := appendEntry(t, store, accountID, "100")
	second := appendEntry(t, store, accountID, "-40")
	third := appendEntry(t, store, accountID, "25")

	entries, err := store.ListByAccount(accountID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, third.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, first.ID, entries[2].ID)
}

func TestMemoryListByAccountEmptyAccount(t *testing.T) {
	store := NewMemoryStore()
	accountID := seedAccount(t, store)

	entries, err := store.ListByAccount(accountID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	balance, err := store.Balance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestMemoryPeriodBoundsAreInclusive(t *testing.T) {
	store := NewMemoryStore()
	accountID := seedAccount(t, store)

	first := appendEntry(t, store, accountID, "10")
	second := appendEntry(t, store, accountID, "20")

	entries, err := store.ListByAccountAndPeriod(accountID, first.CreatedAt, second.CreatedAt)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// a window strictly before the first entry is empty
	entries, err = store.ListByAccountAndPeriod(accountID,
		first.CreatedAt.Add(-time.Hour), first.CreatedAt.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryBalanceSumsSignedAmounts(t *testing.T) {
	store := NewMemoryStore()
	accountID := seedAccount(t, store)

	appendEntry(t, store, accountID, "100.50")
	appendEntry(t, store, accountID, "-40.25")

	balance, err := store.Balance(accountID)
	require.NoError(t, err)
	expected, _ := decimal.NewFromString("60.25")
	assert.True(t, balance.Equal(expected))
}

func TestMemoryCreateEntryUnknownAccount(t *testing.T) {
	store := NewMemoryStore()

	entry := &domain.StatementEntry{
		AccountID: uuid.New(),
		Amount:    decimal.NewFromInt(10),
		Type:      domain.EntryTypeCredit,
	}
	assert.Equal(t, errors.ErrAccountNotFound, store.CreateEntry(entry))
}

func TestMemoryWithAccountLockUnknownAccount(t *testing.T) {
	store := NewMemoryStore()

	err := store.WithAccountLock(uuid.New(), func(repo domain.StatementRepository) error {
		t.Fatal("fn must not run for unknown account")
		return nil
	})
	assert.Equal(t, errors.ErrAccountNotFound, err)
}

func TestMemoryGetEntry(t *testing.T) {
	store := NewMemoryStore()
	accountID := seedAccount(t, store)
	entry := appendEntry(t, store, accountID, "10")

	got, err := store.GetEntry(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	_, err = store.GetEntry(uuid.New())
	assert.Equal(t, errors.ErrEntryNotFound, err)
}

func TestMemoryDeleteAccountWithEntries(t *testing.T) {
	store := NewMemoryStore()
	accountID := seedAccount(t, store)
	appendEntry(t, store, accountID, "10")

	assert.Equal(t, errors.ErrAccountHasEntries, store.DeleteAccount(accountID))
}
