package service

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
	"checking-account-api/internal/events"
	"checking-account-api/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EntryPosted
	fail   bool
}

func (p *recordingPublisher) PublishEntryPosted(event events.EntryPosted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return fmt.Errorf("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLedger(t *testing.T) (*StatementService, *repository.MemoryStore, uuid.UUID) {
	t.Helper()

	store := repository.NewMemoryStore()
	account := &domain.CheckingAccount{Name: "Maria Silva", Email: "maria@example.com", Number: "12345-6"}
	require.NoError(t, store.CreateAccount(account))

	svc := NewStatementService(store.Statement(), nil, testLogger())
	return svc, store, account.ID
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestDepositIncreasesBalance(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	entry, err := svc.Deposit(accountID, mustDecimal(t, "100"), "paycheck")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, domain.EntryTypeCredit, entry.Type)
	assert.True(t, entry.Amount.Equal(mustDecimal(t, "100")))
	assert.False(t, entry.CreatedAt.IsZero())

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(mustDecimal(t, "100")))
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	for _, amount := range []string{"0", "-5"} {
		_, err := svc.Deposit(accountID, mustDecimal(t, amount), "bad")
		assert.Equal(t, errors.ErrInvalidAmount, err)
	}

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestWithdrawDecreasesBalance(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	_, err := svc.Deposit(accountID, mustDecimal(t, "100"), "paycheck")
	require.NoError(t, err)

	entry, err := svc.Withdraw(accountID, mustDecimal(t, "40"), "groceries")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryTypeDebit, entry.Type)
	assert.True(t, entry.Amount.Equal(mustDecimal(t, "-40")))

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(mustDecimal(t, "60")))

	statement, err := svc.GetStatement(accountID)
	require.NoError(t, err)
	require.Len(t, statement, 2)
	// newest first
	assert.True(t, statement[0].Amount.Equal(mustDecimal(t, "-40")))
	assert.True(t, statement[1].Amount.Equal(mustDecimal(t, "100")))
}

func TestWithdrawExactBalance(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	_, err := svc.Deposit(accountID, mustDecimal(t, "75.50"), "paycheck")
	require.NoError(t, err)

	_, err = svc.Withdraw(accountID, mustDecimal(t, "75.50"), "rent")
	require.NoError(t, err)

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	// one cent over an empty balance must fail
	_, err = svc.Withdraw(accountID, mustDecimal(t, "0.01"), "overdraft")
	assert.Equal(t, errors.ErrInsufficientFunds, err)
}

func TestWithdrawInsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	_, err := svc.Deposit(accountID, mustDecimal(t, "60"), "paycheck")
	require.NoError(t, err)

	_, err = svc.Withdraw(accountID, mustDecimal(t, "1000"), "too much")
	assert.Equal(t, errors.ErrInsufficientFunds, err)

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(mustDecimal(t, "60")))

	statement, err := svc.GetStatement(accountID)
	require.NoError(t, err)
	assert.Len(t, statement, 1)
}

func TestWithdrawRejectsNonPositiveAmount(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	for _, amount := range []string{"0", "-1"} {
		_, err := svc.Withdraw(accountID, mustDecimal(t, amount), "bad")
		assert.Equal(t, errors.ErrInvalidAmount, err)
	}
}

func TestPixAndTedTagDescriptions(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	_, err := svc.Deposit(accountID, mustDecimal(t, "100"), "paycheck")
	require.NoError(t, err)

	pix, err := svc.Pix(accountID, mustDecimal(t, "10"), "lunch split")
	require.NoError(t, err)
	assert.Equal(t, "PIX - lunch split", pix.Description)
	assert.Equal(t, domain.EntryTypeDebit, pix.Type)
	assert.True(t, pix.Amount.Equal(mustDecimal(t, "-10")))

	ted, err := svc.Ted(accountID, mustDecimal(t, "20"), "invoice 42")
	require.NoError(t, err)
	assert.Equal(t, "TED - invoice 42", ted.Description)

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(mustDecimal(t, "70")))
}

func TestPixAndTedEnforceBalance(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	_, err := svc.Pix(accountID, mustDecimal(t, "1"), "no funds")
	assert.Equal(t, errors.ErrInsufficientFunds, err)

	_, err = svc.Ted(accountID, mustDecimal(t, "1"), "no funds")
	assert.Equal(t, errors.ErrInsufficientFunds, err)
}

func TestGetBalanceEmptyAccountIsZero(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestDebitUnknownAccount(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	_, err := svc.Withdraw(uuid.New(), mustDecimal(t, "10"), "ghost")
	assert.Equal(t, errors.ErrAccountNotFound, err)
}

func TestGetByPeriodFiltersClosedInterval(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	first, err := svc.Deposit(accountID, mustDecimal(t, "10"), "first")
	require.NoError(t, err)
	second, err := svc.Deposit(accountID, mustDecimal(t, "20"), "second")
	require.NoError(t, err)
	third, err := svc.Deposit(accountID, mustDecimal(t, "30"), "third")
	require.NoError(t, err)

	// closed interval picks up entries on both bounds
	entries, err := svc.GetByPeriod(accountID, second.CreatedAt, third.CreatedAt)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, third.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)

	// the period result is a subset of the full statement
	statement, err := svc.GetStatement(accountID)
	require.NoError(t, err)
	assert.Len(t, statement, 3)
	assert.Equal(t, first.ID, statement[2].ID)
}

func TestGetByPeriodRejectsInvertedRange(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	entry, err := svc.Deposit(accountID, mustDecimal(t, "10"), "first")
	require.NoError(t, err)

	_, err = svc.GetByPeriod(accountID, entry.CreatedAt, entry.CreatedAt.Add(-1))
	assert.Equal(t, errors.ErrInvalidPeriod, err)
}

func TestGetEntryScopedToAccount(t *testing.T) {
	svc, store, accountID := newTestLedger(t)

	entry, err := svc.Deposit(accountID, mustDecimal(t, "10"), "first")
	require.NoError(t, err)

	got, err := svc.GetEntry(accountID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	// the same entry is invisible through another account
	other := &domain.CheckingAccount{Name: "Other", Email: "other@example.com", Number: "99999-9"}
	require.NoError(t, store.CreateAccount(other))
	_, err = svc.GetEntry(other.ID, entry.ID)
	assert.Equal(t, errors.ErrEntryNotFound, err)

	_, err = svc.GetEntry(accountID, uuid.New())
	assert.Equal(t, errors.ErrEntryNotFound, err)
}

func TestConcurrentWithdrawalsNeverOverdraft(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	_, err := svc.Deposit(accountID, mustDecimal(t, "100"), "seed")
	require.NoError(t, err)

	// two racing withdrawals of the full balance: at most one commits
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(accountID, mustDecimal(t, "100"), "race")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, errors.ErrInsufficientFunds, err)
			rejected++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestConcurrentWithdrawalsDrainExactly(t *testing.T) {
	svc, _, accountID := newTestLedger(t)

	_, err := svc.Deposit(accountID, mustDecimal(t, "200"), "seed")
	require.NoError(t, err)

	// 50 withdrawals of 10 against 200: exactly 20 can commit
	const workers = 50
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(accountID, mustDecimal(t, "10"), "drain")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, errors.ErrInsufficientFunds, err)
		}
	}
	assert.Equal(t, 20, succeeded)

	balance, err := svc.GetBalance(accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestEntryPostedEventsPublished(t *testing.T) {
	store := repository.NewMemoryStore()
	account := &domain.CheckingAccount{Name: "Maria Silva", Email: "maria@example.com", Number: "12345-6"}
	require.NoError(t, store.CreateAccount(account))

	publisher := &recordingPublisher{}
	svc := NewStatementService(store.Statement(), publisher, testLogger())

	_, err := svc.Deposit(account.ID, mustDecimal(t, "100"), "paycheck")
	require.NoError(t, err)
	_, err = svc.Withdraw(account.ID, mustDecimal(t, "40"), "groceries")
	require.NoError(t, err)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, domain.EntryTypeCredit, publisher.events[0].Type)
	assert.Equal(t, domain.EntryTypeDebit, publisher.events[1].Type)
	assert.Equal(t, account.ID, publisher.events[0].AccountID)
}

func TestPublishFailureDoesNotFailLedgerOperation(t *testing.T) {
	store := repository.NewMemoryStore()
	account := &domain.CheckingAccount{Name: "Maria Silva", Email: "maria@example.com", Number: "12345-6"}
	require.NoError(t, store.CreateAccount(account))

	publisher := &recordingPublisher{fail: true}
	svc := NewStatementService(store.Statement(), publisher, testLogger())

	_, err := svc.Deposit(account.ID, mustDecimal(t, "100"), "paycheck")
	require.NoError(t, err)

	balance, err := svc.GetBalance(account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(mustDecimal(t, "100")))
}
