package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
)

// MemoryStore is an in-memory implementation of every repository
// interface. It backs the unit tests and local development without a
// database while honoring the same contracts as the Postgres store,
// including per-account serialization of ledger writes.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]domain.CheckingAccount
	users    map[uuid.UUID]domain.User
	entries  map[uuid.UUID][]domain.StatementEntry // per account, in commit order

	lockMu    sync.Mutex
	accountMu map[uuid.UUID]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[uuid.UUID]domain.CheckingAccount),
		users:     make(map[uuid.UUID]domain.User),
		entries:   make(map[uuid.UUID][]domain.StatementEntry),
		accountMu: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *MemoryStore) Account() domain.AccountRepository     { return s }
func (s *MemoryStore) Statement() domain.StatementRepository { return s }
func (s *MemoryStore) User() domain.UserRepository           { return s }

var (
	_ domain.AccountRepository   = (*MemoryStore)(nil)
	_ domain.StatementRepository = (*MemoryStore)(nil)
	_ domain.UserRepository      = (*MemoryStore)(nil)
)

// --- StatementRepository ---

func (s *MemoryStore) CreateEntry(entry *domain.StatementEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[entry.AccountID]; !ok {
		return errors.ErrAccountNotFound
	}

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	s.entries[entry.AccountID] = append(s.entries[entry.AccountID], *entry)
	return nil
}

func (s *MemoryStore) GetEntry(id uuid.UUID) (*domain.StatementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, list := range s.entries {
		for _, entry := range list {
			if entry.ID == id {
				cp := entry
				return &cp, nil
			}
		}
	}
	return nil, errors.ErrEntryNotFound
}

func (s *MemoryStore) ListByAccount(accountID uuid.UUID) ([]domain.StatementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.entries[accountID]
	out := make([]domain.StatementEntry, 0, len(list))
	// commit order reversed = newest first
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (s *MemoryStore) ListByAccountAndPeriod(accountID uuid.UUID, start, end time.Time) ([]domain.StatementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.entries[accountID]
	var out []domain.StatementEntry
	for i := len(list) - 1; i >= 0; i-- {
		created := list[i].CreatedAt
		if !created.Before(start) && !created.After(end) {
			out = append(out, list[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) Balance(accountID uuid.UUID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance := decimal.Zero
	for _, entry := range s.entries[accountID] {
		balance = balance.Add(entry.Amount)
	}
	return balance, nil
}

func (s *MemoryStore) WithAccountLock(accountID uuid.UUID, fn func(repo domain.StatementRepository) error) error {
	s.mu.RLock()
	_, exists := s.accounts[accountID]
	s.mu.RUnlock()
	if !exists {
		return errors.ErrAccountNotFound
	}

	mu := s.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	return fn(s)
}

func (s *MemoryStore) accountLock(accountID uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if _, ok := s.accountMu[accountID]; !ok {
		s.accountMu[accountID] = &sync.Mutex{}
	}
	return s.accountMu[accountID]
}

// --- AccountRepository ---

func (s *MemoryStore) CreateAccount(account *domain.CheckingAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account.ID = uuid.New()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = *account
	return nil
}

func (s *MemoryStore) GetAccount(id uuid.UUID) (*domain.CheckingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return &account, nil
}

func (s *MemoryStore) ListAccounts() ([]domain.CheckingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CheckingAccount, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) SearchAccountsByName(name string) ([]domain.CheckingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(name)
	var out []domain.CheckingAccount
	for _, account := range s.accounts {
		if strings.Contains(strings.ToLower(account.Name), needle) {
			out = append(out, account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) UpdateAccount(account *domain.CheckingAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[account.ID]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	s.accounts[account.ID] = *account
	return nil
}

func (s *MemoryStore) DeleteAccount(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return errors.ErrAccountNotFound
	}
	if len(s.entries[id]) > 0 {
		return errors.ErrAccountHasEntries
	}
	delete(s.accounts, id)
	return nil
}

// --- UserRepository ---

func (s *MemoryStore) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.ErrDuplicateUser
		}
	}

	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			cp := user
			return &cp, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *MemoryStore) ListUsers() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return errors.ErrUserNotFound
	}
	for _, other := range s.users {
		if other.ID != user.ID && other.Email == user.Email {
			return errors.ErrDuplicateUser
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return errors.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}
