package repository

import (
	"database/sql"
	"log/slog"

	"checking-account-api/internal/domain"
)

// Store bundles the Postgres repositories over one shared connection pool.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Account returns the checking-account registry repository.
func (s *Store) Account() domain.AccountRepository {
	return NewAccountRepository(s.db, s.logger)
}

// Statement returns the append-only ledger repository.
func (s *Store) Statement() domain.StatementRepository {
	return NewStatementRepository(s.db, s.logger)
}

// User returns the user repository.
func (s *Store) User() domain.UserRepository {
	return NewUserRepository(s.db, s.logger)
}
