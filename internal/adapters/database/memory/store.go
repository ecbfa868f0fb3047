// Package memory is a process-local storage backend implementing every
// repository port. It backs the test suites and the STORAGE_BACKEND=memory
// development mode.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

type mappingKey struct {
	mappingType domain.MappingType
	key         string
}

type sourceKey struct {
	sourceType domain.SourceType
	sourceID   string
}

type state struct {
	accounts  map[string]domain.Account
	entries   []domain.LedgerEntry
	sequences map[domain.JournalPrefix]int64
	periods   map[string]domain.FinancialPeriod
	settings  *domain.CompanySettings
	mappings  map[mappingKey]domain.AccountMapping
	sources   map[sourceKey]domain.SourceDocument
}

func newState() *state {
	return &state{
		accounts:  map[string]domain.Account{},
		sequences: map[domain.JournalPrefix]int64{},
		periods:   map[string]domain.FinancialPeriod{},
		mappings:  map[mappingKey]domain.AccountMapping{},
		sources:   map[sourceKey]domain.SourceDocument{},
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts:  make(map[string]domain.Account, len(s.accounts)),
		entries:   append([]domain.LedgerEntry(nil), s.entries...),
		sequences: make(map[domain.JournalPrefix]int64, len(s.sequences)),
		periods:   make(map[string]domain.FinancialPeriod, len(s.periods)),
		mappings:  make(map[mappingKey]domain.AccountMapping, len(s.mappings)),
		sources:   make(map[sourceKey]domain.SourceDocument, len(s.sources)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.periods {
		c.periods[k] = v
	}
	for k, v := range s.mappings {
		c.mappings[k] = v
	}
	for k, v := range s.sources {
		c.sources[k] = v
	}
	if s.settings != nil {
		settings := *s.settings
		c.settings = &settings
	}
	return c
}

type scope int

const (
	scopeNone scope = iota
	scopeRead
	scopeWrite
)

type scopeKey struct{ store *Store }

// ErrWriteInReadSnapshot is returned when a write is attempted inside WithinReadSnapshot.
var ErrWriteInReadSnapshot = errors.New("memory store: write attempted inside a read snapshot")

// Store holds all ledger state behind one RWMutex. A transaction holds the write
// lock for its whole duration and restores a copy of the state when fn fails.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

var _ portsrepo.TransactionManager = (*Store)(nil)

func (s *Store) scope(ctx context.Context) scope {
	if v, ok := ctx.Value(scopeKey{s}).(scope); ok {
		return v
	}
	return scopeNone
}

// WithinTransaction runs fn holding the write lock. A nested call acts as a
// savepoint: its failure rolls back only its own changes.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	switch s.scope(ctx) {
	case scopeWrite:
		saved := s.st.clone()
		if err := fn(ctx); err != nil {
			s.st = saved
			return err
		}
		return nil
	case scopeRead:
		return ErrWriteInReadSnapshot
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.st.clone()
	if err := fn(context.WithValue(ctx, scopeKey{s}, scopeWrite)); err != nil {
		s.st = saved
		return err
	}
	return nil
}

// WithinReadSnapshot runs fn holding the read lock, so every read inside sees
// the same state.
func (s *Store) WithinReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.scope(ctx) != scopeNone {
		return fn(ctx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, scopeKey{s}, scopeRead))
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if s.scope(ctx) != scopeNone {
		return fn(s.st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	switch s.scope(ctx) {
	case scopeWrite:
		return fn(s.st)
	case scopeRead:
		return ErrWriteInReadSnapshot
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// NewRepositoryProvider wires every memory repository around one store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:     store,
		AccountRepo:   NewAccountRepository(store),
		LedgerRepo:    NewLedgerRepository(store),
		PeriodRepo:    NewPeriodRepository(store),
		SettingsRepo:  NewSettingsRepository(store),
		MappingRepo:   NewAccountMappingRepository(store),
		SourceRepo:    NewSourceDocumentRepository(store),
		ReportingRepo: NewReportingRepository(store),
	}
}
