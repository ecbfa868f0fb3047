package pgsql

import (
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every PostgreSQL repository around one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:     NewTxManager(dbPool),
		AccountRepo:   NewAccountRepository(dbPool),
		LedgerRepo:    NewLedgerRepository(dbPool),
		PeriodRepo:    NewPeriodRepository(dbPool),
		SettingsRepo:  NewSettingsRepository(dbPool),
		MappingRepo:   NewAccountMappingRepository(dbPool),
		SourceRepo:    NewSourceDocumentRepository(dbPool),
		ReportingRepo: NewReportingRepository(dbPool),
	}
}
