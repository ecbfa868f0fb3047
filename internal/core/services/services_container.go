package services

import (
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...Option) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The guard is shared by the journal engine and the period service so that
	// neither depends on the other for it.
	guard := NewPostingGuard(repos.PeriodRepo)

	container.Account = NewAccountService(repos.TxManager, repos.AccountRepo, repos.LedgerRepo, repos.MappingRepo, opts...)
	container.Settings = NewSettingsService(repos.SettingsRepo, repos.AccountRepo, opts...)
	container.Journal = NewJournalService(
		repos.TxManager,
		repos.AccountRepo,
		repos.LedgerRepo,
		guard,
		NewMappingResolver(repos.MappingRepo),
		opts...,
	)
	container.Period = NewPeriodService(
		repos.TxManager,
		repos.PeriodRepo,
		repos.SettingsRepo,
		repos.AccountRepo,
		repos.ReportingRepo,
		guard,
		container.Journal,
		opts...,
	)

	workers := 1
	if cfg != nil && cfg.ReconcileWorkers > 0 {
		workers = cfg.ReconcileWorkers
	}
	container.Reconciliation = NewReconciliationService(
		repos.TxManager,
		repos.SourceRepo,
		container.Journal,
		WithWorkers(workers),
		WithReconciliationBase(opts...),
	)
	container.Reporting = NewReportingService(
		repos.TxManager,
		repos.ReportingRepo,
		repos.AccountRepo,
		repos.LedgerRepo,
		NewSourceDescriber(repos.SourceRepo),
		opts...,
	)

	return container
}
