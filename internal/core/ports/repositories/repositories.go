package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager     TransactionManager
	AccountRepo   AccountRepositoryFacade
	LedgerRepo    LedgerRepositoryFacade
	PeriodRepo    PeriodRepositoryFacade
	SettingsRepo  SettingsRepository
	MappingRepo   AccountMappingRepository
	SourceRepo    SourceDocumentRepository
	ReportingRepo ReportingRepository
}
