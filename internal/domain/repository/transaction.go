package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back. Otherwise, it's committed.
	// All repository operations within the function will use the same database transaction,
	// and therefore the same pooled connection.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error

	// Read runs fn against repositories bound to the pool rather than to a transaction,
	// so read/write splitting applies. Tenant markers must not be set through it.
	Read(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides a way to get repository instances that are bound to a specific transaction.
// This ensures all repository operations within a transaction use the same database connection.
type RepositoryFactory interface {
	NewUserRepository() UserRepository
	NewSessionRepository() SessionRepository
	NewRefreshTokenRepository() RefreshTokenRepository
	NewTenantRepository() TenantRepository
	NewLoginAttemptRepository() LoginAttemptRepository
	NewConfigRepository() ConfigRepository
	NewEmailTokenRepository() EmailTokenRepository

	// NewTenantContextRepository controls the row-level security marker of the bound connection.
	NewTenantContextRepository() TenantContextRepository
}
