package repositories

import "context"

// Repository aggregates the sub-repositories the membership service depends
// on. Implementations exist for an in-memory demo store and PostgreSQL; the
// user repository is always external (Casdoor) or mocked.
type Repository interface {
	// Course server domain
	Server() ServerRepository

	// User domain (read-only, owned by the identity provider)
	User() UserRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with backing connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
