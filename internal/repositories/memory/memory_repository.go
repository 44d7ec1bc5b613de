// Package memory provides the demo backend: a mutex-guarded in-process store
// with the same contract as the PostgreSQL implementation. It replaces the
// module-level mutable arrays of the original prototype with an injectable
// repository.
package memory

import (
	"context"
	"sync"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
)

// Store is the shared backing state for the in-memory sub-repositories.
type Store struct {
	mu      sync.RWMutex
	servers map[string]*models.CourseServer
	users   map[string]*models.User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		servers: make(map[string]*models.CourseServer),
		users:   make(map[string]*models.User),
	}
}

// MemoryRepository implements repositories.Repository over a Store.
type MemoryRepository struct {
	store  *Store
	server repositories.ServerRepository
	user   repositories.UserRepository
}

var _ repositories.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates the demo repository. Users may be seeded so the
// local mock-auth strategy has principals to resolve.
func NewMemoryRepository(seedUsers ...*models.User) *MemoryRepository {
	store := NewStore()
	for _, u := range seedUsers {
		cp := *u
		store.users[u.ID] = &cp
	}

	return &MemoryRepository{
		store:  store,
		server: NewServerMemory(store),
		user:   NewUserMemory(store),
	}
}

func (r *MemoryRepository) Server() repositories.ServerRepository { return r.server }
func (r *MemoryRepository) User() repositories.UserRepository     { return r.user }

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }
func (r *MemoryRepository) Close() error                   { return nil }
