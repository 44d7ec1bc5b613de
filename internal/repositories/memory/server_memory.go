package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
)

type serverMemory struct {
	store *Store
}

var _ repositories.ServerRepository = (*serverMemory)(nil)

// NewServerMemory creates the in-memory server repository.
func NewServerMemory(store *Store) repositories.ServerRepository {
	return &serverMemory{store: store}
}

func (r *serverMemory) Create(ctx context.Context, data repositories.ServerCreate) (*models.CourseServer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	members := make([]string, 0, len(data.Members))
	for _, m := range data.Members {
		if !slices.Contains(members, m) {
			members = append(members, m)
		}
	}

	now := time.Now().UTC()
	server := &models.CourseServer{
		ID:               uuid.New().String(),
		Name:             data.Name,
		Year:             data.Year,
		Semester:         data.Semester,
		JoinCode:         data.JoinCode,
		JoinLink:         data.JoinLink,
		CreatedBy:        data.CreatedBy,
		Members:          members,
		MaxGroupsPerUnit: data.MaxGroupsPerUnit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.store.servers[server.ID] = server

	return copyServer(server), nil
}

func (r *serverMemory) GetByID(ctx context.Context, id string) (*models.CourseServer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if server, ok := r.store.servers[id]; ok {
		return copyServer(server), nil
	}
	return nil, nil
}

func (r *serverMemory) GetByJoinCode(ctx context.Context, code string) (*models.CourseServer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, server := range r.store.servers {
		if server.JoinCode == code {
			return copyServer(server), nil
		}
	}
	return nil, nil
}

func (r *serverMemory) AddMember(ctx context.Context, serverID, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	server, ok := r.store.servers[serverID]
	if !ok {
		return repositories.ErrNotFound
	}

	// Set-union semantics: a repeated append is a no-op.
	if !slices.Contains(server.Members, userID) {
		server.Members = append(server.Members, userID)
		server.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *serverMemory) ListByUser(ctx context.Context, userID string) ([]*models.CourseServer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var servers []*models.CourseServer
	for _, server := range r.store.servers {
		if server.CreatedBy == userID || slices.Contains(server.Members, userID) {
			servers = append(servers, copyServer(server))
		}
	}
	return servers, nil
}

func (r *serverMemory) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, server := range r.store.servers {
		if server.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

// copyServer returns a defensive copy so callers never alias store state.
func copyServer(s *models.CourseServer) *models.CourseServer {
	cp := *s
	cp.Members = slices.Clone(s.Members)
	return &cp
}
