package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
)

type userMemory struct {
	store *Store
}

var _ repositories.UserRepository = (*userMemory)(nil)

// NewUserMemory creates the in-memory user repository used by the demo
// backend and tests.
func NewUserMemory(store *Store) repositories.UserRepository {
	return &userMemory{store: store}
}

// SeedUser inserts or replaces a user. Demo wiring only.
func (r *userMemory) SeedUser(u *models.User) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *u
	r.store.users[u.ID] = &cp
}

func (r *userMemory) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if u, ok := r.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user not found with ID %s", id)
}

func (r *userMemory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user not found with email %s", email)
}

func (r *userMemory) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			cp := *u
			users = append(users, &cp)
		}
		// Missing IDs are skipped, mirroring the external provider behavior.
	}
	return users, nil
}

func (r *userMemory) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*models.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		if filters.Query != "" && !matchesQuery(u, filters.Query) {
			continue
		}
		cp := *u
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return []*models.User{}, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}

	return matched, total, nil
}

func (r *userMemory) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	filters.Query = query
	return r.List(ctx, filters)
}

func (r *userMemory) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.users[id]
	return ok, nil
}

func (r *userMemory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *userMemory) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.Role == role, nil
}

func matchesQuery(u *models.User, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(u.FullName), q) ||
		strings.Contains(strings.ToLower(u.Email), q)
}
