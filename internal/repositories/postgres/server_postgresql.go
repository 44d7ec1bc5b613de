package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TaskTide-2025/membership-service/internal/cache"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
)

// ServerPostgreSQL stores course servers as document-style rows: the member
// list lives in a jsonb column and mutations go through a row-locked
// read-modify-write union, which keeps the array-union contract of the
// original document store.
type ServerPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

var _ repositories.ServerRepository = (*ServerPostgreSQL)(nil)

func NewServerPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ServerRepository {
	return &ServerPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create persists a new server, assigning the document ID, and invalidates
// the creator's server-list cache.
func (s *ServerPostgreSQL) Create(ctx context.Context, data repositories.ServerCreate) (*models.CourseServer, error) {
	members := make([]string, 0, len(data.Members))
	for _, m := range data.Members {
		if !slices.Contains(members, m) {
			members = append(members, m)
		}
	}

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
	}

	if err := s.db.WithContext(ctx).Create(server).Error; err != nil {
		return nil, fmt.Errorf("failed to create course server: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Server, "user:*")

	return server, nil
}

// GetByID retrieves a server by ID through the server cache; membership
// mutations invalidate the entry. A missing ID yields (nil, nil), not an
// error.
func (s *ServerPostgreSQL) GetByID(ctx context.Context, id string) (*models.CourseServer, error) {
	var server models.CourseServer
	cacheKey := fmt.Sprintf("id:%s", id)

	err := s.cacheManager.Server.CacheOrExecute(ctx, cacheKey, &server, cache.ServerCacheConfig.TTL, func() (interface{}, error) {
		var row models.CourseServer
		if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &row, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course server: %w", err)
	}
	return &server, nil
}

// GetByJoinCode performs the equality lookup behind join attempts, cached
// briefly since codes are immutable. Misses are not cached; an unknown code
// stays (nil, nil).
func (s *ServerPostgreSQL) GetByJoinCode(ctx context.Context, code string) (*models.CourseServer, error) {
	var server models.CourseServer
	cacheKey := fmt.Sprintf("code:%s", code)

	err := s.cacheManager.Server.CacheOrExecute(ctx, cacheKey, &server, cache.ServerCacheConfig.TTL, func() (interface{}, error) {
		var row models.CourseServer
		if err := s.db.WithContext(ctx).First(&row, "join_code = ?", code).Error; err != nil {
			return nil, err
		}
		return &row, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course server by join code: %w", err)
	}
	return &server, nil
}

// AddMember unions userID into the member list inside a transaction with a
// row lock. Repeating the call is a no-op.
func (s *ServerPostgreSQL) AddMember(ctx context.Context, serverID, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var server models.CourseServer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&server, "id = ?", serverID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repositories.ErrNotFound
			}
			return fmt.Errorf("failed to load course server: %w", err)
		}

		if slices.Contains(server.Members, userID) {
			return nil
		}

		server.Members = append(server.Members, userID)
		if err := tx.Model(&server).Update("members", server.Members).Error; err != nil {
			return fmt.Errorf("failed to append member: %w", err)
		}

		cache.InvalidateServerCache(ctx, s.cacheManager, server.ID, server.JoinCode)
		return nil
	})

	return err
}

// ListByUser returns every server the user created or belongs to. Ordering
// is not guaranteed; callers sort as needed.
func (s *ServerPostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.CourseServer, error) {
	var servers []*models.CourseServer
	err := s.db.WithContext(ctx).
		Where("created_by = ? OR members @> to_jsonb(?::text)", userID, userID).
		Find(&servers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course servers for user: %w", err)
	}
	return servers, nil
}

// JoinCodeExists reports whether a code is already taken, with a short-lived
// existence cache used by the registry's collision retry loop.
func (s *ServerPostgreSQL) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	cacheKey := fmt.Sprintf("code:%s", code)
	if exists, err := s.cacheManager.Exists.Exists(ctx, cacheKey); err == nil && exists {
		return true, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.CourseServer{}).
		Where("join_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check join code existence: %w", err)
	}

	if count > 0 {
		if err := s.cacheManager.Exists.Set(ctx, cacheKey, true, cache.ExistsCacheConfig.TTL); err != nil {
			// Cache failures never block the lookup.
		}
		return true, nil
	}
	return false, nil
}
