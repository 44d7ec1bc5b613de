package repositories

import (
	"context"

	"github.com/TaskTide-2025/membership-service/internal/models"
)

// ServerCreate carries the caller-supplied business fields for a new course
// server. ID and CreatedAt are assigned by the repository; JoinCode/JoinLink
// are generated by the registry before the create call.
type ServerCreate struct {
	Name             string
	Year             string
	Semester         string
	JoinCode         string
	JoinLink         string
	CreatedBy        string
	Members          []string
	MaxGroupsPerUnit *int
}

// ServerRepository is the persistence contract for course servers. It is a
// thin document-store abstraction: create, equality lookup, get-by-id and an
// idempotent set-union member append.
type ServerRepository interface {
	// Create persists a new server, assigning ID and CreatedAt, and returns
	// the stored entity.
	Create(ctx context.Context, data ServerCreate) (*models.CourseServer, error)

	// GetByID returns the server or (nil, nil) when the ID does not resolve.
	GetByID(ctx context.Context, id string) (*models.CourseServer, error)

	// GetByJoinCode performs an equality lookup on the join code. A missing
	// code returns (nil, nil); not-found is a common, valid outcome.
	GetByJoinCode(ctx context.Context, code string) (*models.CourseServer, error)

	// AddMember appends userID to the server's member set. The append has
	// set-union semantics: repeating it is a no-op at the storage layer.
	AddMember(ctx context.Context, serverID, userID string) error

	// ListByUser returns every server where the user is a member or the
	// creator. No ordering is guaranteed.
	ListByUser(ctx context.Context, userID string) ([]*models.CourseServer, error)

	// JoinCodeExists reports whether any server already uses the code.
	JoinCodeExists(ctx context.Context, code string) (bool, error)
}
