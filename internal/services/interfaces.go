package services

import (
	"context"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateServerRequest = validator.ServerCreateRequest
type JoinServerRequest = validator.JoinServerRequest

type ServerResponse struct {
	*models.CourseServer
	IsCreator   bool `json:"is_creator"`
	MemberCount int  `json:"member_count"`
}

type ServerListResponse struct {
	Servers []*ServerResponse `json:"servers"`
	Total   int               `json:"total"`
}

// JoinResult is returned on a successful join.
type JoinResult struct {
	Server *ServerResponse `json:"server"`
}

// ===== MEMBERSHIP GUARD =====

// JoinDecision is the outcome of evaluating a join attempt. The checks run in
// a fixed order and the first failing check decides the outcome.
type JoinDecision string

const (
	DecisionNotAuthenticated JoinDecision = "not_authenticated"
	DecisionPermissionDenied JoinDecision = "permission_denied"
	DecisionInvalidJoinCode  JoinDecision = "invalid_join_code"
	DecisionAlreadyMember    JoinDecision = "already_member"
	DecisionEligible         JoinDecision = "eligible"
)

// ===== ROSTER DTOs =====

type RosterEntry struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsCreator bool   `json:"is_creator"`
}

type RosterResponse struct {
	ServerID   string         `json:"server_id"`
	ServerName string         `json:"server_name"`
	Entries    []*RosterEntry `json:"entries"`
	Total      int            `json:"total"`
}

// ===== SERVICE INTERFACES =====

// ServerService is the course server registry: creation by privileged users,
// lookups and per-user listings.
type ServerService interface {
	// CreateServer creates a server for a privileged principal. The role gate
	// runs before any storage write; the creator is auto-enrolled as the first
	// member.
	CreateServer(ctx context.Context, req *CreateServerRequest, creatorID string) (*ServerResponse, error)

	// GetByID returns the server or ErrServerNotFound.
	GetByID(ctx context.Context, id string, userID string) (*ServerResponse, error)

	// FindServerByJoinCode resolves a join code by equality. A code that
	// matches nothing returns (nil, nil); only infrastructure faults error.
	FindServerByJoinCode(ctx context.Context, code string) (*models.CourseServer, error)

	// AddStudentToServer appends the user to the member set without guard
	// checks. Administrative entry point; the guarded path is
	// MembershipService.JoinByCode.
	AddStudentToServer(ctx context.Context, serverID, userID string) error

	// GetUserServers returns every server the user created or joined.
	GetUserServers(ctx context.Context, userID string) (*ServerListResponse, error)
}

// MembershipService evaluates and executes join-by-code attempts.
type MembershipService interface {
	// EvaluateJoin runs the guard chain and returns the decision plus the
	// resolved server (nil unless a code matched). It never writes.
	EvaluateJoin(ctx context.Context, userID, joinCode string) (JoinDecision, *models.CourseServer, error)

	// JoinByCode evaluates the attempt and, when eligible, appends the user
	// and emits a member-joined event. Ineligible outcomes map to sentinel
	// errors.
	JoinByCode(ctx context.Context, req *JoinServerRequest, userID string) (*JoinResult, error)
}

// RosterService resolves member lists into user profiles and exports them.
type RosterService interface {
	// GetRoster returns the resolved member roster. Only members, the creator
	// and admins may view it.
	GetRoster(ctx context.Context, serverID, userID string) (*RosterResponse, error)

	// ExportRoster renders the roster as an xlsx workbook and returns the
	// file bytes plus a suggested filename.
	ExportRoster(ctx context.Context, serverID, userID string) ([]byte, string, error)
}

// NotificationSink delivers rendered notifications to users. Implementations
// may push to websockets, email, or just log.
type NotificationSink interface {
	Send(ctx context.Context, userIDs []string, notification models.Notification) error
}

// NotificationService consumes membership events and fans notifications out
// to a sink. Delivery is best effort; failures never affect the write path.
type NotificationService interface {
	Start(ctx context.Context) error
	Stop() error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Server() ServerService
	Membership() MembershipService
	Roster() RosterService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
