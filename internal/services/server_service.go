package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TaskTide-2025/membership-service/internal/events"
	"github.com/TaskTide-2025/membership-service/internal/joincode"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

// Join codes are random in their suffix only, so a collision against an
// existing code is possible. The registry retries generation a bounded number
// of times before giving up.
const maxJoinCodeAttempts = 3

// Group planning default applied when the creator does not set a limit.
const defaultMaxGroupsPerUnit = 50

type serverService struct {
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	codes        *joincode.Generator
	publisher    events.EventPublisher
	publicOrigin string
}

func NewServerService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, codes *joincode.Generator, publisher events.EventPublisher, publicOrigin string) ServerService {
	return &serverService{
		repo:         repo,
		logger:       logger,
		validator:    validator,
		codes:        codes,
		publisher:    publisher,
		publicOrigin: publicOrigin,
	}
}

// ===== REGISTRY OPERATIONS =====

func (s *serverService) CreateServer(ctx context.Context, req *CreateServerRequest, creatorID string) (*ServerResponse, error) {
	s.logger.Info("Creating course server", "creator_id", creatorID, "name", req.Name)

	if creatorID == "" {
		return nil, ErrNotAuthenticated
	}

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	// The role gate runs before anything is written: a denied request leaves
	// no trace in storage.
	creator, err := s.repo.User().GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, creatorID)
	}
	if !creator.Role.IsPrivileged() {
		s.logger.Warn("Server creation denied", "user_id", creatorID, "role", creator.Role)
		return nil, ErrPermissionDenied
	}

	code, err := s.generateUniqueJoinCode(ctx, req.Name, req.Year)
	if err != nil {
		return nil, err
	}

	maxGroups := req.MaxGroupsPerUnit
	if maxGroups == nil {
		d := defaultMaxGroupsPerUnit
		maxGroups = &d
	}

	server, err := s.repo.Server().Create(ctx, repositories.ServerCreate{
		Name:             req.Name,
		Year:             req.Year,
		Semester:         req.Semester,
		JoinCode:         code,
		JoinLink:         s.buildJoinLink(code),
		CreatedBy:        creatorID,
		Members:          []string{creatorID},
		MaxGroupsPerUnit: maxGroups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create course server: %w", err)
	}

	s.publishServerCreated(ctx, server)

	s.logger.Info("Course server created",
		"server_id", server.ID,
		"join_code", server.JoinCode,
		"creator_id", creatorID)

	return toServerResponse(server, creatorID), nil
}

func (s *serverService) GetByID(ctx context.Context, id string, userID string) (*ServerResponse, error) {
	server, err := s.repo.Server().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course server: %w", err)
	}
	if server == nil {
		return nil, ErrServerNotFound
	}
	return toServerResponse(server, userID), nil
}

func (s *serverService) FindServerByJoinCode(ctx context.Context, code string) (*models.CourseServer, error) {
	server, err := s.repo.Server().GetByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up join code: %w", err)
	}
	// Not-found stays (nil, nil): a mistyped code is a normal outcome and the
	// guard layer decides what it means.
	return server, nil
}

func (s *serverService) AddStudentToServer(ctx context.Context, serverID, userID string) error {
	err := s.repo.Server().AddMember(ctx, serverID, userID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return ErrServerNotFound
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (s *serverService) GetUserServers(ctx context.Context, userID string) (*ServerListResponse, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	servers, err := s.repo.Server().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	responses := make([]*ServerResponse, 0, len(servers))
	for _, server := range servers {
		responses = append(responses, toServerResponse(server, userID))
	}

	return &ServerListResponse{
		Servers: responses,
		Total:   len(responses),
	}, nil
}

// ===== HELPERS =====

func (s *serverService) generateUniqueJoinCode(ctx context.Context, name, year string) (string, error) {
	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code := s.codes.Generate(name, year)

		taken, err := s.repo.Server().JoinCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check join code: %w", err)
		}
		if !taken {
			return code, nil
		}

		s.logger.Warn("Join code collision, retrying", "code", code, "attempt", attempt+1)
	}
	return "", ErrJoinCodeExhausted
}

func (s *serverService) buildJoinLink(code string) string {
	return fmt.Sprintf("%s/join/%s", s.publicOrigin, code)
}

func (s *serverService) publishServerCreated(ctx context.Context, server *models.CourseServer) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(events.EventTypeServerCreated, events.ServerCreatedEvent{
		ServerID:   server.ID,
		ServerName: server.Name,
		JoinCode:   server.JoinCode,
		JoinLink:   server.JoinLink,
		CreatedBy:  server.CreatedBy,
	})

	// Event delivery is best effort; the server is already persisted.
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish server.created event",
			"error", err,
			"server_id", server.ID)
	}
}

func toServerResponse(server *models.CourseServer, userID string) *ServerResponse {
	return &ServerResponse{
		CourseServer: server,
		IsCreator:    userID != "" && server.CreatedBy == userID,
		MemberCount:  len(server.Members),
	}
}
