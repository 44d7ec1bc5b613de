package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TaskTide-2025/membership-service/internal/events"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

type membershipService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewMembershipService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) MembershipService {
	return &membershipService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// EvaluateJoin runs the guard chain in order: authentication, role, code
// resolution, existing membership. The first failing check decides the
// outcome and nothing is ever written.
func (s *membershipService) EvaluateJoin(ctx context.Context, userID, joinCode string) (JoinDecision, *models.CourseServer, error) {
	if userID == "" {
		return DecisionNotAuthenticated, nil, nil
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return DecisionNotAuthenticated, nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	// Joining by code is a student action. Privileged roles create servers
	// and are enrolled at creation time.
	if user.Role != models.RoleStudent {
		return DecisionPermissionDenied, nil, nil
	}

	server, err := s.repo.Server().GetByJoinCode(ctx, joinCode)
	if err != nil {
		return DecisionInvalidJoinCode, nil, fmt.Errorf("failed to look up join code: %w", err)
	}
	if server == nil {
		return DecisionInvalidJoinCode, nil, nil
	}

	if server.HasMember(userID) {
		return DecisionAlreadyMember, server, nil
	}

	return DecisionEligible, server, nil
}

// JoinByCode evaluates the attempt and performs the membership write only for
// an eligible decision. The member-joined event is emitted for real joins
// only, never for already-member no-ops.
func (s *membershipService) JoinByCode(ctx context.Context, req *JoinServerRequest, userID string) (*JoinResult, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	decision, server, err := s.EvaluateJoin(ctx, userID, req.JoinCode)
	if err != nil {
		return nil, err
	}

	switch decision {
	case DecisionNotAuthenticated:
		return nil, ErrNotAuthenticated
	case DecisionPermissionDenied:
		s.logger.Warn("Join denied by role", "user_id", userID)
		return nil, ErrPermissionDenied
	case DecisionInvalidJoinCode:
		s.logger.Info("Join attempt with unknown code", "user_id", userID, "join_code", req.JoinCode)
		return nil, ErrInvalidJoinCode
	case DecisionAlreadyMember:
		return nil, ErrAlreadyMember
	}

	if err := s.repo.Server().AddMember(ctx, server.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to join server: %w", err)
	}
	server.Members = append(server.Members, userID)

	s.publishMemberJoined(ctx, server, userID)

	s.logger.Info("User joined course server",
		"user_id", userID,
		"server_id", server.ID,
		"join_code", server.JoinCode)

	return &JoinResult{Server: toServerResponse(server, userID)}, nil
}

func (s *membershipService) publishMemberJoined(ctx context.Context, server *models.CourseServer, userID string) {
	if s.publisher == nil {
		return
	}

	userName := ""
	if user, err := s.repo.User().GetByID(ctx, userID); err == nil && user != nil {
		userName = user.FullName
	}

	event := events.NewEvent(events.EventTypeMemberJoined, events.MemberJoinedEvent{
		ServerID:   server.ID,
		ServerName: server.Name,
		UserID:     userID,
		UserName:   userName,
	})

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish server.member_joined event",
			"error", err,
			"server_id", server.ID,
			"user_id", userID)
	}
}
