package services

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"testing"

	"github.com/TaskTide-2025/membership-service/internal/events"
	"github.com/TaskTide-2025/membership-service/internal/joincode"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories/memory"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

type membershipFixture struct {
	server     ServerService
	membership MembershipService
	repo       *memory.MemoryRepository
	publisher  *events.MockEventPublisher
	joinCode   string
	serverID   string
}

func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := memory.NewMemoryRepository(
		&models.User{ID: "u_rep", FullName: "Rita Rep", Role: models.RoleClassRep},
		&models.User{ID: "u_student", FullName: "Sam Student", Role: models.RoleStudent},
		&models.User{ID: "u_student2", FullName: "Sue Student", Role: models.RoleStudent},
	)
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	codes := joincode.NewGenerator(rand.NewSource(7))

	serverService := NewServerService(repo, logger, v, codes, publisher, "https://tasktide.app")
	membershipService := NewMembershipService(repo, logger, v, publisher)

	created, err := serverService.CreateServer(context.Background(), &CreateServerRequest{
		Name:     "BSc Computer Science",
		Year:     "2025",
		Semester: "1",
	}, "u_rep")
	if err != nil {
		t.Fatalf("CreateServer() error = %v", err)
	}
	publisher.ClearEvents()

	return &membershipFixture{
		server:     serverService,
		membership: membershipService,
		repo:       repo,
		publisher:  publisher,
		joinCode:   created.JoinCode,
		serverID:   created.ID,
	}
}

func TestMembershipService_EvaluateJoin(t *testing.T) {
	ctx := context.Background()
	fx := newMembershipFixture(t)

	tests := []struct {
		name     string
		userID   string
		joinCode string
		want     JoinDecision
	}{
		{"anonymous user", "", fx.joinCode, DecisionNotAuthenticated},
		{"privileged role cannot join by code", "u_rep", fx.joinCode, DecisionPermissionDenied},
		{"unknown code", "u_student", "ZZZ99-000", DecisionInvalidJoinCode},
		{"eligible student", "u_student", fx.joinCode, DecisionEligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, _, err := fx.membership.EvaluateJoin(ctx, tt.userID, tt.joinCode)
			if err != nil {
				t.Fatalf("EvaluateJoin() error = %v", err)
			}
			if decision != tt.want {
				t.Errorf("EvaluateJoin() = %s, want %s", decision, tt.want)
			}
		})
	}

	t.Run("member is detected", func(t *testing.T) {
		if _, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: fx.joinCode}, "u_student"); err != nil {
			t.Fatalf("JoinByCode() error = %v", err)
		}

		decision, server, err := fx.membership.EvaluateJoin(ctx, "u_student", fx.joinCode)
		if err != nil {
			t.Fatalf("EvaluateJoin() error = %v", err)
		}
		if decision != DecisionAlreadyMember {
			t.Errorf("EvaluateJoin() = %s, want %s", decision, DecisionAlreadyMember)
		}
		if server == nil || server.ID != fx.serverID {
			t.Errorf("EvaluateJoin() server = %+v, want %s", server, fx.serverID)
		}
	})

	t.Run("evaluation never writes", func(t *testing.T) {
		before, _ := fx.repo.Server().GetByID(ctx, fx.serverID)

		if _, _, err := fx.membership.EvaluateJoin(ctx, "u_student2", fx.joinCode); err != nil {
			t.Fatalf("EvaluateJoin() error = %v", err)
		}

		after, _ := fx.repo.Server().GetByID(ctx, fx.serverID)
		if len(after.Members) != len(before.Members) {
			t.Errorf("EvaluateJoin() changed member count from %d to %d", len(before.Members), len(after.Members))
		}
	})
}

func TestMembershipService_JoinByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("eligible student joins and event fires", func(t *testing.T) {
		fx := newMembershipFixture(t)

		result, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: fx.joinCode}, "u_student")
		if err != nil {
			t.Fatalf("JoinByCode() error = %v", err)
		}
		if !result.Server.HasMember("u_student") {
			t.Error("join result does not include the new member")
		}

		stored, _ := fx.repo.Server().GetByID(ctx, fx.serverID)
		if !stored.HasMember("u_student") {
			t.Error("membership was not persisted")
		}

		published := fx.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("published %d events, want 1", len(published))
		}
		if published[0].Type != events.EventTypeMemberJoined {
			t.Errorf("event type = %s, want %s", published[0].Type, events.EventTypeMemberJoined)
		}
	})

	t.Run("second join is rejected without event", func(t *testing.T) {
		fx := newMembershipFixture(t)

		if _, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: fx.joinCode}, "u_student"); err != nil {
			t.Fatalf("first JoinByCode() error = %v", err)
		}
		fx.publisher.ClearEvents()

		_, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: fx.joinCode}, "u_student")
		if !errors.Is(err, ErrAlreadyMember) {
			t.Fatalf("second JoinByCode() error = %v, want ErrAlreadyMember", err)
		}

		stored, _ := fx.repo.Server().GetByID(ctx, fx.serverID)
		count := 0
		for _, m := range stored.Members {
			if m == "u_student" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("u_student appears %d times in member set, want 1", count)
		}
		if len(fx.publisher.GetPublishedEvents()) != 0 {
			t.Error("already-member join published an event")
		}
	})

	t.Run("invalid code", func(t *testing.T) {
		fx := newMembershipFixture(t)

		_, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: "ZZZ99-000"}, "u_student")
		if !errors.Is(err, ErrInvalidJoinCode) {
			t.Errorf("JoinByCode() error = %v, want ErrInvalidJoinCode", err)
		}
	})

	t.Run("privileged role is denied", func(t *testing.T) {
		fx := newMembershipFixture(t)

		_, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: fx.joinCode}, "u_rep")
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("JoinByCode() error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		fx := newMembershipFixture(t)

		_, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: fx.joinCode}, "")
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("JoinByCode() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("missing code fails validation", func(t *testing.T) {
		fx := newMembershipFixture(t)

		_, err := fx.membership.JoinByCode(ctx, &JoinServerRequest{JoinCode: ""}, "u_student")
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("JoinByCode() error = %v, want ErrValidationFailed", err)
		}
	})
}
