package services

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"regexp"
	"testing"

	"github.com/TaskTide-2025/membership-service/internal/events"
	"github.com/TaskTide-2025/membership-service/internal/joincode"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories/memory"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

var joinCodePattern = regexp.MustCompile(`^[A-Z]{3}\d{2}-[A-Z0-9]{3}$`)

func newTestServerService(t *testing.T) (ServerService, *memory.MemoryRepository, *events.MockEventPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := memory.NewMemoryRepository(
		&models.User{ID: "u_rep", FullName: "Rita Rep", Email: "rita@example.edu", Role: models.RoleClassRep},
		&models.User{ID: "u_admin", FullName: "Ada Admin", Email: "ada@example.edu", Role: models.RoleAdmin},
		&models.User{ID: "u_student", FullName: "Sam Student", Email: "sam@example.edu", Role: models.RoleStudent},
	)
	publisher := events.NewMockEventPublisher(logger)
	codes := joincode.NewGenerator(rand.NewSource(42))

	service := NewServerService(repo, logger, validator.New(), codes, publisher, "https://tasktide.app")
	return service, repo, publisher
}

func TestServerService_CreateServer(t *testing.T) {
	ctx := context.Background()

	t.Run("privileged creator succeeds", func(t *testing.T) {
		service, _, publisher := newTestServerService(t)

		resp, err := service.CreateServer(ctx, &CreateServerRequest{
			Name:     "BSc Computer Science",
			Year:     "2025",
			Semester: "1",
		}, "u_rep")
		if err != nil {
			t.Fatalf("CreateServer() error = %v", err)
		}

		if resp.ID == "" {
			t.Error("CreateServer() did not assign an ID")
		}
		if !joinCodePattern.MatchString(resp.JoinCode) {
			t.Errorf("JoinCode = %q, does not match expected shape", resp.JoinCode)
		}
		if resp.JoinLink != "https://tasktide.app/join/"+resp.JoinCode {
			t.Errorf("JoinLink = %q, want origin-prefixed join path", resp.JoinLink)
		}

		// Creator auto-membership
		if !resp.HasMember("u_rep") {
			t.Error("creator is not a member of the new server")
		}
		if !resp.IsCreator {
			t.Error("IsCreator = false for creator")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("published %d events, want 1", len(published))
		}
		if published[0].Type != events.EventTypeServerCreated {
			t.Errorf("event type = %s, want %s", published[0].Type, events.EventTypeServerCreated)
		}
	})

	t.Run("admin may also create", func(t *testing.T) {
		service, _, _ := newTestServerService(t)

		if _, err := service.CreateServer(ctx, &CreateServerRequest{
			Name:     "Databases",
			Year:     "2025",
			Semester: "2",
		}, "u_admin"); err != nil {
			t.Errorf("CreateServer() as admin error = %v", err)
		}
	})

	t.Run("student is denied before any write", func(t *testing.T) {
		service, repo, publisher := newTestServerService(t)

		_, err := service.CreateServer(ctx, &CreateServerRequest{
			Name:     "Sneaky Server",
			Year:     "2025",
			Semester: "1",
		}, "u_student")
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("CreateServer() error = %v, want ErrPermissionDenied", err)
		}

		servers, _ := repo.Server().ListByUser(ctx, "u_student")
		if len(servers) != 0 {
			t.Errorf("denied create left %d servers in storage, want 0", len(servers))
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("denied create published an event")
		}
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		service, _, _ := newTestServerService(t)

		_, err := service.CreateServer(ctx, &CreateServerRequest{
			Name:     "No One's Server",
			Year:     "2025",
			Semester: "1",
		}, "")
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("CreateServer() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("validation failure surfaces field errors", func(t *testing.T) {
		service, _, _ := newTestServerService(t)

		_, err := service.CreateServer(ctx, &CreateServerRequest{
			Name:     "ab",
			Year:     "25",
			Semester: "1",
		}, "u_rep")
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("CreateServer() error = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("defaults max groups per unit", func(t *testing.T) {
		service, _, _ := newTestServerService(t)

		resp, err := service.CreateServer(ctx, &CreateServerRequest{
			Name:     "Networks",
			Year:     "2025",
			Semester: "1",
		}, "u_rep")
		if err != nil {
			t.Fatalf("CreateServer() error = %v", err)
		}
		if resp.MaxGroupsPerUnit == nil || *resp.MaxGroupsPerUnit != 50 {
			t.Errorf("MaxGroupsPerUnit = %v, want default 50", resp.MaxGroupsPerUnit)
		}
	})
}

func TestServerService_FindServerByJoinCode(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestServerService(t)

	created, err := service.CreateServer(ctx, &CreateServerRequest{
		Name:     "BSc Computer Science",
		Year:     "2025",
		Semester: "1",
	}, "u_rep")
	if err != nil {
		t.Fatalf("CreateServer() error = %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		found, err := service.FindServerByJoinCode(ctx, created.JoinCode)
		if err != nil {
			t.Fatalf("FindServerByJoinCode() error = %v", err)
		}
		if found == nil || found.ID != created.ID {
			t.Errorf("FindServerByJoinCode() = %+v, want server %s", found, created.ID)
		}
	})

	t.Run("unknown code is nil without error", func(t *testing.T) {
		found, err := service.FindServerByJoinCode(ctx, "ZZZ99-000")
		if err != nil {
			t.Fatalf("FindServerByJoinCode() error = %v", err)
		}
		if found != nil {
			t.Errorf("FindServerByJoinCode() = %+v, want nil", found)
		}
	})
}

func TestServerService_AddStudentToServer(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestServerService(t)

	created, err := service.CreateServer(ctx, &CreateServerRequest{
		Name:     "Databases",
		Year:     "2025",
		Semester: "1",
	}, "u_rep")
	if err != nil {
		t.Fatalf("CreateServer() error = %v", err)
	}

	if err := service.AddStudentToServer(ctx, created.ID, "u_student"); err != nil {
		t.Fatalf("AddStudentToServer() error = %v", err)
	}

	// Repeating the call must stay a no-op.
	if err := service.AddStudentToServer(ctx, created.ID, "u_student"); err != nil {
		t.Fatalf("repeated AddStudentToServer() error = %v", err)
	}

	resp, err := service.GetByID(ctx, created.ID, "u_student")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if resp.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2", resp.MemberCount)
	}

	if err := service.AddStudentToServer(ctx, "srv_missing", "u_student"); !errors.Is(err, ErrServerNotFound) {
		t.Errorf("AddStudentToServer(missing) error = %v, want ErrServerNotFound", err)
	}
}

func TestServerService_GetUserServers(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestServerService(t)

	first, err := service.CreateServer(ctx, &CreateServerRequest{
		Name:     "BSc Computer Science",
		Year:     "2025",
		Semester: "1",
	}, "u_rep")
	if err != nil {
		t.Fatalf("CreateServer() error = %v", err)
	}
	if _, err := service.CreateServer(ctx, &CreateServerRequest{
		Name:     "Databases",
		Year:     "2025",
		Semester: "2",
	}, "u_admin"); err != nil {
		t.Fatalf("CreateServer() error = %v", err)
	}

	if err := service.AddStudentToServer(ctx, first.ID, "u_student"); err != nil {
		t.Fatalf("AddStudentToServer() error = %v", err)
	}

	t.Run("member sees joined servers", func(t *testing.T) {
		list, err := service.GetUserServers(ctx, "u_student")
		if err != nil {
			t.Fatalf("GetUserServers() error = %v", err)
		}
		if list.Total != 1 || list.Servers[0].ID != first.ID {
			t.Errorf("GetUserServers() = %+v, want only server %s", list, first.ID)
		}
		if list.Servers[0].IsCreator {
			t.Error("IsCreator = true for plain member")
		}
	})

	t.Run("creator sees owned servers", func(t *testing.T) {
		list, err := service.GetUserServers(ctx, "u_rep")
		if err != nil {
			t.Fatalf("GetUserServers() error = %v", err)
		}
		if list.Total != 1 {
			t.Errorf("Total = %d, want 1", list.Total)
		}
	})

	t.Run("unknown user has empty list", func(t *testing.T) {
		list, err := service.GetUserServers(ctx, "u_nobody")
		if err != nil {
			t.Fatalf("GetUserServers() error = %v", err)
		}
		if list.Total != 0 {
			t.Errorf("Total = %d, want 0", list.Total)
		}
	})
}
