package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/TaskTide-2025/membership-service/internal/events"
	"github.com/TaskTide-2025/membership-service/internal/joincode"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories/memory"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

func newRosterFixture(t *testing.T) (RosterService, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := memory.NewMemoryRepository(
		&models.User{ID: "u_rep", FullName: "Rita Rep", Email: "rita@example.edu", Role: models.RoleClassRep},
		&models.User{ID: "u_admin", FullName: "Ada Admin", Email: "ada@example.edu", Role: models.RoleAdmin},
		&models.User{ID: "u_student", FullName: "Sam Student", Email: "sam@example.edu", Role: models.RoleStudent},
		&models.User{ID: "u_outsider", FullName: "Olly Outsider", Email: "olly@example.edu", Role: models.RoleStudent},
	)
	publisher := events.NewMockEventPublisher(logger)
	codes := joincode.NewGenerator(rand.NewSource(11))

	serverService := NewServerService(repo, logger, validator.New(), codes, publisher, "https://tasktide.app")
	created, err := serverService.CreateServer(context.Background(), &CreateServerRequest{
		Name:     "BSc Computer Science",
		Year:     "2025",
		Semester: "1",
	}, "u_rep")
	if err != nil {
		t.Fatalf("CreateServer() error = %v", err)
	}
	if err := serverService.AddStudentToServer(context.Background(), created.ID, "u_student"); err != nil {
		t.Fatalf("AddStudentToServer() error = %v", err)
	}

	return NewRosterService(repo, logger), created.ID
}

func TestRosterService_GetRoster(t *testing.T) {
	ctx := context.Background()
	roster, serverID := newRosterFixture(t)

	t.Run("creator sees all members", func(t *testing.T) {
		resp, err := roster.GetRoster(ctx, serverID, "u_rep")
		if err != nil {
			t.Fatalf("GetRoster() error = %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("Total = %d, want 2", resp.Total)
		}

		var foundCreator bool
		for _, entry := range resp.Entries {
			if entry.UserID == "u_rep" && entry.IsCreator {
				foundCreator = true
			}
		}
		if !foundCreator {
			t.Error("creator entry is missing or not flagged")
		}
	})

	t.Run("member may view", func(t *testing.T) {
		if _, err := roster.GetRoster(ctx, serverID, "u_student"); err != nil {
			t.Errorf("GetRoster() as member error = %v", err)
		}
	})

	t.Run("admin may view", func(t *testing.T) {
		if _, err := roster.GetRoster(ctx, serverID, "u_admin"); err != nil {
			t.Errorf("GetRoster() as admin error = %v", err)
		}
	})

	t.Run("outsider is denied", func(t *testing.T) {
		_, err := roster.GetRoster(ctx, serverID, "u_outsider")
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("GetRoster() error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("missing server", func(t *testing.T) {
		_, err := roster.GetRoster(ctx, "srv_missing", "u_rep")
		if !errors.Is(err, ErrServerNotFound) {
			t.Errorf("GetRoster() error = %v, want ErrServerNotFound", err)
		}
	})
}

func TestRosterService_ExportRoster(t *testing.T) {
	ctx := context.Background()
	roster, serverID := newRosterFixture(t)

	data, filename, err := roster.ExportRoster(ctx, serverID, "u_rep")
	if err != nil {
		t.Fatalf("ExportRoster() error = %v", err)
	}
	if filename != "roster_"+serverID+".xlsx" {
		t.Errorf("filename = %q, want roster_%s.xlsx", filename, serverID)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Roster")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// Header plus one row per member.
	if len(rows) != 3 {
		t.Fatalf("exported %d rows, want 3", len(rows))
	}
	if rows[0][0] != "Full Name" || rows[0][1] != "Email" {
		t.Errorf("header row = %v, want Full Name/Email columns first", rows[0])
	}
}
