package memory

import (
	"context"
	"slices"
	"testing"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
)

func newTestRepo() *MemoryRepository {
	return NewMemoryRepository(
		&models.User{ID: "u_rep", FullName: "Rep User", Role: models.RoleClassRep},
		&models.User{ID: "u_student", FullName: "Student User", Role: models.RoleStudent},
	)
}

func createServer(t *testing.T, repo *MemoryRepository, code, createdBy string) *models.CourseServer {
	t.Helper()
	server, err := repo.Server().Create(context.Background(), repositories.ServerCreate{
		Name:      "BSc Computer Science",
		Year:      "2025",
		Semester:  "1",
		JoinCode:  code,
		JoinLink:  "https://tasktide.app/join/" + code,
		CreatedBy: createdBy,
		Members:   []string{createdBy},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return server
}

func TestServerMemory_Create(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	t.Run("assigns ID and timestamps", func(t *testing.T) {
		server := createServer(t, repo, "BSC25-A1B", "u_rep")
		if server.ID == "" {
			t.Error("Create() did not assign an ID")
		}
		if server.CreatedAt.IsZero() {
			t.Error("Create() did not assign CreatedAt")
		}
	})

	t.Run("deduplicates seed members", func(t *testing.T) {
		server, err := repo.Server().Create(ctx, repositories.ServerCreate{
			Name:      "Databases",
			Year:      "2025",
			Semester:  "2",
			JoinCode:  "DAT25-X9K",
			CreatedBy: "u_rep",
			Members:   []string{"u_rep", "u_rep"},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(server.Members) != 1 {
			t.Errorf("Members = %v, want single entry", server.Members)
		}
	})
}

func TestServerMemory_GetByJoinCode(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	created := createServer(t, repo, "BSC25-A1B", "u_rep")

	t.Run("round trip", func(t *testing.T) {
		found, err := repo.Server().GetByJoinCode(ctx, "BSC25-A1B")
		if err != nil {
			t.Fatalf("GetByJoinCode() error = %v", err)
		}
		if found == nil || found.ID != created.ID {
			t.Errorf("GetByJoinCode() = %+v, want server %s", found, created.ID)
		}
	})

	t.Run("unknown code yields nil without error", func(t *testing.T) {
		found, err := repo.Server().GetByJoinCode(ctx, "ZZZ99-000")
		if err != nil {
			t.Fatalf("GetByJoinCode() error = %v", err)
		}
		if found != nil {
			t.Errorf("GetByJoinCode() = %+v, want nil", found)
		}
	})

	t.Run("returned copy does not alias store", func(t *testing.T) {
		found, _ := repo.Server().GetByJoinCode(ctx, "BSC25-A1B")
		found.Members = append(found.Members, "u_intruder")

		again, _ := repo.Server().GetByJoinCode(ctx, "BSC25-A1B")
		if slices.Contains(again.Members, "u_intruder") {
			t.Error("mutating a returned server leaked into the store")
		}
	})
}

func TestServerMemory_AddMember(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	server := createServer(t, repo, "BSC25-A1B", "u_rep")

	t.Run("appends a new member", func(t *testing.T) {
		if err := repo.Server().AddMember(ctx, server.ID, "u_student"); err != nil {
			t.Fatalf("AddMember() error = %v", err)
		}
		got, _ := repo.Server().GetByID(ctx, server.ID)
		if !slices.Contains(got.Members, "u_student") {
			t.Errorf("Members = %v, want u_student present", got.Members)
		}
	})

	t.Run("repeated append is a no-op", func(t *testing.T) {
		if err := repo.Server().AddMember(ctx, server.ID, "u_student"); err != nil {
			t.Fatalf("AddMember() error = %v", err)
		}
		got, _ := repo.Server().GetByID(ctx, server.ID)
		count := 0
		for _, m := range got.Members {
			if m == "u_student" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("u_student appears %d times, want 1", count)
		}
	})

	t.Run("missing server returns ErrNotFound", func(t *testing.T) {
		err := repo.Server().AddMember(ctx, "srv_missing", "u_student")
		if err != repositories.ErrNotFound {
			t.Errorf("AddMember() error = %v, want ErrNotFound", err)
		}
	})
}

func TestServerMemory_ListByUser(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	owned := createServer(t, repo, "BSC25-A1B", "u_rep")
	joined := createServer(t, repo, "DAT25-X9K", "u_other")
	createServer(t, repo, "NET25-Q2W", "u_other")

	if err := repo.Server().AddMember(ctx, joined.ID, "u_rep"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	servers, err := repo.Server().ListByUser(ctx, "u_rep")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("ListByUser() returned %d servers, want 2", len(servers))
	}

	ids := []string{servers[0].ID, servers[1].ID}
	if !slices.Contains(ids, owned.ID) || !slices.Contains(ids, joined.ID) {
		t.Errorf("ListByUser() ids = %v, want %s and %s", ids, owned.ID, joined.ID)
	}
}

func TestServerMemory_JoinCodeExists(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	createServer(t, repo, "BSC25-A1B", "u_rep")

	exists, err := repo.Server().JoinCodeExists(ctx, "BSC25-A1B")
	if err != nil {
		t.Fatalf("JoinCodeExists() error = %v", err)
	}
	if !exists {
		t.Error("JoinCodeExists() = false for taken code, want true")
	}

	exists, err = repo.Server().JoinCodeExists(ctx, "FRE25-AAA")
	if err != nil {
		t.Fatalf("JoinCodeExists() error = %v", err)
	}
	if exists {
		t.Error("JoinCodeExists() = true for free code, want false")
	}
}

func TestUserMemory(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	t.Run("GetByID returns seeded user", func(t *testing.T) {
		user, err := repo.User().GetByID(ctx, "u_rep")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if user.Role != models.RoleClassRep {
			t.Errorf("Role = %s, want %s", user.Role, models.RoleClassRep)
		}
	})

	t.Run("GetByID unknown user errors", func(t *testing.T) {
		if _, err := repo.User().GetByID(ctx, "u_ghost"); err == nil {
			t.Error("GetByID() error = nil for unknown user, want error")
		}
	})

	t.Run("HasRole", func(t *testing.T) {
		ok, err := repo.User().HasRole(ctx, "u_student", models.RoleStudent)
		if err != nil {
			t.Fatalf("HasRole() error = %v", err)
		}
		if !ok {
			t.Error("HasRole(u_student, student) = false, want true")
		}

		ok, _ = repo.User().HasRole(ctx, "u_student", models.RoleClassRep)
		if ok {
			t.Error("HasRole(u_student, class_representative) = true, want false")
		}
	})

	t.Run("GetByIDs skips missing", func(t *testing.T) {
		users, err := repo.User().GetByIDs(ctx, []string{"u_rep", "u_ghost", "u_student"})
		if err != nil {
			t.Fatalf("GetByIDs() error = %v", err)
		}
		if len(users) != 2 {
			t.Errorf("GetByIDs() returned %d users, want 2", len(users))
		}
	})
}
