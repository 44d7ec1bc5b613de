package handlers

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/TaskTide-2025/membership-service/internal/config"
	"github.com/TaskTide-2025/membership-service/internal/joincode"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories/memory"
	"github.com/TaskTide-2025/membership-service/internal/services"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

func TestExtractUserFromClaims_SeedsMemoryBackend(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryRepository()
	cam := NewCasdoorAuthMiddleware(config.CasdoorConfig{}, repo.User())

	claims := &casdoorsdk.Claims{
		User: casdoorsdk.User{
			Id:          "u_claims_rep",
			DisplayName: "Rita Rep",
			Email:       "rita@example.edu",
			Type:        "class_representative",
		},
	}

	user, err := cam.extractUserFromClaims(ctx, claims)
	if err != nil {
		t.Fatalf("extractUserFromClaims() error = %v", err)
	}
	if user.Role != models.RoleClassRep {
		t.Errorf("Role = %s, want %s", user.Role, models.RoleClassRep)
	}

	// The principal must now resolve through the repository, so services that
	// re-fetch the caller see the same user the middleware authenticated.
	stored, err := repo.User().GetByID(ctx, "u_claims_rep")
	if err != nil {
		t.Fatalf("GetByID() after authentication error = %v", err)
	}
	if stored.FullName != "Rita Rep" || stored.Role != models.RoleClassRep {
		t.Errorf("stored user = %+v, want the claims-resolved principal", stored)
	}
}

func TestClaimsResolvedPrincipalCanUseServices(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryRepository()
	cam := NewCasdoorAuthMiddleware(config.CasdoorConfig{}, repo.User())
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	repClaims := &casdoorsdk.Claims{
		User: casdoorsdk.User{
			Id:          "u_claims_rep",
			DisplayName: "Rita Rep",
			Email:       "rita@example.edu",
			Type:        "class_representative",
		},
	}
	if _, err := cam.extractUserFromClaims(ctx, repClaims); err != nil {
		t.Fatalf("extractUserFromClaims() error = %v", err)
	}

	serverService := services.NewServerService(repo, logger, validator.New(),
		joincode.NewGenerator(rand.NewSource(7)), nil, "https://tasktide.app")

	created, err := serverService.CreateServer(ctx, &services.CreateServerRequest{
		Name:     "BSc Computer Science",
		Year:     "2025",
		Semester: "1",
	}, "u_claims_rep")
	if err != nil {
		t.Fatalf("CreateServer() as claims-resolved representative error = %v", err)
	}

	// A student authenticated the same way can join by code.
	studentClaims := &casdoorsdk.Claims{
		User: casdoorsdk.User{
			Id:          "u_claims_student",
			DisplayName: "Sam Student",
			Email:       "sam@example.edu",
			Type:        "student",
		},
	}
	if _, err := cam.extractUserFromClaims(ctx, studentClaims); err != nil {
		t.Fatalf("extractUserFromClaims() error = %v", err)
	}

	membershipService := services.NewMembershipService(repo, logger, validator.New(), nil)
	result, err := membershipService.JoinByCode(ctx, &services.JoinServerRequest{JoinCode: created.JoinCode}, "u_claims_student")
	if err != nil {
		t.Fatalf("JoinByCode() as claims-resolved student error = %v", err)
	}
	if !result.Server.HasMember("u_claims_student") {
		t.Error("joined server does not list the student as a member")
	}
}
