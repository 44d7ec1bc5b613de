package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
)

type rosterService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewRosterService(repo repositories.Repository, logger *slog.Logger) RosterService {
	return &rosterService{
		repo:   repo,
		logger: logger,
	}
}

func (s *rosterService) GetRoster(ctx context.Context, serverID, userID string) (*RosterResponse, error) {
	server, err := s.loadServerForViewer(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.User().GetByIDs(ctx, server.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roster members: %w", err)
	}

	entries := make([]*RosterEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, &RosterEntry{
			UserID:    user.ID,
			FullName:  user.FullName,
			Email:     user.Email,
			Role:      string(user.Role),
			IsCreator: user.ID == server.CreatedBy,
		})
	}

	return &RosterResponse{
		ServerID:   server.ID,
		ServerName: server.Name,
		Entries:    entries,
		Total:      len(entries),
	}, nil
}

// ExportRoster renders the roster as a single-sheet xlsx workbook.
func (s *rosterService) ExportRoster(ctx context.Context, serverID, userID string) ([]byte, string, error) {
	roster, err := s.GetRoster(ctx, serverID, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Roster"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Full Name", "Email", "Role", "Creator"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, entry := range roster.Entries {
		values := []interface{}{entry.FullName, entry.Email, entry.Role, entry.IsCreator}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "B", 30)
	f.SetColWidth(sheet, "C", "D", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render roster workbook: %w", err)
	}

	filename := fmt.Sprintf("roster_%s.xlsx", roster.ServerID)

	s.logger.Info("Exported roster",
		"server_id", roster.ServerID,
		"entries", roster.Total)

	return buf.Bytes(), filename, nil
}

// loadServerForViewer resolves the server and checks that the requester may
// see its roster: members, the creator and admins.
func (s *rosterService) loadServerForViewer(ctx context.Context, serverID, userID string) (*models.CourseServer, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	server, err := s.repo.Server().GetByID(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course server: %w", err)
	}
	if server == nil {
		return nil, ErrServerNotFound
	}

	if server.HasMember(userID) {
		return server, nil
	}

	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check viewer role: %w", err)
	}
	if !isAdmin {
		return nil, ErrPermissionDenied
	}
	return server, nil
}
