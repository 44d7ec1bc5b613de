package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/services"
	"github.com/TaskTide-2025/membership-service/internal/utils"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

type ServerHandler struct {
	BaseHandler
	serverService     services.ServerService
	membershipService services.MembershipService
	rosterService     services.RosterService
	validator         *validator.Validator
}

func NewServerHandler(serverService services.ServerService, membershipService services.MembershipService, rosterService services.RosterService, validator *validator.Validator, logger utils.Logger) *ServerHandler {
	return &ServerHandler{
		BaseHandler:       NewBaseHandler(logger),
		serverService:     serverService,
		membershipService: membershipService,
		rosterService:     rosterService,
		validator:         validator,
	}
}

// CreateServer creates a new course server
// @Summary Create course server
// @Description Create a course server; class representatives and admins only
// @Tags servers
// @Accept json
// @Produce json
// @Param request body services.CreateServerRequest true "Server details"
// @Success 201 {object} services.ServerResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /servers [post]
func (h *ServerHandler) CreateServer(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrNotAuthenticated)
		return
	}

	var req services.CreateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	h.LogRequest(c, "Creating course server", "user_id", userID, "name", req.Name)

	resp, err := h.serverService.CreateServer(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListMyServers lists the caller's servers
// @Summary List my course servers
// @Description Every server the authenticated user created or joined
// @Tags servers
// @Produce json
// @Success 200 {object} services.ServerListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /servers [get]
func (h *ServerHandler) ListMyServers(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrNotAuthenticated)
		return
	}

	h.LogRequest(c, "Listing user servers", "user_id", userID)

	resp, err := h.serverService.GetUserServers(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetServer retrieves a server by ID
// @Summary Get course server
// @Tags servers
// @Produce json
// @Param id path string true "Server ID"
// @Success 200 {object} services.ServerResponse
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /servers/{id} [get]
func (h *ServerHandler) GetServer(c *gin.Context) {
	serverID := c.Param("id")
	userID, _ := GetUserIDFromContext(c)

	h.LogRequest(c, "Getting course server", "server_id", serverID)

	resp, err := h.serverService.GetByID(c.Request.Context(), serverID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Full server details are for members; outsiders resolve servers through
	// the join-code preview instead.
	role, _ := GetUserRoleFromContext(c)
	if !resp.HasMember(userID) && role != models.RoleAdmin {
		h.handleServiceError(c, services.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetServerByCode resolves a join code to its server
// @Summary Resolve join code
// @Description Look up the course server a join code points at
// @Tags servers
// @Produce json
// @Param code path string true "Join code"
// @Success 200 {object} services.ServerResponse
// @Failure 404 {object} ErrorResponse "Unknown code"
// @Router /servers/code/{code} [get]
func (h *ServerHandler) GetServerByCode(c *gin.Context) {
	code := c.Param("code")
	userID, _ := GetUserIDFromContext(c)

	h.LogRequest(c, "Resolving join code", "join_code", code)

	server, err := h.serverService.FindServerByJoinCode(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if server == nil {
		h.handleServiceError(c, services.ErrInvalidJoinCode)
		return
	}

	c.JSON(http.StatusOK, services.ServerResponse{
		CourseServer: server,
		IsCreator:    userID != "" && server.CreatedBy == userID,
		MemberCount:  len(server.Members),
	})
}

// JoinServer joins the caller to a server by code
// @Summary Join course server
// @Description Join by code; students only, idempotence guarded
// @Tags servers
// @Accept json
// @Produce json
// @Param request body services.JoinServerRequest true "Join code"
// @Success 200 {object} services.JoinResult
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Unknown code"
// @Failure 409 {object} ErrorResponse "Already a member"
// @Router /servers/join [post]
func (h *ServerHandler) JoinServer(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrNotAuthenticated)
		return
	}

	var req services.JoinServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	h.LogRequest(c, "Join attempt", "user_id", userID, "join_code", req.JoinCode)

	result, err := h.membershipService.JoinByCode(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRoster returns the resolved member roster
// @Summary Get server roster
// @Tags servers
// @Produce json
// @Param id path string true "Server ID"
// @Success 200 {object} services.RosterResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /servers/{id}/roster [get]
func (h *ServerHandler) GetRoster(c *gin.Context) {
	serverID := c.Param("id")
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrNotAuthenticated)
		return
	}

	h.LogRequest(c, "Getting roster", "server_id", serverID)

	resp, err := h.rosterService.GetRoster(c.Request.Context(), serverID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportRoster downloads the roster as an xlsx workbook
// @Summary Export server roster
// @Tags servers
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Server ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /servers/{id}/roster/export [get]
func (h *ServerHandler) ExportRoster(c *gin.Context) {
	serverID := c.Param("id")
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrNotAuthenticated)
		return
	}

	h.LogRequest(c, "Exporting roster", "server_id", serverID)

	data, filename, err := h.rosterService.ExportRoster(c.Request.Context(), serverID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
