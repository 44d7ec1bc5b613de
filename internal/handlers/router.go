package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/TaskTide-2025/membership-service/internal/config"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
	"github.com/TaskTide-2025/membership-service/internal/services"
	"github.com/TaskTide-2025/membership-service/internal/utils"
	"github.com/TaskTide-2025/membership-service/internal/validator"
)

type HandlerManager struct {
	serverHandler  *ServerHandler
	userHandler    *UserHandler
	authMiddleware *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		serverHandler:  NewServerHandler(serviceManager.Server(), serviceManager.Membership(), serviceManager.Roster(), validator, logger),
		userHandler:    NewUserHandler(userRepo, logger),
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Course server routes
		servers := v1.Group("/servers")
		{
			// Create servers - class representatives and admins only
			servers.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleClassRep, models.RoleAdmin), hm.serverHandler.CreateServer)

			// View and join - all authenticated users
			servers.GET("", hm.serverHandler.ListMyServers)
			servers.GET("/:id", hm.serverHandler.GetServer)
			servers.GET("/code/:code", hm.serverHandler.GetServerByCode)
			servers.POST("/join", hm.serverHandler.JoinServer)

			// Roster - membership is checked in the service; export is for
			// the privileged tier
			servers.GET("/:id/roster", hm.serverHandler.GetRoster)
			servers.GET("/:id/roster/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleClassRep, models.RoleAdmin), hm.serverHandler.ExportRoster)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/search", hm.userHandler.SearchUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "membership-service",
		})
	})
}
