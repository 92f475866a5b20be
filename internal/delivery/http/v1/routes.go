package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmasdeu/task-manager-api/internal/models"
)

const serviceName = "task-manager-api"

// RegisterRoutes wires the full route table. Order inside each chain
// matters: auth must run before any role gate, and validation before the
// handler it feeds.
func RegisterRoutes(router *gin.Engine, h Handler) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": serviceName})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   fmt.Sprintf("route not found: %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	api := router.Group("/api")

	authRouter := api.Group("/auth")
	authRouter.POST("/register", validateBody(registerRules), h.HandleRegister)
	authRouter.POST("/login", validateBody(loginRules), h.HandleLogin)
	authRouter.GET("/me", h.HandleAuthMiddleware, h.HandleGetMe)
	authRouter.PUT("/profile", h.HandleAuthMiddleware, validateBody(updateProfileRules), h.HandleUpdateProfile)
	authRouter.PUT("/change-password", h.HandleAuthMiddleware, validateBody(changePasswordRules), h.HandleChangePassword)

	taskRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	taskRouter.GET("/stats", h.HandleGetTaskStats)
	taskRouter.POST("", validateBody(createTaskRules), h.HandleCreateTask)
	taskRouter.GET("", h.HandleGetTasks)
	taskRouter.GET("/:id", h.HandleGetTaskByID)
	taskRouter.PUT("/:id", validateBody(updateTaskRules), h.HandleUpdateTask)
	taskRouter.DELETE("/:id", h.HandleDeleteTask)
	taskRouter.PUT("/:id/image", validateBody(updateTaskRules), h.HandleUploadTaskImage)
	taskRouter.PUT("/:id/image/reset", h.HandleResetTaskImage)

	adminRouter := api.Group("/admin", h.HandleAuthMiddleware, h.RequireRoles(models.RoleAdmin))
	adminRouter.GET("/users", h.HandleAdminGetUsers)
	adminRouter.GET("/tasks", h.HandleAdminGetTasks)
	adminRouter.DELETE("/users/:id", h.HandleAdminDeleteUser)
	adminRouter.PUT("/users/:id/role", validateBody(changeUserRoleRules), h.HandleAdminChangeUserRole)
}
