package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jmasdeu/task-manager-api/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleGetMe(c *gin.Context)
	HandleUpdateProfile(c *gin.Context)
	HandleChangePassword(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	RequireRoles(roles ...string) gin.HandlerFunc

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTaskStats(c *gin.Context)
	HandleGetTaskByID(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleUploadTaskImage(c *gin.Context)
	HandleResetTaskImage(c *gin.Context)

	HandleAdminGetUsers(c *gin.Context)
	HandleAdminGetTasks(c *gin.Context)
	HandleAdminDeleteUser(c *gin.Context)
	HandleAdminChangeUserRole(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	admin  services.AdminService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	adminService services.AdminService,
) Handler {
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		admin:  adminService,
	}
}
