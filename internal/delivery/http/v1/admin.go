package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jmasdeu/task-manager-api/internal/models"
)

var changeUserRoleRules = []fieldRule{
	{field: "role", required: true, kind: kindString},
}

type adminUserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type taskOwnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type adminTaskResponse struct {
	ID             string            `json:"id"`
	User           taskOwnerResponse `json:"user"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Cost           float64           `json:"cost"`
	HoursEstimated float64           `json:"hours_estimated"`
	Completed      bool              `json:"completed"`
	Image          string            `json:"image"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func userIDFromPath(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		abort(c, newBadRequestError("invalid id"))
		return "", false
	}
	return id, true
}

func (h *handlerImpl) HandleAdminGetUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	response := make([]adminUserResponse, len(users))
	for i, user := range users {
		response[i] = adminUserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(response),
		"users":   response,
	})
}

func (h *handlerImpl) HandleAdminGetTasks(c *gin.Context) {
	tasks, err := h.admin.ListTasks(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	response := make([]adminTaskResponse, len(tasks))
	for i, t := range tasks {
		response[i] = adminTaskResponse{
			ID: t.Task.ID,
			User: taskOwnerResponse{
				ID:    t.Owner.ID,
				Name:  t.Owner.Name,
				Email: t.Owner.Email,
				Role:  t.Owner.Role,
			},
			Title:          t.Task.Title,
			Description:    t.Task.Description,
			Cost:           t.Task.Cost,
			HoursEstimated: t.Task.HoursEstimated,
			Completed:      t.Task.Completed,
			Image:          t.Task.Image,
			CreatedAt:      t.Task.CreatedAt,
			UpdatedAt:      t.Task.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(response),
		"tasks":   response,
	})
}

func (h *handlerImpl) HandleAdminDeleteUser(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	targetID, ok := userIDFromPath(c)
	if !ok {
		return
	}

	if targetID == identity.ID {
		abort(c, newBadRequestError("you cannot delete yourself"))
		return
	}

	err := h.admin.DeleteUser(c, targetID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user and their tasks deleted"})
}

func (h *handlerImpl) HandleAdminChangeUserRole(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	targetID, ok := userIDFromPath(c)
	if !ok {
		return
	}

	if targetID == identity.ID {
		abort(c, newBadRequestError("you cannot change your own role"))
		return
	}

	body := validatedBody(c)
	role, _ := bodyString(body, "role")
	if !models.ValidRole(role) {
		abort(c, newBadRequestError("role must be 'user' or 'admin'"))
		return
	}

	user, err := h.admin.ChangeUserRole(c, targetID, role)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": userResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}
