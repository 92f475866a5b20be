package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jmasdeu/task-manager-api/internal/models"
	"github.com/jmasdeu/task-manager-api/internal/services"
)

var createTaskRules = []fieldRule{
	{field: "title", required: true, kind: kindString, minLen: 2},
	{field: "description", kind: kindString, maxLen: 500},
	{field: "cost", kind: kindNumber},
	{field: "hours_estimated", kind: kindNumber},
	{field: "completed", kind: kindBool},
	{field: "image", kind: kindString},
}

var updateTaskRules = []fieldRule{
	{field: "title", kind: kindString, minLen: 2},
	{field: "description", nullable: true, kind: kindString, maxLen: 500},
	{field: "cost", nullable: true, kind: kindNumber},
	{field: "hours_estimated", nullable: true, kind: kindNumber},
	{field: "completed", nullable: true, kind: kindBool},
	{field: "image", nullable: true, kind: kindString},
}

type taskResponse struct {
	ID             string    `json:"id"`
	User           string    `json:"user"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Cost           float64   `json:"cost"`
	HoursEstimated float64   `json:"hours_estimated"`
	Completed      bool      `json:"completed"`
	Image          string    `json:"image"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:             task.ID,
		User:           task.UserID,
		Title:          task.Title,
		Description:    task.Description,
		Cost:           task.Cost,
		HoursEstimated: task.HoursEstimated,
		Completed:      task.Completed,
		Image:          task.Image,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// taskIDFromPath rejects identifiers the store would choke on before any
// query runs.
func taskIDFromPath(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		abort(c, newBadRequestError("invalid id"))
		return "", false
	}
	return id, true
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	body := validatedBody(c)
	params := services.CreateTaskParams{UserID: identity.ID}
	params.Title, _ = bodyString(body, "title")
	params.Description, _ = bodyString(body, "description")
	params.Cost, _ = bodyNumber(body, "cost")
	params.HoursEstimated, _ = bodyNumber(body, "hours_estimated")
	params.Completed, _ = bodyBool(body, "completed")
	params.Image, _ = bodyString(body, "image")

	task, err := h.tasks.Create(c, params)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "task": newTaskResponse(task)})
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	tasks, err := h.tasks.ListByOwner(c, identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(response),
		"tasks":   response,
	})
}

func (h *handlerImpl) HandleGetTaskStats(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	stats, err := h.tasks.Stats(c, identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *handlerImpl) HandleGetTaskByID(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(c, identity.ID, taskID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": newTaskResponse(task)})
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	body := validatedBody(c)
	var params services.UpdateTaskParams
	if title, present := bodyString(body, "title"); present {
		params.Title = &title
	}
	if description, present := bodyString(body, "description"); present {
		params.Description = &description
	}
	if cost, present := bodyNumber(body, "cost"); present {
		params.Cost = &cost
	}
	if hours, present := bodyNumber(body, "hours_estimated"); present {
		params.HoursEstimated = &hours
	}
	if completed, present := bodyBool(body, "completed"); present {
		params.Completed = &completed
	}
	if image, present := bodyString(body, "image"); present {
		params.Image = &image
	}

	task, err := h.tasks.Update(c, identity.ID, taskID, params)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": newTaskResponse(task)})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	err := h.tasks.Delete(c, identity.ID, taskID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task deleted"})
}

func (h *handlerImpl) HandleUploadTaskImage(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	body := validatedBody(c)
	image, present := bodyString(body, "image")
	if !present || image == "" {
		abort(c, newBadRequestError("image required"))
		return
	}

	task, err := h.tasks.SetImage(c, identity.ID, taskID, image)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": newTaskResponse(task)})
}

func (h *handlerImpl) HandleResetTaskImage(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	taskID, ok := taskIDFromPath(c)
	if !ok {
		return
	}

	task, err := h.tasks.SetImage(c, identity.ID, taskID, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": newTaskResponse(task)})
}
