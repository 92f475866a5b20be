package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmasdeu/task-manager-api/internal/models"
	"github.com/jmasdeu/task-manager-api/internal/services"
)

var registerRules = []fieldRule{
	{field: "email", required: true, kind: kindEmail},
	{field: "password", required: true, kind: kindString, minLen: 6},
	{field: "name", kind: kindString, minLen: 2},
}

var loginRules = []fieldRule{
	{field: "email", required: true, kind: kindEmail},
	{field: "password", required: true, kind: kindString},
}

var updateProfileRules = []fieldRule{
	{field: "email", kind: kindEmail},
	{field: "name", kind: kindString, minLen: 2},
}

var changePasswordRules = []fieldRule{
	{field: "currentPassword", required: true, kind: kindString},
	{field: "newPassword", required: true, kind: kindString, minLen: 6},
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	body := validatedBody(c)
	name, _ := bodyString(body, "name")
	email, _ := bodyString(body, "email")
	password, _ := bodyString(body, "password")

	result, err := h.auth.Register(c, services.RegisterParams{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   result.Token,
		"user":    newUserResponse(result.User),
	})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	body := validatedBody(c)
	email, _ := bodyString(body, "email")
	password, _ := bodyString(body, "password")

	result, err := h.auth.Login(c, email, password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   result.Token,
		"user":    newUserResponse(result.User),
	})
}

func (h *handlerImpl) HandleGetMe(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": identity})
}

func (h *handlerImpl) HandleUpdateProfile(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	body := validatedBody(c)
	params := services.UpdateProfileParams{UserID: identity.ID}
	if name, present := bodyString(body, "name"); present {
		params.Name = &name
	}
	if email, present := bodyString(body, "email"); present {
		params.Email = &email
	}

	user, err := h.auth.UpdateProfile(c, params)
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyUsed) {
			abort(c, newBadRequestError("email already in use"))
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": newUserResponse(user)})
}

func (h *handlerImpl) HandleChangePassword(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError("not authorized"))
		return
	}

	body := validatedBody(c)
	currentPassword, _ := bodyString(body, "currentPassword")
	newPassword, _ := bodyString(body, "newPassword")

	err := h.auth.ChangePassword(c, identity.ID, currentPassword, newPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			abort(c, newUnauthorizedError("current password incorrect"))
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated"})
}
