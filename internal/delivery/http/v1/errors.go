package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jmasdeu/task-manager-api/internal/services"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"success": false, "error": err.Message})
}

func abortWithFieldErrors(c *gin.Context, errs []fieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "errors": errs})
}

// fail is the single translation stage between service failures and the
// response envelope. Every handler funnels its errors through here unless
// it needs context-specific wording, in which case it passes an apiError.
func (h *handlerImpl) fail(c *gin.Context, err error) {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		abort(c, apiErr)
		return
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			abort(c, newBadRequestError("duplicate value"))
		case pgerrcode.InvalidTextRepresentation:
			abort(c, newBadRequestError("invalid id"))
		default:
			abort(c, newAPIError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
		}
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailAlreadyUsed):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, newUnauthorizedError(err.Error()))
	case errors.Is(err, services.ErrInvalidToken):
		abort(c, newUnauthorizedError(err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(err.Error()))
	default:
		abort(c, newAPIError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
	}
}
