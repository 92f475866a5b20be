package v1

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jmasdeu/task-manager-api/internal/models"
	"github.com/jmasdeu/task-manager-api/internal/services"
)

const identityCtxKey = "identity"

// Identity is the per-request authenticated user, attached by
// HandleAuthMiddleware and read by everything downstream.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func identityFromContext(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityCtxKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Error().Msg("authorization header required")
		abort(c, newUnauthorizedError("missing token"))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Error().Msg("invalid authorization header")
		abort(c, newUnauthorizedError("missing token"))
		return
	}

	claims, err := h.auth.ParseToken(parts[1])
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse token")
		abort(c, newUnauthorizedError("invalid or expired token"))
		return
	}

	// One lookup per request, never cached: a deleted user's token
	// stops working immediately.
	user, err := h.auth.GetUserByID(c, claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.logger.Warn().
				Str("user_id", claims.UserID).
				Msg("token subject no longer exists")
			abort(c, newUnauthorizedError("user no longer exists"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to resolve token subject")
		h.fail(c, err)
		return
	}

	c.Set(identityCtxKey, Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
	c.Next()
}

// RequireRoles gates a route group to the given roles. It assumes the auth
// middleware already ran; a missing identity is a composition bug and reads
// as unauthorized, not forbidden.
func (h *handlerImpl) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		if !ok {
			h.logger.Error().Msg("no identity found in context")
			abort(c, newUnauthorizedError("not authorized"))
			return
		}

		if !models.RoleAllowed(identity.Role, roles) {
			h.logger.Warn().
				Str("user_id", identity.ID).
				Str("role", identity.Role).
				Msg("insufficient permissions")
			abort(c, newForbiddenError("insufficient permissions"))
			return
		}

		c.Next()
	}
}
