package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jmasdeu/task-manager-api/internal/models"
	"github.com/jmasdeu/task-manager-api/internal/services"
)

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()

	var envelope errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return envelope
}

func TestAuthMiddlewareRejections(t *testing.T) {
	user := testUser()

	cases := []struct {
		name       string
		authHeader string
		auth       *stubAuthService
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing header",
			authHeader: "",
			auth:       &stubAuthService{},
			wantStatus: http.StatusUnauthorized,
			wantError:  "missing token",
		},
		{
			name:       "not a bearer header",
			authHeader: "Basic abc123",
			auth:       &stubAuthService{},
			wantStatus: http.StatusUnauthorized,
			wantError:  "missing token",
		},
		{
			name:       "unparseable token",
			authHeader: "Bearer garbage",
			auth:       &stubAuthService{},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid or expired token",
		},
		{
			name:       "token subject deleted",
			authHeader: "Bearer some-token",
			auth: &stubAuthService{
				parseTokenFn: func(token string) (*services.TokenClaims, error) {
					return &services.TokenClaims{UserID: user.ID}, nil
				},
				getUserByIDFn: func(ctx context.Context, userID string) (*models.User, error) {
					return nil, services.ErrUserNotFound
				},
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "user no longer exists",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			handler := New(zerolog.Nop(), tc.auth, &stubTaskService{}, &stubAdminService{})
			router.GET("/protected", handler.HandleAuthMiddleware, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
			}
			envelope := decodeError(t, w)
			if envelope.Success {
				t.Error("expected success=false")
			}
			if envelope.Error != tc.wantError {
				t.Errorf("expected error %q, got %q", tc.wantError, envelope.Error)
			}
		})
	}
}

func TestAuthMiddlewareAttachesIdentity(t *testing.T) {
	user := testUser()

	router := gin.New()
	handler := New(zerolog.Nop(), authStubFor(user), &stubTaskService{}, &stubAdminService{})
	router.GET("/protected", handler.HandleAuthMiddleware, func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, identity)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer any-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var identity Identity
	if err := json.Unmarshal(w.Body.Bytes(), &identity); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
	if identity != want {
		t.Errorf("expected identity %+v, got %+v", want, identity)
	}
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name       string
		identity   *Identity
		roles      []string
		wantStatus int
	}{
		{
			name:       "no identity attached",
			identity:   nil,
			roles:      []string{models.RoleAdmin},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "role not allowed",
			identity:   &Identity{ID: "u1", Role: models.RoleUser},
			roles:      []string{models.RoleAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "role allowed",
			identity:   &Identity{ID: "u1", Role: models.RoleAdmin},
			roles:      []string{models.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "any of several roles",
			identity:   &Identity{ID: "u1", Role: models.RoleUser},
			roles:      []string{models.RoleUser, models.RoleAdmin},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := New(zerolog.Nop(), &stubAuthService{}, &stubTaskService{}, &stubAdminService{})

			router := gin.New()
			attach := func(c *gin.Context) {
				if tc.identity != nil {
					c.Set(identityCtxKey, *tc.identity)
				}
				c.Next()
			}
			router.GET("/gated", attach, handler.RequireRoles(tc.roles...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/gated", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRoleAllowed(t *testing.T) {
	if models.RoleAllowed(models.RoleUser, []string{models.RoleAdmin}) {
		t.Error("user should not satisfy an admin-only set")
	}
	if !models.RoleAllowed(models.RoleAdmin, []string{models.RoleAdmin}) {
		t.Error("admin should satisfy an admin-only set")
	}
	if models.RoleAllowed("", nil) {
		t.Error("empty role should not satisfy an empty set")
	}
}

func TestNoRouteEnvelope(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	w := doRequest(t, router, http.MethodGet, "/api/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	envelope := decodeError(t, w)
	if envelope.Success {
		t.Error("expected success=false")
	}
	if !strings.Contains(envelope.Error, "route not found: GET /api/nope") {
		t.Errorf("unexpected error: %q", envelope.Error)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	w := doRequest(t, router, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["ok"] != true || body["service"] != serviceName {
		t.Errorf("unexpected body: %v", body)
	}
}
