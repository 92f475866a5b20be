package v1

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jmasdeu/task-manager-api/internal/models"
	"github.com/jmasdeu/task-manager-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errStubNotImplemented = errors.New("stub not implemented")

type stubAuthService struct {
	registerFn       func(ctx context.Context, params services.RegisterParams) (*services.AuthResult, error)
	loginFn          func(ctx context.Context, email, password string) (*services.AuthResult, error)
	getUserByIDFn    func(ctx context.Context, userID string) (*models.User, error)
	updateProfileFn  func(ctx context.Context, params services.UpdateProfileParams) (*models.User, error)
	changePasswordFn func(ctx context.Context, userID, currentPassword, newPassword string) error
	parseTokenFn     func(token string) (*services.TokenClaims, error)
}

func (s *stubAuthService) Register(ctx context.Context, params services.RegisterParams) (*services.AuthResult, error) {
	if s.registerFn == nil {
		return nil, errStubNotImplemented
	}
	return s.registerFn(ctx, params)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	if s.loginFn == nil {
		return nil, errStubNotImplemented
	}
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if s.getUserByIDFn == nil {
		return nil, errStubNotImplemented
	}
	return s.getUserByIDFn(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, params services.UpdateProfileParams) (*models.User, error) {
	if s.updateProfileFn == nil {
		return nil, errStubNotImplemented
	}
	return s.updateProfileFn(ctx, params)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if s.changePasswordFn == nil {
		return errStubNotImplemented
	}
	return s.changePasswordFn(ctx, userID, currentPassword, newPassword)
}

func (s *stubAuthService) IssueToken(user *models.User) (string, error) {
	return "stub-token", nil
}

func (s *stubAuthService) ParseToken(token string) (*services.TokenClaims, error) {
	if s.parseTokenFn == nil {
		return nil, services.ErrInvalidToken
	}
	return s.parseTokenFn(token)
}

type stubTaskService struct {
	createFn      func(ctx context.Context, params services.CreateTaskParams) (*models.Task, error)
	listByOwnerFn func(ctx context.Context, userID string) ([]*models.Task, error)
	getByIDFn     func(ctx context.Context, userID, taskID string) (*models.Task, error)
	updateFn      func(ctx context.Context, userID, taskID string, params services.UpdateTaskParams) (*models.Task, error)
	deleteFn      func(ctx context.Context, userID, taskID string) error
	setImageFn    func(ctx context.Context, userID, taskID, image string) (*models.Task, error)
	statsFn       func(ctx context.Context, userID string) (*services.TaskStats, error)
}

func (s *stubTaskService) Create(ctx context.Context, params services.CreateTaskParams) (*models.Task, error) {
	if s.createFn == nil {
		return nil, errStubNotImplemented
	}
	return s.createFn(ctx, params)
}

func (s *stubTaskService) ListByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	if s.listByOwnerFn == nil {
		return nil, errStubNotImplemented
	}
	return s.listByOwnerFn(ctx, userID)
}

func (s *stubTaskService) GetByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	if s.getByIDFn == nil {
		return nil, errStubNotImplemented
	}
	return s.getByIDFn(ctx, userID, taskID)
}

func (s *stubTaskService) Update(ctx context.Context, userID, taskID string, params services.UpdateTaskParams) (*models.Task, error) {
	if s.updateFn == nil {
		return nil, errStubNotImplemented
	}
	return s.updateFn(ctx, userID, taskID, params)
}

func (s *stubTaskService) Delete(ctx context.Context, userID, taskID string) error {
	if s.deleteFn == nil {
		return errStubNotImplemented
	}
	return s.deleteFn(ctx, userID, taskID)
}

func (s *stubTaskService) SetImage(ctx context.Context, userID, taskID, image string) (*models.Task, error) {
	if s.setImageFn == nil {
		return nil, errStubNotImplemented
	}
	return s.setImageFn(ctx, userID, taskID, image)
}

func (s *stubTaskService) Stats(ctx context.Context, userID string) (*services.TaskStats, error) {
	if s.statsFn == nil {
		return nil, errStubNotImplemented
	}
	return s.statsFn(ctx, userID)
}

type stubAdminService struct {
	listUsersFn      func(ctx context.Context) ([]*models.User, error)
	listTasksFn      func(ctx context.Context) ([]*services.TaskWithOwner, error)
	deleteUserFn     func(ctx context.Context, userID string) error
	changeUserRoleFn func(ctx context.Context, userID, role string) (*models.User, error)
}

func (s *stubAdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if s.listUsersFn == nil {
		return nil, errStubNotImplemented
	}
	return s.listUsersFn(ctx)
}

func (s *stubAdminService) ListTasks(ctx context.Context) ([]*services.TaskWithOwner, error) {
	if s.listTasksFn == nil {
		return nil, errStubNotImplemented
	}
	return s.listTasksFn(ctx)
}

func (s *stubAdminService) DeleteUser(ctx context.Context, userID string) error {
	if s.deleteUserFn == nil {
		return errStubNotImplemented
	}
	return s.deleteUserFn(ctx, userID)
}

func (s *stubAdminService) ChangeUserRole(ctx context.Context, userID, role string) (*models.User, error) {
	if s.changeUserRoleFn == nil {
		return nil, errStubNotImplemented
	}
	return s.changeUserRoleFn(ctx, userID, role)
}

// authStubFor returns an auth stub that accepts any bearer token as the
// given user, the way most endpoint tests want to be authenticated.
func authStubFor(user *models.User) *stubAuthService {
	return &stubAuthService{
		parseTokenFn: func(token string) (*services.TokenClaims, error) {
			return &services.TokenClaims{
				UserID: user.ID,
				Email:  user.Email,
				Role:   user.Role,
			}, nil
		},
		getUserByIDFn: func(ctx context.Context, userID string) (*models.User, error) {
			if userID != user.ID {
				return nil, services.ErrUserNotFound
			}
			return user, nil
		},
	}
}

func newTestRouter(auth services.AuthService, tasks services.TaskService, admin services.AdminService) *gin.Engine {
	if auth == nil {
		auth = &stubAuthService{}
	}
	if tasks == nil {
		tasks = &stubTaskService{}
	}
	if admin == nil {
		admin = &stubAdminService{}
	}

	router := gin.New()
	RegisterRoutes(router, New(zerolog.Nop(), auth, tasks, admin))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testUser() *models.User {
	return &models.User{
		ID:    "018f6d9e-0000-7000-8000-000000000001",
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  models.RoleUser,
	}
}

func testAdmin() *models.User {
	return &models.User{
		ID:    "018f6d9e-0000-7000-8000-0000000000aa",
		Name:  "Root",
		Email: "root@example.com",
		Role:  models.RoleAdmin,
	}
}
