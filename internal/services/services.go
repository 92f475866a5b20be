package services

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jmasdeu/task-manager-api/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService interface {
	// Register creates a user with the given email and a hashed password,
	// then issues a token for it.
	//
	// It returns ErrEmailAlreadyUsed if the email is taken.
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)

	// Login authenticates the user by email and password and issues a token.
	//
	// It returns ErrInvalidCredentials both when the email is unknown and
	// when the password doesn't match, so callers can't tell them apart.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// GetUserByID resolves a token's subject against the users table.
	//
	// It returns ErrUserNotFound if the user no longer exists.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateProfile applies only the non-nil fields.
	//
	// It returns ErrEmailAlreadyUsed if the email belongs to a different
	// user, or ErrUserNotFound if the record vanished.
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (*models.User, error)

	// ChangePassword verifies the current password and stores a fresh hash
	// of the new one.
	//
	// It returns ErrInvalidCredentials if the current password is wrong.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	// IssueToken signs a token carrying the user's id, email and role.
	IssueToken(user *models.User) (string, error)

	// ParseToken verifies the signature, issuer and expiry and returns the
	// embedded claims, or ErrInvalidToken.
	ParseToken(token string) (*TokenClaims, error)
}

type TaskService interface {
	Create(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// ListByOwner returns the owner's tasks, newest first.
	ListByOwner(ctx context.Context, userID string) ([]*models.Task, error)

	// GetByID returns the task only if it belongs to userID; a task owned
	// by someone else reads as ErrTaskNotFound.
	GetByID(ctx context.Context, userID, taskID string) (*models.Task, error)

	// Update overwrites only the non-nil fields of params and returns the
	// updated task.
	Update(ctx context.Context, userID, taskID string, params UpdateTaskParams) (*models.Task, error)

	Delete(ctx context.Context, userID, taskID string) error

	// SetImage overwrites the task's image field; an empty string resets it.
	SetImage(ctx context.Context, userID, taskID, image string) (*models.Task, error)

	// Stats aggregates over the owner's tasks; all totals are zero when the
	// owner has none.
	Stats(ctx context.Context, userID string) (*TaskStats, error)
}

type AdminService interface {
	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// ListTasks returns every task across all owners, newest first, each
	// annotated with the owner's name, email and role.
	ListTasks(ctx context.Context) ([]*TaskWithOwner, error)

	// DeleteUser removes the user's tasks and then the user. The two steps
	// are deliberately not wrapped in a transaction.
	//
	// It returns ErrUserNotFound if the target doesn't exist.
	DeleteUser(ctx context.Context, userID string) error

	// ChangeUserRole updates the target's role and returns the user.
	ChangeUserRole(ctx context.Context, userID, role string) (*models.User, error)
}

type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *models.User
}

type UpdateProfileParams struct {
	UserID string
	Name   *string
	Email  *string
}

type CreateTaskParams struct {
	UserID         string
	Title          string
	Description    string
	Cost           float64
	HoursEstimated float64
	Completed      bool
	Image          string
}

type UpdateTaskParams struct {
	Title          *string
	Description    *string
	Cost           *float64
	HoursEstimated *float64
	Completed      *bool
	Image          *string
}

type TaskStats struct {
	Total      int64   `json:"total"`
	Completed  int64   `json:"completed"`
	Pending    int64   `json:"pending"`
	TotalCost  float64 `json:"totalCost"`
	TotalHours float64 `json:"totalHours"`
}

type TaskWithOwner struct {
	Task  *models.Task
	Owner *models.User
}
