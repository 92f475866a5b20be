package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jmasdeu/task-manager-api/internal/models"
)

type adminServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewAdminService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) AdminService {
	return &adminServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *adminServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	const selectUsersQuery = `
SELECT id,
       name,
       email,
       role,
       created_at,
       updated_at
FROM users
ORDER BY created_at DESC
`
	rows, err := s.pgPool.Query(ctx, selectUsersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := new(models.User)
		err = rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan user")
			return nil, err
		}
		users = append(users, user)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(users)).
		Msg("selected users")

	return users, nil
}

func (s *adminServiceImpl) ListTasks(ctx context.Context) ([]*TaskWithOwner, error) {
	const selectTasksWithOwnersQuery = `
SELECT t.id,
       t.user_id,
       t.title,
       t.description,
       t.cost,
       t.hours_estimated,
       t.completed,
       t.image,
       t.created_at,
       t.updated_at,
       u.name,
       u.email,
       u.role
FROM tasks t
JOIN users u ON u.id = t.user_id
ORDER BY t.created_at DESC
`
	rows, err := s.pgPool.Query(ctx, selectTasksWithOwnersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks with owners")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*TaskWithOwner, 0)
	for rows.Next() {
		task := new(models.Task)
		owner := new(models.User)
		err = rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&task.Cost,
			&task.HoursEstimated,
			&task.Completed,
			&task.Image,
			&task.CreatedAt,
			&task.UpdatedAt,
			&owner.Name,
			&owner.Email,
			&owner.Role,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task with owner")
			return nil, err
		}
		owner.ID = task.UserID
		tasks = append(tasks, &TaskWithOwner{Task: task, Owner: owner})
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks with owners")

	return tasks, nil
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	const selectUserIDQuery = `
SELECT id
FROM users
WHERE id = $1
`
	var id string
	err := s.pgPool.QueryRow(
		ctx,
		selectUserIDQuery,
		userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("user_id", userID).
				Msg("user not found")
			return ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user")
		return err
	}

	// Two separate statements on purpose. A crash in between leaves a
	// user with no tasks, which is harmless; the reverse order would
	// leave unreachable tasks.
	const deleteTasksByOwnerQuery = `
DELETE FROM tasks
       WHERE user_id = $1
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTasksByOwnerQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete tasks by owner")
		return err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted tasks by owner")

	const deleteUserQuery = `
DELETE FROM users
       WHERE id = $1
`
	_, err = s.pgPool.Exec(
		ctx,
		deleteUserQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete user")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("deleted user and their tasks")
	return nil
}

func (s *adminServiceImpl) ChangeUserRole(ctx context.Context, userID, role string) (*models.User, error) {
	user := models.User{ID: userID, Role: role}

	const updateRoleQuery = `
UPDATE users
SET role = $1,
    updated_at = $2
WHERE id = $3
RETURNING name, email, created_at, updated_at
`
	err := s.pgPool.QueryRow(
		ctx,
		updateRoleQuery,
		user.Role,
		time.Now(),
		user.ID,
	).Scan(
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("user_id", user.ID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user role")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Msg("changed user role")
	return &user, nil
}
