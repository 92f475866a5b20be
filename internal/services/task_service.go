package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jmasdeu/task-manager-api/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	now := time.Now()
	task := &models.Task{
		UserID:         params.UserID,
		Title:          params.Title,
		Description:    params.Description,
		Cost:           params.Cost,
		HoursEstimated: params.HoursEstimated,
		Completed:      params.Completed,
		Image:          params.Image,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   title,
                   description,
                   cost,
                   hours_estimated,
                   completed,
                   image,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Cost,
		task.HoursEstimated,
		task.Completed,
		task.Image,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	const selectTasksByOwnerQuery = `
SELECT id,
       title,
       description,
       cost,
       hours_estimated,
       completed,
       image,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksByOwnerQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks by owner")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Cost,
			&task.HoursEstimated,
			&task.Completed,
			&task.Image,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Int("count", len(tasks)).
		Msg("selected tasks by owner")

	return tasks, nil
}

func (s *taskServiceImpl) GetByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task := models.Task{ID: taskID, UserID: userID}

	// Filtering by owner here is what makes a foreign task
	// indistinguishable from a missing one.
	const selectTaskQuery = `
SELECT title,
       description,
       cost,
       hours_estimated,
       completed,
       image,
       created_at,
       updated_at
FROM tasks
WHERE id = $1 AND
      user_id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		task.ID,
		task.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Cost,
		&task.HoursEstimated,
		&task.Completed,
		&task.Image,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to select task")
		return nil, err
	}

	return &task, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, userID, taskID string, params UpdateTaskParams) (*models.Task, error) {
	task, err := s.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Cost != nil {
		task.Cost = *params.Cost
	}
	if params.HoursEstimated != nil {
		task.HoursEstimated = *params.HoursEstimated
	}
	if params.Completed != nil {
		task.Completed = *params.Completed
	}
	if params.Image != nil {
		task.Image = *params.Image
	}
	task.UpdatedAt = time.Now()

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    cost = $3,
    hours_estimated = $4,
    completed = $5,
    image = $6,
    updated_at = $7
WHERE id = $8 AND
      user_id = $9
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.Cost,
		task.HoursEstimated,
		task.Completed,
		task.Image,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("task_id", task.ID).
			Msg("task vanished during update")
		return nil, ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, userID, taskID string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
       WHERE id = $1 AND
             user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("task_id", taskID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) SetImage(ctx context.Context, userID, taskID, image string) (*models.Task, error) {
	return s.Update(ctx, userID, taskID, UpdateTaskParams{Image: &image})
}

func (s *taskServiceImpl) Stats(ctx context.Context, userID string) (*TaskStats, error) {
	stats := TaskStats{}

	const selectStatsQuery = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE completed),
       COALESCE(SUM(cost), 0),
       COALESCE(SUM(hours_estimated), 0)
FROM tasks
WHERE user_id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectStatsQuery,
		userID,
	).Scan(
		&stats.Total,
		&stats.Completed,
		&stats.TotalCost,
		&stats.TotalHours,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select task stats")
		return nil, err
	}
	stats.Pending = stats.Total - stats.Completed

	s.logger.Debug().
		Str("user_id", userID).
		Int64("total", stats.Total).
		Msg("selected task stats")
	return &stats, nil
}
