package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoSync/internal/logger"
	"todoSync/internal/models/task"
	rep "todoSync/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]*task.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// CreateTask выдаёт id и created_at; completed_at у новой задачи пустой
func (s *TaskService) CreateTask(ctx context.Context, owner string, request task.NewTaskRequest) (*task.Task, error) {
	if err := request.Validate(); err != nil {
		logger.Info("Service: Ошибка валидации", zap.Error(err))
		return nil, NewValidationError("title", err)
	}

	now := s.now().UTC()
	created := &task.Task{
		ID:        task.ID(uuid.NewString()),
		Title:     request.Title,
		Notes:     request.Notes,
		CreatedAt: &now,
	}

	if err := s.repo.Create(ctx, owner, created); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, NewBusinessError(CodeAlreadyExists, "Task already exists.", ToDetail("id", created.ID.String()))
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.String("owner", owner))
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner string, id task.ID) (*task.Task, error) {
	if _, err := uuid.Parse(id.String()); err != nil {
		return nil, NewNotFound(id.String())
	}

	t, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// UpdateTask применяет только переданные изменения поверх сохранённой задачи
func (s *TaskService) UpdateTask(ctx context.Context, owner string, id task.ID, options ...task.TaskOption) (*task.Task, error) {
	existing, err := s.GetTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updated := task.Apply(*existing, options...)
	if err := updated.Validate(); err != nil {
		logger.Info("Service: Ошибка валидации", zap.Error(err))
		return nil, NewValidationError("title", err)
	}

	if err := s.repo.Update(ctx, owner, &updated); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(id.String())
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Задача обновлена", zap.String("task_id", id.String()))
	return &updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner string, id task.ID) error {
	if _, err := uuid.Parse(id.String()); err != nil {
		return NewNotFound(id.String())
	}

	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return NewNotFound(id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}
