package service

import (
	"context"

	"todoSync/internal/models/task"
)

// TaskRepository - хранилище задач с разделением по владельцу
type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, owner string, t *task.Task) error
	Update(ctx context.Context, owner string, t *task.Task) error
	GetByID(ctx context.Context, owner string, id task.ID) (*task.Task, error)
	ListByOwner(ctx context.Context, owner string) ([]*task.Task, error)
	Delete(ctx context.Context, owner string, id task.ID) error
}
