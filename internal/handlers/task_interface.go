package handlers

import (
	"context"

	"todoSync/internal/models/task"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, owner string) ([]*task.Task, error)
	CreateTask(ctx context.Context, owner string, request task.NewTaskRequest) (*task.Task, error)
	UpdateTask(ctx context.Context, owner string, id task.ID, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, owner string, id task.ID) error
}

type Authenticator interface {
	IssueToken(ctx context.Context, username, password string) (string, error)
}
