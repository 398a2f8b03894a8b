package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"todoSync/internal/models/task"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// OptionalTime отличает отсутствующее поле от явного null
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// UpdateTaskRequest - тело PATCH; id и created_at из тела игнорируются
type UpdateTaskRequest struct {
	Title       *string      `json:"title"`
	Notes       *string      `json:"notes"`
	CompletedAt OptionalTime `json:"completed_at"`
}

func (r UpdateTaskRequest) Options() []task.TaskOption {
	options := []task.TaskOption{}
	if r.Title != nil {
		options = append(options, task.WithTitle(*r.Title))
	}
	if r.Notes != nil {
		options = append(options, task.WithNotes(*r.Notes))
	}
	if r.CompletedAt.Set {
		options = append(options, task.WithCompletedAt(r.CompletedAt.Value))
	}
	return options
}

func FromTaskList(tasks []*task.Task) []task.Task {
	result := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			result = append(result, *t)
		}
	}
	return result
}
