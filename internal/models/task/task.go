package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ID - идентификатор, назначенный сервером.
// Бэкенды отдают его строкой (uuid) или числом, поэтому принимаем оба варианта.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id должен быть строкой или числом: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Task struct {
	ID          ID         `json:"id,omitempty"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at"`
}

// IsDone: отдельного флага нет, выполненность - это наличие CompletedAt
func (t Task) IsDone() bool {
	return t.CompletedAt != nil
}

func (t Task) Validate() error {
	return validateTitle(t.Title)
}

// NewTaskRequest - поля, которые клиент вправе задать при создании.
// id и created_at назначает сервер.
type NewTaskRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
}

func (r NewTaskRequest) Validate() error {
	return validateTitle(r.Title)
}

var ErrEmptyTitle = errors.New("title must not be empty")

// FieldError - локальная ошибка валидации конкретного поля
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &FieldError{Field: "title", Err: ErrEmptyTitle}
	}
	return nil
}
