package task

import (
	"time"
)

// TaskOption - частичное обновление задачи.
// Опции применяются к копии, поэтому исходная задача в снимке не меняется.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithNotes(notes string) TaskOption {
	return func(task *Task) {
		task.Notes = notes
	}
}

func WithCompletedAt(completedAt *time.Time) TaskOption {
	return func(task *Task) {
		if completedAt == nil {
			task.CompletedAt = nil
			return
		}
		at := *completedAt
		task.CompletedAt = &at
	}
}

func MarkDone(now time.Time) TaskOption {
	return WithCompletedAt(&now)
}

func MarkUndone() TaskOption {
	return WithCompletedAt(nil)
}

// Apply возвращает копию задачи с применёнными опциями.
// ID и CreatedAt назначены сервером и опциями не меняются.
func Apply(t Task, options ...TaskOption) Task {
	updated := t.Clone()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&updated)
	}

	updated.ID = t.ID
	updated.CreatedAt = copyTime(t.CreatedAt)
	return updated
}

// Clone делает глубокую копию, указатели на время не разделяются
func (t Task) Clone() Task {
	t.CreatedAt = copyTime(t.CreatedAt)
	t.CompletedAt = copyTime(t.CompletedAt)
	return t
}

func copyTime(at *time.Time) *time.Time {
	if at == nil {
		return nil
	}
	c := *at
	return &c
}
