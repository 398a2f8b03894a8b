package task_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"todoSync/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_DecodeIDVariants(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected task.ID
	}{
		{name: "string id", body: `{"id":"1","title":"A"}`, expected: "1"},
		{name: "integer id", body: `{"id":42,"title":"A"}`, expected: "42"},
		{name: "uuid id", body: `{"id":"3f1c2a8e-1b8c-4a8e-9d5f-2f7a1c3b9e10","title":"A"}`, expected: "3f1c2a8e-1b8c-4a8e-9d5f-2f7a1c3b9e10"},
		{name: "null id", body: `{"id":null,"title":"A"}`, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded task.Task
			require.NoError(t, json.Unmarshal([]byte(tt.body), &decoded))
			assert.Equal(t, tt.expected, decoded.ID)
		})
	}
}

func TestTask_DecodeIgnoresUnknownFieldsAndNullNotes(t *testing.T) {
	body := `{"id":"1","title":"A","notes":null,"owner":"admin","collectionName":"todos"}`

	var decoded task.Task
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))

	assert.Equal(t, task.Task{ID: "1", Title: "A"}, decoded)
	assert.False(t, decoded.IsDone())
}

func TestTask_DecodeRejectsObjectID(t *testing.T) {
	var decoded task.Task
	err := json.Unmarshal([]byte(`{"id":{"x":1},"title":"A"}`), &decoded)
	assert.Error(t, err)
}

func TestTask_EncodeSendsNullCompletedAt(t *testing.T) {
	data, err := json.Marshal(task.Task{ID: "7", Title: "A"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"7","title":"A","notes":"","completed_at":null}`, string(data))
}

func TestNewTaskRequest_Encode(t *testing.T) {
	data, err := json.Marshal(task.NewTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Buy milk"}`, string(data))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		expectError bool
	}{
		{name: "ok", title: "Buy milk", expectError: false},
		{name: "empty", title: "", expectError: true},
		{name: "spaces only", title: "   ", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := task.NewTaskRequest{Title: tt.title}.Validate()
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, task.ErrEmptyTitle))

			var fieldErr *task.FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, "title", fieldErr.Field)
		})
	}
}

func TestApply_DoesNotTouchOriginalOrServerFields(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	original := task.Task{ID: "1", Title: "Old", Notes: "n", CreatedAt: &created}

	hijack := func(t *task.Task) {
		t.ID = "other"
		t.CreatedAt = nil
	}

	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	updated := task.Apply(original, task.WithTitle("New"), task.MarkDone(now), hijack, nil)

	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "n", updated.Notes)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(now))
	assert.Equal(t, task.ID("1"), updated.ID)
	require.NotNil(t, updated.CreatedAt)
	assert.True(t, updated.CreatedAt.Equal(created))

	assert.Equal(t, "Old", original.Title)
	assert.Nil(t, original.CompletedAt)
}

func TestApply_MarkUndone(t *testing.T) {
	done := time.Now()
	original := task.Task{ID: "1", Title: "A", CompletedAt: &done}

	updated := task.Apply(original, task.MarkUndone())

	assert.Nil(t, updated.CompletedAt)
	assert.True(t, original.IsDone())
}
