package controller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"todoSync/internal/client"
	"todoSync/internal/controller"
	"todoSync/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskAPI - мок клиента удалённого API
type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) FetchAll(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskAPI) Create(ctx context.Context, request task.NewTaskRequest) (*task.Task, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskAPI) Update(ctx context.Context, t task.Task) (*task.Task, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskAPI) Delete(ctx context.Context, id task.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ controller.TaskAPI = (*MockTaskAPI)(nil)
var _ controller.TaskAPI = (*client.Client)(nil)

type shown struct {
	message  string
	duration controller.Duration
}

// recordingNotifier запоминает все уведомления
type recordingNotifier struct {
	mtx      sync.Mutex
	messages []shown
}

func (n *recordingNotifier) Show(message string, duration controller.Duration) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.messages = append(n.messages, shown{message: message, duration: duration})
}

func (n *recordingNotifier) all() []shown {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return append([]shown(nil), n.messages...)
}

func seeded(t *testing.T, api *MockTaskAPI, sink controller.Notifier, tasks []task.Task) *controller.Controller {
	t.Helper()
	ctrl := controller.New(api, sink)
	api.On("FetchAll", mock.Anything).Return(tasks, nil).Once()
	require.NoError(t, ctrl.Sync(context.Background()))
	return ctrl
}

// TestController_Sync тестирует замену снимка
func TestController_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("success - snapshot replaced in server order", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		ctrl := seeded(t, api, sink, []task.Task{{ID: "old", Title: "Old"}})

		fresh := []task.Task{{ID: "3", Title: "C"}, {ID: "1", Title: "A"}, {ID: "2", Title: "B"}}
		api.On("FetchAll", mock.Anything).Return(fresh, nil).Once()

		err := ctrl.Sync(ctx)

		require.NoError(t, err)
		assert.Equal(t, fresh, ctrl.Tasks())
		assert.False(t, ctrl.IsBusy())
		assert.Empty(t, sink.all())
		api.AssertExpectations(t)
	})

	t.Run("error - failed sync keeps snapshot", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		before := []task.Task{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}
		ctrl := seeded(t, api, sink, before)

		api.On("FetchAll", mock.Anything).Return(nil, client.NewServerError(503)).Once()

		err := ctrl.Sync(ctx)

		require.Error(t, err)
		assert.Equal(t, before, ctrl.Tasks())
		assert.False(t, ctrl.IsBusy())
		require.Len(t, sink.all(), 1)
		assert.Equal(t, client.MsgServer, sink.all()[0].message)
		api.AssertExpectations(t)
	})

	t.Run("scenario - single task with null notes", func(t *testing.T) {
		api := new(MockTaskAPI)
		ctrl := controller.New(api, nil)
		api.On("FetchAll", mock.Anything).Return([]task.Task{{ID: "1", Title: "A"}}, nil).Once()

		require.NoError(t, ctrl.Sync(ctx))
		assert.Equal(t, []task.Task{{ID: "1", Title: "A", Notes: "", CompletedAt: nil}}, ctrl.Tasks())
	})
}

// TestController_BusyFlag тестирует, что признак загрузки всегда снимается
func TestController_BusyFlag(t *testing.T) {
	ctx := context.Background()
	api := new(MockTaskAPI)
	ctrl := controller.New(api, &recordingNotifier{})

	var busyDuringCall bool
	api.On("FetchAll", mock.Anything).Run(func(args mock.Arguments) {
		busyDuringCall = ctrl.IsBusy()
	}).Return([]task.Task{}, nil).Once()
	api.On("FetchAll", mock.Anything).Return(nil, client.NewConnectionError(errors.New("refused"))).Once()
	api.On("FetchAll", mock.Anything).Return([]task.Task{{ID: "1", Title: "A"}}, nil).Once()

	for i := 0; i < 3; i++ {
		_ = ctrl.Sync(ctx)
		assert.False(t, ctrl.IsBusy(), "вызов %d", i)
	}
	assert.True(t, busyDuringCall)
	api.AssertExpectations(t)
}

// TestController_Create тестирует создание задачи
func TestController_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success - create then sync", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		ctrl := controller.New(api, sink)

		created := &task.Task{ID: "10", Title: "Buy milk"}
		api.On("Create", mock.Anything, task.NewTaskRequest{Title: "Buy milk"}).Return(created, nil).Once()
		api.On("FetchAll", mock.Anything).Return([]task.Task{{ID: "9", Title: "Old"}, *created}, nil).Once()

		result, err := ctrl.Create(ctx, task.NewTaskRequest{Title: "Buy milk"})

		require.NoError(t, err)
		assert.Equal(t, created, result)

		found := false
		for _, tk := range ctrl.Tasks() {
			if tk.Title == "Buy milk" && !tk.ID.IsZero() {
				found = true
			}
		}
		assert.True(t, found)
		assert.False(t, ctrl.IsBusy())
		assert.Empty(t, sink.all())
		api.AssertExpectations(t)
	})

	t.Run("error - empty title makes no network call", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		before := []task.Task{{ID: "1", Title: "A"}}
		ctrl := seeded(t, api, sink, before)

		_, err := ctrl.Create(ctx, task.NewTaskRequest{Title: ""})

		require.Error(t, err)
		assert.True(t, errors.Is(err, client.ErrValidation))
		assert.Equal(t, before, ctrl.Tasks())
		require.Len(t, sink.all(), 1)
		assert.Equal(t, client.MsgEmptyTitle, sink.all()[0].message)
		api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		api.AssertNumberOfCalls(t, "FetchAll", 1)
	})

	t.Run("error - server 500 keeps snapshot", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		before := []task.Task{{ID: "1", Title: "A"}}
		ctrl := seeded(t, api, sink, before)

		api.On("Create", mock.Anything, task.NewTaskRequest{Title: "X"}).Return(nil, client.NewServerError(500)).Once()

		result, err := ctrl.Create(ctx, task.NewTaskRequest{Title: "X"})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, before, ctrl.Tasks())
		require.Len(t, sink.all(), 1)
		assert.Contains(t, sink.all()[0].message, "Server Error")
		assert.False(t, ctrl.IsBusy())
		api.AssertNumberOfCalls(t, "FetchAll", 1)
	})

	t.Run("created but follow-up sync failed", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		ctrl := controller.New(api, sink)

		created := &task.Task{ID: "10", Title: "X"}
		api.On("Create", mock.Anything, mock.Anything).Return(created, nil).Once()
		api.On("FetchAll", mock.Anything).Return(nil, client.NewConnectionError(errors.New("reset"))).Once()

		result, err := ctrl.Create(ctx, task.NewTaskRequest{Title: "X"})

		require.NoError(t, err)
		assert.Equal(t, created, result)
		require.Len(t, sink.all(), 1)
		assert.Equal(t, client.MsgConnection, sink.all()[0].message)
	})
}

// TestController_Update тестирует обновление задачи
func TestController_Update(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	original := task.Task{ID: "1", Title: "Old", Notes: "keep", CreatedAt: &createdAt}

	t.Run("success - full record sent, then sync", func(t *testing.T) {
		api := new(MockTaskAPI)
		ctrl := seeded(t, api, &recordingNotifier{}, []task.Task{original})

		expected := task.Task{ID: "1", Title: "New", Notes: "keep", CreatedAt: &createdAt}
		api.On("Update", mock.Anything, expected).Return(&expected, nil).Once()
		api.On("FetchAll", mock.Anything).Return([]task.Task{expected}, nil).Once()

		result, err := ctrl.Update(ctx, original, task.WithTitle("New"))

		require.NoError(t, err)
		assert.Equal(t, "New", result.Title)
		assert.Equal(t, []task.Task{expected}, ctrl.Tasks())
		assert.Equal(t, "Old", original.Title)
		api.AssertExpectations(t)
	})

	t.Run("error - emptied title is rejected locally", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		ctrl := seeded(t, api, sink, []task.Task{original})

		_, err := ctrl.Update(ctx, original, task.WithTitle(""))

		assert.True(t, errors.Is(err, client.ErrValidation))
		api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Len(t, sink.all(), 1)
	})

	t.Run("error - client error message is relayed", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		ctrl := seeded(t, api, sink, []task.Task{original})

		api.On("Update", mock.Anything, mock.Anything).Return(nil, client.NewClientError(404, "Not found.")).Once()

		_, err := ctrl.Update(ctx, original, task.WithNotes("x"))

		require.Error(t, err)
		assert.Equal(t, []task.Task{original}, ctrl.Tasks())
		require.Len(t, sink.all(), 1)
		assert.Equal(t, "Not found.", sink.all()[0].message)
		assert.Equal(t, controller.Long, sink.all()[0].duration)
	})
}

// TestController_SetDone тестирует отметку выполнения
func TestController_SetDone(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	doneAt := now.Add(-time.Hour)

	tests := []struct {
		name         string
		initial      task.Task
		toggle       bool
		target       bool
		expectCall   bool
		expectedDone *time.Time
	}{
		{
			name:         "mark open task done",
			initial:      task.Task{ID: "1", Title: "A"},
			target:       true,
			expectCall:   true,
			expectedDone: &now,
		},
		{
			name:       "already done and target done - no call",
			initial:    task.Task{ID: "1", Title: "A", CompletedAt: &doneAt},
			target:     true,
			expectCall: false,
		},
		{
			name:       "already open and target open - no call",
			initial:    task.Task{ID: "1", Title: "A"},
			target:     false,
			expectCall: false,
		},
		{
			name:         "toggle done task clears timestamp",
			initial:      task.Task{ID: "1", Title: "A", CompletedAt: &doneAt},
			toggle:       true,
			expectCall:   true,
			expectedDone: nil,
		},
		{
			name:         "toggle open task sets timestamp",
			initial:      task.Task{ID: "1", Title: "A"},
			toggle:       true,
			expectCall:   true,
			expectedDone: &now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockTaskAPI)
			ctrl := controller.New(api, &recordingNotifier{}, controller.WithClock(func() time.Time { return now }))

			if tt.expectCall {
				api.On("Update", mock.Anything, mock.MatchedBy(func(sent task.Task) bool {
					if tt.expectedDone == nil {
						return sent.CompletedAt == nil
					}
					return sent.CompletedAt != nil && sent.CompletedAt.Equal(*tt.expectedDone)
				})).Return(&tt.initial, nil).Once()
				api.On("FetchAll", mock.Anything).Return([]task.Task{tt.initial}, nil).Once()
			}

			var err error
			if tt.toggle {
				_, err = ctrl.ToggleDone(ctx, tt.initial)
			} else {
				_, err = ctrl.SetDone(ctx, tt.initial, tt.target)
			}

			require.NoError(t, err)
			if !tt.expectCall {
				api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				api.AssertNotCalled(t, "FetchAll", mock.Anything)
			}
			api.AssertExpectations(t)
		})
	}
}

// TestController_Delete тестирует удаление задачи
func TestController_Delete(t *testing.T) {
	ctx := context.Background()
	a := task.Task{ID: "a", Title: "Alpha"}
	b := task.Task{ID: "b", Title: "Beta"}

	t.Run("success - removed locally without sync", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		ctrl := seeded(t, api, sink, []task.Task{a, b})

		api.On("Delete", mock.Anything, task.ID("a")).Return(nil).Once()

		err := ctrl.Delete(ctx, a)

		require.NoError(t, err)
		assert.Equal(t, []task.Task{b}, ctrl.Tasks())
		api.AssertNumberOfCalls(t, "FetchAll", 1)
		require.Len(t, sink.all(), 1)
		assert.Equal(t, `Task "Alpha" has been deleted`, sink.all()[0].message)
		assert.Equal(t, controller.Short, sink.all()[0].duration)
		api.AssertExpectations(t)
	})

	t.Run("error - failed delete keeps snapshot", func(t *testing.T) {
		api := new(MockTaskAPI)
		sink := &recordingNotifier{}
		ctrl := seeded(t, api, sink, []task.Task{a, b})

		api.On("Delete", mock.Anything, task.ID("a")).Return(client.NewConnectionError(errors.New("timeout"))).Once()

		err := ctrl.Delete(ctx, a)

		require.Error(t, err)
		assert.Equal(t, []task.Task{a, b}, ctrl.Tasks())
		require.Len(t, sink.all(), 1)
		assert.Equal(t, client.MsgConnection, sink.all()[0].message)
		assert.False(t, ctrl.IsBusy())
	})
}

// TestController_Subscribe тестирует публикацию снимков
func TestController_Subscribe(t *testing.T) {
	api := new(MockTaskAPI)
	ctrl := controller.New(api, nil)

	var snapshots []controller.Snapshot
	unsubscribe := ctrl.Subscribe(func(s controller.Snapshot) {
		snapshots = append(snapshots, s)
	})

	api.On("FetchAll", mock.Anything).Return([]task.Task{{ID: "1", Title: "A"}}, nil).Once()
	require.NoError(t, ctrl.Sync(context.Background()))

	require.GreaterOrEqual(t, len(snapshots), 3)
	assert.Empty(t, snapshots[0].Tasks)
	assert.False(t, snapshots[0].Busy)
	assert.True(t, snapshots[1].Busy)

	last := snapshots[len(snapshots)-1]
	assert.False(t, last.Busy)
	assert.Equal(t, []task.Task{{ID: "1", Title: "A"}}, last.Tasks)

	unsubscribe()
	count := len(snapshots)
	api.On("FetchAll", mock.Anything).Return([]task.Task{}, nil).Once()
	require.NoError(t, ctrl.Sync(context.Background()))
	assert.Equal(t, count, len(snapshots))
}

// TestController_SnapshotIsACopy проверяет, что снаружи снимок не испортить
func TestController_SnapshotIsACopy(t *testing.T) {
	api := new(MockTaskAPI)
	ctrl := seeded(t, api, nil, []task.Task{{ID: "1", Title: "A"}})

	tasks := ctrl.Tasks()
	tasks[0].Title = "mutated"

	found, ok := ctrl.Find("1")
	require.True(t, ok)
	assert.Equal(t, "A", found.Title)

	_, ok = ctrl.Find("missing")
	assert.False(t, ok)
}
