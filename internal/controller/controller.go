package controller

import (
	"context"
	"sync"
	"time"

	"todoSync/internal/client"
	"todoSync/internal/logger"
	"todoSync/internal/models/task"

	"go.uber.org/zap"
)

// TaskAPI - то, что контроллеру нужно от клиента удалённого API
type TaskAPI interface {
	FetchAll(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, request task.NewTaskRequest) (*task.Task, error)
	Update(ctx context.Context, t task.Task) (*task.Task, error)
	Delete(ctx context.Context, id task.ID) error
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller хранит текущий снимок списка задач сессии
// и выполняет операции, которые его обновляют.
type Controller struct {
	api  TaskAPI
	sink Notifier
	now  func() time.Time

	mtx      sync.Mutex
	tasks    []task.Task
	inFlight int

	subMtx  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func New(api TaskAPI, sink Notifier, options ...Option) *Controller {
	if sink == nil {
		sink = discard{}
	}
	c := &Controller{
		api:   api,
		sink:  sink,
		now:   time.Now,
		tasks: []task.Task{},
		subs:  make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Tasks возвращает копию последнего снимка в порядке ответа сервера
func (c *Controller) Tasks() []task.Task {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return cloneTasks(c.tasks)
}

func (c *Controller) IsBusy() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.inFlight > 0
}

func (c *Controller) Find(id task.ID) (task.Task, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return task.Task{}, false
}

// Subscribe регистрирует наблюдателя. Он сразу получает текущий снимок,
// а затем каждый новый. Вызывать методы контроллера из fn синхронно нельзя.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subMtx.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMtx.Unlock()

	fn(c.snapshot())

	return func() {
		c.subMtx.Lock()
		delete(c.subs, id)
		c.subMtx.Unlock()
	}
}

// Sync заменяет снимок целиком результатом FetchAll.
// При ошибке снимок не меняется, пользователь получает одно сообщение.
func (c *Controller) Sync(ctx context.Context) error {
	c.begin()
	defer c.end()

	start := time.Now()
	tasks, err := c.api.FetchAll(ctx)
	if err != nil {
		c.fail("sync", err)
		return err
	}

	c.mtx.Lock()
	c.tasks = cloneTasks(tasks)
	c.mtx.Unlock()
	c.publish()

	logger.Debug("Controller: Список задач обновлён",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	return nil
}

// Create проверяет заголовок локально, создаёт задачу на сервере
// и перечитывает список, чтобы в нём появился id от сервера.
func (c *Controller) Create(ctx context.Context, request task.NewTaskRequest) (*task.Task, error) {
	if err := request.Validate(); err != nil {
		failure := client.NewValidationError("title", err)
		c.fail("create", failure)
		return nil, failure
	}

	c.begin()
	defer c.end()

	created, err := c.api.Create(ctx, request)
	if err != nil {
		c.fail("create", err)
		return nil, err
	}

	logger.Info("Controller: Задача создана", zap.String("task_id", created.ID.String()))

	// ошибку синхронизации пользователь увидит отдельным сообщением
	_ = c.Sync(ctx)
	return created, nil
}

// Update применяет частичные изменения к копии задачи
// и отправляет на сервер полную запись.
func (c *Controller) Update(ctx context.Context, t task.Task, options ...task.TaskOption) (*task.Task, error) {
	updated := task.Apply(t, options...)
	if err := updated.Validate(); err != nil {
		failure := client.NewValidationError("title", err)
		c.fail("update", failure)
		return nil, failure
	}

	c.begin()
	defer c.end()

	result, err := c.api.Update(ctx, updated)
	if err != nil {
		c.fail("update", err)
		return nil, err
	}

	logger.Info("Controller: Задача обновлена", zap.String("task_id", result.ID.String()))

	_ = c.Sync(ctx)
	return result, nil
}

// SetDone ставит или снимает отметку выполнения.
// Если задача уже в нужном состоянии, запроса к серверу нет.
func (c *Controller) SetDone(ctx context.Context, t task.Task, done bool) (*task.Task, error) {
	if t.IsDone() == done {
		unchanged := t.Clone()
		return &unchanged, nil
	}

	option := task.MarkUndone()
	if done {
		option = task.MarkDone(c.now())
	}
	return c.Update(ctx, t, option)
}

func (c *Controller) ToggleDone(ctx context.Context, t task.Task) (*task.Task, error) {
	return c.SetDone(ctx, t, !t.IsDone())
}

// Delete после подтверждения сервера сразу убирает задачу из снимка,
// полная синхронизация не нужна.
func (c *Controller) Delete(ctx context.Context, t task.Task) error {
	c.begin()
	defer c.end()

	if err := c.api.Delete(ctx, t.ID); err != nil {
		c.fail("delete", err)
		return err
	}

	c.mtx.Lock()
	kept := make([]task.Task, 0, len(c.tasks))
	for _, existing := range c.tasks {
		if existing.ID != t.ID {
			kept = append(kept, existing)
		}
	}
	c.tasks = kept
	c.mtx.Unlock()
	c.publish()

	logger.Info("Controller: Задача удалена", zap.String("task_id", t.ID.String()))
	c.sink.Show(`Task "`+t.Title+`" has been deleted`, Short)
	return nil
}

func (c *Controller) begin() {
	c.mtx.Lock()
	c.inFlight++
	c.mtx.Unlock()
	c.publish()
}

// end снимает признак загрузки при любом исходе операции
func (c *Controller) end() {
	c.mtx.Lock()
	if c.inFlight > 0 {
		c.inFlight--
	}
	c.mtx.Unlock()
	c.publish()
}

func (c *Controller) fail(operation string, err error) {
	logger.Warn("Controller: Операция не выполнена",
		zap.String("operation", operation),
		zap.Error(err))
	c.sink.Show(client.MessageOf(err), Long)
}

func (c *Controller) snapshot() Snapshot {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return Snapshot{Tasks: cloneTasks(c.tasks), Busy: c.inFlight > 0}
}

func (c *Controller) publish() {
	c.subMtx.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMtx.Unlock()

	if len(subs) == 0 {
		return
	}

	snap := c.snapshot()
	for _, fn := range subs {
		fn(snap)
	}
}

func cloneTasks(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

type discard struct{}

func (discard) Show(string, Duration) {}
