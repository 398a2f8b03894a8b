package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"todoSync/internal/client"
	"todoSync/internal/config"
	"todoSync/internal/controller"
	"todoSync/internal/credentials"
	"todoSync/internal/logger"
	"todoSync/internal/worker"

	"go.uber.org/zap"
)

var ErrNotLoggedIn = errors.New("вход не выполнен")

// App - клиентская сессия: токен, клиент API и контроллер списка задач.
// После входа клиент и контроллер создаются заново с новым токеном.
type App struct {
	config  *config.Config
	store   credentials.Store
	sink    controller.Notifier
	options []client.Option

	mtx        sync.Mutex
	controller *controller.Controller
	stopWorker context.CancelFunc
	worker     *worker.RefreshWorker

	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config, store credentials.Store, sink controller.Notifier, options ...client.Option) *App {
	return &App{
		config:    cfg,
		store:     store,
		sink:      sink,
		options:   options,
		shutdowns: make([]func(), 0),
	}
}

// Init поднимает сессию из сохранённого токена, если он есть
func (a *App) Init(ctx context.Context) error {
	a.shutdowns = append(a.shutdowns, func() {
		logger.Debug("App: Завершение работы логгирования")
		logger.Sync()
	})

	token, ok, err := a.store.Get(credentials.TokenKey)
	if err != nil {
		return fmt.Errorf("чтение токена: %w", err)
	}
	if !ok || token == "" {
		logger.Info("App: Сохранённого токена нет")
		return nil
	}

	return a.startSession(token)
}

// Login получает токен, сохраняет его и пересоздаёт клиент и контроллер
func (a *App) Login(ctx context.Context, username, password string) error {
	anonymous, err := client.New(a.clientConfig(), "", a.options...)
	if err != nil {
		return fmt.Errorf("создание клиента: %w", err)
	}

	token, err := anonymous.Login(ctx, username, password)
	if err != nil {
		logger.Warn("App: Вход не выполнен", zap.String("username", username), zap.Error(err))
		a.notify(client.MessageOf(err), controller.Long)
		return err
	}

	if err := a.store.Set(credentials.TokenKey, token); err != nil {
		return fmt.Errorf("сохранение токена: %w", err)
	}

	if err := a.startSession(token); err != nil {
		return err
	}

	logger.Info("App: Вход выполнен", zap.String("username", username))
	return nil
}

// Logout забывает токен и останавливает фоновое обновление
func (a *App) Logout() error {
	a.stopRefresh()

	a.mtx.Lock()
	a.controller = nil
	a.mtx.Unlock()

	if err := a.store.Remove(credentials.TokenKey); err != nil {
		return fmt.Errorf("удаление токена: %w", err)
	}
	logger.Info("App: Выход выполнен")
	return nil
}

func (a *App) Controller() (*controller.Controller, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.controller == nil {
		return nil, ErrNotLoggedIn
	}
	return a.controller, nil
}

// StartRefresh запускает фоновую синхронизацию текущего контроллера
func (a *App) StartRefresh(ctx context.Context) (*worker.RefreshWorker, error) {
	ctrl, err := a.Controller()
	if err != nil {
		return nil, err
	}

	a.stopRefresh()

	interval := a.config.Refresh.Interval
	w := worker.NewRefreshWorker(ctrl, &interval)
	workerCtx, cancel := context.WithCancel(ctx)

	a.mtx.Lock()
	a.worker = w
	a.stopWorker = cancel
	a.mtx.Unlock()

	go w.Start(workerCtx)
	return w, nil
}

// Shutdown выполняет зарегистрированные функции в обратном порядке
func (a *App) Shutdown() {
	a.stopRefresh()
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func (a *App) startSession(token string) error {
	api, err := client.New(a.clientConfig(), token, a.options...)
	if err != nil {
		return fmt.Errorf("создание клиента: %w", err)
	}

	a.stopRefresh()

	a.mtx.Lock()
	a.controller = controller.New(api, a.sink)
	a.mtx.Unlock()
	return nil
}

func (a *App) stopRefresh() {
	a.mtx.Lock()
	cancel, w := a.stopWorker, a.worker
	a.stopWorker, a.worker = nil, nil
	a.mtx.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-w.Done()
}

func (a *App) clientConfig() client.Config {
	c := a.config.Client
	return client.Config{
		BaseURL:      c.BaseURL,
		TasksPath:    c.TasksPath,
		AuthPath:     c.AuthPath,
		AuthScheme:   c.AuthSchemeValue(),
		ListEnvelope: c.ListEnvelope,
		Timeout:      c.Timeout,
	}
}

func (a *App) notify(message string, duration controller.Duration) {
	if a.sink != nil {
		a.sink.Show(message, duration)
	}
}
