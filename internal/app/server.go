package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"todoSync/internal/config"
	"todoSync/internal/handlers"
	"todoSync/internal/logger"
	"todoSync/internal/middleware"
	"todoSync/internal/repository/task/inmemory"
	"todoSync/internal/repository/task/postgres"
	"todoSync/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	RepoInMemory = "inmemory"
	RepoPostgres = "postgres"
)

// Server - API задач для локальной разработки и сквозных тестов клиента
type Server struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository // интерфейс!
	service    *service.TaskService
	auth       *service.AuthService
	shutdowns  []func() // функции для graceful shutdown
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (s *Server) Init(ctx context.Context) error {
	if err := logger.Init(s.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	s.shutdowns = append(s.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	repo, err := s.initRepository(ctx)
	if err != nil {
		return err
	}
	s.repository = repo
	s.service = service.NewTaskService(repo)

	users := make([]service.Credential, 0, len(s.config.Auth.Users))
	for _, u := range s.config.Auth.Users {
		users = append(users, service.Credential{Username: u.Username, PasswordHash: u.PasswordHash})
	}
	s.auth, err = service.NewAuthService(s.config.Auth.Secret, s.config.Auth.TokenTTL, users)
	if err != nil {
		return fmt.Errorf("инициализация авторизации: %w", err)
	}
	if len(users) == 0 {
		logger.Warn("Server: Пользователи не заданы, вход невозможен")
	}

	s.router = s.buildRouter()
	s.server = &http.Server{
		Addr:              s.config.GetServerAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run блокируется до остановки сервера
func (s *Server) Run() error {
	logger.Info("Server: Запуск", zap.String("addr", s.server.Addr), zap.String("repository", s.config.Repository.Type))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("запуск сервера: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	for i := len(s.shutdowns) - 1; i >= 0; i-- {
		s.shutdowns[i]()
	}
	s.shutdowns = nil
	return err
}

func (s *Server) initRepository(ctx context.Context) (service.TaskRepository, error) {
	switch s.config.Repository.Type {
	case RepoPostgres:
		db := s.config.Database
		if db.Migrate {
			if err := postgres.Migrate(db.URL); err != nil {
				return nil, fmt.Errorf("миграции: %w", err)
			}
		}
		storage, err := postgres.New(ctx, db.URL, postgres.PoolConfig{
			MaxConns:        int32(db.MaxConnections),
			MinConns:        int32(db.MinConnections),
			MaxConnIdleTime: db.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к базе: %w", err)
		}
		s.shutdowns = append(s.shutdowns, storage.Close)
		return storage, nil
	case RepoInMemory, "":
		return inmemory.NewTaskStorage(), nil
	default:
		return nil, fmt.Errorf("неизвестный тип репозитория %q", s.config.Repository.Type)
	}
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(s.config.Server.RequestTimeout))
	}
	r.Use(middleware.RateLimit(s.config.Server.RateLimit))

	r.Mount("/", handlers.Routes(
		handlers.NewTaskHandler(s.service),
		handlers.NewAuthHandler(s.auth),
		middleware.Authenticate(s.auth),
	))
	return r
}
