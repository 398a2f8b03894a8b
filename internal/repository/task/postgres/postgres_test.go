package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"todoSync/internal/models/task"
	"todoSync/internal/repository"
	"todoSync/internal/repository/task/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	ctx        context.Context
	connString string
}

// SetupSuite поднимает контейнер и накатывает миграции
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), postgres.Migrate(s.connString))
	// повторный запуск не должен падать
	require.NoError(s.T(), postgres.Migrate(s.connString))

	s.storage, err = postgres.New(s.ctx, s.connString, postgres.PoolConfig{MaxConns: 4})
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицу перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	if err != nil {
		s.T().Logf("Не удалось подключиться для очистки: %v", err)
		return
	}
	defer conn.Close(s.ctx)

	if _, err := conn.Exec(s.ctx, "DELETE FROM todos"); err != nil {
		s.T().Logf("Не удалось очистить таблицу: %v", err)
	}
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func newTask(title string) *task.Task {
	return &task.Task{ID: task.ID(uuid.NewString()), Title: title}
}

func (s *PostgresTestSuite) TestStorage_HealthCheck() {
	s.NoError(s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestStorage_Create() {
	taskToCreate := newTask("Test Task")
	taskToCreate.Notes = "notes"

	err := s.storage.Create(s.ctx, "alice", taskToCreate)
	s.Require().NoError(err)
	s.Require().NotNil(taskToCreate.CreatedAt)

	retrieved, err := s.storage.GetByID(s.ctx, "alice", taskToCreate.ID)
	s.Require().NoError(err)
	s.Equal("Test Task", retrieved.Title)
	s.Equal("notes", retrieved.Notes)
	s.Nil(retrieved.CompletedAt)

	err = s.storage.Create(s.ctx, "alice", taskToCreate)
	s.ErrorIs(err, repository.ErrAlreadyExists)
}

func (s *PostgresTestSuite) TestStorage_GetByID_NotFound() {
	_, err := s.storage.GetByID(s.ctx, "alice", task.ID(uuid.NewString()))
	s.ErrorIs(err, repository.ErrNotFound)

	created := newTask("foreign")
	s.Require().NoError(s.storage.Create(s.ctx, "bob", created))

	_, err = s.storage.GetByID(s.ctx, "alice", created.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_Update() {
	original := newTask("Original")
	s.Require().NoError(s.storage.Create(s.ctx, "alice", original))

	done := time.Now().UTC().Truncate(time.Microsecond)
	update := &task.Task{ID: original.ID, Title: "Renamed", Notes: "n", CompletedAt: &done}
	s.Require().NoError(s.storage.Update(s.ctx, "alice", update))
	s.Require().NotNil(update.CreatedAt)
	s.True(update.CreatedAt.Equal(*original.CreatedAt))

	retrieved, err := s.storage.GetByID(s.ctx, "alice", original.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", retrieved.Title)
	s.Require().NotNil(retrieved.CompletedAt)
	s.True(retrieved.CompletedAt.Equal(done))

	// снятие отметки выполнения
	update.CompletedAt = nil
	s.Require().NoError(s.storage.Update(s.ctx, "alice", update))
	retrieved, err = s.storage.GetByID(s.ctx, "alice", original.ID)
	s.Require().NoError(err)
	s.Nil(retrieved.CompletedAt)

	s.ErrorIs(s.storage.Update(s.ctx, "bob", update), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_ListByOwner() {
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		s.Require().NoError(s.storage.Create(s.ctx, "alice", newTask(title)))
	}
	s.Require().NoError(s.storage.Create(s.ctx, "bob", newTask("other")))

	tasks, err := s.storage.ListByOwner(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(tasks, 3)
	for i, title := range titles {
		s.Equal(title, tasks[i].Title)
	}

	empty, err := s.storage.ListByOwner(s.ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func (s *PostgresTestSuite) TestStorage_Delete() {
	created := newTask("to delete")
	s.Require().NoError(s.storage.Create(s.ctx, "alice", created))

	s.ErrorIs(s.storage.Delete(s.ctx, "bob", created.ID), repository.ErrNotFound)
	s.Require().NoError(s.storage.Delete(s.ctx, "alice", created.ID))
	s.ErrorIs(s.storage.Delete(s.ctx, "alice", created.ID), repository.ErrNotFound)
}
