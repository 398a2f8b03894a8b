package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoSync/internal/logger"
	"todoSync/internal/models/task"
	repo "todoSync/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnIdleTime = time.Minute * 5
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, owner string, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO todos
				(id, owner, title, notes, created_at, completed_at)
				VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), $6)
				RETURNING created_at`

	var createdAt time.Time
	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID.String(),
		owner,
		taskToCreate.Title,
		taskToCreate.Notes,
		taskToCreate.CreatedAt,
		taskToCreate.CompletedAt,
	).Scan(&createdAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	taskToCreate.CreatedAt = &createdAt

	slowQuery(start, 50*time.Millisecond)
	return nil
}

// Update меняет title, notes и completed_at; created_at не трогается
func (s *Storage) Update(ctx context.Context, owner string, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE todos
			SET title = $1,
				notes = $2,
				completed_at = $3
			WHERE id = $4 AND owner = $5
			RETURNING created_at`

	var createdAt time.Time
	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Notes,
		taskToUpdate.CompletedAt,
		taskToUpdate.ID.String(),
		owner,
	).Scan(&createdAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	taskToUpdate.CreatedAt = &createdAt

	slowQuery(start, 100*time.Millisecond)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, owner string, id task.ID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT id::text, title, notes, created_at, completed_at
				FROM todos
				WHERE id = $1 AND owner = $2`

	row, err := scanTask(s.pool.QueryRow(ctx, query, id.String(), owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	slowQuery(start, 100*time.Millisecond)
	return row, nil
}

// ListByOwner возвращает задачи владельца в порядке создания
func (s *Storage) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT id::text, title, notes, created_at, completed_at
				FROM todos
				WHERE owner = $1
				ORDER BY seq`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	slowQuery(start, 50*time.Millisecond+time.Millisecond*time.Duration(len(tasks)))
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, owner string, id task.ID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND owner = $2`, id.String(), owner)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	slowQuery(start, 100*time.Millisecond)
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t           task.Task
		id          string
		createdAt   time.Time
		completedAt *time.Time
	)
	if err := row.Scan(&id, &t.Title, &t.Notes, &createdAt, &completedAt); err != nil {
		return nil, err
	}
	t.ID = task.ID(id)
	t.CreatedAt = &createdAt
	t.CompletedAt = completedAt
	return &t, nil
}

func slowQuery(start time.Time, limit time.Duration) {
	if took := time.Since(start); took > limit {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", took))
	}
}
