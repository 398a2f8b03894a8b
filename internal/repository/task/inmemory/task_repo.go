package inmemory

import (
	"context"
	"sync"

	"todoSync/internal/logger"
	"todoSync/internal/models/task"
	repo "todoSync/internal/repository"
)

type record struct {
	owner string
	task  task.Task
}

// TaskStorage хранит задачи в памяти в порядке создания
type TaskStorage struct {
	storage map[task.ID]*record
	mtx     *sync.RWMutex
	ids     []task.ID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[task.ID]*record),
		mtx:     &sync.RWMutex{},
		ids:     []task.ID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, owner string, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToCreate.ID]; ok {
		return repo.ErrAlreadyExists
	}

	s.storage[taskToCreate.ID] = &record{owner: owner, task: taskToCreate.Clone()}
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

// Update перезаписывает изменяемые поля, created_at остаётся прежним
func (s *TaskStorage) Update(ctx context.Context, owner string, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.ID]
	if !ok || existing.owner != owner {
		return repo.ErrNotFound
	}

	updated := taskToUpdate.Clone()
	updated.CreatedAt = existing.task.CreatedAt
	existing.task = updated

	stored := updated.Clone()
	taskToUpdate.CreatedAt = stored.CreatedAt
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, owner string, id task.ID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	existing, ok := s.storage[id]
	if !ok || existing.owner != owner {
		return nil, repo.ErrNotFound
	}
	t := existing.task.Clone()
	return &t, nil
}

func (s *TaskStorage) ListByOwner(ctx context.Context, owner string) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		existing := s.storage[id]
		if existing.owner != owner {
			continue
		}
		t := existing.task.Clone()
		res = append(res, &t)
	}
	return res, nil
}

func (s *TaskStorage) Delete(ctx context.Context, owner string, id task.ID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.owner != owner {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
