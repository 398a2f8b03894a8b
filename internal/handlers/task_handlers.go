package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todoSync/internal/handlers/dto"
	"todoSync/internal/logger"
	"todoSync/internal/middleware"
	"todoSync/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "todo-sync"

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName))
}

// ListTasks отдаёт голый массив задач владельца
func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := s.TaskService.ListTasks(r.Context(), middleware.GetOwner(r.Context()))
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !requireJSON(w, r) {
		return
	}

	var request task.NewTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "JSON parse error: "+err.Error())
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), middleware.GetOwner(r.Context()), request)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, created)
}

// PatchTask применяет только присланные поля
func (s *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := task.ID(chi.URLParam(r, "id"))
	if id.IsZero() {
		responseWithError(w, http.StatusNotFound, "Not found.")
		return
	}

	if !requireJSON(w, r) {
		return
	}

	var request dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "JSON parse error: "+err.Error())
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), middleware.GetOwner(r.Context()), id, request.Options()...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, updated)
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := task.ID(chi.URLParam(r, "id"))
	if id.IsZero() {
		responseWithError(w, http.StatusNotFound, "Not found.")
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), middleware.GetOwner(r.Context()), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}
