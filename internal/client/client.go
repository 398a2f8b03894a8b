package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"todoSync/internal/logger"
	"todoSync/internal/models/task"

	"go.uber.org/zap"
)

const DefaultAuthScheme = "Token"

// ограничение на чтение тела ответа
const maxBodyBytes = 4 << 20

type Config struct {
	BaseURL   string
	TasksPath string
	AuthPath  string
	// AuthScheme ставится перед токеном. nil - "Token", пустая строка - голый токен (PocketBase)
	AuthScheme *string
	// ListEnvelope - поле объекта, в котором лежит массив задач ("items" у PocketBase).
	// Пусто - тело ответа сам массив.
	ListEnvelope string
	Timeout      time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client - обёртка над удалённым API задач. Состояния между вызовами не хранит,
// токен задаётся при создании и не меняется: после логина создаётся новый клиент.
type Client struct {
	base         *url.URL
	tasksPath    string
	authPath     string
	authHeader   string
	listEnvelope string
	http         *http.Client
}

func New(cfg Config, token string, options ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("разбор base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q должен содержать схему и хост", cfg.BaseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	if strings.Trim(cfg.TasksPath, "/") == "" {
		return nil, errors.New("путь коллекции задач не задан")
	}

	scheme := DefaultAuthScheme
	if cfg.AuthScheme != nil {
		scheme = *cfg.AuthScheme
	}

	header := token
	if scheme != "" && token != "" {
		header = scheme + " " + token
	}

	c := &Client{
		base:         base,
		tasksPath:    cfg.TasksPath,
		authPath:     cfg.AuthPath,
		authHeader:   header,
		listEnvelope: cfg.ListEnvelope,
		http:         &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *Client) FetchAll(ctx context.Context) ([]task.Task, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.collectionURL(), nil, true)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	tasks, err := c.decodeList(body)
	if err != nil {
		return nil, NewDecodeError(status, err)
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, request task.NewTaskRequest) (*task.Task, error) {
	if err := request.Validate(); err != nil {
		return nil, NewValidationError(fieldOf(err), err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.collectionURL(), request, true)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var created task.Task
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, NewDecodeError(status, err)
	}
	return &created, nil
}

// Update отправляет полную запись задачи методом PATCH
func (c *Client) Update(ctx context.Context, t task.Task) (*task.Task, error) {
	if t.ID.IsZero() {
		return nil, NewValidationError("id", errors.New("задача ещё не создана на сервере"))
	}
	if err := t.Validate(); err != nil {
		return nil, NewValidationError(fieldOf(err), err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.itemURL(t.ID), t, true)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var updated task.Task
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, NewDecodeError(status, err)
	}
	return &updated, nil
}

// Delete: успех - любой 2xx, тело ответа не читается
func (c *Client) Delete(ctx context.Context, id task.ID) error {
	if id.IsZero() {
		return NewValidationError("id", errors.New("пустой id"))
	}

	req, err := c.newRequest(ctx, http.MethodDelete, c.itemURL(id), nil, true)
	if err != nil {
		return err
	}

	_, _, err = c.do(req)
	return err
}

func (c *Client) collectionURL() *url.URL {
	return c.base.JoinPath(c.tasksPath)
}

// itemURL - <base>/<collection>/<id>/ , бэкенд требует завершающий слэш
func (c *Client) itemURL(id task.ID) *url.URL {
	return c.base.JoinPath(strings.TrimSuffix(c.tasksPath, "/"), url.PathEscape(id.String())+"/")
}

func (c *Client) newRequest(ctx context.Context, method string, u *url.URL, payload any, auth bool) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("кодирование тела запроса: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	return req, nil
}

// do выполняет ровно одну попытку и классифицирует исход.
// При 2xx возвращает статус и тело, иначе *Failure.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.HttpClientInfo(req, 0, time.Since(start), zap.Error(err))
		return 0, nil, NewConnectionError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	logger.HttpClientInfo(req, resp.StatusCode, time.Since(start), zap.Int("bytes", len(body)))
	if err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 && req.Method == http.MethodDelete {
			return resp.StatusCode, nil, nil
		}
		return resp.StatusCode, nil, NewConnectionError(err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, body, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return resp.StatusCode, nil, NewClientError(resp.StatusCode, messageFromBody(body))
	case resp.StatusCode >= 500:
		return resp.StatusCode, nil, NewServerError(resp.StatusCode)
	default:
		// 1xx/3xx без редиректа - ответ, которого мы не ждём
		return resp.StatusCode, nil, NewDecodeError(resp.StatusCode, fmt.Errorf("неожиданный статус %d", resp.StatusCode))
	}
}

func (c *Client) decodeList(body []byte) ([]task.Task, error) {
	if c.listEnvelope == "" {
		var tasks []task.Task
		if err := json.Unmarshal(body, &tasks); err != nil {
			return nil, err
		}
		if tasks == nil {
			return nil, errors.New("ожидался массив задач, получен null")
		}
		return tasks, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[c.listEnvelope]
	if !ok {
		return nil, fmt.Errorf("в ответе нет поля %q", c.listEnvelope)
	}

	var tasks []task.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// messageFromBody достаёт текст ошибки: "message" у PocketBase, "detail" у Django REST
func messageFromBody(body []byte) string {
	var payload struct {
		Message any `json:"message"`
		Detail  any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, v := range []any{payload.Message, payload.Detail} {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func fieldOf(err error) string {
	var fieldErr *task.FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Field
	}
	return "title"
}
