package service

import (
	"errors"
	"fmt"

	"todoSync/internal/models/task"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

// Message уходит клиенту в поле detail без изменений
func NewNotFound(id string) *BusinessError {
	return NewBusinessError(CodeNotFound, "Not found.", ToDetail("id", id))
}

// NewValidationError ожидает task.FieldError, иначе поле берётся из аргумента
func NewValidationError(field string, err error) *BusinessError {
	var fieldErr *task.FieldError
	cause := err
	if errors.As(err, &fieldErr) {
		field = fieldErr.Field
		cause = fieldErr.Err
	}

	busErr := NewBusinessError(CodeValidation,
		fmt.Sprintf("Invalid value for '%s': %v", field, cause),
		ToDetail("field", field))
	busErr.Err = err
	return busErr
}

func NewInvalidCredentials() *BusinessError {
	return NewBusinessError(CodeInvalidCredentials, "Unable to log in with provided credentials.")
}

func NewUnauthorized(message string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, message)
}

// AsBusinessError достаёт BusinessError из цепочки ошибок
func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}
