package client

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConnection Kind = "CONNECTION_ERROR"
	KindClient     Kind = "CLIENT_ERROR"
	KindServer     Kind = "SERVER_ERROR"
	KindValidation Kind = "VALIDATION_ERROR"
	KindDecode     Kind = "DECODE_ERROR"
)

// тексты, которые видит пользователь
const (
	MsgConnection    = "Unable to connect to server"
	MsgRequestFailed = "Request failed"
	MsgServer        = "Server Error"
	MsgDecode        = "Server Error: unexpected response"
	MsgEmptyTitle    = "Title must not be empty"
	MsgFallback      = "Something went wrong"
)

// Failure - ожидаемый исход запроса, который не является успехом.
// Клиент возвращает его вместо паники для всех пяти категорий.
type Failure struct {
	Kind    Kind
	Status  int
	Field   string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	prefix := string(f.Kind)
	if f.Status != 0 {
		prefix = fmt.Sprintf("%s %d", f.Kind, f.Status)
	}
	if f.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", prefix, f.Message, f.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", prefix, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is сравнивает только категорию: errors.Is(err, client.ErrServer).
// Ошибка декодирования относится к классу серверных.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok || t.Status != 0 || t.Message != "" {
		return false
	}
	if t.Kind == KindServer && f.Kind == KindDecode {
		return true
	}
	return t.Kind == f.Kind
}

// эталоны для errors.Is
var (
	ErrConnection = &Failure{Kind: KindConnection}
	ErrClient     = &Failure{Kind: KindClient}
	ErrServer     = &Failure{Kind: KindServer}
	ErrValidation = &Failure{Kind: KindValidation}
	ErrDecode     = &Failure{Kind: KindDecode}
)

func NewConnectionError(err error) *Failure {
	return &Failure{Kind: KindConnection, Message: MsgConnection, Err: err}
}

func NewClientError(status int, message string) *Failure {
	if message == "" {
		message = MsgRequestFailed
	}
	return &Failure{Kind: KindClient, Status: status, Message: message}
}

func NewServerError(status int) *Failure {
	return &Failure{Kind: KindServer, Status: status, Message: MsgServer}
}

func NewValidationError(field string, err error) *Failure {
	message := MsgFallback
	if field == "title" {
		message = MsgEmptyTitle
	}
	return &Failure{Kind: KindValidation, Field: field, Message: message, Err: err}
}

func NewDecodeError(status int, err error) *Failure {
	return &Failure{Kind: KindDecode, Status: status, Message: MsgDecode, Err: err}
}

func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// MessageOf - текст для уведомления пользователя
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if f, ok := AsFailure(err); ok && f.Message != "" {
		return f.Message
	}
	return MsgFallback
}
