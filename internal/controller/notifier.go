package controller

import "todoSync/internal/models/task"

// Duration - сколько держать уведомление на экране
type Duration int

const (
	Short Duration = iota
	Long
)

func (d Duration) String() string {
	if d == Long {
		return "long"
	}
	return "short"
}

// Notifier - приёмник коротких сообщений для пользователя.
// Контроллер только отправляет сообщение и не ждёт реакции.
type Notifier interface {
	Show(message string, duration Duration)
}

// Snapshot - то, что видит интерфейс после каждого изменения
type Snapshot struct {
	Tasks []task.Task
	Busy  bool
}
