// Package notify содержит приёмники пользовательских уведомлений контроллера.
package notify

import (
	"fmt"
	"io"
	"sync"

	"todoSync/internal/controller"
	"todoSync/internal/logger"

	"go.uber.org/zap"
)

// Writer печатает каждое уведомление отдельной строкой
type Writer struct {
	mtx sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Show(message string, duration controller.Duration) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	prefix := "» "
	if duration == controller.Long {
		prefix = "! "
	}
	if _, err := fmt.Fprintln(w.out, prefix+message); err != nil {
		logger.Warn("Notify: Не удалось вывести уведомление", zap.Error(err))
	}
}

// Log пишет уведомления в общий логгер
type Log struct{}

func (Log) Show(message string, duration controller.Duration) {
	logger.Info("Notify: "+message, zap.Stringer("duration", duration))
}

// Multi рассылает уведомление всем приёмникам по очереди
type Multi []controller.Notifier

func (m Multi) Show(message string, duration controller.Duration) {
	for _, n := range m {
		if n != nil {
			n.Show(message, duration)
		}
	}
}

// Func позволяет использовать обычную функцию как приёмник
type Func func(message string, duration controller.Duration)

func (f Func) Show(message string, duration controller.Duration) {
	f(message, duration)
}

var (
	_ controller.Notifier = (*Writer)(nil)
	_ controller.Notifier = Log{}
	_ controller.Notifier = Multi(nil)
	_ controller.Notifier = Func(nil)
)
