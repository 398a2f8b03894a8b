package worker

import (
	"context"
	"time"

	"todoSync/internal/logger"

	"go.uber.org/zap"
)

const DefaultInterval = 30 * time.Second

// Syncer - всё, что воркеру нужно от контроллера списка задач
type Syncer interface {
	Sync(ctx context.Context) error
}

// RefreshWorker периодически перечитывает список задач с сервера
type RefreshWorker struct {
	target   Syncer
	interval time.Duration
	done     chan struct{}
}

func NewRefreshWorker(target Syncer, interval *time.Duration) *RefreshWorker {
	intervalToSet := DefaultInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &RefreshWorker{
		target:   target,
		interval: intervalToSet,
		done:     make(chan struct{}),
	}
}

func (w *RefreshWorker) Interval() time.Duration {
	return w.interval
}

// Start блокируется до отмены контекста
func (w *RefreshWorker) Start(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Фоновое обновление запущено", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ticker.C:
			w.Refresh(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновое обновление останавливается")
			return
		}
	}
}

// Done закрывается, когда Start вернул управление
func (w *RefreshWorker) Done() <-chan struct{} {
	return w.done
}

func (w *RefreshWorker) Refresh(ctx context.Context) {
	start := time.Now()

	if err := w.target.Sync(ctx); err != nil {
		logger.Warn("Worker: Ошибка обновления списка задач",
			zap.Error(err),
			zap.Duration("ms", time.Since(start)))
		return
	}

	logger.Debug("Worker: Список задач обновлён", zap.Duration("ms", time.Since(start)))
}
