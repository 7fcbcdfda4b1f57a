package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type TrashPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// TrashPurgeWorker apaga periodicamente o que passou do prazo da lixeira.
type TrashPurgeWorker struct {
	purger       TrashPurger
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewTrashPurgeWorker(purger TrashPurger, tickInterval time.Duration, logger *zap.Logger) *TrashPurgeWorker {
	if tickInterval <= 0 {
		tickInterval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrashPurgeWorker{purger: purger, tickInterval: tickInterval, logger: logger}
}

func (w *TrashPurgeWorker) Start(ctx context.Context) {
	w.logger.Info("worker da lixeira iniciado", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker da lixeira encerrado")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *TrashPurgeWorker) purge(ctx context.Context) {
	n, err := w.purger.PurgeExpired(ctx)
	if err != nil {
		w.logger.Error("erro ao esvaziar lixeira", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("lixeira esvaziada", zap.Int("count", n))
	}
}
