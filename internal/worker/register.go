package worker

import (
	"time"

	"github.com/hibiken/asynq"

	"catalog-service/internal/config"
	"catalog-service/internal/repository"
)

// outboxRetention is how long APPLIED entries are kept for audit before the
// purge task removes them.
const outboxRetention = 7 * 24 * time.Hour

func RegisterHandlers(mux *asynq.ServeMux, products *repository.ProductsRepository, outbox *repository.OutboxRepository, cfg *config.Config) {
	handler := NewReplayHandler(products, outbox, cfg.OutboxBatchSize, cfg.OutboxMaxAttempts)

	mux.HandleFunc(TaskOutboxSweep, handler.HandleSweep)
	mux.HandleFunc(TaskOutboxPurge, handler.HandlePurge)
}
