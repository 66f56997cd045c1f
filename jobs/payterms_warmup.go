package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/varejo-erp/varejo-erp/internal/jobs"
	"github.com/varejo-erp/varejo-erp/internal/payterms"
)

// ConditionLister is the read slice of the payment-condition store used by
// the warmup job.
type ConditionLister interface {
	ListConditions(ctx context.Context) ([]payterms.PaymentCondition, error)
}

// PaytermsWarmer preloads the condition cache so the first document commits
// after a deploy do not all fault through to the database.
type PaytermsWarmer struct {
	store      ConditionLister
	cache      *payterms.CachedSource
	jobMetrics *jobmetrics.Metrics
	logger     *slog.Logger
}

func NewPaytermsWarmer(store ConditionLister, cache *payterms.CachedSource, jobMetrics *jobmetrics.Metrics, logger *slog.Logger) *PaytermsWarmer {
	return &PaytermsWarmer{store: store, cache: cache, jobMetrics: jobMetrics, logger: logger}
}

// Handle processes TaskPaytermsWarmup tasks.
func (p *PaytermsWarmer) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := p.jobMetrics.Track(TaskPaytermsWarmup)

	var payload PaytermsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return tracker.End(p.warm(ctx))
}

func (p *PaytermsWarmer) warm(ctx context.Context) error {
	conditions, err := p.store.ListConditions(ctx)
	if err != nil {
		p.logger.Error("condition warmup failed", slog.Any("error", err))
		return err
	}
	if err := p.cache.Warm(ctx, conditions); err != nil {
		p.logger.Error("condition warmup failed", slog.Any("error", err))
		return err
	}
	p.logger.Info("condition cache warmed", slog.Int("conditions", len(conditions)))
	return nil
}
