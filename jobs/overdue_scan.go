package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/varejo-erp/varejo-erp/internal/jobs"
	"github.com/varejo-erp/varejo-erp/internal/observability"
)

// OverdueScanner walks both installment tables and reports how many open
// installments have passed their due date. It only observes; settlement
// status is never changed by a background job.
type OverdueScanner struct {
	pool       *pgxpool.Pool
	metrics    *observability.Metrics
	jobMetrics *jobmetrics.Metrics
	logger     *slog.Logger
}

func NewOverdueScanner(pool *pgxpool.Pool, metrics *observability.Metrics, jobMetrics *jobmetrics.Metrics, logger *slog.Logger) *OverdueScanner {
	return &OverdueScanner{pool: pool, metrics: metrics, jobMetrics: jobMetrics, logger: logger}
}

// Handle processes TaskOverdueScan tasks.
func (s *OverdueScanner) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := s.jobMetrics.Track(TaskOverdueScan)

	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return tracker.End(s.scan(ctx, payload))
}

func (s *OverdueScanner) scan(ctx context.Context, payload OverdueScanPayload) error {
	total := 0
	for _, table := range []string{"payable_installments", "receivable_installments"} {
		count, err := s.countOverdue(ctx, table)
		if err != nil {
			s.logger.Error("overdue scan failed",
				slog.String("table", table), slog.Any("error", err))
			return err
		}
		s.logger.Info("overdue scan",
			slog.String("table", table),
			slog.Int("overdue", count),
			slog.Time("scheduled_for", payload.ScheduledFor))
		total += count
	}

	s.metrics.SetOverdueInstallments(total)
	return nil
}

func (s *OverdueScanner) countOverdue(ctx context.Context, table string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE status = 'OPEN' AND due_date < $1`,
		time.Now(),
	).Scan(&count)
	return count, err
}
