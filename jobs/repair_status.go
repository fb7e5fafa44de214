package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/rxcatalog/rxcatalog/internal/jobs"
)

// StatusRepairer rewrites invalid SKU statuses and reports how many changed.
type StatusRepairer interface {
	RepairStatuses(ctx context.Context) (int, error)
}

// RepairStatusJob handles TaskRepairStatus.
type RepairStatusJob struct {
	repairer StatusRepairer
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewRepairStatusJob constructs the job handler.
func NewRepairStatusJob(repairer StatusRepairer, logger *slog.Logger, metrics *jobmetrics.Metrics) *RepairStatusJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepairStatusJob{repairer: repairer, logger: logger, metrics: metrics}
}

// Handle processes a repair task.
func (j *RepairStatusJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RepairStatusPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	tracker := j.metrics.Track(TaskRepairStatus)
	fixed, err := j.repairer.RepairStatuses(ctx)
	if err != nil {
		j.logger.Error("repair sku statuses", slog.String("source", payload.Source), slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.AddRepaired(int64(fixed))
	j.logger.Info("sku statuses repaired",
		slog.String("job", TaskRepairStatus),
		slog.String("source", payload.Source),
		slog.Int("fixed", fixed))
	return tracker.End(nil)
}
