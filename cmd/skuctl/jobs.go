package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/rxcatalog/rxcatalog/internal/platform/cache"
	"github.com/rxcatalog/rxcatalog/jobs"
)

// JobsCLI wraps manual management helpers for asynq jobs.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the helpers against the given Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	if redisAddr == "" {
		return nil, errors.New("jobs cli: REDIS_ADDR is not set")
	}
	opts, err := cache.QueueOptions(redisAddr)
	if err != nil {
		return nil, err
	}
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{client: client, inspector: asynq.NewInspector(opts)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	switch name {
	case "repair-status", jobs.TaskRepairStatus:
		return c.client.EnqueueRepairStatus(ctx, "skuctl")
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Archived  int
}

// InspectQueue reports the default queue counters.
func (c *JobsCLI) InspectQueue(_ context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	info, err := jobs.DefaultQueueInfo(c.inspector)
	if err != nil {
		return QueueStats{}, err
	}
	if info == nil {
		return stats, nil
	}
	stats.Pending = info.Pending
	stats.Active = info.Active
	stats.Scheduled = info.Scheduled
	stats.Retry = info.Retry
	stats.Archived = info.Archived
	return stats, nil
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage the background job queue",
}

var jobsTriggerCmd = &cobra.Command{
	Use:       "trigger <job>",
	Short:     "Enqueue a job now",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"repair-status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		jc, err := NewJobsCLI(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer jc.Close() //nolint:errcheck
		info, err := jc.Trigger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s as %s on queue %s.\n", info.Type, info.ID, info.Queue)
		return nil
	},
}

var jobsInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show queue counters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jc, err := NewJobsCLI(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer jc.Close() //nolint:errcheck
		stats, err := jc.InspectQueue(cmd.Context())
		if err != nil {
			return err
		}
		return writeQueueStats(cmd.OutOrStdout(), stats)
	},
}

func init() {
	jobsCmd.AddCommand(jobsTriggerCmd, jobsInspectCmd)
}

func writeQueueStats(w io.Writer, s QueueStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED")
	fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry, s.Archived)
	return tw.Flush()
}
