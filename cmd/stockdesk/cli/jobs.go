package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hibiken/asynq"

	"github.com/stockdesk/stockdesk/jobs"
)

// Trigger enqueues a named job. *jobs.Client satisfies it.
type Trigger interface {
	Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error)
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	trigger   Trigger
	inspector jobs.QueueInspector
	closers   []io.Closer
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client := jobs.NewClient(opts)
	inspector := asynq.NewInspector(opts)
	return &JobsCLI{trigger: client, inspector: inspector, closers: []io.Closer{client, inspector}}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

// JobsOptions carries the output streams of the jobs command.
type JobsOptions struct {
	Stdout io.Writer
	Stderr io.Writer
}

const jobsUsage = `usage:
  stockdesk jobs trigger <stock:low_scan|analytics:warmup>
  stockdesk jobs stats [-json]`

// Run executes a jobs subcommand and returns the process exit code.
func (c *JobsCLI) Run(ctx context.Context, args []string, opts JobsOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if len(args) == 0 {
		_, _ = fmt.Fprintln(opts.Stderr, jobsUsage)
		return 2
	}
	switch args[0] {
	case "trigger":
		return c.runTrigger(ctx, args[1:], opts)
	case "stats":
		return c.runStats(args[1:], opts)
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "jobs: unknown subcommand %q\n%s\n", args[0], jobsUsage)
		return 2
	}
}

func (c *JobsCLI) runTrigger(ctx context.Context, args []string, opts JobsOptions) int {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(opts.Stderr, jobsUsage)
		return 2
	}
	info, err := c.trigger.Trigger(ctx, args[0])
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "jobs trigger: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(opts.Stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return 0
}

func (c *JobsCLI) runStats(args []string, opts JobsOptions) int {
	fs := flag.NewFlagSet("jobs stats", flag.ContinueOnError)
	fs.SetOutput(opts.Stderr)
	asJSON := fs.Bool("json", false, "print stats as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	stats, err := jobs.InspectQueue(c.inspector)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "jobs stats: %v\n", err)
		return 1
	}
	if *asJSON {
		if err := json.NewEncoder(opts.Stdout).Encode(stats); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "jobs stats: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	_, _ = fmt.Fprintf(opts.Stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d processed_today=%d failed_today=%d\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived, stats.Processed, stats.Failed)
	return 0
}
