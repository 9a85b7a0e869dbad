package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/jobs"
)

type stubTrigger struct{ names []string }

func (s *stubTrigger) Trigger(_ context.Context, name string) (*asynq.TaskInfo, error) {
	if _, err := jobs.NewTask(name); err != nil {
		return nil, err
	}
	s.names = append(s.names, name)
	return &asynq.TaskInfo{ID: "t1", Type: name, Queue: jobs.QueueDefault}, nil
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func run(c *JobsCLI, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := c.Run(context.Background(), args, JobsOptions{Stdout: &stdout, Stderr: &stderr})
	return code, stdout.String(), stderr.String()
}

func TestTriggerKnownJob(t *testing.T) {
	trigger := &stubTrigger{}
	c := &JobsCLI{trigger: trigger}

	code, out, _ := run(c, "trigger", jobs.TaskLowStockScan)

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "enqueued stock:low_scan id=t1")
	assert.Equal(t, []string{jobs.TaskLowStockScan}, trigger.names)
}

func TestTriggerUnknownJob(t *testing.T) {
	c := &JobsCLI{trigger: &stubTrigger{}}

	code, _, errOut := run(c, "trigger", "mail:send")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unsupported task")
}

func TestStatsJSON(t *testing.T) {
	c := &JobsCLI{inspector: stubInspector{info: &asynq.QueueInfo{Pending: 2, Active: 1}}}

	code, out, _ := run(c, "stats", "-json")

	require.Equal(t, 0, code)
	var stats jobs.QueueStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, jobs.QueueStats{Queue: jobs.QueueDefault, Pending: 2, Active: 1}, stats)
}

func TestStatsHuman(t *testing.T) {
	c := &JobsCLI{inspector: stubInspector{info: &asynq.QueueInfo{Retry: 4}}}

	code, out, _ := run(c, "stats")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "retry=4")
}

func TestStatsError(t *testing.T) {
	c := &JobsCLI{inspector: stubInspector{err: errors.New("redis down")}}

	code, _, errOut := run(c, "stats")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "redis down")
}

func TestUsage(t *testing.T) {
	code, _, errOut := run(&JobsCLI{})
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage:")

	code, _, _ = run(&JobsCLI{}, "purge")
	assert.Equal(t, 2, code)
}
