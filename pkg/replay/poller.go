package replay

import (
	"context"
	"time"
)

// DefaultPollInterval is how often WatchJob checks status by default.
const DefaultPollInterval = 2 * time.Second

// WatchJob polls a job until it reaches a terminal state or ctx is
// cancelled. onUpdate fires once per observed state, including the terminal
// one. Polls are serialized: a tick is skipped while the previous request is
// still in flight, so slow responses never pile up.
func (c *Client) WatchJob(ctx context.Context, jobID string, interval time.Duration, onUpdate func(Job)) (*Job, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var lastStatus string
	check := func() (*Job, error) {
		job, err := c.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status != lastStatus {
			lastStatus = job.Status
			if onUpdate != nil {
				onUpdate(*job)
			}
		}
		return job, nil
	}

	job, err := check()
	if err != nil {
		return nil, err
	}
	if job.Terminal() {
		return job, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
			job, err = check()
			if err != nil {
				// Transient poll failures are retried on the next tick.
				continue
			}
			if job.Terminal() {
				return job, nil
			}
		}
	}
}

// JobWatcher runs WatchJob in the background and exposes a stop handle.
type JobWatcher struct {
	cancel context.CancelFunc
	done   chan struct{}
	job    *Job
	err    error
}

// StartWatch begins polling jobID in a goroutine. Stop cancels it; Wait
// blocks for the result.
func (c *Client) StartWatch(ctx context.Context, jobID string, interval time.Duration, onUpdate func(Job)) *JobWatcher {
	ctx, cancel := context.WithCancel(ctx)
	w := &JobWatcher{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		w.job, w.err = c.WatchJob(ctx, jobID, interval, onUpdate)
	}()

	return w
}

// Stop cancels the watch.
func (w *JobWatcher) Stop() { w.cancel() }

// Wait blocks until the watch finishes and returns the last seen job.
func (w *JobWatcher) Wait() (*Job, error) {
	<-w.done
	return w.job, w.err
}
