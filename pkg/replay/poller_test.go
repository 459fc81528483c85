package replay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobServer(t *testing.T, statuses []string, delay time.Duration) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if delay > 0 {
			time.Sleep(delay)
		}
		idx := int(n) - 1
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		json.NewEncoder(w).Encode(Job{ID: "j1", Status: statuses[idx]})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestWatchJobStopsAtTerminalState(t *testing.T) {
	srv, _ := jobServer(t, []string{"queued", "processing", "processing", "completed"}, 0)
	c := NewClient(srv.URL, WithToken("tok"))

	var seen []string
	job, err := c.WatchJob(context.Background(), "j1", 10*time.Millisecond, func(j Job) {
		seen = append(seen, j.Status)
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", job.Status)
	// onUpdate fires once per distinct state, terminal included.
	assert.Equal(t, []string{"queued", "processing", "completed"}, seen)
}

func TestWatchJobImmediateTerminal(t *testing.T) {
	srv, calls := jobServer(t, []string{"failed"}, 0)
	c := NewClient(srv.URL)

	job, err := c.WatchJob(context.Background(), "j1", 10*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, "failed", job.Status)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestWatchJobCancellation(t *testing.T) {
	srv, _ := jobServer(t, []string{"processing"}, 0)
	c := NewClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(40 * time.Millisecond)
		cancel()
	}()

	_, err := c.WatchJob(ctx, "j1", 10*time.Millisecond, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatchJobDoesNotOverlapSlowPolls(t *testing.T) {
	// Each poll takes 50ms against a 10ms interval; ticks during an
	// in-flight request are absorbed by the serialized loop.
	srv, calls := jobServer(t, []string{"processing", "processing", "completed"}, 50*time.Millisecond)
	c := NewClient(srv.URL)

	start := time.Now()
	job, err := c.WatchJob(context.Background(), "j1", 10*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, "completed", job.Status)
	assert.EqualValues(t, 3, atomic.LoadInt32(calls))
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestStartWatchStop(t *testing.T) {
	srv, _ := jobServer(t, []string{"processing"}, 0)
	c := NewClient(srv.URL)

	w := c.StartWatch(context.Background(), "j1", 10*time.Millisecond, nil)
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	job, err := w.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, job)
	assert.Equal(t, "processing", job.Status)
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": 0, "code": 404, "message": "not found or access denied",
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	_, err := c.GetJob(context.Background(), "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not found or access denied", apiErr.Message)
}
