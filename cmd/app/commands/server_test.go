package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer blocks in Start until Shutdown is called or startErr is returned.
type fakeServer struct {
	startErr    error
	shutdownErr error
	stopped     chan struct{}
	shutdowns   atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{stopped: make(chan struct{})}
}

func (f *fakeServer) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return nil
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.stopped)
	}
	return f.shutdownErr
}

func TestServe(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("stops every server when context is cancelled", func(t *testing.T) {
		api, metricsSrv := newFakeServer(), newFakeServer()
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, logger, map[string]runnable{"api": api, "metrics": metricsSrv})
		}()

		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not return after cancellation")
		}
		assert.Equal(t, int32(1), api.shutdowns.Load())
		assert.Equal(t, int32(1), metricsSrv.shutdowns.Load())
	})

	t.Run("one failing server stops the others", func(t *testing.T) {
		api := newFakeServer()
		broken := newFakeServer()
		broken.startErr = errors.New("address already in use")

		err := serve(context.Background(), logger, map[string]runnable{"api": api, "metrics": broken})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics server error")
		assert.Equal(t, int32(1), api.shutdowns.Load())
	})

	t.Run("reports shutdown errors", func(t *testing.T) {
		api := newFakeServer()
		api.shutdownErr = errors.New("connections still open")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := serve(ctx, logger, map[string]runnable{"api": api})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api server shutdown")
	})
}
