package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/app"
	"github.com/Esysc/ansible-ws-logging/internal/common"
)

func newTestApp(t *testing.T, port, maxTries int) *app.App {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	cfg.Server.MaxPortTries = maxTries
	cfg.Logs.Dir = t.TempDir()

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(application.Close)
	return application
}

// occupyPort grabs an ephemeral port and keeps it held for the test.
func occupyPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })
	return listener.Addr().(*net.TCPAddr).Port
}

func TestStartRetriesNextPortWhenConfiguredPortTaken(t *testing.T) {
	taken := occupyPort(t)
	application := newTestApp(t, taken, 5)
	srv := New(application)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// The configured port is held, so the server must come up on one of
	// the following ports in the range.
	boundPort := 0
	deadline := time.Now().Add(3 * time.Second)
	for boundPort == 0 && time.Now().Before(deadline) {
		for candidate := taken + 1; candidate < taken+5; candidate++ {
			resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/health", candidate))
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				boundPort = candidate
				break
			}
		}
		if boundPort == 0 {
			time.Sleep(20 * time.Millisecond)
		}
	}
	require.NotZero(t, boundPort, "server never became reachable on a retry port")
	assert.Greater(t, boundPort, taken)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after shutdown")
	}
}

func TestStartFailsWhenPortRangeExhausted(t *testing.T) {
	taken := occupyPort(t)
	application := newTestApp(t, taken, 1)
	srv := New(application)

	err := srv.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind to any port")
}
