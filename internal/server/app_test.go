package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = config.MemoryDSN
	cfg.BcryptCost = bcrypt.MinCost
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.EndpointAddrMetrics = "127.0.0.1:0"
	cfg.EndpointAddrGRPC = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.RefreshTokenSecret = cfg.AccessTokenSecret

	_, err := NewApp(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewApp_MemoryStoreServesAPIAndMetrics(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	assert.Nil(t, app.db)

	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	families, err := app.registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["taskkeeper_http_requests_total"])
	assert.True(t, names["go_goroutines"])
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop within timeout after context cancel")
	}
}
