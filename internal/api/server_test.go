package api

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/pkg/config"
	"github.com/wonny/moatscreen/pkg/logger"
)

func TestServerStartShutdown(t *testing.T) {
	cfg := &config.Config{Port: "0", Env: "test"}
	router := http.HandlerFunc(healthCheckHandler)
	srv := New(cfg, logger.Nop(), router)

	var hookCalled int32
	srv.OnShutdown(func() { atomic.StoreInt32(&hookCalled, 1) })

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-errCh)

	// RegisterOnShutdown 훅은 별도 goroutine에서 실행
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&hookCalled) == 1 }, time.Second, 10*time.Millisecond)
}

func TestServerStart_BadPort(t *testing.T) {
	srv := New(&config.Config{Port: "-1"}, logger.Nop(), http.NotFoundHandler())
	assert.Error(t, srv.Start())
}
