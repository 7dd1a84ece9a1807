package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/internal/api/handlers"
	"github.com/wonny/moatscreen/internal/api/ws"
	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/screening"
	"github.com/wonny/moatscreen/pkg/logger"
)

func TestReportsWebsocketThroughRouter(t *testing.T) {
	hub := ws.NewHub(logger.Nop())
	defer hub.Close()

	quotes := &stubQuotes{payloads: map[string]contracts.SecurityPayload{"KO": koPayload()}}
	svc, err := screening.NewService(quotes, nil, screening.WithNotifier(hub))
	require.NoError(t, err)

	router := NewRouter(handlers.NewScreeningHandler(svc, nil, logger.Nop()), hub, logger.Nop())
	server := httptest.NewServer(router)
	defer server.Close()

	// logging middleware 를 거쳐도 업그레이드 가능해야 함
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws/reports", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	resp, err := http.Post(server.URL+"/api/portfolio/analyze", "application/json", bytes.NewBufferString(`{"tickers":["KO"]}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev ws.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, ws.EventRunCompleted, ev.Type)
	assert.Equal(t, 1, ev.Stats.Total)
}

func TestStatusRecorder(t *testing.T) {
	h := loggingMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	sr := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _, err := sr.Hijack()
	assert.Error(t, err, "ResponseRecorder cannot be hijacked")
}
