package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"HelpBeacon/internal/store"
	"HelpBeacon/pkg/cache"
	"HelpBeacon/pkg/metrics"
	"HelpBeacon/pkg/sse"
	"HelpBeacon/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	engine *gin.Engine
	clock  *util.ManualClock
	stores *store.Stores
	hub    *sse.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := util.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	n := 0
	stores := store.New(clock, func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})

	idem, err := cache.NewCache(cache.Config{Type: "gocache"})
	require.NoError(t, err)

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	hub := sse.NewHub(time.Hour, sse.WithLogger(quiet))
	t.Cleanup(hub.Close)

	engine := gin.New()
	NewHandlers(stores, Options{
		Hub:            hub,
		Metrics:        metrics.NewMetrics(prometheus.NewRegistry()),
		MetricsPath:    "/metrics",
		Idempotency:    idem,
		IdempotencyTTL: time.Minute,
	}).Register(engine)

	return &testServer{engine: engine, clock: clock, stores: stores, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, msg), w.Body.String())
}

func presence(id string, lat, lng float64) gin.H {
	return gin.H{"id": id, "latitude": lat, "longitude": lng}
}

func TestLivenessAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	s.do(t, http.MethodPost, "/presence", presence("d1", 19.07, 72.88))
	w = s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[struct {
		Status     string         `json:"status"`
		Registries map[string]int `json:"registries"`
	}](t, w)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.Registries["presence"])
}

func TestPresenceReportAndNearby(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/presence", presence("d1", 19.07, 72.88))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/nearby-users?lat=19.07&lng=72.88&radiusKm=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]map[string]interface{}](t, w)
	require.Len(t, users, 1)
	assert.Equal(t, "d1", users[0]["id"])
	assert.Equal(t, "Guest user", users[0]["name"])
	assert.Equal(t, "Citizen", users[0]["profession"])
	assert.Less(t, users[0]["distanceKm"].(float64), 0.01)

	w = s.do(t, http.MethodGet, "/nearby-users?lat=19.07&lng=72.88&selfId=d1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPresenceExpires(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/presence", presence("d1", 19.07, 72.88))

	s.clock.Advance(store.PresenceTTL + time.Millisecond)
	w := s.do(t, http.MethodGet, "/nearby-users?lat=19.07&lng=72.88", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPresenceValidation(t *testing.T) {
	s := newTestServer(t)

	assertError(t, s.do(t, http.MethodPost, "/presence", gin.H{"latitude": 1, "longitude": 2}), http.StatusBadRequest, "id is required")
	assertError(t, s.do(t, http.MethodPost, "/presence", gin.H{"id": "d1", "longitude": 2}), http.StatusBadRequest, "latitude is required")
	assertError(t, s.do(t, http.MethodPost, "/presence", gin.H{"id": "d1", "latitude": "north", "longitude": 2}), http.StatusBadRequest, "latitude must be a number")
	assertError(t, s.do(t, http.MethodPost, "/presence", "{not json"), http.StatusBadRequest, "invalid JSON body")
	assertError(t, s.do(t, http.MethodPost, "/presence", ""), http.StatusBadRequest, "request body is required")

	for _, q := range []string{"", "lat=abc&lng=1", "lat=1", "lat=NaN&lng=1", "lat=1&lng=Inf"} {
		w := s.do(t, http.MethodGet, "/nearby-users?"+q, nil)
		assertError(t, w, http.StatusBadRequest, "lat and lng must be numbers")
	}
}

func TestRadiusParsing(t *testing.T) {
	s := newTestServer(t)
	// ~3.3 km north of the query point
	s.do(t, http.MethodPost, "/presence", presence("d1", 19.10, 72.88))

	count := func(radius string) int {
		w := s.do(t, http.MethodGet, "/nearby-users?lat=19.07&lng=72.88"+radius, nil)
		require.Equal(t, http.StatusOK, w.Code)
		return len(decode[[]map[string]interface{}](t, w))
	}
	assert.Equal(t, 1, count(""), "missing radius defaults to 5 km")
	assert.Equal(t, 1, count("&radiusKm="), "empty radius defaults to 5 km")
	assert.Equal(t, 1, count("&radiusKm=abc"), "unparseable radius defaults to 5 km")
	assert.Equal(t, 0, count("&radiusKm=1"))
	assert.Equal(t, 0, count("&radiusKm=0"))
	assert.Equal(t, 0, count("&radiusKm=-10"))
}

func TestMessagesPostAndList(t *testing.T) {
	s := newTestServer(t)

	post := func(text string, lat float64) *httptest.ResponseRecorder {
		return s.do(t, http.MethodPost, "/messages", gin.H{
			"fromId": "d1", "fromName": "Ana", "latitude": lat, "longitude": 72.88, "text": text,
		})
	}

	w := post(strings.Repeat("x", 600), 19.07)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[struct {
		OK      bool                   `json:"ok"`
		Message map[string]interface{} `json:"message"`
	}](t, w)
	assert.True(t, res.OK)
	assert.Equal(t, "id-1", res.Message["id"])
	assert.Equal(t, "Ana", res.Message["fromName"])
	assert.Equal(t, "Citizen", res.Message["profession"])
	assert.Len(t, res.Message["text"], 500)
	assert.Equal(t, float64(s.clock.Now().UnixMilli()), res.Message["createdAt"])

	s.clock.Advance(time.Second)
	post("second", 19.071)
	post("far away", 28.61)

	w = s.do(t, http.MethodGet, "/messages?lat=19.07&lng=72.88", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[[]map[string]interface{}](t, w)
	require.Len(t, msgs, 2)
	assert.Equal(t, "id-1", msgs[0]["id"])
	assert.Equal(t, "second", msgs[1]["text"])
}

func TestMessagesValidation(t *testing.T) {
	s := newTestServer(t)

	assertError(t, s.do(t, http.MethodPost, "/messages", gin.H{"fromId": "d1", "latitude": 1, "longitude": 1}), http.StatusBadRequest, "text is required")
	assertError(t, s.do(t, http.MethodPost, "/messages", gin.H{"latitude": 1, "longitude": 1, "text": "hi"}), http.StatusBadRequest, "fromId is required")
	assertError(t, s.do(t, http.MethodGet, "/messages?lat=x&lng=1", nil), http.StatusBadRequest, "lat and lng must be numbers")
}

func createAlert(t *testing.T, s *testServer, from string, lat float64) map[string]interface{} {
	t.Helper()
	w := s.do(t, http.MethodPost, "/help-alerts", gin.H{
		"fromId": from, "message": "need help", "latitude": lat, "longitude": 72.88,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[struct {
		OK    bool                   `json:"ok"`
		Alert map[string]interface{} `json:"alert"`
	}](t, w)
	require.True(t, res.OK)
	return res.Alert
}

func TestHelpAlertLifecycle(t *testing.T) {
	s := newTestServer(t)

	alert := createAlert(t, s, "d1", 19.07)
	id := alert["id"].(string)
	assert.Equal(t, "HELP", alert["type"])
	assert.Equal(t, "Guest user", alert["fromName"])
	for _, k := range []string{"phone", "acceptedById", "acceptedByName", "acceptedByPhone", "acceptedAt"} {
		v, ok := alert[k]
		assert.True(t, ok, "%s present", k)
		assert.Nil(t, v, "%s is null", k)
	}

	w := s.do(t, http.MethodGet, "/help-alerts/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[map[string]interface{}](t, w)["id"])

	w = s.do(t, http.MethodPost, "/help-alerts/"+id+"/accept", gin.H{"helperId": "d2"})
	require.Equal(t, http.StatusOK, w.Code)
	accepted := decode[struct {
		OK    bool                   `json:"ok"`
		Alert map[string]interface{} `json:"alert"`
	}](t, w)
	assert.True(t, accepted.OK)
	assert.Equal(t, "d2", accepted.Alert["acceptedById"])
	assert.Equal(t, "Helper", accepted.Alert["acceptedByName"])
	assert.NotNil(t, accepted.Alert["acceptedAt"])

	// re-acceptance silently reassigns
	w = s.do(t, http.MethodPost, "/help-alerts/"+id+"/accept", gin.H{"helperId": "d3", "helperName": "Ravi"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/help-alerts/"+id, nil)
	assert.Equal(t, "d3", decode[map[string]interface{}](t, w)["acceptedById"])

	s.clock.Advance(store.HelpAlertTTL + time.Millisecond)
	assertError(t, s.do(t, http.MethodGet, "/help-alerts/"+id, nil), http.StatusNotFound, "help alert not found")
	assertError(t, s.do(t, http.MethodPost, "/help-alerts/"+id+"/accept", gin.H{"helperId": "d2"}), http.StatusNotFound, "help alert not found")
}

func TestHelpAlertErrors(t *testing.T) {
	s := newTestServer(t)

	assertError(t, s.do(t, http.MethodPost, "/help-alerts", gin.H{"fromId": "d1", "latitude": 1, "longitude": 1}), http.StatusBadRequest, "message is required")
	assertError(t, s.do(t, http.MethodGet, "/help-alerts/nope", nil), http.StatusNotFound, "help alert not found")
	assertError(t, s.do(t, http.MethodPost, "/help-alerts/nope/accept", gin.H{}), http.StatusBadRequest, "helperId is required")
	assertError(t, s.do(t, http.MethodPost, "/help-alerts/nope/accept", gin.H{"helperId": "d2"}), http.StatusNotFound, "help alert not found")
	assertError(t, s.do(t, http.MethodGet, "/help-alerts?lat=1", nil), http.StatusBadRequest, "lat and lng must be numbers")
}

func TestHelpAlertsNewestFirstWithExclusion(t *testing.T) {
	s := newTestServer(t)

	first := createAlert(t, s, "d1", 19.07)
	s.clock.Advance(time.Second)
	second := createAlert(t, s, "d2", 19.071)
	s.clock.Advance(time.Second)
	createAlert(t, s, "d3", 28.61)

	w := s.do(t, http.MethodGet, "/help-alerts?lat=19.07&lng=72.88", nil)
	require.Equal(t, http.StatusOK, w.Code)
	alerts := decode[[]map[string]interface{}](t, w)
	require.Len(t, alerts, 2)
	assert.Equal(t, second["id"], alerts[0]["id"])
	assert.Equal(t, first["id"], alerts[1]["id"])

	w = s.do(t, http.MethodGet, "/help-alerts?lat=19.07&lng=72.88&excludeId=d2", nil)
	alerts = decode[[]map[string]interface{}](t, w)
	require.Len(t, alerts, 1)
	assert.Equal(t, first["id"], alerts[0]["id"])
}

func TestDirectMessages(t *testing.T) {
	s := newTestServer(t)
	alert := createAlert(t, s, "d1", 19.07)
	path := "/help-alerts/" + alert["id"].(string) + "/messages"

	w := s.do(t, http.MethodPost, path, gin.H{"fromId": "d2", "text": "on my way"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[struct {
		OK      bool                   `json:"ok"`
		Message map[string]interface{} `json:"message"`
	}](t, w)
	assert.True(t, res.OK)
	assert.Equal(t, "User", res.Message["fromName"])
	assert.Equal(t, alert["id"], res.Message["alertId"])

	s.clock.Advance(time.Second)
	s.do(t, http.MethodPost, path, gin.H{"fromId": "d1", "fromName": "Ana", "text": "thanks"})

	w = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[[]map[string]interface{}](t, w)
	require.Len(t, msgs, 2)
	assert.Equal(t, "on my way", msgs[0]["text"])
	assert.Equal(t, "thanks", msgs[1]["text"])

	// threads for unknown alerts are accepted and simply empty until written to
	w = s.do(t, http.MethodGet, "/help-alerts/unknown/messages", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
	w = s.do(t, http.MethodPost, "/help-alerts/unknown/messages", gin.H{"fromId": "d1", "text": "hello?"})
	assert.Equal(t, http.StatusOK, w.Code)

	assertError(t, s.do(t, http.MethodPost, path, gin.H{"fromId": "d1"}), http.StatusBadRequest, "text is required")
}

func TestIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"fromId": "d1", "latitude": 19.07, "longitude": 72.88, "text": "hi"}

	w := s.do(t, http.MethodPost, "/messages", body, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/messages", body, "Idempotency-Key", "k1")
	assertError(t, w, http.StatusConflict, "duplicate request")
	assert.Equal(t, 1, s.stores.Messages.Len())

	w = s.do(t, http.MethodPost, "/messages", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, s.stores.Messages.Len())
}

func TestIdempotencyKeyReusableAfterRejectedRequest(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/help-alerts", gin.H{"fromId": "d1", "latitude": 1, "longitude": 1}, "Idempotency-Key", "k1")
	assertError(t, w, http.StatusBadRequest, "message is required")
	assert.Equal(t, 0, s.stores.Alerts.Len())

	body := gin.H{"fromId": "d1", "latitude": 1, "longitude": 1, "message": "help"}
	w = s.do(t, http.MethodPost, "/help-alerts", body, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.stores.Alerts.Len())

	w = s.do(t, http.MethodPost, "/help-alerts", body, "Idempotency-Key", "k1")
	assertError(t, w, http.StatusConflict, "duplicate request")
	assert.Equal(t, 1, s.stores.Alerts.Len())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/help-alerts/nope", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `beacon_operations_total{operation="alert.get",status="not_found"} 1`)
}

func TestStreamRequiresScope(t *testing.T) {
	s := newTestServer(t)

	assertError(t, s.do(t, http.MethodGet, "/stream", nil), http.StatusBadRequest, "lat/lng or alertId is required")
	assertError(t, s.do(t, http.MethodGet, "/stream?lat=abc&lng=1", nil), http.StatusBadRequest, "lat and lng must be numbers")
	assertError(t, s.do(t, http.MethodGet, "/ws?lng=1", nil), http.StatusBadRequest, "lat and lng must be numbers")
	assert.Equal(t, 0, s.hub.Len())
}

func TestStreamDeliversThreadEvents(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream?alertId=a1&clientId=phone-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	w := s.do(t, http.MethodPost, "/help-alerts/a1/messages", gin.H{"fromId": "d2", "text": "on my way"})
	require.Equal(t, http.StatusOK, w.Code)

	reader := bufio.NewReader(resp.Body)
	var event, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimPrefix(line, "data:")
		}
	}
	assert.Equal(t, sse.EventDirectMessage, event)
	assert.Contains(t, data, `"text":"on my way"`)
}
