package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/agent"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/config"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/eval"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/referee"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	s := New(config.NewStore(cfg), nil)
	t.Cleanup(s.Close)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestPing(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestAnalyzePathEmptyBoard(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/api/analyze/path", `{"n": 5, "board": []}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got pathResponse
	decode(t, resp, &got)
	assert.Equal(t, board.Blue, got.Color)
	assert.True(t, got.Reachable)
	assert.Equal(t, 5, got.Cost)
	assert.Len(t, got.Missing, 5)
}

func TestAnalyzePathVariants(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/api/analyze/path?color=red", `{"n": 3, "board": [["b",1,0],["b",1,1],["b",1,2]]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var blocked pathResponse
	decode(t, resp, &blocked)
	assert.False(t, blocked.Reachable)
	assert.Equal(t, -1, blocked.Cost)

	resp = post(t, ts.URL+"/api/analyze/path", `{"n": 5, "board": [["b",2,1]], "start": [2,0], "goal": [2,3]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var between pathResponse
	decode(t, resp, &between)
	require.NotNil(t, between.Start)
	assert.Equal(t, board.Coord{R: 2, Q: 0}, *between.Start)
	assert.Equal(t, 3, between.Cost)

	resp = post(t, ts.URL+"/api/analyze/path?color=green", `{"n": 3, "board": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/analyze/path", `{"n": 3, "board": [["r", 9, 9]]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeMoveFindsWin(t *testing.T) {
	_, ts := newTestServer(t, nil)
	body := `{"document": {"n": 3, "board": [["r",0,1],["r",1,1]]}, "color": "red", "budget_ms": 500}`
	resp := post(t, ts.URL+"/api/analyze/move", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got moveResponse
	decode(t, resp, &got)
	assert.False(t, got.Action.IsSteal())
	assert.Equal(t, 2, got.Action.Coord.R)
	assert.Equal(t, search.SourceSearch, got.Source)
	assert.Greater(t, got.Score, float64(eval.HeuristicLimit))
	assert.Equal(t, 2, got.Features.Pieces)
}

func TestAnalyzeMoveErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/api/analyze/move", `{"document": {"n": 1, "board": [["b",0,0]]}}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = post(t, ts.URL+"/api/analyze/move", `{"document": {"n": 3, "board": []}, "preset": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/analyze/move", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeRateLimited(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.Server.AnalyzeRate = 0.001
		c.Server.AnalyzeBurst = 1
	})
	first := post(t, ts.URL+"/api/analyze/path", `{"n": 3, "board": []}`)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	second := post(t, ts.URL+"/api/analyze/path", `{"n": 3, "board": []}`)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)

	// Other routes are not limited.
	resp, err := http.Get(ts.URL + "/api/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLimiterFollowsConfigReload(t *testing.T) {
	s, ts := newTestServer(t, func(c *config.Config) {
		c.Server.AnalyzeRate = 0.001
		c.Server.AnalyzeBurst = 1
	})
	post(t, ts.URL+"/api/analyze/path", `{"n": 3, "board": []}`)

	cfg := s.store.Get()
	cfg.Server.AnalyzeRate = 1000
	cfg.Server.AnalyzeBurst = 100
	s.store.Update(cfg)
	resp := post(t, ts.URL+"/api/analyze/path", `{"n": 3, "board": []}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

const quickMatch = `{"size": 3, "red": {"strategy": "straight-line"}, "blue": {"strategy": "first-empty"}}`

func waitForMatch(t *testing.T, baseURL, id string) MatchDetail {
	t.Helper()
	var detail MatchDetail
	require.Eventually(t, func() bool {
		resp, err := http.Get(baseURL + "/api/matches/" + id)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if json.NewDecoder(resp.Body).Decode(&detail) != nil {
			return false
		}
		return detail.Outcome.Finished()
	}, 10*time.Second, 20*time.Millisecond)
	return detail
}

func TestMatchLifecycle(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := post(t, ts.URL+"/api/matches", quickMatch)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var summary MatchSummary
	decode(t, resp, &summary)
	require.NotEmpty(t, summary.ID)
	assert.Equal(t, agent.StrategyStraightLine, summary.Red.Strategy)

	detail := waitForMatch(t, ts.URL, summary.ID)
	assert.Equal(t, referee.ReasonConnection, detail.Outcome.Reason)
	assert.Len(t, detail.History, detail.Outcome.Turns)
	assert.Equal(t, 3, detail.Board.N)

	list, err := http.Get(ts.URL + "/api/matches")
	require.NoError(t, err)
	defer list.Body.Close()
	var all []MatchSummary
	decode(t, list, &all)
	require.Len(t, all, 1)
	assert.Equal(t, summary.ID, all[0].ID)

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	text, _ := io.ReadAll(metrics.Body)
	assert.Contains(t, string(text), "cachex_match_results_total")
}

func TestMatchErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/matches/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	bad := post(t, ts.URL+"/api/matches", `{"size": 3, "red": {"strategy": "telepathy"}}`)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	bad = post(t, ts.URL+"/api/matches", `{"size": 500}`)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestMatchesArePruned(t *testing.T) {
	s, ts := newTestServer(t, func(c *config.Config) { c.Server.MaxMatches = 1 })
	var first MatchSummary
	decode(t, post(t, ts.URL+"/api/matches", quickMatch), &first)
	waitForMatch(t, ts.URL, first.ID)
	post(t, ts.URL+"/api/matches", quickMatch)

	_, err := s.matches.Get(first.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.Len(t, s.matches.List(), 1)
}

func TestWebsocketFeed(t *testing.T) {
	s, ts := newTestServer(t, nil)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/matches"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	var hello wsMessage
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "hello", hello.Type)
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	var summary MatchSummary
	decode(t, post(t, ts.URL+"/api/matches", quickMatch), &summary)

	var kinds []referee.EventKind
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != "match_event" {
			continue
		}
		assert.Equal(t, summary.ID, msg.MatchID)
		var ev matchEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		kinds = append(kinds, ev.Kind)
		if ev.Kind == referee.EventEnd {
			require.NotNil(t, ev.Outcome)
			assert.True(t, ev.Outcome.Finished())
			break
		}
	}
	assert.Equal(t, referee.EventStart, kinds[0])
}

func TestWebsocketSubscribeFilters(t *testing.T) {
	_, ts := newTestServer(t, nil)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/matches"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	var hello wsMessage
	require.NoError(t, conn.ReadJSON(&hello))
	require.NoError(t, conn.WriteJSON(wsMessage{Type: "subscribe", MatchID: "nobody"}))
	var ack wsMessage
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "subscribed", ack.Type)

	var summary MatchSummary
	decode(t, post(t, ts.URL+"/api/matches", quickMatch), &summary)
	waitForMatch(t, ts.URL, summary.ID)

	require.NoError(t, conn.WriteJSON(wsMessage{Type: "request_matches"}))
	var reply wsMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "matches", reply.Type, "events for other matches must not arrive")
}

func TestHeartbeatPingsWhenIdle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		send := make(chan []byte)
		go func() {
			time.Sleep(150 * time.Millisecond)
			close(send)
		}()
		_ = writeWSWithHeartbeat(conn, send, 20*time.Millisecond)
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte(`"ping"`)))
}
