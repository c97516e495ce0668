package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const defaultPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// writeWSWithHeartbeat drains send into conn and writes a ping message
// whenever the connection has been idle for interval.
func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultPingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

type subscribeRequest struct {
	MatchID string `json:"match_id"`
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	client := &Client{send: make(chan []byte, 64), matchID: r.URL.Query().Get("match")}
	s.hub.Register(client)
	s.hub.sendJSON(client, wsMessage{Type: "hello", Payload: mustMarshal(s.matches.List())})

	interval := s.store.Get().Server.WSPingInterval
	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send, interval); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "subscribe":
			var req subscribeRequest
			if len(msg.Payload) > 0 {
				_ = json.Unmarshal(msg.Payload, &req)
			}
			if req.MatchID == "" {
				req.MatchID = msg.MatchID
			}
			s.hub.Subscribe(client, req.MatchID)
			s.hub.sendJSON(client, wsMessage{Type: "subscribed", MatchID: req.MatchID})
		case "request_matches":
			s.hub.sendJSON(client, wsMessage{Type: "matches", Payload: mustMarshal(s.matches.List())})
		}
	}
}
