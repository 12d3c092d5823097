package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// StreamRequest is sent by the client to start a report build.
type StreamRequest struct {
	Ticker string `json:"ticker"`
}

// StreamError is sent when a build fails or is cut short. Report carries
// whatever was built before the failure.
type StreamError struct {
	Type   string         `json:"type"`
	Ticker string         `json:"ticker,omitempty"`
	Error  string         `json:"error"`
	Report *report.Report `json:"report,omitempty"`
}

// handleWebSocket upgrades the connection and runs one build per request
// message, streaming each progress event as a JSON text frame. Builds on a
// connection run one at a time, in the order requested.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan StreamRequest, 4)
	go s.wsReadPump(ctx, conn, requests, cancel)
	go wsPing(ctx, conn)

	for req := range requests {
		if err := s.streamReport(ctx, conn, req.Ticker); err != nil {
			s.log.Debug("websocket write failed", logger.ErrorField(err))
			return
		}
	}
}

// wsReadPump decodes client requests until the connection drops. A frame that
// is not a valid request is passed on as a blank ticker.
func (s *Server) wsReadPump(ctx context.Context, conn *websocket.Conn, out chan<- StreamRequest, cancel context.CancelFunc) {
	defer func() {
		cancel()
		close(out)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", logger.ErrorField(err))
			}
			return
		}

		var req StreamRequest
		if err := json.Unmarshal(message, &req); err != nil {
			req = StreamRequest{}
		}
		select {
		case out <- req:
		case <-ctx.Done():
			return
		}
	}
}

// wsPing keeps the connection alive until ctx ends.
func wsPing(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// streamReport runs one build and writes its events to conn. It returns an
// error only when the connection can no longer be written to.
func (s *Server) streamReport(ctx context.Context, conn *websocket.Conn, ticker string) error {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	var writeErr error
	rep, err := s.builder.BuildWithObserver(ctx, ticker, func(ev report.Event) {
		if writeErr != nil {
			return
		}
		if writeErr = wsWrite(conn, ev); writeErr != nil {
			cancel()
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if err == nil {
		return nil
	}

	msg := StreamError{Type: "error", Ticker: ticker, Error: err.Error(), Report: rep}
	if rep != nil {
		msg.Ticker = rep.Ticker
	}
	return wsWrite(conn, msg)
}

func wsWrite(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
