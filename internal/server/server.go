// Package server exposes the match coordinator over HTTP + websocket. Each
// client holds one persistent websocket: the server streams MatchEvents
// down it, and the client sends its unary requests (build, send units,
// ack) up the same connection as typed JSON envelopes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roundhold/roundhold/internal/match"
	"github.com/roundhold/roundhold/internal/protocol"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second

	// idlePoll is how often the write pump wakes without events to check
	// liveness and, while unmatched, emit a queue update.
	idlePoll = 1 * time.Second
)

// Config holds the transport settings.
type Config struct {
	Addr        string // host:port, default 0.0.0.0:42069
	MaxSessions int    // concurrent client cap, default 10
}

// Server is the network front of one Roundhold process.
type Server struct {
	config      Config
	coordinator *match.Coordinator
	logger      *log.Logger
	httpServer  *http.Server
	upgrader    websocket.Upgrader

	mu       sync.Mutex
	sessions int
}

// New creates a server bound to the given coordinator.
func New(cfg Config, coordinator *match.Coordinator, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:42069"
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 10
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "roundhold"})
	}

	s := &Server{
		config:      cfg,
		coordinator: coordinator,
		logger:      logger,
		upgrader: websocket.Upgrader{
			// LAN game: clients are trusted to come from anywhere on the
			// local network.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	s.httpServer = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving clients until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.config.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting clients, tears down all matches and closes the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.coordinator.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) acquireSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions >= s.config.MaxSessions {
		return false
	}
	s.sessions++
	return true
}

func (s *Server) releaseSession() {
	s.mu.Lock()
	s.sessions--
	s.mu.Unlock()
}

// conn wraps a websocket with a write lock; the read loop (responses) and
// the write pump (events) share it.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// handleWS runs one client session: upgrade, queue, then pump events down
// and requests up until the connection dies.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.acquireSession() {
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}
	defer s.releaseSession()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &conn{ws: ws}
	defer ws.Close()

	clientID := uuid.NewString()
	logger := s.logger.With("client", clientID[:8])

	// The first message must queue the client for a match.
	req, err := s.readQueueRequest(ws)
	if err != nil {
		logger.Warn("bad handshake", "error", err)
		return
	}
	outbox, err := s.coordinator.Queue(clientID, req.Name)
	if err != nil {
		logger.Warn("queue rejected", "error", err)
		return
	}
	logger.Info("client connected", "name", req.Name, "remote", ws.RemoteAddr().String())

	done := make(chan struct{})
	go s.writePump(c, outbox, clientID, done, logger)

	s.readLoop(c, clientID, logger)

	// Read loop exit means the client is gone.
	close(done)
	s.coordinator.Disconnect(clientID)
	logger.Info("client disconnected")
}

func (s *Server) readQueueRequest(ws *websocket.Conn) (protocol.QueueRequest, error) {
	var queueReq protocol.QueueRequest
	_, data, err := ws.ReadMessage()
	if err != nil {
		return queueReq, err
	}
	var env protocol.ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return queueReq, fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Type != protocol.MsgQueueForMatch {
		return queueReq, fmt.Errorf("expected %s, got %q", protocol.MsgQueueForMatch, env.Type)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &queueReq); err != nil {
			return queueReq, fmt.Errorf("malformed queue request: %w", err)
		}
	}
	return queueReq, nil
}

// writePump drains the client's outbox into the websocket, in order. While
// the client is unmatched it emits a periodic queue update so the client
// can render a waiting screen.
func (s *Server) writePump(c *conn, outbox *match.Outbox, clientID string, done <-chan struct{}, logger *log.Logger) {
	ticker := time.NewTicker(idlePoll)
	defer ticker.Stop()

	flush := func() bool {
		for _, ev := range outbox.Drain() {
			data, err := protocol.EncodeEvent(ev)
			if err != nil {
				logger.Error("event encode failed", "error", err)
				continue
			}
			if err := c.write(data); err != nil {
				return false
			}
		}
		return true
	}

	for {
		select {
		case <-done:
			return
		case <-outbox.Ready():
			if !flush() {
				return
			}
			if outbox.Closed() {
				return
			}
		case <-ticker.C:
			if outbox.Closed() {
				flush()
				return
			}
			if !s.coordinator.InMatch(clientID) {
				data, err := protocol.EncodeEvent(protocol.QueueUpdate{Message: "Waiting for another player..."})
				if err == nil {
					if err := c.write(data); err != nil {
						return
					}
				}
			}
		}
	}
}

// readLoop handles unary requests until the connection errors or closes.
func (s *Server) readLoop(c *conn, clientID string, logger *log.Logger) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var env protocol.ClientEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Warn("malformed request", "error", err)
			continue
		}

		switch env.Type {
		case protocol.MsgBuildTower:
			var req protocol.BuildTowerRequest
			if err := json.Unmarshal(env.Data, &req); err != nil {
				logger.Warn("malformed build request", "error", err)
				continue
			}
			_, err := s.coordinator.BuildTower(clientID, req)
			if err != nil {
				logger.Debug("build rejected", "error", err)
			}
			s.respond(c, protocol.MsgBuildTower, err, clientID, logger)

		case protocol.MsgSendUnits:
			var req protocol.SendUnitsRequest
			if err := json.Unmarshal(env.Data, &req); err != nil {
				logger.Warn("malformed units request", "error", err)
				continue
			}
			err := s.coordinator.SendUnits(clientID, req)
			if err != nil {
				logger.Debug("send units rejected", "error", err)
			}
			s.respond(c, protocol.MsgSendUnits, err, clientID, logger)

		case protocol.MsgRoundAck:
			var req protocol.RoundAckRequest
			if err := json.Unmarshal(env.Data, &req); err != nil {
				logger.Warn("malformed ack request", "error", err)
				continue
			}
			err := s.coordinator.RoundAck(clientID, req)
			s.respond(c, protocol.MsgRoundAck, err, clientID, logger)

		case protocol.MsgQueueForMatch:
			// Already queued at handshake.
			s.respond(c, protocol.MsgQueueForMatch, nil, clientID, logger)

		default:
			logger.Warn("unknown request type", "type", env.Type)
		}
	}
}

func (s *Server) respond(c *conn, op string, err error, clientID string, logger *log.Logger) {
	resp := protocol.NewActionResponse(op, err, s.coordinator.Gold(clientID))
	if werr := c.writeJSON(resp); werr != nil {
		logger.Debug("response write failed", "op", op, "error", werr)
	}
}
