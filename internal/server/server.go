// Package server exposes the pathfinding and map generation kernels to
// tooling clients over a WebSocket JSON protocol.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/gridkit/internal/config"
	"github.com/lawnchairsociety/gridkit/internal/logger"
	"github.com/lawnchairsociety/gridkit/internal/mapstore"
)

// Server answers grid queries over WebSocket connections.
type Server struct {
	config      *config.ServerConfig
	store       *mapstore.Store
	connLimiter *ConnLimiter
}

// New creates a server with the given configuration and optional map
// store (nil disables persistence ops).
func New(cfg *config.ServerConfig, store *mapstore.Store) *Server {
	return &Server{
		config:      cfg,
		store:       store,
		connLimiter: NewConnLimiter(cfg.Connections),
	}
}

// StartWebSocket starts the WebSocket listener on the given address.
// It blocks until the listener fails.
func (s *Server) StartWebSocket(address string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)

	logger.Info("WebSocket server listening", "address", address)
	return http.ListenAndServe(address, mux)
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := getRealIP(r)

	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.config.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.connLimiter.Release(clientIP)
		return
	}

	go s.handleConnection(wsConn, clientIP)
}

// handleConnection answers requests on one connection until it closes.
// When auth is configured, the first message must be a valid auth op
// before any query is served.
func (s *Server) handleConnection(conn *websocket.Conn, clientIP string) {
	defer func() {
		s.connLimiter.Release(clientIP)
		conn.Close()
	}()

	if s.config.WebSocket.MaxMessageSize > 0 {
		conn.SetReadLimit(s.config.WebSocket.MaxMessageSize)
	}

	authed := !s.authRequired()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logger.Debug("connection closed", "client_ip", clientIP, "error", err)
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			s.writeResponse(conn, errorResponse(KindValidation, "malformed request: "+err.Error()))
			continue
		}

		if !authed {
			if req.Op != "auth" {
				s.writeResponse(conn, errorResponse(KindAuth, "authentication required"))
				continue
			}
			if !s.checkToken(req.Token) {
				logger.Warning("auth failed", "client_ip", clientIP)
				s.writeResponse(conn, errorResponse(KindAuth, "invalid token"))
				return
			}
			authed = true
			s.writeResponse(conn, &Response{OK: true})
			continue
		}

		logger.Debug("request", "op", req.Op, "client_ip", clientIP)
		s.writeResponse(conn, s.handle(&req))
	}
}

func (s *Server) writeResponse(conn *websocket.Conn, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("failed to marshal response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}

// getRealIP extracts the real client IP from an HTTP request, checking
// proxy headers first for reverse proxy setups.
func getRealIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs: "client, proxy1, proxy2";
	// the first one is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if clientIP := strings.TrimSpace(strings.Split(xff, ",")[0]); clientIP != "" {
			return clientIP
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return extractIP(r.RemoteAddr)
}
