// Package netdebug exposes the Hydro debugger console over WebSocket
// (spec section 4.10's remote debug transport), grounded on
// `internal/network/websocket_server.go`'s upgrade-then-pump-messages
// pattern. It never reimplements console command handling: each session
// wires a *hydro.Debugger to an io.Pipe so the package's existing
// stdin/stdout-shaped runConsole loop drives the socket unmodified.
package netdebug

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hydro/internal/hydro"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Session is one connected remote debugging client: a Debugger instance
// plumbed to the socket via an in-process pipe, plus the socket itself so
// Server can close it on teardown.
type Session struct {
	ID       uuid.UUID
	Debugger *hydro.Debugger

	conn *websocket.Conn
	pw   *io.PipeWriter
}

// socketWriter adapts a *websocket.Conn to io.Writer by sending each Write
// call as its own text frame, which is what the Debugger's fmt.Fprint*
// calls to `out` expect to behave like.
type socketWriter struct{ conn *websocket.Conn }

func (w socketWriter) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Server tracks active remote debugging sessions, one per accepted
// WebSocket connection.
type Server struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewServer() *Server {
	return &Server{sessions: make(map[uuid.UUID]*Session)}
}

// Accept upgrades an incoming HTTP request to a WebSocket and builds a
// Session around it. The caller is responsible for driving the session's
// Debugger through a Module.Debug call (typically in its own goroutine);
// Accept only wires the transport, it does not start execution.
func (s *Server) Accept(w http.ResponseWriter, r *http.Request) (*Session, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("netdebug: upgrading connection: %w", err)
	}

	pr, pw := io.Pipe()
	session := &Session{
		ID:       uuid.New(),
		Debugger: hydro.NewDebugger(socketWriter{conn}, pr),
		conn:     conn,
		pw:       pw,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	go session.pumpInbound()

	return session, nil
}

// pumpInbound relays every inbound text message into the pipe feeding the
// Debugger's blocking ReadString('\n') call, appending the newline the
// wire protocol doesn't otherwise carry.
func (s *Session) pumpInbound() {
	defer s.pw.Close()
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if _, err := s.pw.Write(append(msg, '\n')); err != nil {
			return
		}
	}
}

// Close tears down a session's socket and unblocks any pending read on its
// Debugger's input pipe.
func (s *Server) Close(session *Session) {
	s.mu.Lock()
	delete(s.sessions, session.ID)
	s.mu.Unlock()

	session.pw.Close()
	if err := session.conn.Close(); err != nil {
		log.Printf("netdebug: closing session %s: %v", session.ID, err)
	}
}

// Sessions returns the IDs of every currently connected remote debugging
// session, used by a `GET /sessions` introspection endpoint.
func (s *Server) Sessions() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
