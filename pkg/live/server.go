// Package live implements the hot-reload protocol server. Connected
// runtimes receive a binary frame per recompiled component carrying the
// structural change list and the refreshed templates, so they can patch a
// mounted component tree without a full reload.
package live

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Server broadcasts reload frames to every connected runtime
type Server struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	sessions map[string]*Session
	nextID   uint64
}

// Session is one connected runtime
type Session struct {
	ID       string
	conn     *websocket.Conn
	sendChan chan []byte
	closeCh  chan struct{}
	once     sync.Once
}

// NewServer creates a live protocol server
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
	}
}

// HandleWebSocket upgrades a connection and runs its session
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live] upgrade failed: %v", err)
		return
	}

	session := s.addSession(conn)
	log.Printf("[Live] session %s connected", session.ID)
	go session.run(func() {
		s.removeSession(session.ID)
		log.Printf("[Live] session %s closed", session.ID)
	})
}

// Broadcast sends one frame to every connected session. Sessions with a
// full send queue are skipped rather than blocking the compile loop.
func (s *Server) Broadcast(ft FrameType, payload interface{}) error {
	frame, err := EncodeFrame(ft, payload)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		select {
		case session.sendChan <- frame:
		default:
			log.Printf("[Live] session %s send queue full, dropping frame", session.ID)
		}
	}
	return nil
}

// SessionCount returns the number of connected runtimes
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) addSession(conn *websocket.Conn) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	session := &Session{
		ID:       formatSessionID(s.nextID),
		conn:     conn,
		sendChan: make(chan []byte, 64),
		closeCh:  make(chan struct{}),
	}
	s.sessions[session.ID] = session
	return session
}

func (s *Server) removeSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// run pumps outgoing frames and drains the read side until the peer
// disconnects. onClose runs exactly once.
func (s *Session) run(onClose func()) {
	cleanup := func() {
		s.once.Do(func() {
			s.conn.Close()
			close(s.closeCh)
			onClose()
		})
	}
	defer cleanup()

	go s.writer()

	s.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Live] session %s unexpected close: %v", s.ID, err)
			}
			return
		}
	}
}

func (s *Session) writer() {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case frame := <-s.sendChan:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				log.Printf("[Live] session %s write failed: %v", s.ID, err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func formatSessionID(n uint64) string {
	return "s" + strconv.FormatUint(n, 16)
}
