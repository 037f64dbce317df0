package live

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/recera/seurat/pkg/input"
	"github.com/recera/seurat/pkg/scene"
	"github.com/recera/seurat/pkg/view"
)

const (
	sendBuffer   = 256
	writeWait    = 10 * time.Second
	pongWait     = 300 * time.Second
	pingInterval = 54 * time.Second
)

// Server fans one view out to WebSocket sessions. It owns the view's
// frame callback and selection events channel; inbound messages from
// every session funnel into the view's single-writer API.
type Server struct {
	view *view.View

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	sessions map[string]*Session

	stateMu sync.Mutex
	lastTip view.Tooltip
	lastCam input.Camera

	done      chan struct{}
	closeOnce sync.Once
}

// Session is one WebSocket connection.
type Session struct {
	ID     string
	server *Server
	conn   *websocket.Conn

	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

// NewServer wires a server to a view and starts its event pump.
func NewServer(v *view.View) *Server {
	s := &Server{
		view: v,
		upgrader: websocket.Upgrader{
			// Local tool; any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
		lastCam:  v.Camera(),
		done:     make(chan struct{}),
	}
	v.OnFrame(s.publishFrame)
	go s.pumpEvents()
	return s
}

// Close stops the pumps and disconnects every session. The view
// itself keeps running.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.view.OnFrame(nil)

		s.mu.Lock()
		sessions := make([]*Session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.sessions = make(map[string]*Session)
		s.mu.Unlock()

		for _, sess := range sessions {
			sess.cleanup()
		}
	})
}

// HandleWebSocket upgrades the request and runs the session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live] Failed to upgrade connection: %v", err)
		return
	}

	sess := &Session{
		ID:        uuid.NewString(),
		server:    s,
		conn:      conn,
		sendChan:  make(chan []byte, sendBuffer),
		closeChan: make(chan struct{}),
	}
	s.addSession(sess)
	go sess.run()
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	log.Printf("[Live Session %s] Connected", sess.ID)
}

func (s *Server) removeSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	log.Printf("[Live Session %s] Disconnected", id)
}

// broadcast queues data on every session without blocking.
func (s *Server) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		sess.send(data)
	}
}

// publishFrame runs on the view's driver goroutine after every tick.
func (s *Server) publishFrame(f scene.Frame) {
	data, err := encodeFrame(f)
	if err != nil {
		log.Printf("[Live] Failed to encode frame: %v", err)
		return
	}
	s.broadcast(data)
}

// pumpEvents forwards selection notifications to every session.
func (s *Server) pumpEvents() {
	for {
		select {
		case <-s.done:
			return
		case e := <-s.view.Events():
			if e.Type != view.EventNodeSelected {
				continue
			}
			data, err := encodeSelected(e.NodeID)
			if err != nil {
				continue
			}
			s.broadcast(data)
		}
	}
}

// greet sends the current scene and camera to a new session.
func (s *Server) greet(sess *Session) {
	if data, err := encodeScene(s.view); err == nil {
		sess.send(data)
	}
	cam := s.view.Camera()
	if data, err := encodeCamera(cam.X, cam.Y, cam.K); err == nil {
		sess.send(data)
	}
}

func (s *Server) broadcastScene() {
	data, err := encodeScene(s.view)
	if err != nil {
		log.Printf("[Live] Failed to encode scene: %v", err)
		return
	}
	s.broadcast(data)
}

// PublishScene pushes the current scene to every session. Callers that
// replace the snapshot outside the wire protocol, like a file watcher,
// use this to bring connected displays up to date.
func (s *Server) PublishScene() {
	s.broadcastScene()
	s.syncPointerState()
}

func (s *Server) sendError(sess *Session, err error) {
	if data, encErr := encodeError(err); encErr == nil {
		sess.send(data)
	}
}

// handleMessage dispatches one inbound frame. Rejections go back to
// the sender only; accepted changes reach everyone.
func (s *Server) handleMessage(sess *Session, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(sess, fmt.Errorf("malformed message: %w", err))
		return
	}

	switch msg.Type {
	case MsgUpdateGraph:
		if err := s.view.UpdateGraph(msg.Graph); err != nil {
			log.Printf("[Live Session %s] Rejected graph update: %v", sess.ID, err)
			s.sendError(sess, err)
			return
		}
		s.broadcastScene()

	case MsgResize:
		s.view.Resize(msg.Width, msg.Height)

	case MsgPointerDown:
		s.view.PointerDown(msg.X, msg.Y)
		s.syncPointerState()

	case MsgPointerMove:
		s.view.PointerMove(msg.X, msg.Y)
		s.syncPointerState()

	case MsgPointerUp:
		s.view.PointerUp(msg.X, msg.Y)
		s.syncPointerState()

	case MsgWheel:
		s.view.Wheel(msg.X, msg.Y, msg.DeltaY)
		s.syncPointerState()

	case MsgSelect:
		if err := s.view.SelectNode(msg.NodeID); err != nil {
			s.sendError(sess, err)
		}

	default:
		s.sendError(sess, fmt.Errorf("unknown message type %q", msg.Type))
	}
}

// syncPointerState broadcasts tooltip and camera changes after a
// pointer gesture, skipping anything that did not move.
func (s *Server) syncPointerState() {
	tip := s.view.Tooltip()
	cam := s.view.Camera()

	s.stateMu.Lock()
	tipChanged := tip != s.lastTip
	camChanged := cam.X != s.lastCam.X || cam.Y != s.lastCam.Y || cam.K != s.lastCam.K
	s.lastTip = tip
	s.lastCam = cam
	s.stateMu.Unlock()

	if tipChanged {
		if data, err := encodeTooltip(tip); err == nil {
			s.broadcast(data)
		}
	}
	if camChanged {
		if data, err := encodeCamera(cam.X, cam.Y, cam.K); err == nil {
			s.broadcast(data)
		}
	}
}

// run reads messages until the connection drops, then cleans up.
func (sess *Session) run() {
	defer sess.cleanup()

	go sess.writer()
	sess.server.greet(sess)

	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Live Session %s] Unexpected close: %v", sess.ID, err)
			}
			return
		}
		sess.server.handleMessage(sess, data)
	}
}

// writer drains the send queue onto the wire and keeps the
// connection alive with pings.
func (sess *Session) writer() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-sess.sendChan:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sess.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sess.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Live Session %s] Failed to write message: %v", sess.ID, err)
				return
			}

		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-sess.closeChan:
			return
		}
	}
}

// send queues data without blocking the engine.
func (sess *Session) send(data []byte) {
	select {
	case sess.sendChan <- data:
	default:
		log.Printf("[Live Session %s] Send buffer full, dropping message", sess.ID)
	}
}

func (sess *Session) cleanup() {
	sess.closeOnce.Do(func() {
		sess.conn.Close()
		close(sess.closeChan)
		sess.server.removeSession(sess.ID)
	})
}
