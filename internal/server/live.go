package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/4TheSolutions/nest/pkg/scene"
)

var upgrader = websocket.Upgrader{
	// The API serves localhost tooling and trusted frontends; origin
	// checks are left to a reverse proxy if one is deployed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveConn wraps a websocket connection with a write lock. Gorilla
// connections support one concurrent writer only, and broadcasts can
// race with the initial scene push.
type liveConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *liveConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// hub tracks live websocket clients.
type hub struct {
	mu    sync.Mutex
	conns map[*liveConn]struct{}
}

func newHub() *hub {
	return &hub{conns: make(map[*liveConn]struct{})}
}

func (h *hub) add(c *liveConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *liveConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *hub) empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns) == 0
}

// broadcast sends data to every client, dropping clients whose writes
// fail.
func (h *hub) broadcast(data []byte) {
	h.mu.Lock()
	conns := make([]*liveConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.remove(c)
			c.ws.Close()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.ws.Close()
	}
	h.conns = make(map[*liveConn]struct{})
}

// handleLive upgrades to a websocket and streams the scene: once on
// connect, then after every change to the map.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	c := &liveConn{ws: ws}

	// Register before the initial push so a mutation racing with the
	// handshake still reaches this client.
	s.hub.add(c)

	s.mu.Lock()
	data, err := json.Marshal(scene.Build(s.m))
	s.mu.Unlock()
	if err == nil {
		err = c.write(data)
	}
	if err != nil {
		s.logger.Warn("websocket initial scene", "err", err)
		s.hub.remove(c)
		ws.Close()
		return
	}
	s.logger.Debug("live client connected", "remote", r.RemoteAddr)

	// Clients never send application data; the read loop just waits
	// for the close frame.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.remove(c)
	ws.Close()
	s.logger.Debug("live client disconnected", "remote", r.RemoteAddr)
}
