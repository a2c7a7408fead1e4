package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
	"github.com/hungerium/hungeriumm-sub001/internal/session"
)

const (
	// MaxWSConnectionsTotal caps websocket connections across all sessions.
	MaxWSConnectionsTotal = 500

	// StateInterval is how often each session's snapshot is pushed.
	StateInterval = 100 * time.Millisecond

	clientSendBuffer = 64
	maxMessageSize   = 1024
	writeWait        = 5 * time.Second
	pongWait         = 30 * time.Second
	pingPeriod       = pongWait * 9 / 10
)

// Outgoing event names.
const (
	EventState  = "state"
	EventCue    = "cue"
	EventClosed = "closed"
)

type outgoing struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// clientMessage is one command from a websocket client. Type is one of
// input, pause, resume, restart or select.
type clientMessage struct {
	Type      string  `json:"type"`
	MoveX     float64 `json:"moveX"`
	MoveY     float64 `json:"moveY"`
	Fire      bool    `json:"fire"`
	Ability   bool    `json:"ability"`
	Character string  `json:"character"`
}

var errUnknownMessage = errors.New("unknown message type")

func (m clientMessage) command() (game.Command, error) {
	switch m.Type {
	case "input":
		return game.Command{Kind: game.CmdInput, Input: game.Input{
			MoveX: m.MoveX, MoveY: m.MoveY, Fire: m.Fire, Ability: m.Ability,
		}}, nil
	case "pause":
		return game.Command{Kind: game.CmdPause}, nil
	case "resume":
		return game.Command{Kind: game.CmdResume}, nil
	case "restart":
		return game.Command{Kind: game.CmdRestart}, nil
	case "select":
		return game.Command{Kind: game.CmdSelectCharacter, Character: m.Character}, nil
	default:
		return game.Command{}, errUnknownMessage
	}
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
	send chan []byte
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

// sessionStream fans one session's cues and snapshots out to its clients.
// The pump runs while at least one client is attached.
type sessionStream struct {
	sess    *session.Session
	clients map[*wsClient]struct{}
	stop    chan struct{}
}

// WebSocketHub streams sessions to browser clients.
type WebSocketHub struct {
	sessions Sessions
	limiter  *WebSocketRateLimiter
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.Mutex
	streams map[string]*sessionStream
	total   atomic.Int32
}

// NewWebSocketHub creates a hub. Nothing runs until a client connects.
func NewWebSocketHub(sessions Sessions, origins *OriginChecker, maxPerIP int, log *zap.Logger) *WebSocketHub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &WebSocketHub{
		sessions: sessions,
		limiter:  NewWebSocketRateLimiter(maxPerIP),
		log:      log,
		streams:  make(map[string]*sessionStream),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allowed(origin) {
				return true
			}
			log.Warn("websocket connection rejected", zap.String("origin", origin))
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	return int(h.total.Load())
}

// HandleWebSocket upgrades the request and streams sess until either side
// closes. Client messages become session commands.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.limiter.Allow(ip) {
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.String("ip", ip), zap.Error(err))
		h.limiter.Release(ip)
		return
	}

	c := &wsClient{conn: conn, ip: ip, send: make(chan []byte, clientSendBuffer)}
	h.join(sess, c)
	go h.writePump(c)
	h.readPump(sess, c)
}

func (h *WebSocketHub) join(sess *session.Session, c *wsClient) {
	h.mu.Lock()
	st, ok := h.streams[sess.ID]
	if !ok {
		st = &sessionStream{
			sess:    sess,
			clients: make(map[*wsClient]struct{}),
			stop:    make(chan struct{}),
		}
		h.streams[sess.ID] = st
		go h.pump(st)
	}
	st.clients[c] = struct{}{}
	h.mu.Unlock()

	n := h.total.Add(1)
	UpdateWSConnections(int(n))
	h.log.Debug("websocket client joined",
		zap.String("session", sess.ID),
		zap.String("ip", c.ip),
		zap.Int32("total", n))
}

func (h *WebSocketHub) leave(sessionID string, c *wsClient) {
	h.mu.Lock()
	st, ok := h.streams[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := st.clients[c]; !member {
		h.mu.Unlock()
		return
	}
	delete(st.clients, c)
	if len(st.clients) == 0 {
		close(st.stop)
		delete(h.streams, sessionID)
	}
	h.mu.Unlock()

	c.close()
	h.limiter.Release(c.ip)
	UpdateWSConnections(int(h.total.Add(-1)))
}

// CloseSession disconnects every client of a session after telling them why.
func (h *WebSocketHub) CloseSession(sessionID, reason string) {
	h.mu.Lock()
	st, ok := h.streams[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	clients := make([]*wsClient, 0, len(st.clients))
	for c := range st.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	h.broadcast(sessionID, EventClosed, map[string]string{"reason": reason})
	for _, c := range clients {
		h.leave(sessionID, c)
	}
}

// CloseAll disconnects every client.
func (h *WebSocketHub) CloseAll(reason string) {
	h.mu.Lock()
	ids := make([]string, 0, len(h.streams))
	for id := range h.streams {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	for _, id := range ids {
		h.CloseSession(id, reason)
	}
}

func (h *WebSocketHub) broadcast(sessionID, event string, data interface{}) {
	msg, err := json.Marshal(outgoing{Event: event, Data: data})
	if err != nil {
		h.log.Error("websocket marshal failed", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.streams[sessionID]
	if !ok {
		return
	}
	for c := range st.clients {
		select {
		case c.send <- msg:
			wsMessagesTotal.Inc()
		default:
			wsMessagesDropped.Inc()
		}
	}
}

// pump forwards cues as they arrive and the latest snapshot every
// StateInterval. It ends when the last client leaves or the session is
// gone from the manager.
func (h *WebSocketHub) pump(st *sessionStream) {
	ticker := time.NewTicker(StateInterval)
	defer ticker.Stop()

	id := st.sess.ID
	var lastSeq uint64
	for {
		select {
		case <-st.stop:
			return

		case cue := <-st.sess.Cues():
			h.broadcast(id, EventCue, cue)

		case <-ticker.C:
			if _, err := h.sessions.Get(id); err != nil {
				go h.CloseSession(id, "session closed")
				return
			}
			snap, ok := st.sess.Snapshot()
			if !ok || snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence
			h.broadcast(id, EventState, snap)
		}
	}
}

func (h *WebSocketHub) writePump(c *wsClient) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHub) readPump(sess *session.Session, c *wsClient) {
	defer func() {
		h.leave(sess.ID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		cmd, err := msg.command()
		if err != nil {
			h.log.Debug("websocket message ignored", zap.String("type", msg.Type))
			continue
		}
		if err := sess.Send(cmd); err != nil {
			h.log.Debug("command dropped", zap.String("session", sess.ID), zap.Error(err))
		}
	}
}
