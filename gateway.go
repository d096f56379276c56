package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coregx/relay/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes.
	maxMessageSize = 1 << 20

	// Outbound buffer per connection. A connection that cannot drain this
	// many payloads is considered dead and dropped.
	sendQueueSize = 256
)

// Connection kinds resolved from the upgrade path.
const (
	connKindTopic    = "topic"
	connKindRealtime = "realtime"
)

// Principal is the authenticated identity attached to a connection or
// request. Opaque to the relay beyond "authenticated or not".
type Principal struct {
	UserID   string
	Username string
}

// Verifier is the auth collaborator contract consumed by the gateway. It
// accepts either a bearer token or a static API key and returns AUTH_ERROR
// for anything else.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Principal, error)
}

// topicEnvelope is the wire shape published on a topic channel.
type topicEnvelope struct {
	Type    string        `json:"type"`
	ID      string        `json:"id"`
	Payload model.Payload `json:"payload"`
}

// Gateway accepts inbound streaming connections, classifies each as topic or
// realtime, authenticates it and binds it to the corresponding hub channel.
//
// Per-connection state machine: Connecting -> Open -> Closed. A failed
// precondition rejects the upgrade with an explicit status and the connection
// never reaches Open. Failures stay local to the connection that caused
// them; the hub and all other connections survive.
type Gateway struct {
	hub      *Hub
	engine   *AppendEngine
	verifier Verifier
	logger   Logger

	upgrader websocket.Upgrader
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway) error

// NewGateway creates a new Gateway with the provided options.
//
// Required options:
//   - WithGatewayHub: the hub to bind connections to
//   - WithGatewayEngine: the append engine for durable persistence
//   - WithGatewayVerifier: the auth collaborator
//   - WithGatewayLogger: logger instance
func NewGateway(opts ...GatewayOption) (*Gateway, error) {
	g := &Gateway{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Allow connections from any Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, NewErrorWithCause(ErrCodeConfiguration, "failed to apply gateway option", err)
		}
	}

	if g.hub == nil {
		return nil, NewError(ErrCodeConfiguration, "Hub is required (use WithGatewayHub)")
	}
	if g.engine == nil {
		return nil, NewError(ErrCodeConfiguration, "AppendEngine is required (use WithGatewayEngine)")
	}
	if g.verifier == nil {
		return nil, NewError(ErrCodeConfiguration, "Verifier is required (use WithGatewayVerifier)")
	}
	if g.logger == nil {
		return nil, NewError(ErrCodeConfiguration, "Logger is required (use WithGatewayLogger)")
	}

	return g, nil
}

// WithGatewayHub sets the hub dependency.
func WithGatewayHub(hub *Hub) GatewayOption {
	return func(g *Gateway) error {
		if hub == nil {
			return fmt.Errorf("hub cannot be nil")
		}
		g.hub = hub
		return nil
	}
}

// WithGatewayEngine sets the append engine dependency.
func WithGatewayEngine(engine *AppendEngine) GatewayOption {
	return func(g *Gateway) error {
		if engine == nil {
			return fmt.Errorf("engine cannot be nil")
		}
		g.engine = engine
		return nil
	}
}

// WithGatewayVerifier sets the auth collaborator.
func WithGatewayVerifier(verifier Verifier) GatewayOption {
	return func(g *Gateway) error {
		if verifier == nil {
			return fmt.Errorf("verifier cannot be nil")
		}
		g.verifier = verifier
		return nil
	}
}

// WithGatewayLogger sets the logger instance.
func WithGatewayLogger(logger Logger) GatewayOption {
	return func(g *Gateway) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		g.logger = logger
		return nil
	}
}

// ServeHTTP handles the websocket upgrade handshake. Mount it at /ws/.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		statUpgradesRejected.WithLabelValues("method").Inc()
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var kind string
	switch r.URL.Path {
	case "/ws/topic":
		kind = connKindTopic
	case "/ws/realtime":
		kind = connKindRealtime
	default:
		statUpgradesRejected.WithLabelValues("path").Inc()
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	topicID := r.URL.Query().Get("id")
	if kind == connKindTopic && topicID == "" {
		statUpgradesRejected.WithLabelValues("missing_id").Inc()
		http.Error(w, "Bad Request: id missing", http.StatusBadRequest)
		return
	}

	if _, err := g.verifier.Verify(r.Context(), credentialFromRequest(r)); err != nil {
		statUpgradesRejected.WithLabelValues("auth").Inc()
		g.logger.Warnf("ws: rejected %s connection: %v", kind, err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error response.
		g.logger.Errorf("ws: failed to upgrade: %v", err)
		return
	}

	key := topicID
	if kind == connKindRealtime {
		key = GlobalChannel
	}

	c := &wsConn{
		gateway: g,
		ws:      ws,
		kind:    kind,
		key:     key,
		send:    make(chan []byte, sendQueueSize),
		done:    make(chan struct{}),
	}

	// Open: bind the connection to its channel key before any read.
	g.hub.Subscribe(key, c)
	statActiveConnections.WithLabelValues(kind).Inc()
	g.logger.Infof("ws: %s connection open, key=%s, remote=%s", kind, key, r.RemoteAddr)

	go c.writeLoop()
	go c.readLoop()
}

// credentialFromRequest extracts the credential from the Authorization
// header or, for browser websocket clients that cannot set headers, from the
// authorization query parameter.
func credentialFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	return r.URL.Query().Get("authorization")
}

// wsConn is one open websocket connection bound to a single channel key.
type wsConn struct {
	gateway *Gateway
	ws      *websocket.Conn
	kind    string
	key     string
	send    chan []byte
	done    chan struct{}
}

// Queue implements Subscriber. It never blocks: payloads beyond the buffer
// are dropped and the subscriber reports false.
func (c *wsConn) Queue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *wsConn) readLoop() {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.gateway.logger.Errorf("ws: read, key=%s: %v", c.key, err)
			}
			return
		}
		if c.kind != connKindTopic {
			// Realtime connections are broadcast-only.
			continue
		}
		c.dispatch(raw)
	}
}

// dispatch fans an inbound message out on the topic channel and hands it to
// the append engine. The live broadcast is not ordered against the durable
// append: subscribers may see a message before it is confirmed persisted.
func (c *wsConn) dispatch(raw []byte) {
	payload := model.ParsePayload(raw)

	frame, err := json.Marshal(topicEnvelope{Type: "topic", ID: c.key, Payload: payload})
	if err != nil {
		c.gateway.logger.Errorf("ws: encode frame, key=%s: %v", c.key, err)
		return
	}

	c.gateway.hub.Publish(c.key, frame)
	statMessagesRelayed.Inc()

	if err := c.gateway.engine.Append(context.Background(), c.key, payload); err != nil {
		// Surface the failure to the sender only; the relay and every other
		// connection keep running.
		c.gateway.logger.Errorf("ws: append failed, key=%s: %v", c.key, err)
		if msg, merr := json.Marshal(map[string]string{"error": err.Error()}); merr == nil {
			c.Queue(msg)
		}
	}
}

func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		// Break readLoop.
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsConn) write(messageType int, payload []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, payload)
}

// close transitions the connection to Closed: unsubscribe and release. The
// message history is already durable, so there is no flush step.
func (c *wsConn) close() {
	c.gateway.hub.Unsubscribe(c.key, c)
	close(c.done)
	_ = c.ws.Close()
	statActiveConnections.WithLabelValues(c.kind).Dec()
	c.gateway.logger.Infof("ws: %s connection closed, key=%s", c.kind, c.key)
}
