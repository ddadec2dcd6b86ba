package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Replayer renders the current session state to a late joiner.
type Replayer interface {
	Replay(ctx context.Context, v service.Views) error
}

// Handler upgrades page connections and attaches them to the hub.
type Handler struct {
	hub      *Hub
	replayer Replayer
	upgrader websocket.Upgrader
	surface  []SurfaceOption
	logger   logger.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithReplayer replays the session to each new connection.
func WithReplayer(r Replayer) HandlerOption {
	return func(h *Handler) { h.replayer = r }
}

// WithSurfaceOptions applies options to the per-connection replay surface.
func WithSurfaceOptions(opts ...SurfaceOption) HandlerOption {
	return func(h *Handler) { h.surface = append(h.surface, opts...) }
}

// WithCheckOrigin overrides the upgrader's origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) HandlerOption {
	return func(h *Handler) { h.upgrader.CheckOrigin = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a WebSocket endpoint for h.
func NewHandler(h *Hub, opts ...HandlerOption) *Handler {
	hd := &Handler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger.Get().Named("stream"),
	}
	for _, opt := range opts {
		opt(hd)
	}
	return hd
}

func (hd *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := hd.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hd.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := hd.hub.Register()
	hd.logger.Debug(r.Context(), "page connected", logger.Int("client", int(c.ID())))

	go hd.writePump(conn, c)
	go hd.readPump(conn, c)

	if hd.replayer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := hd.replayer.Replay(ctx, NewClientSurface(hd.hub, c, hd.surface...).Views()); err != nil {
			hd.logger.Warn(ctx, "replay failed", logger.Error(err))
		}
	}
}

// readPump discards page input and watches for the connection to end.
func (hd *Handler) readPump(conn *websocket.Conn, c *Client) {
	defer func() {
		hd.hub.Unregister(c)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hd.logger.Debug(context.Background(), "unexpected websocket close", logger.Error(err))
			}
			return
		}
	}
}

func (hd *Handler) writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		hd.hub.Unregister(c)
		_ = conn.Close()
	}()

	for {
		select {
		case <-c.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.Send():
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
