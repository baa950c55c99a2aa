// Package wsbridge bridges a browser WebSocket client to the OSC control
// plane as an in-process Echo route, replacing a standalone WS<->UDP
// relay process: inbound binary frames carry raw OSC packets fed
// straight into control.Dispatcher.HandlePacket, and every mirror
// change notification is pushed back out as a binary frame over an
// Echo-registered, gorilla/websocket-upgraded connection.
package wsbridge

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"oscmix/internal/control"
	"oscmix/internal/osc"
)

const writeTimeout = 5 * time.Second

// Handler owns websocket transport for one ControlDispatcher.
type Handler struct {
	dispatcher *control.Dispatcher
	upgrader   websocket.Upgrader
}

// NewHandler creates a websocket handler bound to dispatcher.
func NewHandler(dispatcher *control.Dispatcher) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Register binds the bridge route on an Echo router.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/ws/osc", h.HandleWebSocket)
}

// HandleWebSocket upgrades one request and serves it until disconnect.
func (h *Handler) HandleWebSocket(c echo.Context) error {
	remoteAddr := c.RealIP()
	slog.Debug("wsbridge upgrade request", "remote", remoteAddr)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("wsbridge upgrade failed", "remote", remoteAddr, "err", err)
		return fmt.Errorf("upgrade websocket: %w", err)
	}
	h.serveConn(conn, remoteAddr)
	return nil
}

func (h *Handler) serveConn(conn *websocket.Conn, remoteAddr string) {
	defer conn.Close()

	send := make(chan osc.Message, 64)
	id := h.dispatcher.Subscribe(func(msg osc.Message) {
		select {
		case send <- msg:
		default:
			slog.Debug("wsbridge dropped notification, client too slow", "remote", remoteAddr)
		}
	})
	defer h.dispatcher.Unsubscribe(id)

	done := make(chan struct{})
	go h.writeLoop(conn, send, done, remoteAddr)
	defer close(done)

	h.readLoop(conn, remoteAddr)
}

func (h *Handler) writeLoop(conn *websocket.Conn, send <-chan osc.Message, done <-chan struct{}, remoteAddr string) {
	for {
		select {
		case msg := <-send:
			data := osc.EncodeMessage(msg)
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				slog.Debug("wsbridge write error", "remote", remoteAddr, "err", err)
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) readLoop(conn *websocket.Conn, remoteAddr string) {
	conn.SetReadLimit(1 << 16)
	for {
		mtype, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("wsbridge unexpected close", "remote", remoteAddr, "err", err)
			}
			return
		}
		if mtype != websocket.BinaryMessage {
			continue
		}
		h.dispatcher.HandlePacket(remoteAddr, data)
	}
}
