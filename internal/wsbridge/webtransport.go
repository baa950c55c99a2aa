package wsbridge

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"

	"oscmix/internal/control"
	"oscmix/internal/osc"
)

const webTransportCertValidity = 24 * time.Hour

// WebTransportHandler bridges a browser WebTransport session to the same
// control.Dispatcher entry points HandleWebSocket uses, for clients that
// prefer an HTTP/3 bidirectional stream over a WebSocket upgrade.
type WebTransportHandler struct {
	dispatcher *control.Dispatcher
	server     *webtransport.Server
}

// NewWebTransportHandler constructs a handler bound to dispatcher, serving
// one HTTP/3 WebTransport session per "/wt/osc" connection on addr. A
// self-signed cert is minted for the listener's lifetime.
func NewWebTransportHandler(dispatcher *control.Dispatcher, addr string) (*WebTransportHandler, error) {
	tlsConf, err := selfSignedTLSConfig(webTransportCertValidity)
	if err != nil {
		return nil, err
	}

	h := &WebTransportHandler{dispatcher: dispatcher}
	mux := http.NewServeMux()
	mux.HandleFunc("/wt/osc", h.handleSession)
	h.server = &webtransport.Server{
		H3: http3.Server{
			Addr:      addr,
			TLSConfig: tlsConf,
			Handler:   mux,
		},
		CheckOrigin: func(_ *http.Request) bool { return true },
	}
	return h, nil
}

// ListenAndServe starts the HTTP/3 listener, blocking until it errors or
// is closed.
func (h *WebTransportHandler) ListenAndServe() error {
	return h.server.ListenAndServe()
}

// Close shuts down the WebTransport listener.
func (h *WebTransportHandler) Close() error {
	return h.server.Close()
}

func (h *WebTransportHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.server.Upgrade(w, r)
	if err != nil {
		slog.Error("webtransport upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	h.serveSession(sess, r.RemoteAddr)
}

func (h *WebTransportHandler) serveSession(sess *webtransport.Session, remoteAddr string) {
	defer sess.CloseWithError(0, "closed")

	stream, err := sess.AcceptStream(context.Background())
	if err != nil {
		slog.Debug("webtransport accept stream failed", "remote", remoteAddr, "err", err)
		return
	}
	defer stream.Close()

	send := make(chan osc.Message, 64)
	id := h.dispatcher.Subscribe(func(msg osc.Message) {
		select {
		case send <- msg:
		default:
			slog.Debug("webtransport dropped notification, client too slow", "remote", remoteAddr)
		}
	})
	defer h.dispatcher.Unsubscribe(id)

	done := make(chan struct{})
	go h.writeLoop(stream, send, done, remoteAddr)
	defer close(done)

	h.readLoop(stream, remoteAddr)
}

func (h *WebTransportHandler) writeLoop(w io.Writer, send <-chan osc.Message, done <-chan struct{}, remoteAddr string) {
	for {
		select {
		case msg := <-send:
			data := osc.EncodeMessage(msg)
			var hdr [4]byte
			binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
			if _, err := w.Write(hdr[:]); err != nil {
				slog.Debug("webtransport write error", "remote", remoteAddr, "err", err)
				return
			}
			if _, err := w.Write(data); err != nil {
				slog.Debug("webtransport write error", "remote", remoteAddr, "err", err)
				return
			}
		case <-done:
			return
		}
	}
}

func (h *WebTransportHandler) readLoop(r io.Reader, remoteAddr string) {
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			slog.Debug("webtransport stream closed", "remote", remoteAddr, "err", err)
			return
		}
		n := binary.BigEndian.Uint32(hdr[:])
		if n > 8192 {
			slog.Debug("webtransport frame exceeds maximum size", "remote", remoteAddr)
			return
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			slog.Debug("webtransport stream closed", "remote", remoteAddr, "err", err)
			return
		}
		h.dispatcher.HandlePacket(remoteAddr, buf)
	}
}
