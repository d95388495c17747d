// Package preview streams the live camera position and wizard state to browser
// overlays over a websocket.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/logger"
	"github.com/Faultbox/sonoir/pkg/math"
)

const writeTimeout = 2 * time.Second

// Frame is what an overlay displays.
type Frame struct {
	Camera   [3]float32 `json:"camera"`
	Part     string     `json:"part,omitempty"`
	Step     int        `json:"step"`
	Total    int        `json:"total"`
	Progress float64    `json:"progress"`
}

// CameraFrame returns a frame carrying only a camera position.
func CameraFrame(p math.Vec3) Frame {
	return Frame{Camera: p.Array()}
}

// Hub fans frames out to connected clients. Publish never blocks the caller;
// when clients are slow, intermediate frames are dropped and the newest wins.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    []byte

	pending chan []byte
	done    chan struct{}
	once    sync.Once
}

// NewHub creates a hub and starts its broadcast loop.
func NewHub() *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     logger.Named("preview"),
		clients: make(map[*websocket.Conn]struct{}),
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
	}
	go h.run()
	return h
}

// Publish queues f for broadcast.
func (h *Hub) Publish(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		h.log.Warn("encode frame", zap.Error(err))
		return
	}
	select {
	case h.pending <- data:
	default:
		// Replace the stale frame.
		select {
		case <-h.pending:
		default:
		}
		select {
		case h.pending <- data:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops the broadcast loop.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for c := range h.clients {
			c.Close()
			delete(h.clients, c)
		}
	})
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			return
		case data := <-h.pending:
			h.broadcast(data)
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("dropping client", zap.String("remote", c.RemoteAddr().String()), zap.Error(err))
			c.Close()
			delete(h.clients, c)
		}
	}
}

// ServeWS upgrades the request and keeps the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		conn.Close()
		return
	default:
	}
	h.clients[conn] = struct{}{}
	if h.last != nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		conn.WriteMessage(websocket.TextMessage, h.last)
	}
	h.mu.Unlock()
	h.log.Info("client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[conn]; ok {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
		h.log.Info("client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	// Clients only listen; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Handler serves the overlay page at / and the websocket at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(overlayPage))
	})
	return mux
}

// ListenAndServe serves Handler on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		h.log.Info("preview listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h.Close()
		return srv.Shutdown(shutdownCtx)
	}
}

const overlayPage = `<!DOCTYPE html>
<html>
<head><title>sonoir preview</title>
<style>body{font-family:monospace;background:#111;color:#eee;padding:1em}</style>
</head>
<body>
<div>Camera: [<span id="cam">-</span>]</div>
<div>Current Part: <span id="part">-</span></div>
<div>Step <span id="step">-</span> (<span id="progress">0</span>%)</div>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (e) => {
  const f = JSON.parse(e.data);
  document.getElementById("cam").textContent = f.camera.join(", ");
  document.getElementById("part").textContent = f.part || "-";
  document.getElementById("step").textContent = (f.step + 1) + "/" + f.total;
  document.getElementById("progress").textContent = f.progress.toFixed(0);
};
</script>
</body>
</html>
`
