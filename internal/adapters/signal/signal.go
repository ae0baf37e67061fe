package signal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Scribe/internal/app/orch"
	"github.com/dkeye/Scribe/internal/config"
	"github.com/dkeye/Scribe/internal/core"
	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/metrics"
	"github.com/dkeye/Scribe/internal/protocol"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalWSController owns the websocket side of every connection. One
// controller serves all connections; its dispatch table is fixed.
type SignalWSController struct {
	Orch     *orch.Orchestrator
	Limiter  *RoomRateLimiter
	cfg      *config.Config
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{
		Orch:    o,
		Limiter: NewRoomRateLimiter(cfg.JoinLimit, cfg.JoinInterval),
		cfg:     cfg,
	}
	ctl.upgrader = websocket.Upgrader{
		CheckOrigin: originChecker(cfg.AllowedOrigins),
	}
	return ctl
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and starts the connection pumps.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	id := domain.ConnID(uuid.NewString())
	logger := log.With().Str("module", "signal").Str("conn", string(id)).Str("client", c.GetString("client_token")).Logger()

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	conn := newWsSignalConn(ws, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(id, conn, cancel)
	metrics.ConnectionsActive.Inc()
	logger.Info().Int("connections", ctl.Orch.Registry.Count()).Msg("new WS connection")

	ctl.sendJSON(conn, protocol.Event{Type: protocol.TypeConnected, Data: protocol.Identity{ID: id}})

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browser requests from an allowed origin. "*" allows all.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	all := false
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			all = true
			continue
		}
		if n, ok := normalizeOrigin(o); ok {
			set[n] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || all {
			return true
		}
		n, ok := normalizeOrigin(origin)
		if !ok {
			return false
		}
		if _, ok := set[n]; ok {
			return true
		}
		log.Warn().Str("module", "signal").Str("origin", origin).Msg("blocked disallowed origin")
		return false
	}
}

func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}
