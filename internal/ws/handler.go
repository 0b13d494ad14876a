package ws

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/domain/profile"
	"github.com/GriffinCanCode/portfolio/internal/domain/terminal"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/monitoring"
)

const (
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	defaultIdle    = 60 * time.Second
)

// Inbound is a client frame.
type Inbound struct {
	Type      string `json:"type"`
	Input     string `json:"input,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Outbound is a server frame.
type Outbound struct {
	Type    string          `json:"type"`
	Entry   *terminal.Entry `json:"entry,omitempty"`
	Value   *string         `json:"value,omitempty"`
	Theme   terminal.Theme  `json:"theme,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Config wires the handler to the terminal's collaborators.
type Config struct {
	Profile      *profile.Profile
	Projects     terminal.ProjectSource
	DefaultTheme terminal.Theme
	ExitDelay    time.Duration
	// AllowedOrigins limits browser origins. Empty allows any origin.
	AllowedOrigins []string
	// IdleTimeout closes connections that send nothing, pongs included.
	IdleTimeout time.Duration
	Metrics     *monitoring.Metrics
	Logger      *zap.Logger
}

// Handler serves one terminal session per WebSocket connection.
type Handler struct {
	cfg      Config
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = monitoring.NewMetrics()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdle
	}
	if _, ok := terminal.ParseTheme(string(cfg.DefaultTheme)); !ok {
		cfg.DefaultTheme = terminal.ThemeCmd
	}

	h := &Handler{cfg: cfg, logger: cfg.Logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// conn serializes writes; gorilla allows one concurrent writer.
type conn struct {
	ws      *websocket.Conn
	mu      sync.Mutex
	metrics *monitoring.Metrics
}

func (c *conn) send(f Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(f); err != nil {
		return err
	}
	c.metrics.RecordWSMessage("out", f.Type)
	return nil
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// HandleConnection upgrades the request and runs a terminal session until
// the client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	out := &conn{ws: ws, metrics: h.cfg.Metrics}
	theme := terminal.NewThemeState(h.cfg.DefaultTheme, func(t terminal.Theme) {
		if err := out.send(Outbound{Type: "theme", Theme: t}); err != nil {
			h.logger.Debug("theme frame not delivered", zap.Error(err))
		}
	})
	session := terminal.NewSession(terminal.Config{
		Profile:   h.cfg.Profile,
		Theme:     theme,
		Projects:  h.cfg.Projects,
		Logger:    h.logger,
		ExitDelay: h.cfg.ExitDelay,
		OnCommand: h.cfg.Metrics.RecordCommand,
	})
	defer session.Close()

	h.cfg.Metrics.IncSessions()
	defer h.cfg.Metrics.DecSessions()

	logger := h.logger.With(zap.String("terminal_id", session.ID().String()), zap.String("ip", c.ClientIP()))
	logger.Info("terminal connected")
	defer logger.Info("terminal disconnected")

	welcome := session.Mount(c.Request.Context())
	if err := out.send(Outbound{Type: "theme", Theme: theme.Current()}); err != nil {
		return
	}
	if err := out.send(Outbound{Type: "entry", Entry: &welcome}); err != nil {
		return
	}

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(out, done)

	for {
		var msg Inbound
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
		h.cfg.Metrics.RecordWSMessage("in", msg.Type)

		if err := h.dispatch(out, session, msg); err != nil {
			logger.Debug("websocket write error", zap.Error(err))
			return
		}
	}
}

func (h *Handler) dispatch(out *conn, session *terminal.Session, msg Inbound) error {
	switch msg.Type {
	case "execute":
		res := session.Execute(msg.Input)
		switch {
		case res.Cleared:
			return out.send(Outbound{Type: "clear"})
		case res.Entry != nil:
			return out.send(Outbound{Type: "entry", Entry: res.Entry})
		}
		return nil
	case "recall":
		var value string
		switch msg.Direction {
		case "up":
			value, _ = session.RecallPrevious()
		case "down":
			value, _ = session.RecallNext()
		default:
			return out.send(Outbound{Type: "error", Message: "recall direction must be up or down"})
		}
		return out.send(Outbound{Type: "buffer", Value: &value})
	case "ping":
		return out.send(Outbound{Type: "pong"})
	default:
		return out.send(Outbound{Type: "error", Message: "unknown message type"})
	}
}

// keepAlive pings the client at half the idle timeout until done closes.
func (h *Handler) keepAlive(out *conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := out.ping(); err != nil {
				return
			}
		}
	}
}
