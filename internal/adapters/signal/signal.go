package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const sendQueue = 64

// Session cookie keys holding the identity a browser announced through the
// token endpoint.
const (
	SessionUserID   = "user_id"
	SessionUsername = "username"
)

type Options struct {
	ReadLimit     int64
	PingPeriod    time.Duration
	SpeakingLimit int
	SpeakingEvery time.Duration
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Speaking *RateLimiter
	opts     Options
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	if opts.SpeakingLimit <= 0 {
		opts.SpeakingLimit = 20
	}
	if opts.SpeakingEvery <= 0 {
		opts.SpeakingEvery = time.Second
	}
	return &SignalWSController{
		Orch:     o,
		Speaking: NewRateLimiter(opts.SpeakingLimit, opts.SpeakingEvery),
		opts:     opts,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the session until either side
// closes. Every socket gets its own sid, so two tabs sharing a client
// token never collide.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token") + ":" + uuid.NewString()[:8])
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	remembered := rememberedUser(c)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, sendQueue),
	}

	sess := core.NewMemberSession(sid, conn)
	if remembered != nil {
		sess.Identify(*remembered)
	}
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.BindSignal(sid, sess, cancel)
	ctl.Orch.OnConnect(sid)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

func rememberedUser(c *gin.Context) *domain.User {
	s := sessions.Default(c)
	id, _ := s.Get(SessionUserID).(string)
	if id == "" {
		return nil
	}
	name, _ := s.Get(SessionUsername).(string)
	if name == "" {
		name = id
	}
	u, err := domain.NewUser(domain.UserID(id), name, "")
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("ignoring remembered identity")
		return nil
	}
	return u
}
