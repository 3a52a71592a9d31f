// Package ws is the gateway: it upgrades authenticated requests, owns the
// websocket for its lifetime and feeds decoded events into the broker.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ducvu/chatserver/internal/app"
	"github.com/ducvu/chatserver/internal/auth"
	"github.com/ducvu/chatserver/internal/config"
	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
	"github.com/ducvu/chatserver/internal/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Gateway struct {
	Broker *app.Broker
	Cfg    *config.Config
}

func NewGateway(broker *app.Broker, cfg *config.Config) *Gateway {
	return &Gateway{Broker: broker, Cfg: cfg}
}

// HandleChat promotes an authenticated HTTP request to a broker session.
// Authentication already happened in middleware; an unauthenticated request
// never reaches this point.
func (g *Gateway) HandleChat(ctx context.Context, c *gin.Context) {
	userID := domain.UserID(c.GetString(auth.CtxUserID))
	connID := core.ConnID(uuid.NewString())

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "adapters.ws").Str("conn", string(connID)).
		Str("user", string(userID)).Msg("new WS connection")

	conn := newWsConn(connID, userID, sock, g.Cfg.SendBuffer)
	sess := g.Broker.NewSession(conn)
	ctx, cancel := context.WithCancel(ctx)

	metrics.ActiveConnections.Inc()

	go g.writePump(ctx, conn)
	go g.readPump(ctx, cancel, sess, conn)
}

func (g *Gateway) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(g.Cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(g.Cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "adapters.ws").Msg("ping failed")
				return
			}
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(g.Cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump dispatches events strictly in arrival order; that sequencing is
// what keeps one sender's own stream unreordered.
func (g *Gateway) readPump(ctx context.Context, cancel context.CancelFunc, sess *app.Session, c *wsConn) {
	defer func() {
		cancel()
		sess.Disconnect()
		c.Close()
		metrics.ActiveConnections.Dec()
		log.Info().Str("module", "adapters.ws").Str("conn", string(c.id)).Msg("readPump closing")
	}()

	c.conn.SetReadLimit(g.Cfg.ReadLimit)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("module", "adapters.ws").Str("conn", string(c.id)).
					Msg("readPump read error")
			}
			return
		}
		ev, err := core.DecodeClientEvent(data)
		if err != nil {
			if errors.Is(err, core.ErrUnknownEvent) {
				log.Warn().Err(err).Str("module", "adapters.ws").Str("conn", string(c.id)).
					Msg("unrecognized event")
			} else {
				log.Warn().Err(err).Str("module", "adapters.ws").Str("conn", string(c.id)).
					Msg("undecodable frame")
			}
			_ = c.TrySend(core.EncodeError("Unrecognized event", err.Error()))
			continue
		}
		sess.HandleEvent(ctx, ev)
	}
}
