package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ducvu/chatserver/internal/adapters/ws"
	"github.com/ducvu/chatserver/internal/auth"
	"github.com/ducvu/chatserver/internal/config"
)

type Deps struct {
	Users         *UserController
	Conversations *ConversationController
	Gateway       *ws.Gateway
	JWT           *auth.JWTManager
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := auth.Middleware(deps.JWT)

	user := r.Group("/api/user")
	user.POST("/register", deps.Users.Register)
	user.POST("/login", deps.Users.Login)
	user.Any("/verifyToken", authed, deps.Users.VerifyToken)
	user.GET("/getListFriends", authed, deps.Users.ListFriends)

	conv := r.Group("/api/conversation", authed)
	conv.GET("/getAll", deps.Conversations.GetAll)
	conv.GET("/getById/:id", deps.Conversations.GetByID)
	conv.PUT("/update/:id", deps.Conversations.Update)
	conv.POST("/create", deps.Conversations.Create)
	conv.GET("/messages/:id", deps.Conversations.History)

	r.GET("/api/ws/chat", authed, func(c *gin.Context) {
		deps.Gateway.HandleChat(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
