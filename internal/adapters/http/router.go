package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Scribe/internal/adapters/signal"
	"github.com/dkeye/Scribe/internal/app/orch"
	"github.com/dkeye/Scribe/internal/config"
	"github.com/dkeye/Scribe/internal/metrics"
)

const clientTokenKey = "ct"

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware keeps a stable per-browser token in the session
// cookie. The token is only used to correlate log lines.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("ScribeSessions", store))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(o, cfg)
	r.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	rooms := &roomsHandler{rooms: o.Rooms}
	api := r.Group("/api")
	api.GET("/rooms", rooms.list)
	api.GET("/rooms/:id", rooms.get)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	log.Info().Str("module", "adapters.http").Strs("origins", cfg.AllowedOrigins).Bool("metrics", cfg.MetricsEnabled).Msg("router setup")
	return r
}

// NewHandler wraps the router with CORS for the configured origins.
func NewHandler(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowCredentials: true,
	})
	return c.Handler(SetupRouter(ctx, cfg, o))
}
