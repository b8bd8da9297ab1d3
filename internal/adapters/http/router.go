package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/Huddle/internal/adapters/livekit"
	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// TokenIssuer mints media-session credentials.
type TokenIssuer interface {
	URL() string
	Issue(livekit.Grant) (string, error)
}

type tokenRequest struct {
	ChannelID string `json:"channelId" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
	Username  string `json:"username"`
}

type tokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *orch.Orchestrator, issuer TokenIssuer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HuddleSessions", store))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(orch, signal.Options{
		ReadLimit:     cfg.ReadLimit,
		PingPeriod:    cfg.PingPeriod,
		SpeakingLimit: cfg.Voice.SpeakingLimit,
		SpeakingEvery: cfg.Voice.SpeakingWindow,
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.POST("/voice/token", func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "channelId and userId required"})
			return
		}
		if issuer == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LiveKit credentials not configured"})
			return
		}
		name := req.Username
		if name == "" {
			name = req.UserID
		}
		token, err := issuer.Issue(livekit.Grant{Room: req.ChannelID, Identity: req.UserID, Name: name})
		switch {
		case errors.Is(err, livekit.ErrNoCredentials):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LiveKit credentials not configured"})
			return
		case err != nil:
			log.Error().Err(err).Str("module", "adapters.http").Str("channel", req.ChannelID).Msg("token issue")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		s := sessions.Default(c)
		s.Set(signal.SessionUserID, req.UserID)
		s.Set(signal.SessionUsername, name)
		if err := s.Save(); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
		}
		c.JSON(http.StatusOK, tokenResponse{Token: token, URL: issuer.URL()})
	})

	api.GET("/voice/states", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"channels": orch.VoiceStates()})
	})

	api.GET("/voice/channels/:channelId/participants", func(c *gin.Context) {
		ch := domain.ChannelID(c.Param("channelId"))
		c.JSON(http.StatusOK, gin.H{"channelId": ch, "participants": orch.ChannelParticipants(ch)})
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}

// WithCORS lets browser clients on the listed origins call the API with
// credentials.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
}
