package http

import (
	"fitdex_battle/internal/http/handlers"
	"fitdex_battle/internal/http/middleware"
	"fitdex_battle/internal/metrics"
	"fitdex_battle/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options - зависимости HTTP слоя
type Options struct {
	Handler       *handlers.Handler
	Hub           *ws.Hub
	Limiter       *middleware.RateLimiter
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer // nil - глобальный регистр
	AllowedOrigin string
}

// RegisterRoutes вешает API, сокет и служебные ручки на r
func RegisterRoutes(r *gin.Engine, opts Options) {
	h := opts.Handler

	r.Use(middleware.CORS(opts.AllowedOrigin))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", h.Healthz)

	if opts.Hub != nil {
		r.GET("/ws", ws.HandleWS(opts.Hub, h.Auth, opts.AllowedOrigin))
	}

	limit := opts.Limiter.Middleware()

	api := r.Group("/api")
	api.POST("/auth/login", limit, h.Login)

	// после Auth лимит считается по пользователю
	auth := api.Group("")
	auth.Use(middleware.Auth(h.Auth, h.Users), limit)
	{
		auth.GET("/me", h.MyProfile)
		auth.PATCH("/me", h.UpdateProfile)
		auth.GET("/history", h.MatchHistory)
		auth.GET("/users", h.ListUsers)
		auth.GET("/users/:id", h.Profile)
		auth.GET("/friends", h.Friends)
		auth.POST("/friends", h.AddFriend)
		auth.GET("/leaderboard", h.Leaderboard)

		auth.GET("/roster", h.Roster)
		auth.POST("/battle", h.StartBattle)
		auth.GET("/battle", h.GetBattle)
		auth.DELETE("/battle", h.LeaveBattle)
		auth.POST("/battle/reveal", h.Reveal)
		auth.POST("/battle/cashout", h.CashOut)
		auth.POST("/battle/tap", h.Tap)
		auth.POST("/battle/surrender", h.Surrender)
		auth.POST("/battle/exit", h.ExitBattle)

		auth.POST("/practice/tictactoe", h.StartPractice)
		auth.GET("/practice/tictactoe", h.GetPractice)
		auth.POST("/practice/tictactoe/move", h.PracticeMove)
	}
}
