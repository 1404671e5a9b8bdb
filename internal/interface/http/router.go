package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/familylog/internal/domain/auth"
	"github.com/yanqian/familylog/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http.router")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit := rateLimitMiddleware(cfg.HTTP.RateLimit, logger)

	api := router.Group("/api/v1")
	api.Use(authMiddleware(authSvc, false), limit)
	{
		api.POST("/notes", handler.ProcessNote)
		api.POST("/notes/classify", handler.ClassifyNote)
		api.GET("/entries", handler.ListEntries)
		api.PUT("/entries/:id", handler.UpdateEntry)
		api.POST("/advice", handler.FindAdvice)
		api.POST("/shopping/format", handler.FormatShopping)
		api.POST("/shopping/deals", handler.ShoppingDeals)
		api.POST("/persons", handler.AddPerson)
		api.GET("/persons/:id/vaccinations/next", handler.NextVaccination)
		api.POST("/medicines", handler.AddMedicine)
		api.POST("/symptoms", handler.AddSymptom)
	}

	// The device token is accepted here so the phone can nudge a tick on wake-up.
	device := router.Group("/api/v1/reminders")
	device.Use(authMiddleware(authSvc, true), limit)
	device.POST("/tick", handler.TickReminders)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
