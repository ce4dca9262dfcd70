package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shihanqu/discord-quote-bot/internal/auth"
	"github.com/shihanqu/discord-quote-bot/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Quotes     *QuoteHandler
	Selections *SelectionHandler

	TokenService *auth.TokenService
	Redis        *redis.Client
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/api/v1")

	// All quote routes require a service token plus a general rate limit.
	authMw := deps.TokenService.Middleware()
	protected := v1.Group("", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)

	// Quotes
	protected.POST("/quotes", deps.Quotes.AddQuote)
	protected.GET("/quotes/random", deps.Quotes.RandomQuote)
	protected.GET("/quotes/search", deps.Quotes.SearchContent)
	protected.GET("/quotes/search/authors", deps.Quotes.SearchAuthor)
	protected.GET("/quotes/:message_id", deps.Quotes.GetQuote)
	protected.DELETE("/quotes/:message_id", deps.Quotes.DeleteQuote)

	// Authors
	protected.GET("/authors", deps.Quotes.ListAuthors)
	protected.GET("/authors/:id/quotes", deps.Quotes.QuotesByAuthor)

	// Selection sessions
	protected.POST("/selections", deps.Selections.Begin)
	protected.POST("/selections/:id/pick", deps.Selections.Pick)
	protected.DELETE("/selections/:id", deps.Selections.Cancel)
}
