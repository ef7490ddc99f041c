package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"stock-portfolio/middleware"
	"stock-portfolio/problem"
	"stock-portfolio/quotes"
	"stock-portfolio/services"
)

// Handler holds the services behind the REST API.
type Handler struct {
	Portfolio    *services.PortfolioService
	History      *services.HistoryService
	Registration *services.RegistrationService
	Auth         *services.AuthService
	Prices       quotes.Provider
	Log          zerolog.Logger
}

// RouterConfig holds the HTTP-level switches.
type RouterConfig struct {
	RequireAuth          bool
	SlowRequestThreshold time.Duration
}

// NewRouter registers every route on a new gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(h.Log, cfg.SlowRequestThreshold),
		gin.CustomRecovery(h.recover),
	)

	router.GET("/healthz", h.Health)
	router.GET("/api/quotes/:symbol", h.GetQuote)

	// Public routes
	users := router.Group("/api/users")
	users.POST("/addUser", h.AddUser)
	users.POST("/login", h.Login)
	users.POST("/token/refresh", h.RefreshToken)

	// Deleting a user always needs the owner's token
	router.DELETE("/api/users/:userId", middleware.JWTAuth(h.Auth), h.DeleteUser)

	// User-scoped routes
	scoped := router.Group("/api")
	if cfg.RequireAuth {
		scoped.Use(middleware.JWTAuth(h.Auth))
	}
	{
		scoped.POST("/users/:userId/stocks", h.AddStock)
		scoped.PUT("/users/:userId/stocks/removeStock", h.RemoveStock)
		scoped.GET("/users/:userId/stocks", h.GetStocks)
		scoped.GET("/users/:userId/stocks/portfolio/value", h.GetPortfolioValue)
		scoped.GET("/stock-history/:userId", h.GetStockHistory)
	}

	router.NoRoute(func(c *gin.Context) {
		problem.Abort(c, http.StatusNotFound, "Resource Not Found", "No route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	return router
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps a service error to its problem response.
func (h *Handler) respondError(c *gin.Context, err error) {
	var domainErr *services.Error
	if !errors.As(err, &domainErr) {
		_ = c.Error(err)
		h.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unexpected error")
		problem.Abort(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.")
		return
	}

	switch domainErr.Kind {
	case services.KindNotFound:
		problem.Abort(c, http.StatusNotFound, "Resource Not Found", domainErr.Message)
	case services.KindBadRequest:
		problem.Abort(c, http.StatusBadRequest, "Bad Request", domainErr.Message)
	case services.KindUnauthorized:
		problem.Abort(c, http.StatusUnauthorized, "Invalid credentials", domainErr.Message)
	case services.KindUpstreamUnavailable:
		_ = c.Error(err)
		if errors.Is(err, quotes.ErrNoData) {
			problem.Abort(c, http.StatusNotFound, "No Data found for Symbol", domainErr.Message)
			return
		}
		h.Log.Warn().Err(err).Msg("price lookup failed")
		problem.Abort(c, http.StatusBadGateway, "Bad Gateway", domainErr.Message)
	default:
		problem.Abort(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.")
	}
}

// fieldMessages holds the detail reported when a bound field fails validation.
var fieldMessages = map[string]string{
	"Symbol":       "Symbol must not be empty.",
	"Quantity":     "Quantity must be greater than zero.",
	"UserID":       "User ID must be alphanumeric.",
	"Password":     "Password cannot be empty.",
	"RefreshToken": "Refresh token must not be empty.",
}

func (h *Handler) badBody(c *gin.Context, err error) {
	_ = c.Error(err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := fieldMessages[verrs[0].StructField()]; ok {
			problem.Abort(c, http.StatusBadRequest, "Bad Request", msg)
			return
		}
	}
	problem.Abort(c, http.StatusBadRequest, "Bad Request", "Malformed request body.")
}

func (h *Handler) recover(c *gin.Context, recovered any) {
	h.Log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
	problem.Abort(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.")
}
