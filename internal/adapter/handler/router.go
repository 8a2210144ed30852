package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	authHandler     *Auth
	pipelineHandler *Pipeline
	authMiddleware  echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, authHandler *Auth, pipelineHandler *Pipeline, authMiddleware echo.MiddlewareFunc) *Router {
	return &Router{
		cfg:             cfg,
		authHandler:     authHandler,
		pipelineHandler: pipelineHandler,
		authMiddleware:  authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupPipelineRoutes(v1)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	if rt.authHandler == nil {
		authGroup.Any("/*", rt.notImplemented)
		return
	}

	authGroup.POST("/signup", rt.authHandler.SignUp)
	authGroup.POST("/signin", rt.authHandler.SignIn)
	authGroup.POST("/signout", rt.authHandler.SignOut, rt.authMiddleware)
	authGroup.GET("/me", rt.authHandler.Me, rt.authMiddleware)
}

// setupPipelineRoutes configures the per-user meeting pipeline routes
func (rt *Router) setupPipelineRoutes(g *echo.Group) {
	p := g.Group("/pipeline", rt.authMiddleware)

	h := rt.pipelineHandler
	if h == nil {
		p.Any("/*", rt.notImplemented)
		return
	}

	p.GET("/state", h.State)

	// Upload and transcription
	p.POST("/upload", h.Upload)
	p.POST("/upload/retry", h.RetryUpload)
	p.POST("/upload/cancel", h.CancelUpload)

	// Summary and tasks
	p.POST("/summarize", h.Summarize)
	p.POST("/tasks/extract", h.ExtractTasks)
	p.PUT("/transcript", h.EditTranscript)
	p.PATCH("/summary", h.EditSummary)
	p.POST("/tasks", h.AddTask)
	p.PUT("/tasks/:index", h.UpdateTask)
	p.DELETE("/tasks/:index", h.DeleteTask)

	// Publishing
	p.GET("/card/preview", h.CardPreview)
	p.POST("/publish", h.Publish)

	// History
	p.GET("/history", h.History)
	p.POST("/history/:id/load", h.LoadRecord)

	// Trello
	p.GET("/credentials", h.GetCredentials)
	p.PUT("/credentials", h.SetCredentials)
	p.GET("/boards", h.Boards)
	p.POST("/boards/:id/select", h.SelectBoard)
	p.GET("/boards/:id/lists", h.Lists)
	p.GET("/boards/:id/members", h.Members)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "This endpoint is not yet implemented",
		Info:    c.Request().Method + " " + c.Request().URL.Path,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
