package handlers

import (
	"user_management/internal/logger"
	"user_management/internal/observability"
	"user_management/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options toggles the optional observability middleware.
type Options struct {
	Metrics   *observability.Prom // nil disables /metrics
	TraceName string              // empty disables otelgin spans
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Options) *Handler {
	registerValidators()
	h := &Handler{services: services, log: log}
	if len(opts) > 0 {
		h.opts = opts[0]
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), h.requestLogger())

	if h.opts.TraceName != "" {
		router.Use(otelgin.Middleware(h.opts.TraceName))
	}
	if h.opts.Metrics != nil {
		router.Use(h.opts.Metrics.GinHandleMiddleware())
		router.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerUserRoutes(router)

	// Live user change feed, admins only
	router.GET("/ws/users", h.authenticate, h.verifyAdmin, h.wsUsers)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerUserRoutes(r *gin.Engine) {
	users := r.Group("/user")
	{
		users.POST("", h.createUser)
		users.GET("", h.authenticate, h.listUsers)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.authenticate, h.verifyAdmin, h.deleteUser)
	}
}
