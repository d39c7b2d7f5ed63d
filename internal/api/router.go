package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confessly/confessly/internal/cache"
	"github.com/confessly/confessly/internal/channel"
	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/moderation"
	"github.com/confessly/confessly/pkg/config"
	"github.com/confessly/confessly/pkg/logging"
)

// Services bundles the moderation services the API exposes.
type Services struct {
	Approval  *moderation.ApprovalService
	Deletion  *moderation.DeletionService
	Reports   *moderation.ReportService
	Reactions *moderation.ReactionService
	Users     *moderation.UserService
	Bulk      *moderation.BulkService
}

// Router sets up API routes
type Router struct {
	services *Services
	database *db.DB
	cache    *cache.Cache
	client   channel.Client
	cfg      *config.ChannelConfig
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(services *Services, database *db.DB, redisCache *cache.Cache, client channel.Client, cfg *config.ChannelConfig) *Router {
	return &Router{
		services: services,
		database: database,
		cache:    redisCache,
		client:   client,
		cfg:      cfg,
		logger:   logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// Public surface used by the bot frontends
	v1 := engine.Group("/v1")
	v1.POST("/reports", r.submitReport)
	v1.GET("/reports/:target_type/:id/count", r.reportCount)
	v1.GET("/report-reasons", r.reportReasons)
	v1.POST("/reactions", r.react)

	// Admin surface
	admin := engine.Group("/v1/admin")
	admin.POST("/posts/:id/approve", r.approvePost)
	admin.POST("/posts/:id/reject", r.rejectPost)
	admin.POST("/posts/:id/flag", r.flagPost)
	admin.DELETE("/posts/:id", r.deletePost)
	admin.DELETE("/comments/:id", r.deleteComment)
	admin.POST("/comments/:id/replace", r.replaceComment)
	admin.DELETE("/reports/:target_type/:id", r.dismissReports)
	admin.GET("/reports", r.listReports)
	admin.GET("/flagged", r.listFlagged)
	admin.GET("/audit", r.listAudit)
	admin.POST("/users/:id/block", r.blockUser)
	admin.POST("/users/:id/unblock", r.unblockUser)
	admin.POST("/bulk/approve", r.bulkApprove)
	admin.POST("/bulk/reject", r.bulkReject)
	admin.POST("/bulk/delete-comments", r.bulkDeleteComments)
	admin.POST("/bulk/block-users", r.bulkBlockUsers)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.database.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"error":  "database unreachable",
		})
		return
	}

	cacheStatus := "OK"
	if err := r.cache.Health(c.Request.Context()); err != nil {
		cacheStatus = "DISABLED"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "confessly-moderation",
		"cache":   cacheStatus,
	})
}
