package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/postboard/config"
	"github.com/d60-Lab/postboard/internal/api/handler"
	"github.com/d60-Lab/postboard/internal/api/middleware"
)

// NewRouter 组装中间件与路由
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.SetHTMLTemplate(handler.Templates())

	r.GET("/healthz", h.Health)
	r.GET("/", h.BoardPage)

	// 页面表单，处理完成后 303 跳回看板
	page := r.Group("/board")
	{
		page.POST("/posts", h.SubmitCreatePost)
		page.POST("/posts/:id/update", h.SubmitUpdatePost)
		page.POST("/posts/:id/delete", h.SubmitDeletePost)
		page.POST("/posts/:id/toggle", h.SubmitTogglePost)
		page.POST("/users", h.SubmitCreateUser)
		page.POST("/users/:id/update", h.SubmitUpdateUser)
		page.POST("/users/:id/delete", h.SubmitDeleteUser)
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/board", h.Board)

		posts := v1.Group("/posts")
		{
			posts.GET("", h.ListPosts)
			posts.POST("", h.CreatePost)
			posts.PUT("/:id", h.UpdatePost)
			posts.DELETE("/:id", h.DeletePost)
			posts.PATCH("/:id/published", h.TogglePublished)
		}

		users := v1.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.PUT("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
		}
	}

	return r
}
