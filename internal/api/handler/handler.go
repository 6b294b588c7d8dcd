package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/postboard/internal/service"
	"github.com/d60-Lab/postboard/pkg/response"
)

// Pinger checks that the backing store is reachable.
type Pinger func(ctx context.Context) error

// Handler 聚合看板相关的 HTTP 处理器
type Handler struct {
	userService  service.UserService
	postService  service.PostService
	boardService service.BoardService
	ping         Pinger
}

func New(users service.UserService, posts service.PostService, board service.BoardService, ping Pinger) *Handler {
	return &Handler{userService: users, postService: posts, boardService: board, ping: ping}
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pathID 解析路径中的 :id，失败时已写出响应
func pathID(c *gin.Context) (int64, bool) {
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return 0, false
	}
	return id, true
}
