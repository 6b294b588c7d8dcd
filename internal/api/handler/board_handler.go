package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/postboard/internal/service"
	"github.com/d60-Lab/postboard/pkg/apperr"
	"github.com/d60-Lab/postboard/pkg/response"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates 解析看板页面模板
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"not": func(b bool) bool { return !b },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}).ParseFS(templatesFS, "templates/*.html"))
}

// Board 看板数据（JSON）
// @Summary 看板：用户、已发布/草稿分区与计数
// @Tags 看板
// @Produce json
// @Success 200 {object} response.Response{data=service.Board}
// @Router /api/v1/board [get]
func (h *Handler) Board(c *gin.Context) {
	b, err := h.boardService.Board(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, b)
}

// BoardPage 服务端渲染的看板页面
func (h *Handler) BoardPage(c *gin.Context) {
	b, err := h.boardService.Board(c.Request.Context())
	if err != nil {
		ae, _ := apperr.From(err)
		msg := "Error loading board"
		if ae != nil {
			msg = ae.Message
		}
		c.HTML(response.Status(apperr.KindOf(err)), "error.html", gin.H{"Error": msg})
		return
	}
	c.HTML(http.StatusOK, "board.html", gin.H{
		"Board": b,
		"Error": c.Query("error"),
	})
}

// 以下为页面表单动作：调用同一组服务，完成后 303 跳回看板

func (h *Handler) SubmitCreatePost(c *gin.Context) {
	h.formAction(c, func(ctx context.Context, form url.Values) error {
		_, err := h.postService.Create(ctx, form)
		return err
	})
}

func (h *Handler) SubmitUpdatePost(c *gin.Context) {
	h.idFormAction(c, func(ctx context.Context, id int64, form url.Values) error {
		_, err := h.postService.Update(ctx, id, form)
		return err
	})
}

func (h *Handler) SubmitDeletePost(c *gin.Context) {
	h.idFormAction(c, func(ctx context.Context, id int64, _ url.Values) error {
		return h.postService.Delete(ctx, id)
	})
}

func (h *Handler) SubmitTogglePost(c *gin.Context) {
	h.idFormAction(c, func(ctx context.Context, id int64, form url.Values) error {
		published, err := service.ParsePublished(form.Get("published"))
		if err != nil {
			return err
		}
		_, err = h.postService.TogglePublished(ctx, id, published)
		return err
	})
}

func (h *Handler) SubmitCreateUser(c *gin.Context) {
	h.formAction(c, func(ctx context.Context, form url.Values) error {
		_, err := h.userService.Create(ctx, form)
		return err
	})
}

func (h *Handler) SubmitUpdateUser(c *gin.Context) {
	h.idFormAction(c, func(ctx context.Context, id int64, form url.Values) error {
		_, err := h.userService.Update(ctx, id, form)
		return err
	})
}

func (h *Handler) SubmitDeleteUser(c *gin.Context) {
	h.idFormAction(c, func(ctx context.Context, id int64, _ url.Values) error {
		return h.userService.Delete(ctx, id)
	})
}

func (h *Handler) formAction(c *gin.Context, fn func(ctx context.Context, form url.Values) error) {
	form, err := formValues(c)
	if err == nil {
		err = fn(c.Request.Context(), form)
	}
	redirectBack(c, err)
}

func (h *Handler) idFormAction(c *gin.Context, fn func(ctx context.Context, id int64, form url.Values) error) {
	h.formAction(c, func(ctx context.Context, form url.Values) error {
		id, err := service.ParseID(c.Param("id"))
		if err != nil {
			return err
		}
		return fn(ctx, id, form)
	})
}

func redirectBack(c *gin.Context, err error) {
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	msg := err.Error()
	if ae, ok := apperr.From(err); ok {
		msg = ae.Message
		if ae.Kind == apperr.KindInternal {
			_ = c.Error(err)
		}
	}
	c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(msg))
}
