package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/postboard/internal/service"
	"github.com/d60-Lab/postboard/pkg/response"
)

// ListPosts 查询全部帖子
// @Summary 帖子列表（含作者，按创建时间倒序）
// @Tags 帖子
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.boardService.ListPosts(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	published, drafts := service.Partition(posts)
	response.Success(c, gin.H{"list": posts, "published": len(published), "drafts": len(drafts)})
}

// CreatePost 创建帖子
// @Summary 创建帖子
// @Tags 帖子
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param title formData string true "标题"
// @Param content formData string false "内容"
// @Param authorId formData string true "作者ID"
// @Param published formData string false "true 表示发布"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.Failure
// @Failure 500 {object} response.Failure
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	form, err := formValues(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.Create(c.Request.Context(), form)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Mutation(c, http.StatusCreated, "post", post)
}

// UpdatePost 部分更新帖子
// @Summary 更新帖子（title 非空才更新，content 出现即更新，published 总是更新）
// @Tags 帖子
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.Failure
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	form, err := formValues(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.Update(c.Request.Context(), id, form)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Mutation(c, http.StatusOK, "post", post)
}

// DeletePost 删除帖子
// @Summary 删除帖子
// @Tags 帖子
// @Param id path int true "帖子ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.Failure
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.postService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Mutation(c, http.StatusOK, "", nil)
}

// TogglePublished 设置发布状态
// @Summary 设置帖子发布状态（调用方传入目标值）
// @Tags 帖子
// @Param id path int true "帖子ID"
// @Param published formData string true "true / false"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Failure
// @Failure 404 {object} response.Failure
// @Router /api/v1/posts/{id}/published [patch]
func (h *Handler) TogglePublished(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	form, err := formValues(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	published, err := service.ParsePublished(form.Get("published"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	post, err := h.postService.TogglePublished(c.Request.Context(), id, published)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Mutation(c, http.StatusOK, "post", post)
}
