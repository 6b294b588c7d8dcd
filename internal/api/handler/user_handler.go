package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/postboard/pkg/response"
)

// ListUsers 查询全部用户
// @Summary 用户列表（含帖子，按创建时间倒序）
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.boardService.ListUsers(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"list": users, "total": len(users)})
}

// CreateUser 创建用户
// @Summary 创建用户
// @Tags 用户
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param email formData string true "邮箱"
// @Param name formData string false "名称"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.Failure
// @Failure 409 {object} response.Failure
// @Router /api/v1/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	form, err := formValues(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.userService.Create(c.Request.Context(), form)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Mutation(c, http.StatusCreated, "user", user)
}

// UpdateUser 更新用户
// @Summary 更新用户（仅非空字段）
// @Tags 用户
// @Param id path int true "用户ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.Failure
// @Failure 409 {object} response.Failure
// @Router /api/v1/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	form, err := formValues(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.userService.Update(c.Request.Context(), id, form)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Mutation(c, http.StatusOK, "user", user)
}

// DeleteUser 删除用户及其帖子
// @Summary 删除用户（级联删除帖子）
// @Tags 用户
// @Param id path int true "用户ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.Failure
// @Router /api/v1/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Mutation(c, http.StatusOK, "", nil)
}
