package admin

import (
	"strings"

	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表 (Admin)
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := pageParams(c)
	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load users")
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetUser 用户详情 (Admin)
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.UserRepo.GetByID(id)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

// UpdateUserStatusRequest 用户状态更新请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateUserStatus 启用/禁用用户
// 禁用只拦截登录，不影响已签发的交付授权
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}
	if req.Status != constants.UserStatusActive && req.Status != constants.UserStatusDisabled {
		response.Error(c, response.CodeBadRequest, "invalid status")
		return
	}

	user, err := h.UserRepo.GetByID(id)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	user.Status = req.Status
	if err := h.UserRepo.Update(user); err != nil {
		logger.Errorw("admin_user_status_update_failed", "user_id", id, "error", err)
		response.Error(c, response.CodeInternal, "failed to update user")
		return
	}

	logger.Infow("admin_user_status_updated", "user_id", id, "status", req.Status)
	response.Success(c, user)
}
