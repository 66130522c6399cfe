package admin

import (
	"errors"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		response.Error(c, response.CodeBadRequest, "captcha verification failed")
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warnw("admin_login_rejected", "username", req.Username, "ip", c.ClientIP())
			response.Unauthorized(c, service.ErrInvalidCredentials.Error())
			return
		}
		logger.Errorw("admin_login_failed", "username", req.Username, "error", err)
		response.Error(c, response.CodeInternal, "internal error")
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(admin.ID)
	if err != nil {
		roles = nil
	}

	logger.Infow("admin_login", "admin_id", admin.ID, "ip", c.ClientIP())
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"is_super": admin.IsSuper,
			"roles":    roles,
		},
	})
}

// Me 当前管理员信息
func (h *Handler) Me(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil || admin == nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(admin.ID)
	if err != nil {
		roles = nil
	}
	response.Success(c, gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"is_super":      admin.IsSuper,
		"roles":         roles,
		"last_login_at": admin.LastLoginAt,
	})
}
