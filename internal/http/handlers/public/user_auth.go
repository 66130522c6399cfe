package public

import (
	"strconv"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// UserLoginRequest 用户登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func userView(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"created_at":   user.CreatedAt,
	}
}

// Register 注册用户
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	user, err := h.UserAuthService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondWithMappedError(c, err, userAuthErrorRules)
		return
	}

	logger.Infow("user_registered", "user_id", user.ID)
	response.Success(c, userView(user))
}

// Login 用户登录，返回 JWT
func (h *Handler) Login(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, userAuthErrorRules)
		return
	}

	logger.Infow("user_login", "user_id", user.ID, "ip", c.ClientIP())
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       userView(user),
	})
}

// Me 当前登录用户信息
func (h *Handler) Me(c *gin.Context) {
	user, err := h.UserAuthService.GetByID(getUserID(c))
	if err != nil || user == nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	response.Success(c, userView(user))
}

// MyOrders 当前用户订单列表（含授权状态）
func (h *Handler) MyOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.OrderService.ListForUser(getUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load orders")
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// MyOrder 当前用户订单详情
func (h *Handler) MyOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, response.CodeBadRequest, "invalid order id")
		return
	}

	order, err := h.OrderService.GetForUser(uint(id), getUserID(c))
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules)
		return
	}
	response.Success(c, order)
}
