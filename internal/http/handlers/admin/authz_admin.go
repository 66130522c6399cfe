package admin

import (
	"strings"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"

	"github.com/gin-gonic/gin"
)

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load roles")
		return
	}
	response.Success(c, roles)
}

// RolePolicyEntry 角色授权条目
type RolePolicyEntry struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// CreateRoleRequest 创建角色请求
type CreateRoleRequest struct {
	Role     string            `json:"role" binding:"required"`
	Policies []RolePolicyEntry `json:"policies"`
}

// CreateRole 创建角色并授予权限
func (h *Handler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		response.Error(c, response.CodeBadRequest, "invalid role name")
		return
	}
	for _, policy := range req.Policies {
		if err := h.AuthzService.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
			logger.Errorw("admin_role_policy_grant_failed", "role", role, "error", err)
			response.Error(c, response.CodeInternal, "failed to grant role policy")
			return
		}
	}

	logger.Infow("admin_role_created", "role", role)
	response.Success(c, gin.H{"role": role})
}

// GetAdminRoles 查询管理员角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load admin roles")
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

// SetAdminRolesRequest 设置管理员角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAdminRoles 重设管理员角色（整体替换）
func (h *Handler) SetAdminRoles(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	target, err := h.AdminRepo.GetByID(id)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load admin")
		return
	}
	if target == nil {
		response.NotFound(c, "admin not found")
		return
	}

	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		if strings.Contains(err.Error(), "invalid role") {
			response.Error(c, response.CodeBadRequest, err.Error())
			return
		}
		logger.Errorw("admin_set_roles_failed", "admin_id", id, "error", err)
		response.Error(c, response.CodeInternal, "failed to set admin roles")
		return
	}

	logger.Infow("admin_roles_updated", "admin_id", id, "roles", req.Roles)
	response.Success(c, gin.H{"admin_id": id, "roles": req.Roles})
}

// ListAdmins 管理员列表
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load admins")
		return
	}
	views := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			roles = nil
		}
		views = append(views, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper,
			"roles":         roles,
			"last_login_at": admin.LastLoginAt,
			"created_at":    admin.CreatedAt,
		})
	}
	response.Success(c, views)
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Roles    []string `json:"roles"`
}

// CreateAdmin 创建管理员并分配角色
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < 8 {
		response.Error(c, response.CodeBadRequest, "username and password (8+ chars) are required")
		return
	}

	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to create admin")
		return
	}
	if existing != nil {
		response.Error(c, response.CodeConflict, "username already exists")
		return
	}

	hash, err := h.AuthService.HashPassword(req.Password)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to create admin")
		return
	}
	admin := &models.Admin{Username: username, PasswordHash: hash}
	if err := h.AdminRepo.Create(admin); err != nil {
		logger.Errorw("admin_create_failed", "username", username, "error", err)
		response.Error(c, response.CodeInternal, "failed to create admin")
		return
	}

	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			logger.Warnw("admin_assign_roles_failed", "admin_id", admin.ID, "error", err)
		}
	}

	logger.Infow("admin_created", "admin_id", admin.ID, "username", username)
	response.Success(c, gin.H{
		"id":       admin.ID,
		"username": admin.Username,
		"roles":    req.Roles,
	})
}
