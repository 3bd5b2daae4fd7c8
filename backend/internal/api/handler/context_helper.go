package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chrissi82/Dashboard-IU/backend/pkg/response"
)

// 由 JWTAuth 中间件注入的上下文键
const (
	CtxUsername       = "username"
	CtxTokenID        = "token_id"
	CtxTokenExpiresAt = "token_expires_at"
)

// MustGetUsername 从 Gin 上下文中安全提取当前账户。
// 如果 JWT 中间件未正确注入 username，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUsername(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxUsername)
	if !exists {
		response.Unauthorized(c, CodeUnauthorized, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// tokenFromContext 当前 Access Token 的 jti 与过期时间（登出时加入黑名单）
func tokenFromContext(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenID)
	exp, _ := c.Get(CtxTokenExpiresAt)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}
