package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/chrissi82/Dashboard-IU/backend/internal/dto"
	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	"github.com/chrissi82/Dashboard-IU/backend/internal/service"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/response"
)

// DashboardHandler 仪表盘 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Overview 仪表盘总览
// GET /api/v1/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	overview, err := h.dashboardSvc.Overview(c.Request.Context(), username)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, overview)
}

// Credits 已获学分
// GET /api/v1/dashboard/credits
func (h *DashboardHandler) Credits(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	earned, err := h.dashboardSvc.TotalEarnedCredits(c.Request.Context(), username)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, dto.CreditsResponse{
		EarnedCredits:   earned,
		RequiredCredits: h.dashboardSvc.RequiredCredits(),
	})
}

// Grades 全部成绩
// GET /api/v1/dashboard/grades
func (h *DashboardHandler) Grades(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	grades, err := h.dashboardSvc.AllGrades(c.Request.Context(), username)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	resp := dto.GradesResponse{Grades: grades}
	if avg, ok := model.AverageGrade(grades); ok {
		resp.Average = &avg
	}
	response.OK(c, resp)
}
