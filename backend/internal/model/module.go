package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
)

// ── 模块状态 ──

// StatusKind 模块状态类别
type StatusKind int

const (
	StatusPending    StatusKind = iota // Ausstehend
	StatusInProgress                   // In Arbeit
	StatusPassed                       // ✓ <成绩>
	StatusFailed                       // ✗ <成绩>
)

// 成绩约定：1.0 最好，5.0 最差，4.0 为及格线
const (
	MinGrade      = 1.0
	MaxGrade      = 5.0
	PassThreshold = 4.0
)

// 持久化状态文本
const (
	statusTextPending    = "Ausstehend"
	statusTextInProgress = "In Arbeit"
	markerPassed         = "✓"
	markerFailed         = "✗"
)

// ModuleStatus 模块状态（带成绩的标签值）
// Grade 仅在 Passed / Failed 时有意义
type ModuleStatus struct {
	Kind  StatusKind
	Grade float64
}

// Pending 未开始
func Pending() ModuleStatus { return ModuleStatus{Kind: StatusPending} }

// InProgress 进行中
func InProgress() ModuleStatus { return ModuleStatus{Kind: StatusInProgress} }

// Graded 根据成绩构造已评分状态：成绩 ≤ 4.0 为通过，否则为未通过
func Graded(grade float64) (ModuleStatus, error) {
	if math.IsNaN(grade) || grade < MinGrade || grade > MaxGrade {
		return ModuleStatus{}, apperrors.Validation("成绩必须在 %.1f 到 %.1f 之间", MinGrade, MaxGrade)
	}
	if grade <= PassThreshold {
		return ModuleStatus{Kind: StatusPassed, Grade: grade}, nil
	}
	return ModuleStatus{Kind: StatusFailed, Grade: grade}, nil
}

// ParseStatus 解析持久化的状态文本
// 未知文本或标记后成绩无法解析时返回 ErrCorruptRecord，避免统计被悄悄歪曲。
// 标记与成绩是否一致不在此校验："✓ 4.3" 仍视为通过。
func ParseStatus(s string) (ModuleStatus, error) {
	text := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(text, statusTextPending):
		return Pending(), nil
	case strings.EqualFold(text, statusTextInProgress):
		return InProgress(), nil
	case strings.HasPrefix(text, markerPassed):
		grade, err := parseGrade(strings.TrimPrefix(text, markerPassed))
		if err != nil {
			return ModuleStatus{}, apperrors.Corrupt("状态 %q 中的成绩无效", s)
		}
		return ModuleStatus{Kind: StatusPassed, Grade: grade}, nil
	case strings.HasPrefix(text, markerFailed):
		grade, err := parseGrade(strings.TrimPrefix(text, markerFailed))
		if err != nil {
			return ModuleStatus{}, apperrors.Corrupt("状态 %q 中的成绩无效", s)
		}
		return ModuleStatus{Kind: StatusFailed, Grade: grade}, nil
	default:
		return ModuleStatus{}, apperrors.Corrupt("未知的模块状态 %q", s)
	}
}

func parseGrade(s string) (float64, error) {
	g, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return 0, fmt.Errorf("成绩不是有限数值: %v", g)
	}
	return g, nil
}

// String 持久化 / 展示文本，例如 "✓ 1.7"、"✗ 5.0"、"In Arbeit"
func (s ModuleStatus) String() string {
	switch s.Kind {
	case StatusInProgress:
		return statusTextInProgress
	case StatusPassed:
		return markerPassed + " " + FormatGrade(s.Grade)
	case StatusFailed:
		return markerFailed + " " + FormatGrade(s.Grade)
	default:
		return statusTextPending
	}
}

// IsGraded 是否带成绩
func (s ModuleStatus) IsGraded() bool {
	return s.Kind == StatusPassed || s.Kind == StatusFailed
}

// IsPassed 是否标记为通过
func (s ModuleStatus) IsPassed() bool { return s.Kind == StatusPassed }

// IsOpen 是否仍未完成（未开始或进行中）
func (s ModuleStatus) IsOpen() bool {
	return s.Kind == StatusPending || s.Kind == StatusInProgress
}

// FormatGrade 成绩至少保留一位小数："1.7"、"5.0"、"2.25"
func FormatGrade(g float64) string {
	text := strconv.FormatFloat(g, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// ── 考核形式 ──

// 已知考核形式
const (
	ExamWritten   = "Klausur"
	ExamWorkbook  = "Advanced Workbook"
	ExamPortfolio = "Portfolio"
)

// WrittenExamMinutes 笔试允许的时长
var WrittenExamMinutes = []int{30, 60, 90, 120}

var (
	examFormPattern = regexp.MustCompile(`^(.+?)\s*\((.*)\)$`)
	minutesPattern  = regexp.MustCompile(`^(\d+)min$`)
	weeksPattern    = regexp.MustCompile(`^(\d+) Wochen$`)
	tasksPattern    = regexp.MustCompile(`^(\d+) Aufgaben$`)
)

// ExamForm 考核形式，文本形式为 "<Kind> (<Parameter>)"
type ExamForm struct {
	Kind      string
	Parameter string
}

// WrittenExam 笔试，例如 "Klausur (90min)"
func WrittenExam(minutes int) ExamForm {
	return ExamForm{Kind: ExamWritten, Parameter: fmt.Sprintf("%dmin", minutes)}
}

// AdvancedWorkbook 例如 "Advanced Workbook (6 Wochen)"
func AdvancedWorkbook(weeks int) ExamForm {
	return ExamForm{Kind: ExamWorkbook, Parameter: fmt.Sprintf("%d Wochen", weeks)}
}

// PortfolioExam 例如 "Portfolio (4 Aufgaben)"
func PortfolioExam(tasks int) ExamForm {
	return ExamForm{Kind: ExamPortfolio, Parameter: fmt.Sprintf("%d Aufgaben", tasks)}
}

// ParseExamForm 宽松解析已存储的考核形式文本，不做合法性校验
func ParseExamForm(s string) ExamForm {
	text := strings.TrimSpace(s)
	if m := examFormPattern.FindStringSubmatch(text); m != nil {
		return ExamForm{Kind: strings.TrimSpace(m[1]), Parameter: strings.TrimSpace(m[2])}
	}
	return ExamForm{Kind: text}
}

func (e ExamForm) String() string {
	if e.Parameter == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Parameter)
}

// Validate 严格校验来自表现层的考核形式
func (e ExamForm) Validate() error {
	switch e.Kind {
	case ExamWritten:
		m := minutesPattern.FindStringSubmatch(e.Parameter)
		if m == nil {
			return apperrors.Validation("笔试时长格式无效: %q", e.Parameter)
		}
		minutes, _ := strconv.Atoi(m[1])
		for _, allowed := range WrittenExamMinutes {
			if minutes == allowed {
				return nil
			}
		}
		return apperrors.Validation("笔试时长必须为 30/60/90/120 分钟，实际 %d", minutes)
	case ExamWorkbook:
		return validatePositiveCount(weeksPattern, e.Parameter, "周数")
	case ExamPortfolio:
		return validatePositiveCount(tasksPattern, e.Parameter, "任务数")
	default:
		return apperrors.Validation("未知的考核形式 %q", e.Kind)
	}
}

func validatePositiveCount(pattern *regexp.Regexp, param, what string) error {
	m := pattern.FindStringSubmatch(param)
	if m == nil {
		return apperrors.Validation("%s格式无效: %q", what, param)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return apperrors.Validation("%s必须为正整数: %q", what, param)
	}
	return nil
}

// ── 模块 ──

// Module 一门课程模块
type Module struct {
	ID       string
	Name     string
	Credits  int
	ExamForm ExamForm
	Status   ModuleStatus
}

// NewModule 校验输入并分配稳定 ID
func NewModule(name string, credits int, exam ExamForm, status ModuleStatus) (Module, error) {
	m := Module{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Credits:  credits,
		ExamForm: exam,
		Status:   status,
	}
	if err := m.Validate(); err != nil {
		return Module{}, err
	}
	return m, nil
}

// Validate 校验模块字段
func (m Module) Validate() error {
	if m.Name == "" {
		return apperrors.Validation("模块名称不能为空")
	}
	if m.Credits <= 0 {
		return apperrors.Validation("学分必须为正整数，实际 %d", m.Credits)
	}
	if err := m.ExamForm.Validate(); err != nil {
		return err
	}
	if m.Status.IsGraded() {
		if _, err := Graded(m.Status.Grade); err != nil {
			return err
		}
	}
	return nil
}
