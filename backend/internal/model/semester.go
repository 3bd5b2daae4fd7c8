package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

var semesterNamePattern = regexp.MustCompile(`^semester([1-9][0-9]*)$`)

// SemesterName 由序号生成存储键，例如 3 → "semester3"
func SemesterName(number int) string {
	return fmt.Sprintf("semester%d", number)
}

// ParseSemesterNumber 从存储键末尾的整数解析学期序号
func ParseSemesterNumber(name string) (int, error) {
	m := semesterNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, apperrors.Validation("学期名称无效: %q", name)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, apperrors.Validation("学期序号无效: %q", name)
	}
	return n, nil
}

// Semester 一个学期：固定的起止日期与有序的模块列表
type Semester struct {
	Number    int
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Modules   []Module // 插入顺序即展示顺序
}

// Label 展示名称，例如 "3. Semester"
func (s *Semester) Label() string {
	return fmt.Sprintf("%d. Semester", s.Number)
}

// Period 学期日期区间
func (s *Semester) Period() period.Segment {
	return period.Segment{Start: s.StartDate, End: s.EndDate}
}

// ModuleIndex 按 ID 查找模块位置，不存在时返回 -1
func (s *Semester) ModuleIndex(id string) int {
	for i := range s.Modules {
		if s.Modules[i].ID == id {
			return i
		}
	}
	return -1
}

// TotalCredits 本学期全部模块学分
func (s *Semester) TotalCredits() int {
	total := 0
	for _, m := range s.Modules {
		total += m.Credits
	}
	return total
}

// EarnedCredits 本学期已通过模块的学分（仅看通过标记）
func (s *Semester) EarnedCredits() int {
	earned := 0
	for _, m := range s.Modules {
		if m.Status.IsPassed() {
			earned += m.Credits
		}
	}
	return earned
}

// Grades 本学期全部已评分模块的成绩，按模块顺序
func (s *Semester) Grades() []float64 {
	var grades []float64
	for _, m := range s.Modules {
		if m.Status.IsGraded() {
			grades = append(grades, m.Status.Grade)
		}
	}
	return grades
}

// HasOpenModules 是否存在未开始或进行中的模块
func (s *Semester) HasOpenModules() bool {
	for _, m := range s.Modules {
		if m.Status.IsOpen() {
			return true
		}
	}
	return false
}

// ── 学期进度状态 ──

// TimingStatus 学期是否按计划推进
type TimingStatus string

const (
	TimingNoModules       TimingStatus = "no_modules"
	TimingNotStarted      TimingStatus = "not_started"
	TimingInProgress      TimingStatus = "in_progress"
	TimingCompletedOnTime TimingStatus = "completed_on_time"
	TimingCompletedLate   TimingStatus = "completed_late"
)

var timingLabels = map[TimingStatus]string{
	TimingNoModules:       "Noch keine Module hinzugefügt",
	TimingNotStarted:      "✓ Im Zeitplan, Semester noch nicht begonnen",
	TimingInProgress:      "✓ Im Zeitplan",
	TimingCompletedOnTime: "✓ Semester abgeschlossen",
	TimingCompletedLate:   "✗ Nicht im Zeitplan",
}

// Label 展示文本
func (t TimingStatus) Label() string {
	return timingLabels[t]
}

// Timing 根据 today 判断学期进度
// 没有模块 → NoModules；未开始 → NotStarted；进行中 → InProgress；
// 已结束时若仍有未完成模块 → CompletedLate，否则 CompletedOnTime。
func (s *Semester) Timing(today time.Time) TimingStatus {
	day := period.Day(today)
	switch {
	case len(s.Modules) == 0:
		return TimingNoModules
	case day.Before(s.StartDate):
		return TimingNotStarted
	case !day.After(s.EndDate):
		return TimingInProgress
	case s.HasOpenModules():
		return TimingCompletedLate
	default:
		return TimingCompletedOnTime
	}
}

// AverageGrade 成绩平均值，保留两位小数；没有成绩时 ok 为 false
func AverageGrade(grades []float64) (avg float64, ok bool) {
	if len(grades) == 0 {
		return 0, false
	}
	var sum float64
	for _, g := range grades {
		sum += g
	}
	return math.Round(sum/float64(len(grades))*100) / 100, true
}
