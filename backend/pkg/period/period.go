// Package period 将学习周期划分为与日历半年对齐的学期区间。
//
// 每个区间结束于当年的 6 月 30 日或 12 月 31 日（最后一个区间截断到周期结束日），
// 因此无论周期从哪一天开始，得到的区间都与学期对齐。例如从 10 月 1 日开始时，
// 第一个区间只到 12 月 31 日，之后为完整的半年。
package period

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
)

// DateLayout 持久化与接口中使用的日期格式
const DateLayout = "2006-01-02"

// Segment 一个闭区间 [Start, End]，两端均为日历日（UTC 零点）
type Segment struct {
	Start time.Time
	End   time.Time
}

// Contains 判断某日是否落在区间内（含两端）
func (s Segment) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(s.Start) && !d.After(s.End)
}

// Days 区间包含的天数
func (s Segment) Days() int {
	return int(s.End.Sub(s.Start).Hours()/24) + 1
}

func (s Segment) String() string {
	return fmt.Sprintf("%s..%s", s.Start.Format(DateLayout), s.End.Format(DateLayout))
}

// Split 将 [start, end] 切分为学期区间
//
// 算法：从 start 开始，取当前区间起点所在半年的最后一天作为区间终点，
// 超过 end 时截断；输出后从终点的次日继续，直到某区间终点等于 end。
// start 不早于 end 时返回 ErrInvalidRange。
func Split(start, end time.Time) ([]Segment, error) {
	start, end = Day(start), Day(end)
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: %s >= %s", apperrors.ErrInvalidRange,
			start.Format(DateLayout), end.Format(DateLayout))
	}

	var segments []Segment
	current := start
	for {
		segEnd := Day(now.With(current).EndOfHalf())
		if segEnd.After(end) {
			segEnd = end
		}
		segments = append(segments, Segment{Start: current, End: segEnd})
		if segEnd.Equal(end) {
			return segments, nil
		}
		current = segEnd.AddDate(0, 0, 1)
	}
}

// Day 取 t 所在的日历日，归一化为 UTC 零点
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date 构造日历日
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay 解析 YYYY-MM-DD
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// FormatDay 格式化为 YYYY-MM-DD
func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}
