package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

// DefaultTargetGrade 目标成绩缺失或无法解析时使用
const DefaultTargetGrade = 1.0

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidUsername 用户名会作为目录名使用，只允许安全字符
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name) && name != "." && name != ".."
}

// Profile 账户资料，对应账户目录下的 Data 记录
type Profile struct {
	Username    string
	Password    string // bcrypt 哈希；旧数据可能为明文
	TargetGrade string
	StartDate   time.Time
	EndDate     time.Time
	Program     string
}

// TargetGradeValue 目标成绩数值
func (p *Profile) TargetGradeValue() float64 {
	g, err := strconv.ParseFloat(strings.TrimSpace(p.TargetGrade), 64)
	if err != nil || g < MinGrade || g > MaxGrade {
		return DefaultTargetGrade
	}
	return g
}

// Period 整个学习周期
func (p *Profile) Period() period.Segment {
	return period.Segment{Start: p.StartDate, End: p.EndDate}
}
