package dto

// ── 仪表盘 DTO ──

// OverviewResponse 仪表盘总览
type OverviewResponse struct {
	Account         ProfileResponse   `json:"account"`
	EarnedCredits   int               `json:"earned_credits"`
	RequiredCredits int               `json:"required_credits"`
	Progress        float64           `json:"progress"` // 0..1
	Average         *float64          `json:"average"`  // 无成绩时为 null
	TargetGrade     float64           `json:"target_grade"`
	BelowTarget     bool              `json:"below_target"` // 平均成绩差于目标成绩（数值更大）
	Semesters       []SemesterSummary `json:"semesters"`
}

// CreditsResponse 学分统计
type CreditsResponse struct {
	EarnedCredits   int `json:"earned_credits"`
	RequiredCredits int `json:"required_credits"`
}

// GradesResponse 全部成绩
type GradesResponse struct {
	Grades  []float64 `json:"grades"`
	Average *float64  `json:"average"`
}
