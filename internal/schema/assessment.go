package schema

import (
	"fmt"
	"time"
)

// SkillAssessment 一条数据对一项技能的推断结论。
// 仅由推理引擎创建；教师修正或确认时把 Corrected 置为 true，其余字段不再变动。
type SkillAssessment struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	DataEntryID     string    `gorm:"size:100;index"`
	StudentID       string    `gorm:"size:50;index"`
	SkillName       string    `gorm:"size:50;index"` // 17 项固定技能之一
	SkillCategory   string    `gorm:"size:20"`       // SEL / EF / 21st Century
	Level           string    `gorm:"size:20"`       // 完整等级名，如 Proficient
	ConfidenceScore float64   // 启发式置信度 [0.5, 1.0]
	Justification   string    `gorm:"type:text"`
	SourceQuote     string    `gorm:"type:text"` // 数据原文中的逐字引用
	DataPointCount  int       `gorm:"default:1"`
	RubricVersion   string    `gorm:"size:20"`
	Corrected       bool      `gorm:"default:false;index"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// TableName 指定表名
func (SkillAssessment) TableName() string {
	return "assessments"
}

// Validate 校验技能名、分类匹配、等级与置信度区间
func (a *SkillAssessment) Validate() error {
	if !IsValidSkill(a.SkillName) {
		return fmt.Errorf("未知技能: %q", a.SkillName)
	}
	if want := CategoryOf(a.SkillName); a.SkillCategory != want {
		return fmt.Errorf("技能 %q 的分类应为 %q，实际为 %q", a.SkillName, want, a.SkillCategory)
	}
	if !IsValidLevel(a.Level) {
		return fmt.Errorf("未知等级: %q", a.Level)
	}
	if a.ConfidenceScore < 0.5 || a.ConfidenceScore > 1.0 {
		return fmt.Errorf("置信度 %v 超出 [0.5, 1.0]", a.ConfidenceScore)
	}
	return nil
}
