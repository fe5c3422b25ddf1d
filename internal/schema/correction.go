package schema

import "time"

// Correction 教师对一条评估的修正记录。只插入，从不更新或删除。
// Original* 字段在提交修正那一刻快照自评估当时的值，不做事后重算。
// 带 TeacherNotes 的修正会作为 few-shot 示例回放到后续推理调用。
type Correction struct {
	ID                     int64     `gorm:"primaryKey;autoIncrement"`
	AssessmentID           int64     `gorm:"index"`
	OriginalLevel          string    `gorm:"size:20"`
	CorrectedLevel         string    `gorm:"size:20"`
	OriginalJustification  string    `gorm:"type:text"`
	CorrectedJustification string    `gorm:"type:text"`
	TeacherNotes           string    `gorm:"type:text"` // 为空的修正不参与 few-shot
	CorrectedBy            string    `gorm:"size:50"`
	CorrectedAt            time.Time `gorm:"autoCreateTime;index"`
}

// TableName 指定表名
func (Correction) TableName() string {
	return "teacher_corrections"
}
