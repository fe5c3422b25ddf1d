package schema

import "time"

// DataEntry 一条关于学生的原始观察数据（转写稿、反思日志、教师观察等）。
// 入库后不可变：仅由采集流程创建，从不更新。
// 数据量级：千级
type DataEntry struct {
	ID        string    `gorm:"primaryKey;size:100"` // 调用方分配的稳定 ID，如 S001_group_disc_2025-08-15
	StudentID string    `gorm:"size:50;index"`
	TeacherID string    `gorm:"size:50;index"`
	Type      string    `gorm:"size:50"`  // 六种固定类型之一，见 EntryTypes
	Date      string    `gorm:"size:10"`  // YYYY-MM-DD
	Content   string    `gorm:"type:text"`
	Metadata  JSONMap   `gorm:"type:text"` // 开放元数据（如 context 备注）
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName 指定表名
func (DataEntry) TableName() string {
	return "data_entries"
}

// Context 返回元数据中的情境备注
func (e *DataEntry) Context() string {
	return e.Metadata.GetString("context")
}
