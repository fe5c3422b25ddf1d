package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// ErrDuplicateEntry 数据条目 ID 已存在
var ErrDuplicateEntry = errors.New("数据条目已存在")

// EntryRepository 数据条目仓储
type EntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository 创建仓储
func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create 写入一条数据条目；ID 冲突返回 ErrDuplicateEntry
func (r *EntryRepository) Create(ctx context.Context, entry *schema.DataEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.ID)
		}
		return fmt.Errorf("写入数据条目失败: %w", err)
	}
	return nil
}

// CreateWithAssessments 在同一事务内写入条目与它的全部评估。
// 模型调用失败的条目不会走到这里，因此不会出现“条目落库、评估半截”的状态。
func (r *EntryRepository) CreateWithAssessments(ctx context.Context, entry *schema.DataEntry, assessments []*schema.SkillAssessment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
				return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.ID)
			}
			return fmt.Errorf("写入数据条目失败: %w", err)
		}
		for _, a := range assessments {
			if err := tx.Create(a).Error; err != nil {
				return fmt.Errorf("写入评估失败: %w", err)
			}
		}
		return nil
	})
}

// GetByID 按 ID 获取条目，不存在返回 nil
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*schema.DataEntry, error) {
	var entry schema.DataEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询数据条目失败: %w", err)
	}
	return &entry, nil
}

// GetByStudent 获取某学生的全部条目（按日期倒序）
func (r *EntryRepository) GetByStudent(ctx context.Context, studentID string) ([]schema.DataEntry, error) {
	var entries []schema.DataEntry
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("查询数据条目失败: %w", err)
	}
	return entries, nil
}

// Count 统计条目数量
func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.DataEntry{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计数据条目失败: %w", err)
	}
	return count, nil
}
