package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// ErrAssessmentNotFound 目标评估不存在
var ErrAssessmentNotFound = errors.New("评估不存在")

// AssessmentRepository 技能评估仓储
type AssessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository 创建仓储
func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// CreateBatch 批量写入评估（单条目的全部评估在一个事务中落库）
func (r *AssessmentRepository) CreateBatch(ctx context.Context, assessments []*schema.SkillAssessment) error {
	if len(assessments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assessments {
			if err := tx.Create(a).Error; err != nil {
				return fmt.Errorf("写入评估失败: %w", err)
			}
		}
		return nil
	})
}

// GetByID 按 ID 获取评估，不存在返回 ErrAssessmentNotFound
func (r *AssessmentRepository) GetByID(ctx context.Context, id int64) (*schema.SkillAssessment, error) {
	var a schema.SkillAssessment
	err := r.db.WithContext(ctx).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrAssessmentNotFound, id)
		}
		return nil, fmt.Errorf("查询评估失败: %w", err)
	}
	return &a, nil
}

// GetByEntry 获取某条目产生的全部评估
func (r *AssessmentRepository) GetByEntry(ctx context.Context, dataEntryID string) ([]schema.SkillAssessment, error) {
	var list []schema.SkillAssessment
	err := r.db.WithContext(ctx).
		Where("data_entry_id = ?", dataEntryID).
		Order("id").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("查询评估失败: %w", err)
	}
	return list, nil
}

// GetByStudentSkill 获取某学生某技能的评估（按创建时间升序，供趋势展示）
func (r *AssessmentRepository) GetByStudentSkill(ctx context.Context, studentID, skillName string) ([]schema.SkillAssessment, error) {
	var list []schema.SkillAssessment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND skill_name = ?", studentID, skillName).
		Order("created_at").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("查询评估失败: %w", err)
	}
	return list, nil
}

// GetPendingReview 获取未复核的评估，按置信度升序——教师优先复核最不确定的结论。
// studentID 为空时返回全部学生。
func (r *AssessmentRepository) GetPendingReview(ctx context.Context, studentID string, limit int) ([]schema.SkillAssessment, error) {
	q := r.db.WithContext(ctx).Where("corrected = ?", false)
	if studentID != "" {
		q = q.Where("student_id = ?", studentID)
	}
	var list []schema.SkillAssessment
	err := q.Order("confidence_score ASC, id ASC").Limit(limit).Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("查询待复核评估失败: %w", err)
	}
	return list, nil
}

// MarkCorrected 将评估标记为已复核
func (r *AssessmentRepository) MarkCorrected(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&schema.SkillAssessment{}).
		Where("id = ?", id).
		Update("corrected", true)
	if res.Error != nil {
		return fmt.Errorf("标记评估失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id=%d", ErrAssessmentNotFound, id)
	}
	return nil
}

// Count 统计评估数量
func (r *AssessmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.SkillAssessment{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计评估失败: %w", err)
	}
	return count, nil
}
