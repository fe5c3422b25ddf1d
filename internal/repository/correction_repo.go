package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// FewShotRow few-shot 查询的联表结果行
type FewShotRow struct {
	SkillName     string
	SkillCategory string
	Level         string // 修正后的等级
	Justification string // 修正后的理由
	SourceQuote   string // 原评估的逐字引用
	TeacherNotes  string
}

// CorrectionRepository 教师修正仓储
type CorrectionRepository struct {
	db *gorm.DB
}

// NewCorrectionRepository 创建仓储
func NewCorrectionRepository(db *gorm.DB) *CorrectionRepository {
	return &CorrectionRepository{db: db}
}

// Submit 提交一条修正：快照原等级/理由、写入修正、翻转 corrected 标记。
// 三步在同一事务内完成，不存在只落了一半的可观测状态。
func (r *CorrectionRepository) Submit(ctx context.Context, correction *schema.Correction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a schema.SkillAssessment
		if err := tx.First(&a, correction.AssessmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id=%d", ErrAssessmentNotFound, correction.AssessmentID)
			}
			return fmt.Errorf("查询评估失败: %w", err)
		}

		// 在事务内快照“修正那一刻”的原值
		correction.OriginalLevel = a.Level
		correction.OriginalJustification = a.Justification
		if correction.CorrectedJustification == "" {
			correction.CorrectedJustification = a.Justification
		}

		if err := tx.Create(correction).Error; err != nil {
			return fmt.Errorf("写入修正失败: %w", err)
		}

		if err := tx.Model(&schema.SkillAssessment{}).
			Where("id = ?", correction.AssessmentID).
			Update("corrected", true).Error; err != nil {
			return fmt.Errorf("更新评估标记失败: %w", err)
		}
		return nil
	})
}

// GetRecentWithNotes 获取最近的带教师备注的修正（few-shot 候选）。
// 无备注的修正缺少解释信号，始终排除；skillName 为空时不过滤技能。
func (r *CorrectionRepository) GetRecentWithNotes(ctx context.Context, skillName string, limit int) ([]FewShotRow, error) {
	q := r.db.WithContext(ctx).
		Table("teacher_corrections AS tc").
		Select(`a.skill_name, a.skill_category,
			tc.corrected_level AS level,
			tc.corrected_justification AS justification,
			a.source_quote, tc.teacher_notes`).
		Joins("JOIN assessments a ON a.id = tc.assessment_id").
		Where("tc.teacher_notes IS NOT NULL AND tc.teacher_notes != ''")
	if skillName != "" {
		q = q.Where("a.skill_name = ?", skillName)
	}

	var rows []FewShotRow
	err := q.Order("tc.corrected_at DESC, tc.id DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询修正记录失败: %w", err)
	}
	return rows, nil
}

// GetByAssessment 获取某评估的全部修正（按时间倒序）
func (r *CorrectionRepository) GetByAssessment(ctx context.Context, assessmentID int64) ([]schema.Correction, error) {
	var list []schema.Correction
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("corrected_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("查询修正记录失败: %w", err)
	}
	return list, nil
}

// Count 统计修正数量
func (r *CorrectionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Correction{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计修正失败: %w", err)
	}
	return count, nil
}
