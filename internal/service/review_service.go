package service

import (
	"context"
	"fmt"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// ReviewService 教师复核队列：按置信度升序排列未复核评估。
// 排序依赖置信度启发式的固定权重，最不确定的结论最先出现在教师面前。
type ReviewService struct {
	assessRepo AssessmentRepository
}

// NewReviewService 创建复核服务
func NewReviewService(assessRepo AssessmentRepository) *ReviewService {
	return &ReviewService{assessRepo: assessRepo}
}

const defaultReviewLimit = 20

// ListPending 列出待复核评估（置信度升序）。studentID 为空时跨学生。
func (s *ReviewService) ListPending(ctx context.Context, studentID string, limit int) ([]schema.SkillAssessment, error) {
	if limit <= 0 {
		limit = defaultReviewLimit
	}
	list, err := s.assessRepo.GetPendingReview(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("获取复核队列失败: %w", err)
	}
	return list, nil
}
