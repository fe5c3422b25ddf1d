package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// CorrectionService 修正反馈回路的写入侧。
// 提交的修正经 CorrectionRepository 在单事务内完成快照、落库、翻转标记；
// 确认（无修改）只翻转标记、不产生修正记录，因此不会成为 few-shot 示例。
type CorrectionService struct {
	corrRepo   CorrectionRepository
	assessRepo AssessmentRepository
	index      *ExampleIndex // 可选
}

// NewCorrectionService 创建修正服务
func NewCorrectionService(corrRepo CorrectionRepository, assessRepo AssessmentRepository) *CorrectionService {
	return &CorrectionService{
		corrRepo:   corrRepo,
		assessRepo: assessRepo,
	}
}

// SetExampleIndex 设置语义索引（可选）
func (s *CorrectionService) SetExampleIndex(index *ExampleIndex) {
	s.index = index
}

// CorrectionRequest 修正请求
type CorrectionRequest struct {
	AssessmentID           int64
	CorrectedLevel         string // 接受 E/D/P/A 代码或完整等级名
	CorrectedJustification string // 可选，留空时沿用原理由
	TeacherNotes           string // 可选，留空的修正不参与 few-shot
	CorrectedBy            string
}

// SubmitCorrection 提交一条教师修正。
// 目标评估不存在时返回 repository.ErrAssessmentNotFound。
func (s *CorrectionService) SubmitCorrection(ctx context.Context, req CorrectionRequest) (*schema.Correction, error) {
	level := schema.NormalizeLevel(req.CorrectedLevel)
	if level == "" {
		return nil, fmt.Errorf("未知等级: %q", req.CorrectedLevel)
	}
	if req.CorrectedBy == "" {
		return nil, fmt.Errorf("缺少修正教师标识")
	}

	correction := &schema.Correction{
		AssessmentID:           req.AssessmentID,
		CorrectedLevel:         level,
		CorrectedJustification: req.CorrectedJustification,
		TeacherNotes:           req.TeacherNotes,
		CorrectedBy:            req.CorrectedBy,
	}

	if err := s.corrRepo.Submit(ctx, correction); err != nil {
		return nil, err
	}
	slog.Info("修正已提交", "correction", correction.ID, "assessment", req.AssessmentID, "by", req.CorrectedBy)

	// 索引失败不影响修正本身——修正已落库，示例下次仍可按时间召回
	if s.index != nil && correction.TeacherNotes != "" {
		if assessment, err := s.assessRepo.GetByID(ctx, correction.AssessmentID); err == nil {
			if err := s.index.IndexCorrection(ctx, correction, assessment); err != nil {
				slog.Warn("索引修正示例失败", "correction", correction.ID, "error", err)
			}
		}
	}

	return correction, nil
}

// ApproveAssessment 确认评估无需修改：只翻转 corrected 标记，不产生修正记录。
func (s *CorrectionService) ApproveAssessment(ctx context.Context, assessmentID int64, approvedBy string) error {
	if approvedBy == "" {
		return fmt.Errorf("缺少确认教师标识")
	}
	if err := s.assessRepo.MarkCorrected(ctx, assessmentID); err != nil {
		return err
	}
	slog.Info("评估已确认", "assessment", assessmentID, "by", approvedBy)
	return nil
}
