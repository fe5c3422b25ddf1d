package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/ai"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// FewShotService few-shot 示例服务：把教师修正回放为推理的上下文示例。
// 默认按修正时间倒序取最近 N 条；配置了向量索引时改用语义相似度排序，
// 候选集不变——仍然只有带教师备注的修正有资格进入提示词。
type FewShotService struct {
	corrRepo CorrectionRepository
	index    *ExampleIndex // 可选
}

// NewFewShotService 创建服务
func NewFewShotService(corrRepo CorrectionRepository) *FewShotService {
	return &FewShotService{corrRepo: corrRepo}
}

// SetExampleIndex 设置语义索引（可选）
func (s *FewShotService) SetExampleIndex(index *ExampleIndex) {
	s.index = index
}

// GetRecentCorrections 获取最近的修正示例。
// skillName 为空时不过滤；limit <= 0 时取默认上限。
// 存储读取失败返回错误，绝不静默降级为空列表。
func (s *FewShotService) GetRecentCorrections(ctx context.Context, skillName string, limit int) ([]ai.FewShotExample, error) {
	if limit <= 0 {
		limit = ai.MaxFewShotExamples
	}

	rows, err := s.corrRepo.GetRecentWithNotes(ctx, skillName, limit)
	if err != nil {
		return nil, fmt.Errorf("获取修正示例失败: %w", err)
	}

	examples := make([]ai.FewShotExample, 0, len(rows))
	for _, row := range rows {
		examples = append(examples, ai.FewShotExample{
			SkillName:     row.SkillName,
			SkillCategory: row.SkillCategory,
			Level:         row.Level,
			Justification: row.Justification,
			SourceQuote:   row.SourceQuote,
			TeacherNotes:  row.TeacherNotes,
		})
	}
	return examples, nil
}

// ExamplesForEntry 为一条待推理的条目挑选示例。
// 有语义索引时按条目正文召回最相关的修正；召回失败回退到按时间取最近。
func (s *FewShotService) ExamplesForEntry(ctx context.Context, entry *schema.DataEntry) ([]ai.FewShotExample, error) {
	if s.index != nil && s.index.Ready() {
		examples, err := s.index.Query(ctx, entry.Content, ai.MaxFewShotExamples)
		if err != nil {
			slog.Warn("语义召回失败，回退到按时间取最近修正", "entry", entry.ID, "error", err)
		} else if len(examples) > 0 {
			return examples, nil
		}
	}
	return s.GetRecentCorrections(ctx, "", ai.MaxFewShotExamples)
}
