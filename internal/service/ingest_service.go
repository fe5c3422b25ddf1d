package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/ai"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/repository"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// IngestService 数据采集服务：接收一条观察数据，跑推理，条目与评估一并落库。
// 细则全文与 few-shot 示例每次调用重新读取，服务自身无跨调用可变状态，
// 不同条目的采集可并行执行。
type IngestService struct {
	client    ai.ChatClient
	rubric    RubricProvider
	fewShot   *FewShotService
	entryRepo EntryRepository
}

// NewIngestService 创建采集服务
func NewIngestService(client ai.ChatClient, rubric RubricProvider, fewShot *FewShotService, entryRepo EntryRepository) *IngestService {
	return &IngestService{
		client:    client,
		rubric:    rubric,
		fewShot:   fewShot,
		entryRepo: entryRepo,
	}
}

// IngestResult 采集结果
type IngestResult struct {
	DataEntryID   string
	AssessmentIDs []int64
	Skipped       int // 未通过校验被丢弃的模型输出条数
}

// IngestEntry 采集一条数据：校验 → 推理 → 条目与全部评估在一个事务内落库。
// 模型调用失败时整体中止，条目不落库；零条评估是合法的成功结果。
func (s *IngestService) IngestEntry(ctx context.Context, entry *schema.DataEntry) (*IngestResult, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	// 提前拦截重复 ID，避免白跑一次模型调用
	if existing, err := s.entryRepo.GetByID(ctx, entry.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrDuplicateEntry, entry.ID)
	}

	examples, err := s.fewShot.ExamplesForEntry(ctx, entry)
	if err != nil {
		return nil, err
	}

	engine := ai.NewInferenceEngine(s.client, s.rubric.Content(), examples)
	generated, err := engine.AssessSkills(ctx, entry)
	if err != nil {
		return nil, err
	}

	assessments, skipped := s.toSchema(entry, generated)
	if err := s.entryRepo.CreateWithAssessments(ctx, entry, assessments); err != nil {
		return nil, err
	}

	result := &IngestResult{DataEntryID: entry.ID, Skipped: skipped}
	for _, a := range assessments {
		result.AssessmentIDs = append(result.AssessmentIDs, a.ID)
	}
	slog.Info("数据采集完成", "entry", entry.ID, "assessments", len(assessments), "skipped", skipped)
	return result, nil
}

// toSchema 把模型输出转为持久化模型；技能名/分类/等级不合法的条目记录并丢弃
func (s *IngestService) toSchema(entry *schema.DataEntry, generated []ai.GeneratedAssessment) ([]*schema.SkillAssessment, int) {
	var (
		out     []*schema.SkillAssessment
		skipped int
	)
	for _, g := range generated {
		level := schema.NormalizeLevel(g.Level)
		confidence := ai.ConfidenceFloor
		if g.ConfidenceScore != nil {
			confidence = *g.ConfidenceScore
		}

		a := &schema.SkillAssessment{
			DataEntryID:     entry.ID,
			StudentID:       entry.StudentID,
			SkillName:       g.SkillName,
			SkillCategory:   g.SkillCategory,
			Level:           level,
			ConfidenceScore: confidence,
			Justification:   g.Justification,
			SourceQuote:     g.SourceQuote,
			DataPointCount:  g.DataPointCount,
			RubricVersion:   s.rubric.Version(),
		}
		if err := a.Validate(); err != nil {
			slog.Warn("丢弃不合法的模型评估", "entry", entry.ID, "skill", g.SkillName, "error", err)
			skipped++
			continue
		}
		out = append(out, a)
	}
	return out, skipped
}

// validateEntry 校验条目形状：类型枚举、日期格式、正文非空
func validateEntry(entry *schema.DataEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("条目 ID 不能为空")
	}
	if !schema.IsValidEntryType(entry.Type) {
		return fmt.Errorf("未知条目类型: %q", entry.Type)
	}
	if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
		return fmt.Errorf("日期格式应为 YYYY-MM-DD: %q", entry.Date)
	}
	if entry.Content == "" {
		return fmt.Errorf("条目正文不能为空")
	}
	return nil
}
