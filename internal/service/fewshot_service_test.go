package service

import (
	"context"
	"errors"
	"testing"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/repository"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/testutil"
)

// failingCorrectionRepo 模拟存储故障
type failingCorrectionRepo struct{ err error }

func (f *failingCorrectionRepo) Submit(context.Context, *schema.Correction) error { return f.err }
func (f *failingCorrectionRepo) GetRecentWithNotes(context.Context, string, int) ([]repository.FewShotRow, error) {
	return nil, f.err
}

func TestGetRecentCorrections(t *testing.T) {
	db := testutil.OpenTestDB(t)
	assessRepo := repository.NewAssessmentRepository(db)
	corrRepo := repository.NewCorrectionRepository(db)
	svc := NewFewShotService(corrRepo)
	ctx := context.Background()

	a := &schema.SkillAssessment{
		DataEntryID: "e1", StudentID: "s1",
		SkillName: "Organization", SkillCategory: schema.CategoryEF,
		Level: schema.LevelProficient, ConfidenceScore: 0.6,
		Justification: "j", SourceQuote: "organized all project files",
	}
	if err := assessRepo.CreateBatch(ctx, []*schema.SkillAssessment{a}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := corrRepo.Submit(ctx, &schema.Correction{
		AssessmentID:   a.ID,
		CorrectedLevel: schema.LevelDeveloping,
		TeacherNotes:   "Needed prompting",
		CorrectedBy:    "t1",
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	examples, err := svc.GetRecentCorrections(ctx, "", 5)
	if err != nil {
		t.Fatalf("GetRecentCorrections: %v", err)
	}
	if len(examples) != 1 {
		t.Fatalf("示例数 = %d, want 1", len(examples))
	}
	ex := examples[0]
	if ex.SkillName != "Organization" || ex.Level != schema.LevelDeveloping {
		t.Fatalf("示例字段不符: %+v", ex)
	}
	if ex.SourceQuote != "organized all project files" {
		t.Fatalf("引用应来自原评估: %q", ex.SourceQuote)
	}
	if ex.TeacherNotes != "Needed prompting" {
		t.Fatalf("备注不符: %q", ex.TeacherNotes)
	}
}

func TestGetRecentCorrectionsEmpty(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewFewShotService(repository.NewCorrectionRepository(db))

	examples, err := svc.GetRecentCorrections(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("GetRecentCorrections: %v", err)
	}
	if len(examples) != 0 {
		t.Fatalf("示例数 = %d, want 0", len(examples))
	}
}

// 存储故障必须上抛，不允许静默降级为零示例
func TestGetRecentCorrectionsPropagatesError(t *testing.T) {
	storageErr := errors.New("disk I/O error")
	svc := NewFewShotService(&failingCorrectionRepo{err: storageErr})

	_, err := svc.GetRecentCorrections(context.Background(), "", 5)
	if !errors.Is(err, storageErr) {
		t.Fatalf("err = %v, want 原始存储错误", err)
	}
}

func TestExamplesForEntryFallsBackToRecency(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewFewShotService(repository.NewCorrectionRepository(db))

	// 无语义索引时直接按时间召回
	examples, err := svc.ExamplesForEntry(context.Background(), &schema.DataEntry{ID: "e1", Content: "c"})
	if err != nil {
		t.Fatalf("ExamplesForEntry: %v", err)
	}
	if len(examples) != 0 {
		t.Fatalf("示例数 = %d, want 0", len(examples))
	}
}
