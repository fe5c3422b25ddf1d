package service

import (
	"context"
	"testing"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/repository"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/testutil"
)

func TestReviewListPending(t *testing.T) {
	db := testutil.OpenTestDB(t)
	assessRepo := repository.NewAssessmentRepository(db)
	svc := NewReviewService(assessRepo)
	ctx := context.Background()

	mk := func(skill string, confidence float64, corrected bool) *schema.SkillAssessment {
		return &schema.SkillAssessment{
			DataEntryID: "e1", StudentID: "s1",
			SkillName: skill, SkillCategory: schema.CategoryOf(skill),
			Level: schema.LevelProficient, ConfidenceScore: confidence,
			Justification: "j", SourceQuote: "q", Corrected: corrected,
		}
	}
	batch := []*schema.SkillAssessment{
		mk("Organization", 0.9, false),
		mk("Collaboration", 0.55, false),
		mk("Communication", 0.7, true), // 已复核
	}
	if err := assessRepo.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	list, err := svc.ListPending(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("待复核数 = %d, want 2", len(list))
	}
	// 最不确定的排在最前
	if list[0].SkillName != "Collaboration" || list[1].SkillName != "Organization" {
		t.Fatalf("顺序不符: %s, %s", list[0].SkillName, list[1].SkillName)
	}
}

func TestReviewListPendingLimit(t *testing.T) {
	db := testutil.OpenTestDB(t)
	assessRepo := repository.NewAssessmentRepository(db)
	svc := NewReviewService(assessRepo)
	ctx := context.Background()

	var batch []*schema.SkillAssessment
	for i := 0; i < 25; i++ {
		batch = append(batch, &schema.SkillAssessment{
			DataEntryID: "e1", StudentID: "s1",
			SkillName: "Organization", SkillCategory: schema.CategoryEF,
			Level: schema.LevelProficient, ConfidenceScore: 0.6,
			Justification: "j", SourceQuote: "q",
		})
	}
	if err := assessRepo.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	// limit <= 0 时取默认上限 20
	list, err := svc.ListPending(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(list) != 20 {
		t.Fatalf("待复核数 = %d, want 20", len(list))
	}

	list, err = svc.ListPending(ctx, "", 3)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("待复核数 = %d, want 3", len(list))
	}
}
