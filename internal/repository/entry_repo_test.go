package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/testutil"
)

func sampleEntry(id, studentID string) *schema.DataEntry {
	return &schema.DataEntry{
		ID:        id,
		StudentID: studentID,
		TeacherID: "teacher-1",
		Type:      "Teacher Observation",
		Date:      "2026-05-12",
		Content:   "Eva organized all project files into labeled folders",
	}
}

func sampleAssessment(entryID, studentID, skill string) *schema.SkillAssessment {
	return &schema.SkillAssessment{
		DataEntryID:     entryID,
		StudentID:       studentID,
		SkillName:       skill,
		SkillCategory:   schema.CategoryOf(skill),
		Level:           schema.LevelProficient,
		ConfidenceScore: 0.6,
		Justification:   "Demonstrates the skill independently",
		SourceQuote:     "organized all project files",
		DataPointCount:  1,
		RubricVersion:   "1.0",
	}
}

func TestEntryRepositoryCreateAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleEntry("e1", "s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.StudentID != "s1" {
		t.Fatalf("GetByID = %+v", got)
	}

	// 不存在的条目返回 nil, nil
	missing, err := repo.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("缺失条目应返回 nil, nil: %+v, %v", missing, err)
	}
}

func TestEntryRepositoryDuplicate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleEntry("e1", "s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, sampleEntry("e1", "s2"))
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("err = %v, want ErrDuplicateEntry", err)
	}
}

func TestEntryRepositoryCreateWithAssessments(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEntryRepository(db)
	assessRepo := NewAssessmentRepository(db)
	ctx := context.Background()

	entry := sampleEntry("e1", "s1")
	assessments := []*schema.SkillAssessment{
		sampleAssessment("e1", "s1", "Organization"),
		sampleAssessment("e1", "s1", "Collaboration"),
	}
	if err := repo.CreateWithAssessments(ctx, entry, assessments); err != nil {
		t.Fatalf("CreateWithAssessments: %v", err)
	}

	list, err := assessRepo.GetByEntry(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByEntry: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("评估数 = %d, want 2", len(list))
	}
}

// 条目重复时整个事务回滚，评估一条都不落库
func TestEntryRepositoryCreateWithAssessmentsAtomic(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEntryRepository(db)
	assessRepo := NewAssessmentRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleEntry("e1", "s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.CreateWithAssessments(ctx, sampleEntry("e1", "s1"), []*schema.SkillAssessment{
		sampleAssessment("e1", "s1", "Organization"),
	})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("err = %v, want ErrDuplicateEntry", err)
	}

	count, err := assessRepo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("回滚后评估数 = %d, want 0", count)
	}
}

// 零条评估也是合法的成功采集
func TestEntryRepositoryCreateWithNoAssessments(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	if err := repo.CreateWithAssessments(ctx, sampleEntry("e1", "s1"), nil); err != nil {
		t.Fatalf("CreateWithAssessments: %v", err)
	}
	got, err := repo.GetByID(ctx, "e1")
	if err != nil || got == nil {
		t.Fatalf("条目应已落库: %+v, %v", got, err)
	}
}

func TestEntryRepositoryGetByStudent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	e1 := sampleEntry("e1", "s1")
	e1.Date = "2026-05-10"
	e2 := sampleEntry("e2", "s1")
	e2.Date = "2026-05-12"
	e3 := sampleEntry("e3", "s2")
	for _, e := range []*schema.DataEntry{e1, e2, e3} {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create %s: %v", e.ID, err)
		}
	}

	entries, err := repo.GetByStudent(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByStudent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("条目数 = %d, want 2", len(entries))
	}
	// 按日期倒序
	if entries[0].ID != "e2" || entries[1].ID != "e1" {
		t.Fatalf("顺序不符: %s, %s", entries[0].ID, entries[1].ID)
	}
}
