package service

import (
	"context"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/repository"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type EntryRepository interface {
	GetByID(ctx context.Context, id string) (*schema.DataEntry, error)
	CreateWithAssessments(ctx context.Context, entry *schema.DataEntry, assessments []*schema.SkillAssessment) error
	GetByStudent(ctx context.Context, studentID string) ([]schema.DataEntry, error)
}

type AssessmentRepository interface {
	GetByID(ctx context.Context, id int64) (*schema.SkillAssessment, error)
	GetByEntry(ctx context.Context, dataEntryID string) ([]schema.SkillAssessment, error)
	GetPendingReview(ctx context.Context, studentID string, limit int) ([]schema.SkillAssessment, error)
	MarkCorrected(ctx context.Context, id int64) error
}

type CorrectionRepository interface {
	Submit(ctx context.Context, correction *schema.Correction) error
	GetRecentWithNotes(ctx context.Context, skillName string, limit int) ([]repository.FewShotRow, error)
}

// RubricProvider 评分细则来源
type RubricProvider interface {
	Content() string
	Version() string
}
