package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/ai"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// ExampleIndex 修正示例的向量索引：按语义相似度为新条目召回最贴近的教师修正。
// 只索引带教师备注的修正——few-shot 候选集与按时间召回完全一致。
type ExampleIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   *ai.EmbeddingClient
}

// ExampleIndexConfig 配置
type ExampleIndexConfig struct {
	StoragePath string // 向量数据库存储路径，留空时使用纯内存库
}

// NewExampleIndex 创建示例索引
func NewExampleIndex(embedder *ai.EmbeddingClient, cfg *ExampleIndexConfig) (*ExampleIndex, error) {
	if cfg == nil {
		cfg = &ExampleIndexConfig{}
	}

	var (
		db  *chromem.DB
		err error
	)
	if cfg.StoragePath == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
			return nil, fmt.Errorf("创建索引目录失败: %w", err)
		}
		db, err = chromem.NewPersistentDB(cfg.StoragePath, false)
		if err != nil {
			return nil, fmt.Errorf("创建向量数据库失败: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection("corrections", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}

	return &ExampleIndex{
		db:         db,
		collection: collection,
		embedder:   embedder,
	}, nil
}

// Ready 向量化客户端已配置时索引才可用
func (idx *ExampleIndex) Ready() bool {
	return idx.embedder != nil && idx.embedder.IsConfigured()
}

// IndexCorrection 索引一条修正。无教师备注的修正直接跳过。
func (idx *ExampleIndex) IndexCorrection(ctx context.Context, correction *schema.Correction, assessment *schema.SkillAssessment) error {
	if !idx.Ready() {
		slog.Debug("向量化客户端未配置，跳过索引")
		return nil
	}
	if correction.TeacherNotes == "" {
		return nil
	}

	// 以“引用 + 修正后理由 + 教师备注”作为语义内容
	content := fmt.Sprintf("Skill: %s\nQuote: %s\nJustification: %s\nTeacher note: %s",
		assessment.SkillName, assessment.SourceQuote, correction.CorrectedJustification, correction.TeacherNotes)

	embeddings, err := idx.embedder.Embed(ctx, []string{content})
	if err != nil {
		return fmt.Errorf("生成嵌入失败: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return fmt.Errorf("嵌入结果为空")
	}

	doc := chromem.Document{
		ID:        fmt.Sprintf("correction_%d", correction.ID),
		Content:   content,
		Embedding: embeddings[0],
		Metadata: map[string]string{
			"skill_name":     assessment.SkillName,
			"skill_category": assessment.SkillCategory,
			"level":          correction.CorrectedLevel,
			"justification":  correction.CorrectedJustification,
			"source_quote":   assessment.SourceQuote,
			"teacher_notes":  correction.TeacherNotes,
		},
	}

	if err := idx.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("添加文档失败: %w", err)
	}

	slog.Debug("索引修正示例", "correction", correction.ID, "skill", assessment.SkillName)
	return nil
}

// Query 按查询文本召回最相关的修正示例
func (idx *ExampleIndex) Query(ctx context.Context, query string, topK int) ([]ai.FewShotExample, error) {
	if !idx.Ready() {
		return nil, fmt.Errorf("向量化客户端未配置")
	}
	if topK <= 0 {
		topK = ai.MaxFewShotExamples
	}
	if count := idx.collection.Count(); count == 0 {
		return nil, nil
	} else if topK > count {
		topK = count
	}

	queryEmb, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("生成查询嵌入失败: %w", err)
	}
	if len(queryEmb) == 0 {
		return nil, fmt.Errorf("查询嵌入为空")
	}

	// 向量搜索 (使用余弦相似度)
	results, err := idx.collection.QueryEmbedding(ctx, queryEmb[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("向量搜索失败: %w", err)
	}

	examples := make([]ai.FewShotExample, 0, len(results))
	for _, r := range results {
		examples = append(examples, ai.FewShotExample{
			SkillName:     r.Metadata["skill_name"],
			SkillCategory: r.Metadata["skill_category"],
			Level:         r.Metadata["level"],
			Justification: r.Metadata["justification"],
			SourceQuote:   r.Metadata["source_quote"],
			TeacherNotes:  r.Metadata["teacher_notes"],
		})
		slog.Debug("召回修正示例", "id", r.ID, "similarity", strconv.FormatFloat(float64(r.Similarity), 'f', 3, 32))
	}
	return examples, nil
}
