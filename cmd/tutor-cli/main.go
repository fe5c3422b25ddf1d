package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/ai"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/pkg/buildinfo"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/pkg/config"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/repository"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/service"
)

var (
	cfgFile string
	cfg     *config.Config
	db      *repository.Database
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tutor",
		Short: "Tutor - AI 驱动的非学科技能评估系统",
		Long:  `Tutor 从学生的观察数据（讨论转写、反思日志、教师观察等）中推断 17 项非学科技能的熟练度评估，教师修正会作为 few-shot 示例回流到后续推理。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 加载配置
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				slog.Error("加载配置失败", "error", err)
				os.Exit(1)
			}
			config.SetupLogger(cfg.App.LogLevel)

			// 初始化数据库
			db, err = repository.NewDatabase(cfg.Storage.DBPath)
			if err != nil {
				slog.Error("初始化数据库失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	// 添加子命令
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(correctCmd())
	rootCmd.AddCommand(approveCmd())
	rootCmd.AddCommand(examplesCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// entryFile 采集输入文件的 JSON 结构
type entryFile struct {
	DataEntryID string                 `json:"data_entry_id"`
	StudentID   string                 `json:"student_id"`
	TeacherID   string                 `json:"teacher_id"`
	Type        string                 `json:"type"`
	Date        string                 `json:"date"`
	Content     string                 `json:"content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// newIngestService 装配采集服务
func newIngestService() (*service.IngestService, *ai.RubricSource, error) {
	if cfg.AI.OpenAI.APIKey == "" {
		return nil, nil, fmt.Errorf("模型 API Key 未配置，请设置环境变量 OPENAI_API_KEY 或在 config.yaml 中配置")
	}

	rubric, err := ai.NewRubricSource(cfg.Rubric.Path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Rubric.Watch {
		if err := rubric.Watch(); err != nil {
			slog.Warn("监听评分细则失败", "error", err)
		}
	}

	client := ai.NewOpenAIClient(&ai.OpenAIConfig{
		APIKey:  cfg.AI.OpenAI.APIKey,
		BaseURL: cfg.AI.OpenAI.BaseURL,
		Model:   cfg.AI.OpenAI.Model,
	})

	entryRepo := repository.NewEntryRepository(db.DB)
	corrRepo := repository.NewCorrectionRepository(db.DB)
	fewShot := service.NewFewShotService(corrRepo)

	if index := newExampleIndex(); index != nil {
		fewShot.SetExampleIndex(index)
	}

	return service.NewIngestService(client, rubric, fewShot, entryRepo), rubric, nil
}

// newExampleIndex 装配可选的语义召回索引；未配置或初始化失败返回 nil
func newExampleIndex() *service.ExampleIndex {
	if cfg.Storage.IndexPath == "" || cfg.AI.Embedding.APIKey == "" {
		return nil
	}
	embedder := ai.NewEmbeddingClient(&ai.EmbeddingConfig{
		APIKey:  cfg.AI.Embedding.APIKey,
		BaseURL: cfg.AI.Embedding.BaseURL,
		Model:   cfg.AI.Embedding.Model,
	})
	index, err := service.NewExampleIndex(embedder, &service.ExampleIndexConfig{
		StoragePath: cfg.Storage.IndexPath,
	})
	if err != nil {
		slog.Warn("初始化示例索引失败，继续使用按时间召回", "error", err)
		return nil
	}
	return index
}

// ingestCmd 采集数据条目命令
func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file-or-dir>",
		Short: "采集数据条目（JSON 文件或目录）并生成技能评估",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			svc, rubric, err := newIngestService()
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				os.Exit(1)
			}
			defer rubric.Close()

			paths, err := collectJSONFiles(args[0])
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				os.Exit(1)
			}

			ok, failed := 0, 0
			for _, path := range paths {
				entry, err := readEntryFile(path)
				if err != nil {
					fmt.Printf("❌ %s: %v\n", filepath.Base(path), err)
					failed++
					continue
				}
				result, err := svc.IngestEntry(ctx, entry)
				if err != nil {
					fmt.Printf("❌ %s: %v\n", entry.ID, err)
					failed++
					continue
				}
				fmt.Printf("✅ %s: 生成 %d 条评估\n", result.DataEntryID, len(result.AssessmentIDs))
				ok++
			}

			fmt.Printf("\n完成: %d 成功, %d 失败\n", ok, failed)
			if failed > 0 {
				os.Exit(1)
			}
		},
	}
	return cmd
}

// reviewCmd 列出待复核评估（置信度升序）
func reviewCmd() *cobra.Command {
	var studentID string
	var limit int

	cmd := &cobra.Command{
		Use:   "review",
		Short: "列出待复核评估（最不确定的优先）",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			assessRepo := repository.NewAssessmentRepository(db.DB)
			reviewSvc := service.NewReviewService(assessRepo)

			list, err := reviewSvc.ListPending(ctx, studentID, limit)
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				os.Exit(1)
			}
			if len(list) == 0 {
				fmt.Println("📚 没有待复核的评估")
				return
			}

			fmt.Println("📋 待复核评估（置信度升序）")
			fmt.Println("═══════════════════════════════════════")
			for _, a := range list {
				fmt.Printf("#%d [%.2f] %s / %s → %s\n", a.ID, a.ConfidenceScore, a.StudentID, a.SkillName, a.Level)
				fmt.Printf("   理由: %s\n", truncateString(a.Justification, 100))
				fmt.Printf("   引用: %q\n\n", truncateString(a.SourceQuote, 80))
			}
		},
	}

	cmd.Flags().StringVar(&studentID, "student", "", "只看某个学生")
	cmd.Flags().IntVar(&limit, "limit", 20, "最多显示条数")
	return cmd
}

// correctCmd 提交教师修正
func correctCmd() *cobra.Command {
	var (
		assessmentID  int64
		level         string
		justification string
		notes         string
		teacher       string
	)

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "提交教师修正（带备注的修正会成为 few-shot 示例）",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			corrRepo := repository.NewCorrectionRepository(db.DB)
			assessRepo := repository.NewAssessmentRepository(db.DB)
			corrSvc := service.NewCorrectionService(corrRepo, assessRepo)
			if index := newExampleIndex(); index != nil {
				corrSvc.SetExampleIndex(index)
			}

			correction, err := corrSvc.SubmitCorrection(ctx, service.CorrectionRequest{
				AssessmentID:           assessmentID,
				CorrectedLevel:         level,
				CorrectedJustification: justification,
				TeacherNotes:           notes,
				CorrectedBy:            teacher,
			})
			if err != nil {
				fmt.Printf("❌ 提交修正失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 修正 #%d 已提交 (%s → %s)\n", correction.ID, correction.OriginalLevel, correction.CorrectedLevel)
		},
	}

	cmd.Flags().Int64Var(&assessmentID, "assessment", 0, "评估 ID")
	cmd.Flags().StringVar(&level, "level", "", "修正后的等级 (E/D/P/A 或完整名)")
	cmd.Flags().StringVar(&justification, "justification", "", "修正后的理由（可选）")
	cmd.Flags().StringVar(&notes, "notes", "", "教师备注（可选）")
	cmd.Flags().StringVar(&teacher, "teacher", "", "教师 ID")
	cmd.MarkFlagRequired("assessment")
	cmd.MarkFlagRequired("level")
	cmd.MarkFlagRequired("teacher")
	return cmd
}

// approveCmd 确认评估无需修改
func approveCmd() *cobra.Command {
	var (
		assessmentID int64
		teacher      string
	)

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "确认评估无需修改（不产生 few-shot 示例）",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			corrRepo := repository.NewCorrectionRepository(db.DB)
			assessRepo := repository.NewAssessmentRepository(db.DB)
			corrSvc := service.NewCorrectionService(corrRepo, assessRepo)

			if err := corrSvc.ApproveAssessment(ctx, assessmentID, teacher); err != nil {
				fmt.Printf("❌ 确认失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 评估 #%d 已确认\n", assessmentID)
		},
	}

	cmd.Flags().Int64Var(&assessmentID, "assessment", 0, "评估 ID")
	cmd.Flags().StringVar(&teacher, "teacher", "", "教师 ID")
	cmd.MarkFlagRequired("assessment")
	cmd.MarkFlagRequired("teacher")
	return cmd
}

// examplesCmd 查看当前的 few-shot 示例
func examplesCmd() *cobra.Command {
	var skillName string
	var limit int

	cmd := &cobra.Command{
		Use:   "examples",
		Short: "查看将被回放到推理中的修正示例",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			corrRepo := repository.NewCorrectionRepository(db.DB)
			fewShot := service.NewFewShotService(corrRepo)

			examples, err := fewShot.GetRecentCorrections(ctx, skillName, limit)
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				os.Exit(1)
			}
			if len(examples) == 0 {
				fmt.Println("📚 还没有可用的修正示例")
				return
			}

			fmt.Println(ai.RenderFewShotSection(examples))
		},
	}

	cmd.Flags().StringVar(&skillName, "skill", "", "只看某项技能")
	cmd.Flags().IntVar(&limit, "limit", ai.MaxFewShotExamples, "最多显示条数")
	return cmd
}

// configCmd 配置管理
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置管理",
	}

	var outPath string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "把当前生效的配置（含默认值）写成配置文件",
		Run: func(cmd *cobra.Command, args []string) {
			path := outPath
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					fmt.Printf("❌ %v\n", err)
					os.Exit(1)
				}
			}
			if err := config.WriteFile(path, cfg); err != nil {
				fmt.Printf("❌ 写入配置失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 配置已写入 %s\n", path)
		},
	}
	initCmd.Flags().StringVarP(&outPath, "output", "o", "", "输出路径（默认为可执行文件旁的 config/config.yaml）")
	cmd.AddCommand(initCmd)

	return cmd
}

// versionCmd 显示版本
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tutor %s (%s)\n", buildinfo.Version, buildinfo.Commit)
		},
	}
}

// collectJSONFiles 收集目标路径下的 JSON 文件
func collectJSONFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("读取路径失败: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("读取目录失败: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(path, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("目录中没有 JSON 文件: %s", path)
	}
	return paths, nil
}

// readEntryFile 读取并解析采集输入文件
func readEntryFile(path string) (*schema.DataEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	var f entryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	return &schema.DataEntry{
		ID:        f.DataEntryID,
		StudentID: f.StudentID,
		TeacherID: f.TeacherID,
		Type:      f.Type,
		Date:      f.Date,
		Content:   f.Content,
		Metadata:  schema.JSONMap(f.Metadata),
	}, nil
}

// truncateString 截断过长的展示文本
func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
