package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// ChatClient 推理引擎依赖的最小模型接口
type ChatClient interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
	IsConfigured() bool
}

// GeneratedAssessment 模型返回的单条评估（线上契约字段）
type GeneratedAssessment struct {
	SkillName       string   `json:"skill_name"`
	SkillCategory   string   `json:"skill_category"`
	Level           string   `json:"level"` // 单字母代码 E/D/P/A
	Justification   string   `json:"justification"`
	SourceQuote     string   `json:"source_quote"`
	DataPointCount  int      `json:"data_point_count"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}

// 推理请求固定低温以偏向确定性输出；输出预算覆盖 17 项技能的完整评估数组
const (
	inferTemperature = 0.3
	inferMaxTokens   = 4000
)

// InferenceEngine 技能推理引擎。
// 细则全文与 few-shot 示例在构造时注入：每次调用由上层取最新数据重建引擎，
// 引擎自身不持有跨调用的可变状态，不同条目的推理可完全并行。
type InferenceEngine struct {
	client   ChatClient
	rubric   string
	examples []FewShotExample
}

// NewInferenceEngine 创建推理引擎
func NewInferenceEngine(client ChatClient, rubric string, examples []FewShotExample) *InferenceEngine {
	return &InferenceEngine{
		client:   client,
		rubric:   rubric,
		examples: examples,
	}
}

// AssessSkills 分析一条数据条目，返回规范化的评估列表。
// 空列表是合法的成功结果（没有可评估的证据）。
// 模型应答无法使用时在本地恢复为空列表；调用失败（网络/鉴权/服务端）原样上抛，
// 由采集流程整体中止——条目未落库时不允许出现半截评估。
func (e *InferenceEngine) AssessSkills(ctx context.Context, entry *schema.DataEntry) ([]GeneratedAssessment, error) {
	if !e.client.IsConfigured() {
		return nil, fmt.Errorf("模型 API 未配置")
	}

	// 只回放最近 MaxFewShotExamples 条示例，防止提示词膨胀
	examples := e.examples
	if len(examples) > MaxFewShotExamples {
		examples = examples[len(examples)-MaxFewShotExamples:]
	}

	messages := []Message{
		{Role: "system", Content: BuildSystemPrompt(e.rubric, examples)},
		{Role: "user", Content: BuildUserPrompt(entry)},
	}

	response, err := e.client.Chat(ctx, messages, ChatOptions{
		Temperature: inferTemperature,
		MaxTokens:   inferMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("技能推理失败: %w", err)
	}

	assessments := e.parseResponse(entry, response)
	slog.Info("技能推理完成", "entry", entry.ID, "assessments", len(assessments))
	return assessments, nil
}

// parseResponse 解析并规范化模型应答。任何解析层面的问题都恢复为空列表。
func (e *InferenceEngine) parseResponse(entry *schema.DataEntry, response string) []GeneratedAssessment {
	cleaned := cleanJSONResponse(response)

	assessments, err := NormalizeAssessments(cleaned)
	if err != nil {
		// 非法 JSON：记录原始应答供离线排查，条目照常落库、评估为零条
		slog.Error("模型应答不是合法 JSON", "entry", entry.ID, "error", err, "raw", response)
		return nil
	}

	for i := range assessments {
		a := &assessments[i]
		if a.DataPointCount <= 0 {
			a.DataPointCount = 1
		}
		if a.ConfidenceScore == nil {
			score := CalculateConfidence(entry, a)
			a.ConfidenceScore = &score
		} else if clamped, err := ClampConfidence(*a.ConfidenceScore); err != nil {
			slog.Warn("模型返回的置信度越界，已钳制", "entry", entry.ID, "skill", a.SkillName, "score", *a.ConfidenceScore)
			a.ConfidenceScore = &clamped
		}
	}
	return assessments
}

// payloadShape 模型应答的三种合法形态（判别联合）
type payloadShape int

const (
	shapeUnknown payloadShape = iota
	shapeArray                // 裸评估数组
	shapeWrapped              // {"assessments": [...]} 包装
	shapeSingle               // 单个评估对象（仅一项技能有证据时模型常如此返回）
)

// classifyPayload 先对载荷定形，再按形态提取，避免类型探测散落在调用方
func classifyPayload(raw json.RawMessage) payloadShape {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return shapeArray
	}
	if !strings.HasPrefix(trimmed, "{") {
		return shapeUnknown
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return shapeUnknown
	}
	if _, ok := keys["assessments"]; ok {
		return shapeWrapped
	}
	if _, ok := keys["skill_name"]; ok {
		return shapeSingle
	}
	return shapeUnknown
}

// NormalizeAssessments 把三种合法应答形态归一为平铺列表。
// 未知形态归一为空列表并告警（可恢复）；完全无法解析的 JSON 返回错误。
func NormalizeAssessments(content string) ([]GeneratedAssessment, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	switch classifyPayload(raw) {
	case shapeArray:
		var list []GeneratedAssessment
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("解析评估数组失败: %w", err)
		}
		return list, nil

	case shapeWrapped:
		var wrapper struct {
			Assessments []GeneratedAssessment `json:"assessments"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("解析 assessments 包装失败: %w", err)
		}
		return wrapper.Assessments, nil

	case shapeSingle:
		var single GeneratedAssessment
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("解析单条评估失败: %w", err)
		}
		return []GeneratedAssessment{single}, nil

	default:
		slog.Warn("模型应答形态不可识别，按零条评估处理", "payload", truncate(content, 200))
		return []GeneratedAssessment{}, nil
	}
}

// cleanJSONResponse 清理 JSON 应答（移除 markdown 代码块和前后缀文字）
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	// 移除 ```json ... ``` 或 ``` ... ```
	if strings.Contains(response, "```") {
		jsonStart := strings.Index(response, "```json")
		if jsonStart == -1 {
			jsonStart = strings.Index(response, "```")
		}
		if jsonStart != -1 {
			if startIdx := strings.Index(response[jsonStart:], "\n"); startIdx != -1 {
				response = response[jsonStart+startIdx+1:]
			}
		}
		if endIdx := strings.LastIndex(response, "```"); endIdx != -1 {
			response = response[:endIdx]
		}
	}

	response = strings.TrimSpace(response)

	// 提取 JSON 主体（处理模型添加的前缀/后缀文字），数组优先
	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if end := strings.LastIndex(response, "]"); end > arrStart {
			return strings.TrimSpace(response[arrStart : end+1])
		}
	}
	if objStart != -1 {
		if end := strings.LastIndex(response, "}"); end > objStart {
			return strings.TrimSpace(response[objStart : end+1])
		}
	}
	return response
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
