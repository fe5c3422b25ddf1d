package ai

import (
	"errors"
	"strings"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// ErrInvalidConfidence 外部提供的置信度超出 [0.5, 1.0]
var ErrInvalidConfidence = errors.New("置信度超出 [0.5, 1.0]")

// 置信度区间：0.5 表示“貌似合理但未经验证”，启发式不会向下突破这个下限
const (
	ConfidenceFloor = 0.5
	ConfidenceCeil  = 1.0
)

// rubricKeywords 评分细则语域的关键短语。
// 理由中出现这些短语说明结论贴合细则语言，按去重命中数加分。
var rubricKeywords = []string{
	"independently",
	"consistently",
	"with prompting",
	"with support",
	"beginning to",
	"developing",
	"demonstrates",
	"applies",
}

// CalculateConfidence 计算评估的启发式置信度。纯函数：无随机、无外部调用，
// 相同输入逐字节可复现。权重是下游复核排序依赖的兼容性契约，不可调整：
//   - 基准 0.5
//   - 引用 ≥20 词 +0.15；≥10 词 +0.10
//   - 理由命中细则关键短语，每个去重命中 +0.05，上限 +0.15
//   - 条目正文 >200 词 +0.10；>100 词 +0.05
//   - 佐证数据点 ≥3 +0.10
//   - 总分截顶 1.0
func CalculateConfidence(entry *schema.DataEntry, assessment *GeneratedAssessment) float64 {
	confidence := ConfidenceFloor

	// 因素一：引用长度。更长的逐字引用意味着更扎实的证据。
	quoteWords := len(strings.Fields(assessment.SourceQuote))
	if quoteWords >= 20 {
		confidence += 0.15
	} else if quoteWords >= 10 {
		confidence += 0.10
	}

	// 因素二：细则关键短语命中
	justification := strings.ToLower(assessment.Justification)
	matches := 0
	for _, kw := range rubricKeywords {
		if strings.Contains(justification, kw) {
			matches++
		}
	}
	bonus := float64(matches) * 0.05
	if bonus > 0.15 {
		bonus = 0.15
	}
	confidence += bonus

	// 因素三：条目完整度。更长的原文提供更充分的判断语境。
	contentWords := len(strings.Fields(entry.Content))
	if contentWords > 200 {
		confidence += 0.10
	} else if contentWords > 100 {
		confidence += 0.05
	}

	// 因素四：佐证数据点
	if assessment.DataPointCount >= 3 {
		confidence += 0.10
	}

	if confidence > ConfidenceCeil {
		confidence = ConfidenceCeil
	}
	return confidence
}

// ClampConfidence 校验外部提供的置信度：区间内原样返回，
// 越界时钳制到边界并返回 ErrInvalidConfidence 供调用方决定拒绝或接受钳制值。
func ClampConfidence(v float64) (float64, error) {
	if v < ConfidenceFloor {
		return ConfidenceFloor, ErrInvalidConfidence
	}
	if v > ConfidenceCeil {
		return ConfidenceCeil, ErrInvalidConfidence
	}
	return v, nil
}
