package ai

import (
	"fmt"
	"strings"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

// FewShotExample 教师修正后的历史评估，作为 few-shot 示例回放进系统提示词
type FewShotExample struct {
	SkillName     string
	SkillCategory string
	Level         string // 修正后的等级
	Justification string // 修正后的理由
	SourceQuote   string
	TeacherNotes  string
}

// MaxFewShotExamples 单次调用最多嵌入的示例数。
// 这是契约而非实现细节：它决定了教师反馈对单次推理的影响上限。
const MaxFewShotExamples = 5

const systemPromptHeader = `You are an Expert Educational Assessor specializing in middle school non-academic skills assessment.

YOUR ROLE:
1. Analyze student data (transcripts, observations, reflections, peer feedback) to identify behavioral evidence of skill development
2. Match observed behaviors to specific proficiency levels using a detailed rubric
3. Provide clear, evidence-based justifications for each assessment
4. Use kind, growth-oriented language that respects student dignity
5. Only assess skills for which you have direct, observable evidence
`

const proficiencyLevelsSection = `
PROFICIENCY LEVELS:
- **Emerging (E):** Needs significant, consistent support; skill application is inconsistent or absent
- **Developing (D):** Applies the skill with frequent prompting or scaffolding; inconsistent success
- **Proficient (P):** Applies the skill independently and consistently in familiar contexts; generally successful
- **Advanced (A):** Applies the skill flexibly and strategically in novel or challenging contexts; models the skill for others
`

const assessmentRulesSection = `
ASSESSMENT RULES:
1. **Evidence-Based:** Only assess a skill if there is clear, observable evidence in the student data
2. **Specific Skill Focus:** Match behavior to the most specific skill (e.g., "organized materials" → Organization, not Self-Management)
3. **Level Justification:** Explain WHY the student is at this level using rubric criteria and observable behaviors
4. **Quote Selection:** Include a verbatim quote from the data that demonstrates the skill level
5. **No Assumptions:** Do not infer skills from demographics, context, or unstated factors
6. **Kind Language:** Use growth-oriented, respectful language that honors student effort
7. **Confidence Threshold:** If evidence is ambiguous or minimal, do not make an assessment
`

const outputFormatSection = `
OUTPUT FORMAT:
Return ONLY a JSON array of assessment objects. Each assessment must include:

{
  "skill_name": "exact skill name from the 17 skills list",
  "skill_category": "SEL" or "EF" or "21st Century",
  "level": "E" or "D" or "P" or "A",
  "justification": "clear explanation of why this level, referencing rubric criteria",
  "source_quote": "verbatim quote from student data demonstrating this skill",
  "data_point_count": 1
}

Example:
[
  {
    "skill_name": "Social Awareness",
    "skill_category": "SEL",
    "level": "P",
    "justification": "Student accurately interpreted subtle emotional cues when they noticed their peer was upset and asked if they needed help. This demonstrates proficient social awareness as defined in the rubric.",
    "source_quote": "I could tell Marcus was feeling left out so I asked if he wanted to join our group",
    "data_point_count": 1
  }
]
`

// BuildSystemPrompt 组装系统提示词：角色、17 项技能分类目录、四级等级定义、
// 细则全文、评估规则、输出契约、few-shot 示例段。
// 调用方负责先截取最近 MaxFewShotExamples 条示例再传入。
func BuildSystemPrompt(rubricText string, examples []FewShotExample) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)

	b.WriteString("\nTHE 17 SKILLS YOU ASSESS:\n")
	categories := []struct {
		key   string
		label string
	}{
		{schema.CategorySEL, "Social-Emotional Learning (SEL)"},
		{schema.CategoryEF, "Executive Functioning (EF)"},
		{schema.Category21stCentury, "21st Century Skills"},
	}
	n := 0
	for _, cat := range categories {
		b.WriteString("\n" + cat.label + ":\n")
		for _, skill := range schema.SkillsByCategory(cat.key) {
			n++
			fmt.Fprintf(&b, "%d. %s\n", n, skill)
		}
	}

	b.WriteString(proficiencyLevelsSection)

	b.WriteString("\nCOMPLETE RUBRIC:\n")
	b.WriteString(rubricText)
	b.WriteString("\n")

	b.WriteString(assessmentRulesSection)
	b.WriteString(outputFormatSection)

	b.WriteString(RenderFewShotSection(examples))

	b.WriteString("\nNow analyze the following student data and return ONLY the JSON array of assessments.\n")
	return b.String()
}

// RenderFewShotSection 渲染 few-shot 示例段；无示例时返回空串
func RenderFewShotSection(examples []FewShotExample) string {
	if len(examples) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nFEW-SHOT LEARNING EXAMPLES:\n")
	b.WriteString("The following are examples of validated assessments that have been reviewed and approved by teachers. Use these as reference for assessment quality and accuracy.\n\n")

	for i, ex := range examples {
		fmt.Fprintf(&b, "EXAMPLE %d:\n", i+1)
		fmt.Fprintf(&b, "Skill: %s\n", ex.SkillName)
		fmt.Fprintf(&b, "Level: %s\n", ex.Level)
		fmt.Fprintf(&b, "Justification: %s\n", ex.Justification)
		fmt.Fprintf(&b, "Source Quote: %q\n", ex.SourceQuote)
		if ex.TeacherNotes != "" {
			fmt.Fprintf(&b, "Teacher Note: %s\n", ex.TeacherNotes)
		}
		b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
	}

	return b.String()
}

// BuildUserPrompt 将数据条目渲染为用户提示词：类型/日期/情境头部 + 原文 + 只回 JSON 的指令
func BuildUserPrompt(entry *schema.DataEntry) string {
	var b strings.Builder
	b.WriteString("STUDENT DATA TO ANALYZE:\n\n")
	fmt.Fprintf(&b, "Type: %s\n", valueOrNA(entry.Type))
	fmt.Fprintf(&b, "Date: %s\n", valueOrNA(entry.Date))
	fmt.Fprintf(&b, "Context: %s\n\n", valueOrNA(entry.Context()))
	b.WriteString("---\n\n")
	b.WriteString(entry.Content)
	b.WriteString("\n\n---\n\n")
	b.WriteString("Return the JSON array of skill assessments based on the evidence above.")
	return b.String()
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
