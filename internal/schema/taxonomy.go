package schema

import "strings"

// 技能分类（封闭枚举）
const (
	CategorySEL         = "SEL"          // 社会情感学习
	CategoryEF          = "EF"           // 执行功能
	Category21stCentury = "21st Century" // 21 世纪技能
)

// 熟练度等级（有序：Emerging < Developing < Proficient < Advanced）
const (
	LevelEmerging   = "Emerging"
	LevelDeveloping = "Developing"
	LevelProficient = "Proficient"
	LevelAdvanced   = "Advanced"
)

// skillCategories 17 项固定技能 → 规范分类
var skillCategories = map[string]string{
	// SEL
	"Self-Awareness":              CategorySEL,
	"Self-Management":             CategorySEL,
	"Social Awareness":            CategorySEL,
	"Relationship Skills":         CategorySEL,
	"Responsible Decision-Making": CategorySEL,
	// EF
	"Working Memory":            CategoryEF,
	"Inhibitory Control":        CategoryEF,
	"Cognitive Flexibility":     CategoryEF,
	"Planning & Prioritization": CategoryEF,
	"Organization":              CategoryEF,
	"Task Initiation":           CategoryEF,
	// 21st Century
	"Critical Thinking":       Category21stCentury,
	"Communication":           Category21stCentury,
	"Collaboration":           Category21stCentury,
	"Creativity & Innovation": Category21stCentury,
	"Digital Literacy":        Category21stCentury,
	"Global Awareness":        Category21stCentury,
}

// skillOrder 展示顺序（与评估提示词中的顺序一致）
var skillOrder = []string{
	"Self-Awareness",
	"Self-Management",
	"Social Awareness",
	"Relationship Skills",
	"Responsible Decision-Making",
	"Working Memory",
	"Inhibitory Control",
	"Cognitive Flexibility",
	"Planning & Prioritization",
	"Organization",
	"Task Initiation",
	"Critical Thinking",
	"Communication",
	"Collaboration",
	"Creativity & Innovation",
	"Digital Literacy",
	"Global Awareness",
}

// levelOrder 等级排序值（用于趋势比较）
var levelOrder = map[string]int{
	LevelEmerging:   1,
	LevelDeveloping: 2,
	LevelProficient: 3,
	LevelAdvanced:   4,
}

// levelCodes 单字母代码 ↔ 完整等级名
var levelCodes = map[string]string{
	"E": LevelEmerging,
	"D": LevelDeveloping,
	"P": LevelProficient,
	"A": LevelAdvanced,
}

// AllSkills 返回 17 项技能（固定顺序的副本）
func AllSkills() []string {
	return append([]string(nil), skillOrder...)
}

// SkillsByCategory 返回某分类下的技能（保持展示顺序）
func SkillsByCategory(category string) []string {
	var out []string
	for _, name := range skillOrder {
		if skillCategories[name] == category {
			out = append(out, name)
		}
	}
	return out
}

// IsValidSkill 判断技能名是否在 17 项技能之内
func IsValidSkill(name string) bool {
	_, ok := skillCategories[name]
	return ok
}

// CategoryOf 返回技能的规范分类，未知技能返回空串
func CategoryOf(skillName string) string {
	return skillCategories[skillName]
}

// IsValidLevel 判断是否为完整等级名
func IsValidLevel(level string) bool {
	_, ok := levelOrder[level]
	return ok
}

// NormalizeLevel 将 E/D/P/A 代码或完整等级名规范化为完整名；无法识别返回空串
func NormalizeLevel(level string) string {
	level = strings.TrimSpace(level)
	if full, ok := levelCodes[strings.ToUpper(level)]; ok && len(level) == 1 {
		return full
	}
	for name := range levelOrder {
		if strings.EqualFold(level, name) {
			return name
		}
	}
	return ""
}

// LevelNumeric 返回等级排序值（1-4），未知等级返回 0
func LevelNumeric(level string) int {
	return levelOrder[level]
}

// EntryTypes 数据条目的固定类型集合
var EntryTypes = []string{
	"Group Discussion Transcript",
	"Reflection Journal",
	"Teacher Observation",
	"Peer Feedback",
	"Project Presentation",
	"Parent Note",
}

// IsValidEntryType 判断条目类型是否合法
func IsValidEntryType(t string) bool {
	for _, v := range EntryTypes {
		if v == t {
			return true
		}
	}
	return false
}
