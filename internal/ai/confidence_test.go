package ai

import (
	"errors"
	"strings"
	"testing"

	"github.com/NaniSkinner/AI-SoftSkills-Tutor/internal/schema"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestCalculateConfidenceBase(t *testing.T) {
	entry := &schema.DataEntry{Content: "short"}
	a := &GeneratedAssessment{SourceQuote: "brief", Justification: "none of the key phrases"}

	got := CalculateConfidence(entry, a)
	if got != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", got)
	}
}

func TestCalculateConfidenceQuoteLength(t *testing.T) {
	entry := &schema.DataEntry{Content: "short"}

	cases := []struct {
		quoteWords int
		want       float64
	}{
		{5, 0.5},
		{10, 0.6},
		{19, 0.6},
		{20, 0.65},
	}
	for _, c := range cases {
		a := &GeneratedAssessment{SourceQuote: words(c.quoteWords)}
		if got := CalculateConfidence(entry, a); got != c.want {
			t.Fatalf("quote %d words: confidence = %v, want %v", c.quoteWords, got, c.want)
		}
	}
}

func TestCalculateConfidenceKeywordBonusCapped(t *testing.T) {
	entry := &schema.DataEntry{Content: "short"}

	// 两个命中 +0.10
	a := &GeneratedAssessment{Justification: "Demonstrates the skill independently"}
	if got := CalculateConfidence(entry, a); got != 0.6 {
		t.Fatalf("2 keywords: confidence = %v, want 0.6", got)
	}

	// 五个命中仍按上限 +0.15 计
	a = &GeneratedAssessment{
		Justification: "Independently and consistently demonstrates and applies skills, with support when needed",
	}
	if got := CalculateConfidence(entry, a); got != 0.65 {
		t.Fatalf("5 keywords: confidence = %v, want 0.65", got)
	}
}

func TestCalculateConfidenceEntryCompleteness(t *testing.T) {
	a := &GeneratedAssessment{}

	cases := []struct {
		contentWords int
		want         float64
	}{
		{50, 0.5},
		{100, 0.5}, // 阈值是严格大于
		{101, 0.55},
		{201, 0.6},
	}
	for _, c := range cases {
		entry := &schema.DataEntry{Content: words(c.contentWords)}
		if got := CalculateConfidence(entry, a); got != c.want {
			t.Fatalf("content %d words: confidence = %v, want %v", c.contentWords, got, c.want)
		}
	}
}

func TestCalculateConfidenceCorroboration(t *testing.T) {
	entry := &schema.DataEntry{Content: "short"}

	a := &GeneratedAssessment{DataPointCount: 2}
	if got := CalculateConfidence(entry, a); got != 0.5 {
		t.Fatalf("2 data points: confidence = %v, want 0.5", got)
	}
	a.DataPointCount = 3
	if got := CalculateConfidence(entry, a); got != 0.6 {
		t.Fatalf("3 data points: confidence = %v, want 0.6", got)
	}
}

func TestCalculateConfidenceCappedAtOne(t *testing.T) {
	entry := &schema.DataEntry{Content: words(300)}
	a := &GeneratedAssessment{
		SourceQuote:    words(25),
		Justification:  "independently consistently demonstrates applies developing",
		DataPointCount: 5,
	}
	// 0.5 + 0.15 + 0.15 + 0.10 + 0.10 = 1.0，不会越过上限
	got := CalculateConfidence(entry, a)
	if got > ConfidenceCeil || got < ConfidenceCeil-1e-9 {
		t.Fatalf("confidence = %v, want 1.0", got)
	}
}

func TestCalculateConfidenceBounds(t *testing.T) {
	entries := []*schema.DataEntry{
		{Content: ""},
		{Content: words(150)},
		{Content: words(500)},
	}
	assessments := []*GeneratedAssessment{
		{},
		{SourceQuote: words(12), Justification: "beginning to show growth", DataPointCount: 1},
		{SourceQuote: words(40), Justification: "independently applies and demonstrates consistently", DataPointCount: 10},
	}
	for _, e := range entries {
		for _, a := range assessments {
			got := CalculateConfidence(e, a)
			if got < 0.5 || got > 1.0 {
				t.Fatalf("confidence %v out of [0.5, 1.0]", got)
			}
		}
	}
}

// 固定其余因素时，任一因素跨过阈值分数不应下降
func TestCalculateConfidenceMonotonic(t *testing.T) {
	entry := &schema.DataEntry{Content: words(150)}
	base := &GeneratedAssessment{Justification: "demonstrates", DataPointCount: 1}

	prev := -1.0
	for _, qw := range []int{5, 10, 20} {
		a := *base
		a.SourceQuote = words(qw)
		got := CalculateConfidence(entry, &a)
		if got < prev {
			t.Fatalf("quote %d words: confidence %v < previous %v", qw, got, prev)
		}
		prev = got
	}

	prev = -1.0
	for _, cw := range []int{50, 101, 201} {
		e := &schema.DataEntry{Content: words(cw)}
		got := CalculateConfidence(e, base)
		if got < prev {
			t.Fatalf("content %d words: confidence %v < previous %v", cw, got, prev)
		}
		prev = got
	}

	prev = -1.0
	for _, dp := range []int{1, 2, 3, 4} {
		a := *base
		a.DataPointCount = dp
		got := CalculateConfidence(entry, &a)
		if got < prev {
			t.Fatalf("%d data points: confidence %v < previous %v", dp, got, prev)
		}
		prev = got
	}
}

func TestCalculateConfidenceDeterministic(t *testing.T) {
	entry := &schema.DataEntry{Content: words(150)}
	a := &GeneratedAssessment{
		SourceQuote:    words(15),
		Justification:  "Consistently demonstrates planning with support",
		DataPointCount: 3,
	}
	first := CalculateConfidence(entry, a)
	for i := 0; i < 10; i++ {
		if got := CalculateConfidence(entry, a); got != first {
			t.Fatalf("run %d: confidence %v != %v", i, got, first)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	if got, err := ClampConfidence(0.75); err != nil || got != 0.75 {
		t.Fatalf("in-range: got %v err %v", got, err)
	}
	if got, err := ClampConfidence(0.3); !errors.Is(err, ErrInvalidConfidence) || got != 0.5 {
		t.Fatalf("below floor: got %v err %v", got, err)
	}
	if got, err := ClampConfidence(1.2); !errors.Is(err, ErrInvalidConfidence) || got != 1.0 {
		t.Fatalf("above ceil: got %v err %v", got, err)
	}
}
