package healthcheck

import (
	"regexp"
	"strconv"
	"strings"
)

// Coerce 使用默认关键词表将 Accumulator 转换为结构化日报
func Coerce(acc Accumulator, summary string) HealthReport {
	return NewCoercer(DefaultCatalog()).Coerce(acc, summary)
}

// Coercer 日报转换器
// 取值约定：pain=Yes 表示有疼痛，healthConcerns=Yes 表示总结中存在健康隐患
type Coercer struct {
	catalog *Catalog
	scaleRe *regexp.Regexp // "/10"、"out of 10" 等分母
}

// NewCoercer 创建转换器
func NewCoercer(catalog *Catalog) *Coercer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Coercer{
		catalog: catalog,
		scaleRe: regexp.MustCompile(`\s*(?:/|` + alternation(catalog.ratingConnectors()) + `)\s*10\b`),
	}
}

// Coerce 转换；缺失或无法解析的字段使用默认值，不返回错误
func (c *Coercer) Coerce(acc Accumulator, summary string) HealthReport {
	report := HealthReport{
		SleepHours:       leadingInt(acc.Sleep, 0, 24),
		MoodRating:       leadingInt(acc.HealthRating, 0, 10),
		Pain:             No,
		MedicationsTaken: No,
		Meals:            Yes,
		HealthConcerns:   No,
	}

	if pain, ok := get(acc.Pain); ok && c.painPresent(pain) {
		report.Pain = Yes
		report.PainSeverity = int(c.PainSeverity(pain))
	}

	if meds, ok := get(acc.Medications); ok && classify(c.catalog, meds) == AnswerYes {
		report.MedicationsTaken = Yes
	}

	if meals, ok := get(acc.Meals); ok && classify(c.catalog, meals) == AnswerNo {
		report.Meals = No
	}

	if c.HasConcerns(summary) {
		report.HealthConcerns = Yes
	}

	return report
}

// leadingInt 取第一个整数；缺失、无法解析或超出范围时返回 0
func leadingInt(field *string, lo, hi int) int {
	v, ok := get(field)
	if !ok {
		return 0
	}
	m := numberRe.FindStringSubmatch(v)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < lo || n > hi {
		return 0
	}
	return n
}

// painPresent 非空且不是否定回答（如 "no"、"none"、"I don't have pain"）
func (c *Coercer) painPresent(text string) bool {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return false
	}
	if c.severityCue(text, tokens) != SeverityNone {
		return true
	}
	return !c.painDenied(tokens)
}

// PainSeverity 根据关键词和数字估算疼痛程度
func (c *Coercer) PainSeverity(text string) Severity {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return SeverityNone
	}
	if s := c.severityCue(text, tokens); s != SeverityNone {
		return s
	}
	if c.painDenied(tokens) {
		return SeverityNone
	}
	return SeverityMinor
}

// painDenied 回答以否定词开头，或疼痛关键词前 3 个词内有否定词
// 句中其它位置的否定（"hurts, not too bad"）不算否认
func (c *Coercer) painDenied(tokens []string) bool {
	denials := c.catalog.denials()
	if hasToken(tokens[:1], denials) {
		return true
	}
	painWords := c.catalog.TopicKeywords(TopicPain)
	for i, tok := range tokens {
		if matchAnyKeyword(tok, painWords) && negatedBefore(tokens, i, 3, denials) {
			return true
		}
	}
	return false
}

// negatedBefore tokens[i] 前 n 个词内是否有否定词
func negatedBefore(tokens []string, i, n int, negations []string) bool {
	lo := i - n
	if lo < 0 {
		lo = 0
	}
	return hasToken(tokens[lo:i], negations)
}

// severityCue 关键词或数字命中的档位（严重 > 中等 > 轻微）
// 紧跟否定词的程度词不计（"not severe"）
func (c *Coercer) severityCue(text string, tokens []string) Severity {
	nums := allInts(c.scaleRe.ReplaceAllString(strings.ToLower(text), ""))
	inRange := func(lo, hi int) bool {
		for _, n := range nums {
			if n >= lo && n <= hi {
				return true
			}
		}
		return false
	}
	negations := c.catalog.negations()
	cued := func(s Severity) bool {
		words := c.catalog.severityWords(s)
		for i, tok := range tokens {
			if matchAnyKeyword(tok, words) && !negatedBefore(tokens, i, 2, negations) {
				return true
			}
		}
		return false
	}
	switch {
	case cued(SeveritySevere) || inRange(7, 10):
		return SeveritySevere
	case cued(SeverityModerate) || inRange(5, 6):
		return SeverityModerate
	case cued(SeverityMild) || inRange(3, 4):
		return SeverityMild
	}
	return SeverityNone
}

func allInts(s string) []int {
	var out []int
	for _, m := range numberRe.FindAllStringSubmatch(s, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// HasConcerns AI 总结中是否提到健康隐患
// 隐患词前 3 个词或后 1 个词内出现否定词（"no concerns"、"concerns: none"）时不计
func (c *Coercer) HasConcerns(summary string) bool {
	tokens := tokenize(summary)
	if len(tokens) == 0 {
		return false
	}
	words := c.catalog.concernWords()
	negations := c.catalog.negations()
	for i, tok := range tokens {
		if !matchAnyKeyword(tok, words) {
			continue
		}
		hi := i + 2
		if hi > len(tokens) {
			hi = len(tokens)
		}
		negated := negatedBefore(tokens, i, 3, negations) || hasToken(tokens[i+1:hi], negations)
		if !negated {
			return true
		}
	}
	return false
}
