package healthcheck

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultWindow 默认只扫描最近 12 条对话
const DefaultWindow = 12

// 采集结果写入 Accumulator 的固定文案
const (
	MedicationsTakenText    = "Yes, taken"
	MedicationsNotTakenText = "No, not taken"
	MealsRegularText        = "Yes, regular meals"
	MealsSkippedText        = "No, skipped meals"
)

// Answer 是/否分类结果
type Answer int

const (
	AnswerUnknown Answer = iota
	AnswerYes
	AnswerNo
)

// Scanner 对话扫描器：根据 AI 最近的提问主题，从用户回答中提取健康数据
// 纯函数，无副作用；不返回错误，无法识别的对话直接跳过
type Scanner struct {
	catalog *Catalog
	window  int

	sleepRe  *regexp.Regexp
	ratingRe *regexp.Regexp
}

var numberRe = regexp.MustCompile(`\b(\d+)\b`)

// NewScanner 创建扫描器；window <= 0 时使用 DefaultWindow
func NewScanner(catalog *Catalog, window int) *Scanner {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Scanner{
		catalog:  catalog,
		window:   window,
		sleepRe:  regexp.MustCompile(`(\d+)\s*(?:` + alternation(catalog.hourUnits()) + `)`),
		ratingRe: regexp.MustCompile(`\b(\d+)\s*/\s*10\b|\b(\d+)\s*(?:` + alternation(catalog.ratingConnectors()) + `)\s*10\b`),
	}
}

func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|")
}

// Window 扫描窗口大小
func (s *Scanner) Window() int {
	return s.window
}

// Scan 扫描最近 window 条对话，返回新的 Accumulator
func Scan(turns []ChatTurn, window int) Accumulator {
	return NewScanner(DefaultCatalog(), window).Scan(turns)
}

// Scan 使用空的 Accumulator 扫描
func (s *Scanner) Scan(turns []ChatTurn) Accumulator {
	var acc Accumulator
	s.ScanInto(&acc, turns)
	return acc
}

// questionFlags 最近一次 AI 提问所涉及的主题
type questionFlags struct {
	sleep, rating, medication, meals, pain bool
}

// ScanInto 在已有 Accumulator 上继续扫描；已设置的字段不会被覆盖
func (s *Scanner) ScanInto(acc *Accumulator, turns []ChatTurn) {
	if acc == nil {
		return
	}
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}

	var flags questionFlags
	for _, turn := range turns {
		msg := strings.ToLower(turn.Content)
		switch turn.Role {
		case RoleAssistant:
			s.tagQuestion(msg, &flags)
		case RoleUser:
			s.extractAnswer(acc, turn.Content, msg, &flags)
		}
	}
}

// tagQuestion 根据 AI 提问标记主题；睡眠与评分互斥（后判断者生效）
func (s *Scanner) tagQuestion(msg string, f *questionFlags) {
	if s.hasTopic(msg, TopicSleep) {
		f.sleep = true
		f.rating = false
	}
	if s.hasTopic(msg, TopicRating) {
		f.rating = true
		f.sleep = false
	}
	if s.hasTopic(msg, TopicMedication) {
		f.medication = true
	}
	if s.hasTopic(msg, TopicMeals) {
		f.meals = true
	}
	if s.hasTopic(msg, TopicPain) {
		f.pain = true
	}
}

func (s *Scanner) hasTopic(msg string, t Topic) bool {
	return matchAnyKeyword(msg, s.catalog.TopicKeywords(t))
}

// extractAnswer 从用户回答中提取数据（raw 为原始大小写，msg 为小写）
func (s *Scanner) extractAnswer(acc *Accumulator, raw, msg string, f *questionFlags) {
	// 睡眠：带单位的数字优先，否则在刚问过睡眠时取第一个 0-24 的数字
	if m := s.sleepRe.FindStringSubmatch(msg); m != nil {
		if acc.Sleep == nil {
			if h, err := strconv.Atoi(m[1]); err == nil && h >= 0 && h <= 24 {
				setOnce(&acc.Sleep, m[1])
				f.sleep = false
			}
		}
	} else if f.sleep && acc.Sleep == nil {
		if n, ok := firstIntInRange(msg, 0, 24); ok {
			setOnce(&acc.Sleep, n)
			f.sleep = false
		}
	}

	// 评分：n/10 或 "n out of 10"，否则在刚问过评分时取第一个 1-10 的数字
	if m := s.ratingRe.FindStringSubmatch(msg); m != nil {
		v := m[1]
		if v == "" {
			v = m[2]
		}
		setOnce(&acc.HealthRating, v)
		f.rating = false
	} else if f.rating && acc.HealthRating == nil {
		if n, ok := firstIntInRange(msg, 1, 10); ok {
			setOnce(&acc.HealthRating, n)
			f.rating = false
		}
	}

	// 疼痛：保存原文
	if s.hasTopic(msg, TopicPain) || f.pain {
		setOnce(&acc.Pain, raw)
		f.pain = false
	}

	answer := s.Classify(msg)

	if s.hasTopic(msg, TopicMedication) || f.medication {
		switch answer {
		case AnswerYes:
			setOnce(&acc.Medications, MedicationsTakenText)
			f.medication = false
		case AnswerNo:
			setOnce(&acc.Medications, MedicationsNotTakenText)
			f.medication = false
		}
	}

	if s.hasTopic(msg, TopicMeals) || f.meals {
		switch answer {
		case AnswerYes:
			setOnce(&acc.Meals, MealsRegularText)
			f.meals = false
		case AnswerNo:
			setOnce(&acc.Meals, MealsSkippedText)
			f.meals = false
		}
	}
}

// Classify 是/否分类：整词匹配，肯定词优先
func (s *Scanner) Classify(text string) Answer {
	return classify(s.catalog, text)
}

func classify(c *Catalog, text string) Answer {
	tokens := tokenize(text)
	if hasToken(tokens, c.affirmative()) {
		return AnswerYes
	}
	if hasToken(tokens, c.negative()) {
		return AnswerNo
	}
	return AnswerUnknown
}

func hasToken(tokens, words []string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

// firstIntInRange 返回第一个落在 [lo,hi] 的独立整数
func firstIntInRange(msg string, lo, hi int) (string, bool) {
	for _, m := range numberRe.FindAllStringSubmatch(msg, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= lo && n <= hi {
			return m[1], true
		}
	}
	return "", false
}
