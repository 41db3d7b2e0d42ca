package healthcheck

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Topic 问题主题
type Topic string

const (
	TopicSleep      Topic = "sleep"
	TopicRating     Topic = "rating"
	TopicMedication Topic = "medication"
	TopicMeals      Topic = "meals"
	TopicPain       Topic = "pain"
)

// Severity 疼痛程度档位
type Severity int

const (
	SeverityNone     Severity = 0
	SeverityMinor    Severity = 1
	SeverityMild     Severity = 3
	SeverityModerate Severity = 5
	SeveritySevere   Severity = 8
)

// DefaultLocale 未知语言时的回退
const DefaultLocale = "en-US"

// Locale 单一语言的关键词表与话术
// 关键词均为小写；主题/隐患关键词按词首匹配，以 "*" 开头的关键词可出现在词中任意位置
// （德语复合词如 kopfschmerzen）；肯定/否定词按整词匹配
type Locale struct {
	Code string
	Name string // 用于系统提示词中的语言名

	Topics      map[Topic][]string
	Affirmative []string // 整词匹配
	Negative    []string // 整词匹配
	Negations   []string // 否定修饰词（用于健康隐患判断）

	HourUnits        []string // 睡眠时长单位
	RatingConnectors []string // "<n> out of 10"
	SeverityWords    map[Severity][]string
	ConcernWords     []string
	Completion       []string // AI 结束语中的标志短语

	Greeting          string
	FirstQuestion     string
	CompletionMessage string
	SummaryPrompt     string
	ReportTitle       string
}

// Catalog 多语言关键词表，匹配时使用所有语言的并集
type Catalog struct {
	locales map[string]*Locale
	order   []string
}

// NewCatalog 创建关键词表（第一个 locale 作为回退语言）
func NewCatalog(locales ...*Locale) *Catalog {
	c := &Catalog{locales: make(map[string]*Locale, len(locales))}
	for _, l := range locales {
		c.locales[l.Code] = l
		c.order = append(c.order, l.Code)
	}
	return c
}

// Locale 根据语言代码获取 locale，未知语言回退到默认
func (c *Catalog) Locale(code string) *Locale {
	if l, ok := c.locales[code]; ok {
		return l
	}
	if l, ok := c.locales[DefaultLocale]; ok {
		return l
	}
	return c.locales[c.order[0]]
}

// Has 是否支持该语言
func (c *Catalog) Has(code string) bool {
	_, ok := c.locales[code]
	return ok
}

// Codes 支持的语言代码
func (c *Catalog) Codes() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) collect(pick func(*Locale) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, code := range c.order {
		for _, w := range pick(c.locales[code]) {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}

// TopicKeywords 所有语言中该主题的关键词
func (c *Catalog) TopicKeywords(t Topic) []string {
	return c.collect(func(l *Locale) []string { return l.Topics[t] })
}

func (c *Catalog) affirmative() []string {
	return c.collect(func(l *Locale) []string { return l.Affirmative })
}

func (c *Catalog) negative() []string {
	return c.collect(func(l *Locale) []string { return l.Negative })
}

func (c *Catalog) negations() []string {
	return c.collect(func(l *Locale) []string { return l.Negations })
}

// denials 否定回答词与否定修饰词的并集
func (c *Catalog) denials() []string {
	return c.collect(func(l *Locale) []string { return append(append([]string(nil), l.Negative...), l.Negations...) })
}

func (c *Catalog) hourUnits() []string {
	return c.collect(func(l *Locale) []string { return l.HourUnits })
}

func (c *Catalog) ratingConnectors() []string {
	return c.collect(func(l *Locale) []string { return l.RatingConnectors })
}

func (c *Catalog) severityWords(s Severity) []string {
	return c.collect(func(l *Locale) []string { return l.SeverityWords[s] })
}

func (c *Catalog) concernWords() []string {
	return c.collect(func(l *Locale) []string { return l.ConcernWords })
}

// IsCompletion AI 回复中是否包含任一语言的结束短语
func (c *Catalog) IsCompletion(reply string) bool {
	return containsAny(strings.ToLower(reply), c.collect(func(l *Locale) []string { return l.Completion }))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// matchKeyword 词首匹配；"*" 前缀表示任意位置匹配
func matchKeyword(s, kw string) bool {
	if strings.HasPrefix(kw, "*") {
		return strings.Contains(s, kw[1:])
	}
	if kw == "" {
		return false
	}
	from := 0
	for {
		i := strings.Index(s[from:], kw)
		if i < 0 {
			return false
		}
		i += from
		if i == 0 {
			return true
		}
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		if !isWordRune(r) {
			return true
		}
		from = i + len(kw)
	}
}

func matchAnyKeyword(s string, kws []string) bool {
	for _, kw := range kws {
		if matchKeyword(s, kw) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

// tokenize 小写分词（字母、数字、撇号），弯撇号统一为 '
func tokenize(s string) []string {
	s = strings.ReplaceAll(strings.ToLower(s), "’", "'")
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}

// SystemPrompt 每日健康检查的系统提示词
func (l *Locale) SystemPrompt() string {
	return "You are conducting a daily health check. Ask the user the following questions ONE AT A TIME in " + l.Name + `:
1. How many hours did you sleep last night?
2. How do you feel today on a scale from 1 to 10? (1=very bad, 10=excellent)
3. Did you experience any pain today? If yes, where and how severe?
4. Have you taken all your medications today?
5. Did you eat regular meals today?
6. Any other health concerns?

After all questions, say one of these completion messages based on the language:
- English: "Thank you! I've recorded your health information for today."
- Slovak: "Ďakujem! Zaznamenal som vaše zdravotné informácie za dnes."
- Czech: "Děkuji! Zaznamenal jsem vaše zdravotní informace za dnes."
- German: "Danke! Ich habe Ihre Gesundheitsinformationen für heute aufgezeichnet."

Be warm, patient, and understanding. Ask questions naturally.`
}

// English 英语
var English = &Locale{
	Code: "en-US",
	Name: "English",
	Topics: map[Topic][]string{
		TopicSleep:      {"sleep", "slept", "asleep"},
		TopicRating:     {"feel", "scale", "rating"},
		TopicMedication: {"medic"},
		TopicMeals:      {"meal", "eat"},
		TopicPain:       {"pain", "hurt", "ache", "sore"},
	},
	Affirmative:      []string{"yes", "yeah", "yep", "sure"},
	Negative:         []string{"no", "not", "none", "nope", "didn't", "haven't", "don't", "skipped"},
	Negations:        []string{"no", "not", "none", "without", "nothing", "never", "don't", "doesn't", "didn't", "haven't", "hasn't"},
	HourUnits:        []string{"hour", "hrs"},
	RatingConnectors: []string{"out of"},
	SeverityWords: map[Severity][]string{
		SeveritySevere:   {"severe"},
		SeverityModerate: {"moderate"},
		SeverityMild:     {"mild"},
	},
	ConcernWords:      []string{"concern", "worried", "problem", "issue", "severe", "poor", "bad"},
	Completion:        []string{"recorded your health information"},
	Greeting:          "Hello! Let's do your daily health check. I'll ask you a few simple questions about how you're feeling today.",
	FirstQuestion:     "First question: How many hours did you sleep last night?",
	CompletionMessage: "Health report saved! You can view it in the Health tab.",
	SummaryPrompt:     "Based on our conversation, create a brief health summary for today. Include: sleep hours, mood rating, pain, medications taken, meals, and any concerns. Format it as a clear, structured report.",
	ReportTitle:       "Daily Health Report",
}

// Slovak 斯洛伐克语
var Slovak = &Locale{
	Code: "sk-SK",
	Name: "Slovak",
	Topics: map[Topic][]string{
		TopicSleep:      {"spali"},
		TopicRating:     {"cítite"},
		TopicMedication: {"liek"},
		TopicMeals:      {"jedl", "najedl"},
		TopicPain:       {"boles"},
	},
	Affirmative:      []string{"áno", "ano", "hej"},
	Negative:         []string{"nie", "nezobral", "nezobrala", "nejedol", "nejedla"},
	Negations:        []string{"nie", "žiadne", "žiadny", "žiadnu", "nemám", "bez"},
	HourUnits:        []string{"hodín", "hodiny"},
	RatingConnectors: []string{"z"},
	SeverityWords: map[Severity][]string{
		SeveritySevere:   {"silná", "silné", "veľmi"},
		SeverityModerate: {"stredná", "stredne"},
		SeverityMild:     {"mierna", "mierne", "slabá"},
	},
	ConcernWords:      []string{"obava", "obavy", "problém"},
	Completion:        []string{"zaznamenal som vaše zdravotné informácie", "dennú zdravotnú kontrolu"},
	Greeting:          "Dobrý deň! Urobme vašu dennú zdravotnú kontrolu. Opýtam sa vás na niekoľko jednoduchých otázok o tom, ako sa dnes cítite.",
	FirstQuestion:     "Prvá otázka: Koľko hodín ste spali včera v noci?",
	CompletionMessage: "Zdravotný report uložený! Môžete si ho pozrieť na karte Zdravie.",
	SummaryPrompt:     "Na základe nášho rozhovoru vytvorte stručný zdravotný súhrn za dnešok. Zahrňte: hodiny spánku, hodnotenie nálady, bolesť, prijaté lieky, jedlá a akékoľvek obavy. Naformátujte to ako jasný, štruktúrovaný report.",
	ReportTitle:       "Denná zdravotná správa",
}

// Czech 捷克语
var Czech = &Locale{
	Code: "cs-CZ",
	Name: "Czech",
	Topics: map[Topic][]string{
		TopicSleep:      {"spal"},
		TopicRating:     {"cítíte"},
		TopicMedication: {"lék"},
		TopicMeals:      {"jídl", "jedl", "najedl"},
		TopicPain:       {"bolest"},
	},
	Affirmative:      []string{"ano", "jo", "jasně"},
	Negative:         []string{"ne", "nevzal", "nevzala", "nejedl", "nejedla"},
	Negations:        []string{"ne", "žádné", "žádný", "žádnou", "nemám", "bez"},
	HourUnits:        []string{"hodin"},
	RatingConnectors: []string{"z"},
	SeverityWords: map[Severity][]string{
		SeveritySevere:   {"silná", "silné", "velmi"},
		SeverityModerate: {"střední", "středně"},
		SeverityMild:     {"mírná", "mírně", "slabá"},
	},
	ConcernWords:      []string{"obava", "obavy", "problém"},
	Completion:        []string{"zaznamenal jsem vaše zdravotní informace", "denní zdravotní kontrolu"},
	Greeting:          "Dobrý den! Udělejme vaši denní zdravotní kontrolu. Zeptám se vás na několik jednoduchých otázek o tom, jak se dnes cítíte.",
	FirstQuestion:     "První otázka: Kolik hodin jste spal/a včera v noci?",
	CompletionMessage: "Zdravotní report uložen! Můžete si ho prohlédnout na kartě Zdraví.",
	SummaryPrompt:     "Na základě našeho rozhovoru vytvořte stručný zdravotní souhrn za dnešek. Zahrňte: hodiny spánku, hodnocení nálady, bolest, užité léky, jídla a jakékoli obavy. Naformátujte to jako jasný, strukturovaný report.",
	ReportTitle:       "Denní zdravotní zpráva",
}

// German 德语
var German = &Locale{
	Code: "de-DE",
	Name: "German",
	Topics: map[Topic][]string{
		TopicSleep:      {"geschlafen"},
		TopicRating:     {"fühlen"},
		TopicMedication: {"medikament"},
		TopicMeals:      {"essen", "mahlzeit"},
		TopicPain:       {"*schmerz"},
	},
	Affirmative:      []string{"ja", "jawohl", "natürlich"},
	Negative:         []string{"nein", "nicht", "keine"},
	Negations:        []string{"nein", "nicht", "keine", "kein", "keinen", "keinerlei", "ohne"},
	HourUnits:        []string{"stunden"},
	RatingConnectors: []string{"von"},
	SeverityWords: map[Severity][]string{
		SeveritySevere:   {"stark", "starke"},
		SeverityModerate: {"mäßig", "mittel"},
		SeverityMild:     {"leicht", "leichte"},
	},
	ConcernWords:      []string{"sorge", "problem", "beschwerde"},
	Completion:        []string{"ihre gesundheitsinformationen aufgezeichnet", "gesundheitsinformationen für heute aufgezeichnet", "gesundheitscheck"},
	Greeting:          "Hallo! Lassen Sie uns Ihren täglichen Gesundheitscheck durchführen. Ich werde Ihnen ein paar einfache Fragen stellen, wie Sie sich heute fühlen.",
	FirstQuestion:     "Erste Frage: Wie viele Stunden haben Sie letzte Nacht geschlafen?",
	CompletionMessage: "Gesundheitsbericht gespeichert! Sie können ihn auf der Registerkarte Gesundheit anzeigen.",
	SummaryPrompt:     "Erstellen Sie basierend auf unserem Gespräch eine kurze Gesundheitszusammenfassung für heute. Einbeziehen: Schlafstunden, Stimmungsbewertung, Schmerzen, eingenommene Medikamente, Mahlzeiten und Bedenken. Formatieren Sie es als klaren, strukturierten Bericht.",
	ReportTitle:       "Täglicher Gesundheitsbericht",
}

// DefaultCatalog 内置四种语言
func DefaultCatalog() *Catalog {
	return NewCatalog(English, Slovak, Czech, German)
}
