package healthcheck

// Role 对话角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatTurn 一条对话记录（追加后不可修改，顺序即时间顺序）
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Accumulator 每日健康检查的采集结果
// 字段为 nil 表示“未采集到”，与空字符串/0 区分；每个字段只写一次（先写为准）
type Accumulator struct {
	Sleep        *string `json:"sleep,omitempty"`
	HealthRating *string `json:"health_rating,omitempty"`
	Pain         *string `json:"pain,omitempty"`
	Medications  *string `json:"medications,omitempty"`
	Meals        *string `json:"meals,omitempty"`
}

// setOnce 仅在字段未设置时写入，返回是否写入
func setOnce(field **string, value string) bool {
	if *field != nil {
		return false
	}
	v := value
	*field = &v
	return true
}

// Get 读取字段值（未设置返回空字符串和 false）
func get(field *string) (string, bool) {
	if field == nil {
		return "", false
	}
	return *field, true
}

// IsEmpty 是否未采集到任何字段
func (a *Accumulator) IsEmpty() bool {
	return a.Sleep == nil && a.HealthRating == nil && a.Pain == nil && a.Medications == nil && a.Meals == nil
}

// Yes/No 取值
const (
	Yes = "Yes"
	No  = "No"
)

// HealthReport 由 Accumulator + AI 总结强制转换得到的结构化日报
type HealthReport struct {
	SleepHours       int    `json:"sleepHours"`       // [0,24]
	MoodRating       int    `json:"moodRating"`       // [0,10]
	Pain             string `json:"pain"`             // Yes = 有疼痛
	PainSeverity     int    `json:"painSeverity"`     // [0,10]
	MedicationsTaken string `json:"medicationsTaken"` // Yes/No
	Meals            string `json:"meals"`            // Yes/No
	HealthConcerns   string `json:"healthConcerns"`   // Yes = 总结中有健康隐患
}

// Evaluation 风险评估结果
type Evaluation struct {
	Concerns []string          `json:"concerns"`
	Details  map[string]string `json:"details"`
}

// HasConcerns 是否需要发送告警
func (e *Evaluation) HasConcerns() bool {
	return e != nil && len(e.Concerns) > 0
}
