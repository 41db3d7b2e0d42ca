package healthcheck

import (
	"errors"
	"time"
)

// State 健康检查会话状态
type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StateCompleted State = "completed"
)

var (
	// ErrSessionNotActive 会话不在采集中
	ErrSessionNotActive = errors.New("health check session is not active")
	// ErrAlreadyCompletedToday 当天已完成健康检查
	ErrAlreadyCompletedToday = errors.New("health check already completed today")
)

// DayFormat 日历日格式
const DayFormat = "2006-01-02"

// Session 单次每日健康检查的会话状态（替代全局变量）
// 生命周期：Start 时创建并清空 Accumulator，Complete 后关闭
type Session struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Locale      string        `json:"locale"`
	State       State         `json:"state"`
	Turns       []ChatTurn    `json:"turns"`
	Accumulator Accumulator   `json:"accumulator"`
	Summary     string        `json:"summary,omitempty"`
	Report      *HealthReport `json:"report,omitempty"`
	Evaluation  *Evaluation   `json:"evaluation,omitempty"`
	Day         string        `json:"day"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// NewSession 创建 Idle 会话
func NewSession(id, userID, locale string) *Session {
	return &Session{
		ID:     id,
		UserID: userID,
		Locale: locale,
		State:  StateIdle,
	}
}

// Start Idle -> Active：清空采集结果并写入系统提示词、问候语和第一个问题
// lastCompletedDay 为该用户上次完成的日期（YYYY-MM-DD），同一天不允许重新开始
func (s *Session) Start(l *Locale, now time.Time, lastCompletedDay string) error {
	day := now.Format(DayFormat)
	if lastCompletedDay == day {
		return ErrAlreadyCompletedToday
	}
	s.Locale = l.Code
	s.State = StateActive
	s.Accumulator = Accumulator{}
	s.Summary = ""
	s.Report = nil
	s.Evaluation = nil
	s.CompletedAt = nil
	s.Day = day
	s.StartedAt = now
	s.Turns = []ChatTurn{
		{Role: RoleSystem, Content: l.SystemPrompt()},
		{Role: RoleAssistant, Content: l.Greeting},
		{Role: RoleAssistant, Content: l.FirstQuestion},
	}
	return nil
}

// Append 追加一条对话
func (s *Session) Append(role Role, content string) {
	s.Turns = append(s.Turns, ChatTurn{Role: role, Content: content})
}

// IsActive 是否在采集中
func (s *Session) IsActive() bool {
	return s.State == StateActive
}

// ObserveReply 记录 AI 回复；若包含结束短语则 Active -> Completed，
// 并且只在此时扫描一次对话。返回是否刚刚完成
func (s *Session) ObserveReply(c *Catalog, scanner *Scanner, reply string, now time.Time) bool {
	s.Append(RoleAssistant, reply)
	if s.State != StateActive || !c.IsCompletion(reply) {
		return false
	}
	scanner.ScanInto(&s.Accumulator, s.Turns)
	s.State = StateCompleted
	t := now
	s.CompletedAt = &t
	return true
}

// Finalize 使用 AI 总结生成日报和评估结果
func (s *Session) Finalize(coercer *Coercer, summary string) (HealthReport, Evaluation) {
	s.Summary = summary
	report := coercer.Coerce(s.Accumulator, summary)
	ev := Evaluate(report)
	s.Report = &report
	s.Evaluation = &ev
	return report, ev
}
