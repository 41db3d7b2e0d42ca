package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"seniorsync/internal/healthcheck"
)

// DateFormat 报告日期格式
const DateFormat = "2006-01-02"

// StoredReport 持久化的每日健康日报（每个用户每天一条，ReportDate 为 YYYY-MM-DD）
type StoredReport struct {
	ReportID   string `json:"reportId"`
	UserID     string `json:"userId"`
	ReportDate string `json:"reportDate"`

	healthcheck.HealthReport

	Summary   string    `json:"summary"`
	Concerns  []string  `json:"concerns"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserID 兼容数字和字符串两种 JSON 形式（旧客户端发送 userId: 1）
type UserID string

func (u *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*u = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("userId must be a string or number: %w", err)
	}
	*u = UserID(n.String())
	return nil
}

// ReportSubmission /eldercare/send-report 请求体：HealthReport + userId，date 缺省为当天
type ReportSubmission struct {
	UserID UserID `json:"userId"`
	healthcheck.HealthReport
	Date     string   `json:"date,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Concerns []string `json:"concerns,omitempty"`
}

// ReportResult /eldercare/send-report 响应
type ReportResult struct {
	Success         bool           `json:"success"`
	Message         string         `json:"message,omitempty"`
	ReportID        string         `json:"reportId,omitempty"`
	BackendResponse map[string]any `json:"backend_response,omitempty"`
}

var ErrInvalidReport = errors.New("invalid health report")

// Validate 校验取值范围和 Yes/No 字段
func (s *ReportSubmission) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidReport)
	}
	r := s.HealthReport
	if r.SleepHours < 0 || r.SleepHours > 24 {
		return fmt.Errorf("%w: sleepHours must be within [0,24]", ErrInvalidReport)
	}
	if r.MoodRating < 0 || r.MoodRating > 10 {
		return fmt.Errorf("%w: moodRating must be within [0,10]", ErrInvalidReport)
	}
	if r.PainSeverity < 0 || r.PainSeverity > 10 {
		return fmt.Errorf("%w: painSeverity must be within [0,10]", ErrInvalidReport)
	}
	for name, v := range map[string]string{
		"pain":             r.Pain,
		"medicationsTaken": r.MedicationsTaken,
		"meals":            r.Meals,
		"healthConcerns":   r.HealthConcerns,
	} {
		if v != healthcheck.Yes && v != healthcheck.No {
			return fmt.Errorf("%w: %s must be Yes or No", ErrInvalidReport, name)
		}
	}
	if s.Date != "" {
		if _, err := time.Parse(DateFormat, s.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidReport)
		}
	}
	return nil
}

// ChatRequest /ai/chat 请求体
type ChatRequest struct {
	Messages    []healthcheck.ChatTurn `json:"messages"`
	UserContext *UserContext           `json:"user_context,omitempty"`
}

// UserContext 陪伴聊天的用户信息
type UserContext struct {
	Name        string   `json:"name,omitempty"`
	Age         int      `json:"age,omitempty"`
	Medications []string `json:"medications,omitempty"`
	Language    string   `json:"language,omitempty"`
}

// ChatResponse /ai/chat 响应
type ChatResponse struct {
	Response string `json:"response"`
}
