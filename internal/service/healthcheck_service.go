package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"seniorsync/internal/alert"
	"seniorsync/internal/config"
	"seniorsync/internal/domain"
	"seniorsync/internal/healthcheck"
	"seniorsync/internal/llm"
	"seniorsync/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSessionNotFound 会话不存在或已过期
	ErrSessionNotFound = errors.New("health check session not found")
	// ErrEmptyMessage 用户消息为空
	ErrEmptyMessage = errors.New("message is required")
	// ErrUserRequired 缺少 userId
	ErrUserRequired = errors.New("userId is required")
)

const (
	sessionKeyPrefix = "hc:session:"
	dayKeyPrefix     = "hc:day:"
	activeKeyPrefix  = "hc:active:"
	// 每日完成标记保留两天，足够覆盖时区边界
	dayKeyTTL = 48 * time.Hour
)

func sessionKey(id string) string { return sessionKeyPrefix + id }

// dayKey 用户某天的完成标记，值为完成该天检查的会话 id
func dayKey(userID, day string) string { return dayKeyPrefix + userID + ":" + day }

// activeKey 用户当前进行中的会话 id
func activeKey(userID string) string { return activeKeyPrefix + userID }

// ReportSubmitter 日报提交（ReportService）
type ReportSubmitter interface {
	Submit(ctx context.Context, sub domain.ReportSubmission) (domain.ReportResult, error)
}

// MessageResult 一轮健康检查对话的结果
type MessageResult struct {
	Reply      string                    `json:"reply"`
	State      healthcheck.State         `json:"state"`
	Completed  bool                      `json:"completed"`
	Report     *healthcheck.HealthReport `json:"report,omitempty"`
	Evaluation *healthcheck.Evaluation   `json:"evaluation,omitempty"`
	Message    string                    `json:"message,omitempty"`
}

// CompletedEvent 发布到 Redis stream 的完成事件
type CompletedEvent struct {
	Event      string                   `json:"event"`
	SessionID  string                   `json:"session_id"`
	UserID     string                   `json:"user_id"`
	Locale     string                   `json:"locale"`
	Day        string                   `json:"day"`
	Report     healthcheck.HealthReport `json:"report"`
	Concerns   []string                 `json:"concerns"`
	AlertSent  bool                     `json:"alert_sent"`
	ReportID   string                   `json:"report_id,omitempty"`
	FinishedAt time.Time                `json:"finished_at"`
}

// HealthCheckService 每日健康检查会话编排
// 会话以 JSON 存在 KV 中（按 id），每个用户每个自然日只能完成一次
type HealthCheckService struct {
	cfg     config.HealthCheckConfig
	kv      store.KV
	llm     llm.Client
	alerts  AlertDispatcher
	reports ReportSubmitter
	events  store.Publisher

	catalog *healthcheck.Catalog
	scanner *healthcheck.Scanner
	coercer *healthcheck.Coercer

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// NewHealthCheckService events 可为 nil（不发布事件）
func NewHealthCheckService(
	cfg config.HealthCheckConfig,
	kv store.KV,
	client llm.Client,
	alerts AlertDispatcher,
	reports ReportSubmitter,
	events store.Publisher,
	logger *zap.Logger,
) *HealthCheckService {
	catalog := healthcheck.DefaultCatalog()
	return &HealthCheckService{
		cfg:     cfg,
		kv:      kv,
		llm:     client,
		alerts:  alerts,
		reports: reports,
		events:  events,
		catalog: catalog,
		scanner: healthcheck.NewScanner(catalog, cfg.ScanWindow),
		coercer: healthcheck.NewCoercer(catalog),
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

func (s *HealthCheckService) localNow() time.Time {
	return s.now().In(s.cfg.Location())
}

// StartCheck Idle -> Active；同一天已完成返回 healthcheck.ErrAlreadyCompletedToday
// 当天已有进行中的会话时直接返回该会话
func (s *HealthCheckService) StartCheck(ctx context.Context, userID, locale string) (*healthcheck.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserRequired
	}

	now := s.localNow()
	day := now.Format(healthcheck.DayFormat)
	lastDay := ""
	if _, err := s.kv.Get(ctx, dayKey(userID, day)); err == nil {
		lastDay = day
	} else if !errors.Is(err, store.ErrMiss) {
		return nil, fmt.Errorf("read daily gate: %w", err)
	}

	loc := s.catalog.Locale(locale)
	sess := healthcheck.NewSession(s.newID(), userID, loc.Code)
	if err := sess.Start(loc, now, lastDay); err != nil {
		return nil, err
	}

	active, err := s.activeSession(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if active != nil {
		s.logger.Info("Health check resumed",
			zap.String("session_id", active.ID),
			zap.String("user_id", userID),
		)
		return active, nil
	}

	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, activeKey(userID), sess.ID, s.cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("save active session: %w", err)
	}

	s.logger.Info("Health check started",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID),
		zap.String("locale", sess.Locale),
	)
	return sess, nil
}

// GetSession 读取会话
func (s *HealthCheckService) GetSession(ctx context.Context, sessionID string) (*healthcheck.Session, error) {
	raw, err := s.kv.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess healthcheck.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// activeSession 用户在 day 当天仍在采集中的会话，没有时返回 nil
func (s *HealthCheckService) activeSession(ctx context.Context, userID, day string) (*healthcheck.Session, error) {
	id, err := s.kv.Get(ctx, activeKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("read active session: %w", err)
	}
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !sess.IsActive() || sess.Day != day {
		return nil, nil
	}
	return sess, nil
}

func (s *HealthCheckService) saveSession(ctx context.Context, sess *healthcheck.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKey(sess.ID), string(b), s.cfg.SessionTTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func toLLMMessages(turns []healthcheck.ChatTurn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	return out
}

// SendMessage 记录用户回答并获取 AI 的下一句
// AI 回复包含结束语时会话完成：扫描一次对话并生成总结、日报和评估，
// 先保存已完成的会话，再告警、保存日报并发布事件
// 会话保存失败时本轮不生效（客户端可重试），之后的下游失败只记录日志
func (s *HealthCheckService) SendMessage(ctx context.Context, sessionID, text string) (*MessageResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		return nil, healthcheck.ErrSessionNotActive
	}

	sess.Append(healthcheck.RoleUser, text)
	resp, err := s.llm.Generate(ctx, toLLMMessages(sess.Turns))
	if err != nil {
		return nil, fmt.Errorf("health check reply: %w", err)
	}

	completed := sess.ObserveReply(s.catalog, s.scanner, resp.Content, s.localNow())
	if completed {
		s.finalize(ctx, sess)
	}
	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}

	result := &MessageResult{Reply: resp.Content, State: sess.State}
	if completed {
		s.complete(ctx, sess)
		result.Completed = true
		result.Report = sess.Report
		result.Evaluation = sess.Evaluation
		result.Message = s.catalog.Locale(sess.Locale).CompletionMessage
	}
	return result, nil
}

// finalize 生成总结并转换日报；总结失败时按空总结处理
func (s *HealthCheckService) finalize(ctx context.Context, sess *healthcheck.Session) {
	loc := s.catalog.Locale(sess.Locale)
	summary := ""
	messages := append(toLLMMessages(sess.Turns), llm.Message{Role: llm.RoleUser, Content: loc.SummaryPrompt})
	if resp, err := s.llm.Generate(ctx, messages); err != nil {
		s.logger.Warn("Health summary generation failed", zap.String("session_id", sess.ID), zap.Error(err))
	} else {
		summary = resp.Content
	}
	sess.Finalize(s.coercer, summary)
}

// complete 占用当天的完成标记后执行告警、日报和事件
// 标记已被同一用户的其它会话占用时跳过，保证每天只产生一份日报
func (s *HealthCheckService) complete(ctx context.Context, sess *healthcheck.Session) {
	log := s.logger.With(zap.String("session_id", sess.ID), zap.String("user_id", sess.UserID))

	claimed, err := s.kv.SetNX(ctx, dayKey(sess.UserID, sess.Day), sess.ID, dayKeyTTL)
	if err != nil {
		log.Error("Failed to mark health check day", zap.Error(err))
	} else if !claimed {
		log.Warn("Health check already completed today, skipping report", zap.String("day", sess.Day))
		return
	}

	summary := sess.Summary
	report, ev := *sess.Report, *sess.Evaluation

	alertSent := false
	if ev.HasConcerns() && s.alerts != nil {
		healthData := make(map[string]any, len(ev.Details))
		for k, v := range ev.Details {
			healthData[k] = v
		}
		_, err := s.alerts.Dispatch(ctx, alert.Alert{
			AlertType:  alert.TypeHealthConcern,
			Message:    ev.AlertMessage(),
			HealthData: healthData,
			UserID:     sess.UserID,
			Language:   sess.Locale,
		})
		if err != nil {
			log.Error("Health concern alert failed", zap.Error(err))
		} else {
			alertSent = true
		}
	}

	var reportID string
	if s.reports != nil {
		res, err := s.reports.Submit(ctx, domain.ReportSubmission{
			UserID:       domain.UserID(sess.UserID),
			HealthReport: report,
			Date:         sess.Day,
			Summary:      summary,
			Concerns:     ev.Concerns,
		})
		if err != nil {
			log.Error("Health report submission failed", zap.Error(err))
		} else {
			reportID = res.ReportID
		}
	}

	if s.events != nil {
		finished := s.now()
		if sess.CompletedAt != nil {
			finished = *sess.CompletedAt
		}
		_, err := s.events.PublishJSON(ctx, s.cfg.Stream, CompletedEvent{
			Event:      "healthcheck.completed",
			SessionID:  sess.ID,
			UserID:     sess.UserID,
			Locale:     sess.Locale,
			Day:        sess.Day,
			Report:     report,
			Concerns:   ev.Concerns,
			AlertSent:  alertSent,
			ReportID:   reportID,
			FinishedAt: finished,
		})
		if err != nil {
			log.Warn("Failed to publish health check event", zap.Error(err))
		}
	}

	log.Info("Health check completed",
		zap.Int("sleep_hours", report.SleepHours),
		zap.Int("mood_rating", report.MoodRating),
		zap.Strings("concerns", ev.Concerns),
		zap.Bool("alert_sent", alertSent),
	)
}
