package service

import (
	"context"
	"fmt"
	"time"

	"seniorsync/internal/alert"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reminderLookbackDays 最近 7 天内有过日报才视为“通常会做健康检查”的用户
const reminderLookbackDays = 7

// MissingReportFinder 查询当天缺少日报的用户（ReportService）
type MissingReportFinder interface {
	MissingToday(ctx context.Context, lookbackDays int) ([]string, string, error)
}

// Reminder 每日定时检查，未完成健康检查的用户向照护人发送 missed_health_check 告警
type Reminder struct {
	cron    *cron.Cron
	spec    string
	finder  MissingReportFinder
	alerts  AlertDispatcher
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
}

func NewReminder(spec string, location *time.Location, finder MissingReportFinder, alerts AlertDispatcher, logger *zap.Logger) *Reminder {
	if location == nil {
		location = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reminder{
		cron:    cron.New(cron.WithLocation(location)),
		spec:    spec,
		finder:  finder,
		alerts:  alerts,
		timeout: time.Minute,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

// Start 注册定时任务并启动；cron 表达式错误时返回错误
func (r *Reminder) Start() error {
	_, err := r.cron.AddFunc(r.spec, func() {
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("Missed health check reminder failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder cron %q: %w", r.spec, err)
	}
	r.cron.Start()
	r.logger.Info("Reminder scheduler started", zap.String("cron", r.spec))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (r *Reminder) Stop() {
	if r.cron != nil {
		ctx := r.cron.Stop()
		<-ctx.Done()
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.logger.Info("Reminder scheduler stopped")
}

// RunOnce 执行一次检查，返回已发送告警的用户数
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	users, day, err := r.finder.MissingToday(ctx, reminderLookbackDays)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, userID := range users {
		_, err := r.alerts.Dispatch(ctx, alert.Alert{
			AlertType:  alert.TypeMissedHealthCheck,
			Message:    fmt.Sprintf("Daily health check not completed today (%s).", day),
			HealthData: map[string]any{"date": day},
			UserID:     userID,
		})
		if err != nil {
			r.logger.Warn("Missed health check alert failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		sent++
	}

	r.logger.Info("Missed health check reminder done",
		zap.String("day", day),
		zap.Int("users", len(users)),
		zap.Int("alerts_sent", sent),
	)
	return sent, nil
}
