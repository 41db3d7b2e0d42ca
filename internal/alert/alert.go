package alert

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 告警类型
const (
	TypeEmergency         = "emergency"
	TypeHealthConcern     = "health_concern"
	TypeMissedHealthCheck = "missed_health_check"
)

// ErrAllChannelsFailed 所有通道都发送失败
var ErrAllChannelsFailed = errors.New("alert delivery failed on all channels")

// Alert 发给照护人的告警（/telegram/alert 请求体）
type Alert struct {
	AlertType  string         `json:"alert_type"`
	Message    string         `json:"message"`
	HealthData map[string]any `json:"health_data,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	UserName   string         `json:"user_name,omitempty"`
	Language   string         `json:"language,omitempty"`
}

// Notifier 单个告警通道
type Notifier interface {
	Name() string
	Notify(ctx context.Context, a Alert) error
}

// Delivery 分发结果
type Delivery struct {
	Channels []string `json:"channels"`
	DemoMode bool     `json:"demo_mode"`
}

// Dispatcher 并发分发到所有通道，至少一个成功即视为送达
// 没有配置任何通道时只记录日志（演示模式）
type Dispatcher struct {
	channels []Notifier
	logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger, channels ...Notifier) *Dispatcher {
	return &Dispatcher{channels: channels, logger: logger}
}

// Channels 已配置的通道名
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, c := range d.channels {
		names = append(names, c.Name())
	}
	return names
}

func (d *Dispatcher) Dispatch(ctx context.Context, a Alert) (Delivery, error) {
	if len(d.channels) == 0 {
		d.logger.Warn("No alert channel configured, alert logged only",
			zap.String("alert_type", a.AlertType),
			zap.String("user_id", a.UserID),
			zap.String("message", a.Message),
		)
		return Delivery{Channels: []string{}, DemoMode: true}, nil
	}

	var (
		mu        sync.Mutex
		delivered []string
		errs      []error
	)
	var g errgroup.Group
	for _, ch := range d.channels {
		ch := ch
		g.Go(func() error {
			err := ch.Notify(ctx, a)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// 单个通道失败不影响其它通道
				d.logger.Error("Alert channel failed", zap.String("channel", ch.Name()), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
				return nil
			}
			delivered = append(delivered, ch.Name())
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(delivered)
	if len(delivered) == 0 {
		return Delivery{Channels: []string{}}, fmt.Errorf("%w: %w", ErrAllChannelsFailed, errors.Join(errs...))
	}
	d.logger.Info("Alert delivered",
		zap.String("alert_type", a.AlertType),
		zap.String("user_id", a.UserID),
		zap.Strings("channels", delivered),
	)
	return Delivery{Channels: delivered}, nil
}

// FormatText 告警正文（Telegram 纯文本）
func FormatText(a Alert) string {
	var b strings.Builder
	switch a.AlertType {
	case TypeEmergency:
		b.WriteString("🚨 EMERGENCY ALERT")
	case TypeHealthConcern:
		b.WriteString("⚠️ HEALTH CONCERN")
	case TypeMissedHealthCheck:
		b.WriteString("⏰ MISSED HEALTH CHECK")
	default:
		b.WriteString("ℹ️ ALERT")
	}
	b.WriteString("\n\n")
	if a.UserName != "" {
		fmt.Fprintf(&b, "User: %s\n", a.UserName)
	} else if a.UserID != "" {
		fmt.Fprintf(&b, "User: %s\n", a.UserID)
	}
	b.WriteString(a.Message)

	if len(a.HealthData) > 0 {
		keys := make([]string, 0, len(a.HealthData))
		for k := range a.HealthData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n\nDetails:")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n• %s: %v", k, a.HealthData[k])
		}
	}
	return b.String()
}
