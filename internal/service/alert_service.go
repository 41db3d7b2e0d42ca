package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seniorsync/internal/alert"
)

// ErrInvalidAlert 告警缺少类型或正文
var ErrInvalidAlert = errors.New("invalid alert")

// AlertDispatcher alert.Dispatcher 的抽象（测试替身）
type AlertDispatcher interface {
	Dispatch(ctx context.Context, a alert.Alert) (alert.Delivery, error)
}

// AlertService /telegram/alert
type AlertService struct {
	dispatcher AlertDispatcher
}

func NewAlertService(dispatcher AlertDispatcher) *AlertService {
	return &AlertService{dispatcher: dispatcher}
}

// Send 校验后分发告警
func (s *AlertService) Send(ctx context.Context, a alert.Alert) (alert.Delivery, error) {
	a.AlertType = strings.TrimSpace(a.AlertType)
	if a.AlertType == "" {
		return alert.Delivery{}, fmt.Errorf("%w: alert_type is required", ErrInvalidAlert)
	}
	if strings.TrimSpace(a.Message) == "" {
		return alert.Delivery{}, fmt.Errorf("%w: message is required", ErrInvalidAlert)
	}
	return s.dispatcher.Dispatch(ctx, a)
}
