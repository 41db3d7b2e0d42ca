package httpapi

import (
	"context"
	"errors"
	"net/http"

	"seniorsync/internal/alert"
	"seniorsync/internal/service"

	"go.uber.org/zap"
)

// AlertSender 告警发送（service.AlertService）
type AlertSender interface {
	Send(ctx context.Context, a alert.Alert) (alert.Delivery, error)
}

type AlertHandler struct {
	alerts AlertSender
	logger *zap.Logger
}

func NewAlertHandler(alerts AlertSender, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

type alertResponse struct {
	Status   string   `json:"status"`
	Channels []string `json:"channels"`
	DemoMode bool     `json:"demo_mode"`
}

// SendAlert POST /telegram/alert
// 调用方只关心状态码：200 已送达（或演示模式），400 参数错误，502 所有通道失败
func (h *AlertHandler) SendAlert(w http.ResponseWriter, r *http.Request) {
	var a alert.Alert
	if err := readBodyJSON(r, maxBodyBytes, &a); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	d, err := h.alerts.Send(r.Context(), a)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAlert) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("SendAlert failed", zap.String("alert_type", a.AlertType), zap.Error(err))
		writeDetail(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, alertResponse{Status: "sent", Channels: d.Channels, DemoMode: d.DemoMode})
}
