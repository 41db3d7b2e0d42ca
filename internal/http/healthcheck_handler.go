package httpapi

import (
	"context"
	"errors"
	"net/http"

	"seniorsync/internal/domain"
	"seniorsync/internal/healthcheck"
	"seniorsync/internal/service"

	"go.uber.org/zap"
)

// HealthCheckService 每日健康检查会话（service.HealthCheckService）
type HealthCheckService interface {
	StartCheck(ctx context.Context, userID, locale string) (*healthcheck.Session, error)
	SendMessage(ctx context.Context, sessionID, text string) (*service.MessageResult, error)
	GetSession(ctx context.Context, sessionID string) (*healthcheck.Session, error)
}

type HealthCheckHandler struct {
	checks HealthCheckService
	logger *zap.Logger
}

func NewHealthCheckHandler(checks HealthCheckService, logger *zap.Logger) *HealthCheckHandler {
	return &HealthCheckHandler{checks: checks, logger: logger}
}

type startRequest struct {
	UserID   domain.UserID `json:"userId"`
	Language string        `json:"language"`
}

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// failMessage 业务错误原样返回，其余错误只返回概要
func (h *HealthCheckHandler) failMessage(op string, err error) string {
	switch {
	case errors.Is(err, service.ErrUserRequired),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, healthcheck.ErrSessionNotActive),
		errors.Is(err, healthcheck.ErrAlreadyCompletedToday):
		return err.Error()
	}
	h.logger.Error(op+" failed", zap.Error(err))
	return "internal error"
}

// Start POST /healthcheck/start {userId, language}
func (h *HealthCheckHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeFail(w, "invalid body")
		return
	}
	sess, err := h.checks.StartCheck(r.Context(), string(req.UserID), req.Language)
	if err != nil {
		writeFail(w, h.failMessage("StartCheck", err))
		return
	}
	writeOk(w, sess)
}

// Message POST /healthcheck/message {sessionId, message}
func (h *HealthCheckHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeFail(w, "invalid body")
		return
	}
	if req.SessionID == "" {
		writeFail(w, "sessionId is required")
		return
	}
	res, err := h.checks.SendMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeFail(w, h.failMessage("SendMessage", err))
		return
	}
	writeOk(w, res)
}

// GetSession GET /healthcheck/sessions/{id}
func (h *HealthCheckHandler) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.checks.GetSession(r.Context(), id)
	if err != nil {
		writeFail(w, h.failMessage("GetSession", err))
		return
	}
	writeOk(w, sess)
}
