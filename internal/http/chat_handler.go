package httpapi

import (
	"context"
	"errors"
	"net/http"

	"seniorsync/internal/domain"
	"seniorsync/internal/service"

	"go.uber.org/zap"
)

// ChatService 陪伴聊天（service.CompanionChatService）
type ChatService interface {
	Chat(ctx context.Context, req domain.ChatRequest) (string, error)
}

type ChatHandler struct {
	chat   ChatService
	logger *zap.Logger
}

func NewChatHandler(chat ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// Chat POST /ai/chat -> {"response": "..."}
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	reply, err := h.chat.Chat(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNoMessages) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Chat failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, domain.ChatResponse{Response: reply})
}
