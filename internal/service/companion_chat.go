package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"seniorsync/internal/domain"
	"seniorsync/internal/llm"

	"go.uber.org/zap"
)

// ErrNoMessages 聊天请求没有任何消息
var ErrNoMessages = errors.New("messages are required")

// ElderlySystemPrompt 陪伴聊天的系统提示词
const ElderlySystemPrompt = `You are a patient, respectful AI companion for elderly users.
Your role is to:
- Use simple, clear language without technical jargon
- Speak warmly and respectfully, like a caring friend
- Confirm understanding often and repeat information if needed
- Prioritize safety and wellbeing
- Be patient with mishearing or confusion
- Offer help proactively but not intrusively
- Alert family members if you detect concerning patterns
- Ask for the user's name and preferences naturally in conversation
- Remember details they share with you throughout the conversation
- Respond in the user's preferred language automatically
- If the user speaks to you in a different language, respond in that same language

Remember: Your users may have vision issues, hearing difficulties, or memory concerns.
Always be kind, patient, and supportive. Learn about them through natural conversation.
Adapt to their language automatically without mentioning the language switch.`

// CompanionChatService /ai/chat
type CompanionChatService struct {
	client llm.Client
	logger *zap.Logger
}

func NewCompanionChatService(client llm.Client, logger *zap.Logger) *CompanionChatService {
	return &CompanionChatService{client: client, logger: logger}
}

// BuildSystemPrompt 系统提示词 + 用户信息（年龄、当前用药）
func BuildSystemPrompt(uc *domain.UserContext) string {
	if uc == nil {
		return ElderlySystemPrompt
	}
	var info strings.Builder
	if uc.Name != "" {
		info.WriteString("Name: " + uc.Name + "\n")
	}
	if uc.Age > 0 {
		info.WriteString("Age: " + strconv.Itoa(uc.Age) + "\n")
	}
	if len(uc.Medications) > 0 {
		info.WriteString("Current Medications: " + strings.Join(uc.Medications, ", ") + "\n")
	}
	if info.Len() == 0 {
		return ElderlySystemPrompt
	}
	return ElderlySystemPrompt + "\n\nUser Information:\n" + info.String()
}

// Chat 返回 AI 回复；客户端传入的 system 消息被忽略
func (s *CompanionChatService) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", ErrNoMessages
	}

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: BuildSystemPrompt(req.UserContext)})
	for _, m := range req.Messages {
		role := string(m.Role)
		if role != llm.RoleUser && role != llm.RoleAssistant {
			continue
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}

	resp, err := s.client.Generate(ctx, messages)
	if err != nil {
		s.logger.Error("Companion chat failed", zap.Error(err))
		return "", fmt.Errorf("companion chat: %w", err)
	}
	s.logger.Debug("Companion chat reply",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
	)
	return resp.Content, nil
}
