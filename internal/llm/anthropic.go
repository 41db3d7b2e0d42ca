package llm

import (
	"context"
	"fmt"
	"net/http"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// conversationOpener Anthropic 要求第一条消息来自用户
const conversationOpener = "Hello"

type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

func NewAnthropic(apiKey, baseURL, model string, maxTokens int, httpClient *http.Client) *AnthropicClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, anthropic.WithHTTPClient(httpClient))
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(apiKey, opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	system, rest := splitSystem(messages)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  toAnthropicMessages(rest),
		MaxTokens: c.maxTokens,
		System:    system,
	})
	if err != nil {
		return Response{}, fmt.Errorf("claude complete: %w", err)
	}
	if len(resp.Content) == 0 {
		return Response{}, ErrEmptyResponse
	}

	return Response{
		Content:          resp.Content[0].GetText(),
		Model:            c.model,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

// toAnthropicMessages 合并相邻同角色消息，保证以用户消息开头、角色交替
func toAnthropicMessages(messages []Message) []anthropic.Message {
	var out []anthropic.Message
	var texts []string
	role := ""

	flush := func() {
		if role == "" {
			return
		}
		content := make([]anthropic.MessageContent, 0, len(texts))
		for _, t := range texts {
			content = append(content, anthropic.NewTextMessageContent(t))
		}
		out = append(out, anthropic.Message{Role: anthropic.ChatRole(role), Content: content})
	}

	for _, m := range messages {
		r := RoleUser
		if m.Role == RoleAssistant {
			r = RoleAssistant
		}
		if role == "" && r == RoleAssistant {
			role = RoleUser
			texts = []string{conversationOpener}
		}
		if r != role {
			flush()
			role = r
			texts = nil
		}
		texts = append(texts, m.Content)
	}
	flush()
	return out
}
