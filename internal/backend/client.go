package backend

import (
	"context"
	"fmt"
	"time"

	"seniorsync/internal/alert"
	"seniorsync/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client seniorsync HTTP API 客户端（CLI 和其它服务使用）
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient baseURL 包含 base path，如 http://localhost:8080/api
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

// errorBody FastAPI 风格或 Result 风格的错误响应
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func statusError(op string, resp *resty.Response) error {
	msg := resp.Status()
	if e, ok := resp.Error().(*errorBody); ok && e != nil {
		if e.Detail != "" {
			msg = e.Detail
		} else if e.Message != "" {
			msg = e.Message
		}
	}
	return fmt.Errorf("%s: HTTP %d: %s", op, resp.StatusCode(), msg)
}

// Chat POST /ai/chat
func (c *Client) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	var out domain.ChatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/ai/chat")
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	if resp.IsError() {
		return "", statusError("chat", resp)
	}
	return out.Response, nil
}

// SendReport POST /eldercare/send-report
func (c *Client) SendReport(ctx context.Context, sub domain.ReportSubmission) (domain.ReportResult, error) {
	var out domain.ReportResult
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(sub).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/eldercare/send-report")
	if err != nil {
		return domain.ReportResult{}, fmt.Errorf("send report: %w", err)
	}
	if resp.IsError() {
		return domain.ReportResult{}, statusError("send report", resp)
	}
	c.logger.Debug("Report submitted", zap.String("user_id", string(sub.UserID)), zap.Bool("success", out.Success))
	return out, nil
}

// SendAlert POST /telegram/alert（只关心状态码）
func (c *Client) SendAlert(ctx context.Context, a alert.Alert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(a).
		SetError(&errorBody{}).
		Post("/telegram/alert")
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	if resp.IsError() {
		return statusError("send alert", resp)
	}
	return nil
}
