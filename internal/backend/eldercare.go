package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrElderCareDisabled 未配置 ELDERCARE_BACKEND_URL
var ErrElderCareDisabled = errors.New("eldercare backend url not configured")

// ElderCare 外部护理数据库的日报接口
type ElderCare struct {
	httpClient *resty.Client
	url        string
}

func NewElderCare(url string, timeout time.Duration) *ElderCare {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &ElderCare{httpClient: client, url: url}
}

// Enabled 是否配置了转发地址
func (e *ElderCare) Enabled() bool {
	return e != nil && e.url != ""
}

// Forward 转发日报，返回对方的 JSON 响应
func (e *ElderCare) Forward(ctx context.Context, payload any) (map[string]any, error) {
	if !e.Enabled() {
		return nil, ErrElderCareDisabled
	}
	var out map[string]any
	resp, err := e.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post(e.url)
	if err != nil {
		return nil, fmt.Errorf("eldercare request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("eldercare backend error: %d", resp.StatusCode())
	}
	return out, nil
}
