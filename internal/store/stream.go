package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Publisher 事件发布
type Publisher interface {
	PublishJSON(ctx context.Context, stream string, data any) (string, error)
}

// StreamPublisher 基于 Redis Streams 的事件发布
type StreamPublisher struct {
	c      *redis.Client
	maxLen int64
}

// NewStreamPublisher maxLen > 0 时近似裁剪 stream 长度
func NewStreamPublisher(c *redis.Client, maxLen int64) *StreamPublisher {
	return &StreamPublisher{c: c, maxLen: maxLen}
}

// Publish 使用 XADD 发布消息（值统一转为字符串）
func (p *StreamPublisher) Publish(ctx context.Context, stream string, values map[string]any) (string, error) {
	streamValues := make(map[string]any, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case string:
			streamValues[k] = val
		case []byte:
			streamValues[k] = string(val)
		case int, int32, int64:
			streamValues[k] = fmt.Sprintf("%d", val)
		case bool:
			streamValues[k] = fmt.Sprintf("%t", val)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("marshal stream value %s: %w", k, err)
			}
			streamValues[k] = string(b)
		}
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: streamValues,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return p.c.XAdd(ctx, args).Result()
}

// PublishJSON 发布 JSON 消息：{data, timestamp}
func (p *StreamPublisher) PublishJSON(ctx context.Context, stream string, data any) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return p.Publish(ctx, stream, map[string]any{
		"data":      string(b),
		"timestamp": time.Now().Unix(),
	})
}
