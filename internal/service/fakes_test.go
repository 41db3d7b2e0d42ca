package service

import (
	"context"
	"sync"

	"seniorsync/internal/alert"
	"seniorsync/internal/llm"
)

// fakeLLM 按顺序返回预设回复，并记录每次调用的消息
type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]llm.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llm.Message) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	if len(f.replies) == 0 {
		return llm.Response{}, llm.ErrEmptyResponse
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return llm.Response{Content: reply, Model: "fake"}, nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	alerts []alert.Alert
	err    error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, a alert.Alert) (alert.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, a)
	if f.err != nil {
		return alert.Delivery{}, f.err
	}
	return alert.Delivery{Channels: []string{"fake"}}, nil
}

type fakeForwarder struct {
	enabled  bool
	err      error
	payloads []any
}

func (f *fakeForwarder) Enabled() bool { return f.enabled }

func (f *fakeForwarder) Forward(ctx context.Context, payload any) (map[string]any, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"id": float64(1)}, nil
}
