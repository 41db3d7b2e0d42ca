package alert

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

type fakePublisher struct {
	topic   string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.topic = topic
	f.payload = payload
	return nil
}

func sampleAlert() Alert {
	return Alert{
		AlertType: TypeHealthConcern,
		Message:   "Health check revealed concerning conditions: Poor health rating",
		HealthData: map[string]any{
			"sleepHours": "6 hours",
			"moodRating": "3/10",
		},
		UserID: "u1",
	}
}

func TestDispatcher_AllChannels(t *testing.T) {
	sender := &fakeSender{}
	pub := &fakePublisher{}
	d := NewDispatcher(zap.NewNop(), NewTelegram(sender, 42), NewMQTT(pub, "seniorsync/alerts", 1))

	delivery, err := d.Dispatch(context.Background(), sampleAlert())
	require.NoError(t, err)
	assert.Equal(t, []string{"mqtt", "telegram"}, delivery.Channels)
	assert.False(t, delivery.DemoMode)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "HEALTH CONCERN")

	assert.Equal(t, "seniorsync/alerts", pub.topic)
	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, "health_concern", got["alert_type"])
	assert.NotEmpty(t, got["sent_at"])
}

func TestDispatcher_PartialFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("bot blocked")}
	pub := &fakePublisher{}
	d := NewDispatcher(zap.NewNop(), NewTelegram(sender, 42), NewMQTT(pub, "t", 0))

	delivery, err := d.Dispatch(context.Background(), sampleAlert())
	require.NoError(t, err)
	assert.Equal(t, []string{"mqtt"}, delivery.Channels)
}

func TestDispatcher_AllFailed(t *testing.T) {
	d := NewDispatcher(zap.NewNop(),
		NewTelegram(&fakeSender{err: errors.New("bot blocked")}, 42),
		NewMQTT(&fakePublisher{err: errors.New("not connected")}, "t", 0),
	)

	_, err := d.Dispatch(context.Background(), sampleAlert())
	assert.ErrorIs(t, err, ErrAllChannelsFailed)
	assert.ErrorContains(t, err, "bot blocked")
	assert.ErrorContains(t, err, "not connected")
}

func TestDispatcher_DemoMode(t *testing.T) {
	d := NewDispatcher(zap.NewNop())

	delivery, err := d.Dispatch(context.Background(), sampleAlert())
	require.NoError(t, err)
	assert.True(t, delivery.DemoMode)
	assert.Empty(t, delivery.Channels)
	assert.Empty(t, d.Channels())
}

func TestTelegram_CanceledContext(t *testing.T) {
	sender := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTelegram(sender, 1).Notify(ctx, sampleAlert())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestFormatText(t *testing.T) {
	text := FormatText(sampleAlert())
	assert.Equal(t, "⚠️ HEALTH CONCERN\n\nUser: u1\nHealth check revealed concerning conditions: Poor health rating\n\nDetails:\n• moodRating: 3/10\n• sleepHours: 6 hours", text)

	text = FormatText(Alert{AlertType: TypeEmergency, Message: "Emergency button pressed by user", UserName: "Anna"})
	assert.Equal(t, "🚨 EMERGENCY ALERT\n\nUser: Anna\nEmergency button pressed by user", text)
}
