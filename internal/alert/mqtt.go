package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seniorsync/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher MQTT 发布接口
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTClient paho 客户端封装
type MQTTClient struct {
	client mqtt.Client
}

// NewMQTTClient 创建MQTT客户端并连接
func NewMQTTClient(cfg *config.MQTTConfig) (*MQTTClient, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTClient{client: client}, nil
}

// Publish 发布消息
func (c *MQTTClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}
	return nil
}

// Disconnect 断开连接
func (c *MQTTClient) Disconnect() {
	c.client.Disconnect(250) // 250ms等待时间
}

// MQTT 告警以 JSON 发布到主题（如护理站看板）
type MQTT struct {
	pub   Publisher
	topic string
	qos   byte
}

func NewMQTT(pub Publisher, topic string, qos byte) *MQTT {
	return &MQTT{pub: pub, topic: topic, qos: qos}
}

func (m *MQTT) Name() string { return "mqtt" }

func (m *MQTT) Notify(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(struct {
		Alert
		SentAt time.Time `json:"sent_at"`
	}{Alert: a, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return m.pub.Publish(m.topic, m.qos, false, payload)
}
