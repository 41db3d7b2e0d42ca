package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT 配置（告警推送，默认禁用）
type MQTTConfig struct {
	Enabled  bool
	Broker   string // 如 "tcp://localhost:1883"
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// LLMConfig 对话模型配置
type LLMConfig struct {
	Provider        string // openai | anthropic
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	MaxTokens       int
	Timeout         time.Duration
}

// TelegramConfig 照护人告警通道
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// HealthCheckConfig 每日健康检查
type HealthCheckConfig struct {
	ScanWindow int
	SessionTTL time.Duration
	Timezone   string
	Stream     string // 完成事件 Redis Stream
}

// ReminderConfig 未完成检查的每日提醒
type ReminderConfig struct {
	Enabled bool
	Cron    string
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr     string
	BasePath string

	// 健康检查最后一轮要串行生成回复和总结，写超时需覆盖两次模型调用
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Config seniorsync 服务配置
type Config struct {
	HTTP      HTTPConfig
	DBEnabled bool
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       struct {
		Level  string
		Format string
	}
	LLM         LLMConfig
	Telegram    TelegramConfig
	MQTT        MQTTConfig
	ElderCare   struct{ BackendURL string }
	HealthCheck HealthCheckConfig
	Reminder    ReminderConfig
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.BasePath = strings.TrimSuffix(getEnv("HTTP_BASE_PATH", "/api"), "/")
	cfg.HTTP.WriteTimeout = parseDuration(getEnv("HTTP_WRITE_TIMEOUT", "3m"), 3*time.Minute)
	cfg.HTTP.ShutdownTimeout = parseDuration(getEnv("HTTP_SHUTDOWN_TIMEOUT", "5s"), 5*time.Second)

	// DB 不可用时回退到内存 repo
	cfg.DBEnabled = parseBool(getEnv("DB_ENABLED", "false"), false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "seniorsync")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", "openai"))
	cfg.LLM.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.LLM.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", "")
	cfg.LLM.OpenAIModel = getEnv("OPENAI_MODEL", "gpt-4o-mini")
	cfg.LLM.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", "")
	cfg.LLM.AnthropicModel = getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest")
	cfg.LLM.MaxTokens = parseInt(getEnv("LLM_MAX_TOKENS", "1024"), 1024)
	cfg.LLM.Timeout = parseDuration(getEnv("LLM_TIMEOUT", "60s"), 60*time.Second)

	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.ChatID = parseInt64(getEnv("TELEGRAM_CHAT_ID", "0"), 0)

	cfg.MQTT.Enabled = parseBool(getEnv("MQTT_ENABLED", "false"), false)
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "seniorsync-alerts")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "seniorsync/alerts")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.ElderCare.BackendURL = getEnv("ELDERCARE_BACKEND_URL", "")

	cfg.HealthCheck.ScanWindow = parseInt(getEnv("HEALTHCHECK_SCAN_WINDOW", "20"), 20)
	cfg.HealthCheck.SessionTTL = parseDuration(getEnv("HEALTHCHECK_SESSION_TTL", "24h"), 24*time.Hour)
	cfg.HealthCheck.Timezone = getEnv("HEALTHCHECK_TIMEZONE", "UTC")
	cfg.HealthCheck.Stream = getEnv("EVENT_STREAM", "seniorsync:healthcheck:completed")

	cfg.Reminder.Enabled = parseBool(getEnv("REMINDER_ENABLED", "false"), false)
	cfg.Reminder.Cron = getEnv("REMINDER_CRON", "0 19 * * *")

	return cfg
}

// Location 健康检查日历日所用时区，无法解析时使用 UTC
func (c *HealthCheckConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseInt64(s string, def int64) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
