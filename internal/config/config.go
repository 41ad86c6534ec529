package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	WebSocket WebSocketConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SessionConfig содержит настройки сессионного слоя
type SessionConfig struct {
	// TickIntervalMs: Период тика таймера опроса в миллисекундах. По умолчанию 1000.
	TickIntervalMs int `mapstructure:"tick_interval_ms"`

	// ChatHistorySize: Сколько последних сообщений чата хранится в комнате
	ChatHistorySize int `mapstructure:"chat_history_size"`

	// CommandBuffer: Размер очереди команд комнаты
	CommandBuffer int `mapstructure:"command_buffer"`

	// AutoEndWhenAllAnswered: Завершать опрос досрочно, когда ответили все студенты
	AutoEndWhenAllAnswered bool `mapstructure:"auto_end_when_all_answered"`

	// ResponseTimeBucketsMs: Границы корзин распределения времени ответа
	ResponseTimeBucketsMs []int64 `mapstructure:"response_time_buckets_ms"`
}

// WebSocketConfig содержит настройки WebSocket-подсистемы
type WebSocketConfig struct {
	Buffers BuffersConfig
	Limits  LimitsConfig
}

// BuffersConfig содержит настройки буферов
type BuffersConfig struct {
	ClientSendBuffer int `mapstructure:"client_send_buffer"`
	BroadcastBuffer  int `mapstructure:"broadcast_buffer"`
}

// LimitsConfig содержит настройки ограничений
type LimitsConfig struct {
	MaxMessageSize int `mapstructure:"max_message_size"`
	WriteWait      int `mapstructure:"write_wait"`
	PongWait       int `mapstructure:"pong_wait"`
}

// TickInterval возвращает период тика как Duration
func (s *SessionConfig) TickInterval() time.Duration {
	if s.TickIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(s.TickIntervalMs) * time.Millisecond
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "5000")
	vip.SetDefault("server.readtimeout", 15)
	vip.SetDefault("server.writetimeout", 15)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	vip.SetDefault("session.tick_interval_ms", 1000)
	vip.SetDefault("session.chat_history_size", 200)
	vip.SetDefault("session.command_buffer", 256)
	vip.SetDefault("session.auto_end_when_all_answered", true)
	vip.SetDefault("session.response_time_buckets_ms", []int64{5000, 10000, 20000})
	vip.SetDefault("websocket.buffers.client_send_buffer", 128)
	vip.SetDefault("websocket.buffers.broadcast_buffer", 256)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.readtimeout", "SERVER_READTIMEOUT")
	vip.BindEnv("server.writetimeout", "SERVER_WRITETIMEOUT")
	vip.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS")

	vip.BindEnv("session.tick_interval_ms", "SESSION_TICK_INTERVAL_MS")
	vip.BindEnv("session.chat_history_size", "SESSION_CHAT_HISTORY_SIZE")
	vip.BindEnv("session.auto_end_when_all_answered", "SESSION_AUTO_END_WHEN_ALL_ANSWERED")

	vip.BindEnv("websocket.buffers.client_send_buffer", "WEBSOCKET_CLIENT_SEND_BUFFER")
	vip.BindEnv("websocket.buffers.broadcast_buffer", "WEBSOCKET_BROADCAST_BUFFER")

	// 3. Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Не страшно, если файла нет: есть BindEnv и умолчания
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит файл, env vars и умолчания)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Allowed Origins: %v", cfg.Server.AllowedOrigins)
		log.Printf("Tick Interval: %s", cfg.Session.TickInterval())
		log.Printf("Chat History Size: %d", cfg.Session.ChatHistorySize)
		log.Printf("Auto End When All Answered: %t", cfg.Session.AutoEndWhenAllAnswered)
		log.Printf("-----------------------------------------")
	}

	return &cfg, nil
}
