package sessionmanager

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/yourusername/livepoll-api/internal/domain/entity"
)

// Значения по умолчанию
const (
	DefaultChatHistorySize = 50
	DefaultCommandBuffer   = 64
)

// Config содержит настройки для координатора комнаты
type Config struct {
	// TickInterval — период тиков таймера опроса
	TickInterval time.Duration

	// ChatHistorySize — максимальный размер истории чата комнаты
	ChatHistorySize int

	// CommandBuffer — размер буфера очереди команд комнаты
	CommandBuffer int

	// ResponseTimeBucketsMs — верхние границы бакетов распределения времени
	// ответа (мс). Последний бакет открыт сверху. Границы настраиваются
	// слоем представления.
	ResponseTimeBucketsMs []int64

	// RatingExpected — политика "ожидаемого" значения рейтинговой шкалы,
	// когда учитель не задал его явно
	RatingExpected func(scale int) int

	// AutoEndWhenAllAnswered — завершать опрос досрочно, когда ответили
	// все студенты из ростера
	AutoEndWhenAllAnswered bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		TickInterval:           1 * time.Second,
		ChatHistorySize:        DefaultChatHistorySize,
		CommandBuffer:          DefaultCommandBuffer,
		ResponseTimeBucketsMs:  []int64{5000, 10000, 20000}, // 0-5s, 5-10s, 10-20s, 20s+
		RatingExpected:         entity.DefaultRatingExpected,
		AutoEndWhenAllAnswered: true,
	}
}

// Broadcaster определяет интерфейс рассылки событий, необходимый комнате.
// Реализуется websocket.Manager; в тестах подменяется моком.
// Отправка не блокирует цикл команд: сообщение ставится в буфер
// соединения, доставка идет отдельными горутинами.
type Broadcaster interface {
	// BroadcastToRoom отправляет событие всем участникам комнаты
	BroadcastToRoom(roomID string, eventType string, data interface{}) error

	// SendToParticipant отправляет событие конкретному участнику
	SendToParticipant(participantID string, eventType string, data interface{}) error

	// EvictParticipant отключает участника от комнаты: после вызова он
	// не получает дальнейших рассылок
	EvictParticipant(participantID string)
}

// Dependencies содержит зависимости координатора комнаты
type Dependencies struct {
	Broadcaster Broadcaster
	Clock       clockwork.Clock
}

// PollSpec описывает команду create-poll. Имена полей соответствуют
// полезной нагрузке клиента.
type PollSpec struct {
	Question      string             `json:"question"`
	PollType      string             `json:"pollType"`
	Options       []string           `json:"options"`
	CorrectAnswer entity.AnswerValue `json:"correctAnswer"`
	TimeLimit     int                `json:"timeLimit"`
	IsAnonymous   bool               `json:"isAnonymous"`
	RatingScale   int                `json:"ratingScale"`
}

// PerformanceReport — ответ на get-performance. До завершения сессии
// возвращается стабильный сентинел Available=false.
type PerformanceReport struct {
	Available        bool   `json:"available"`
	Name             string `json:"name"`
	TotalAnswers     int    `json:"totalAnswers"`
	CorrectAnswers   int    `json:"correctAnswers"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
	Accuracy         int    `json:"accuracy"`
	Message          string `json:"message,omitempty"`
}

// ExportSnapshot — согласованный срез состояния для экспорта и аналитики:
// опрос, агрегаты и список участия собираются одной командой.
type ExportSnapshot struct {
	Poll          *entity.Poll                 `json:"poll"`
	Analytics     *entity.AnalyticsSnapshot    `json:"analytics"`
	Participation []*entity.ParticipationEntry `json:"participation"`
}
