package websocket

import (
	"sync"
	"time"
)

// Metrics представляет агрегированные метрики WebSocket-сервера
type Metrics struct {
	totalConnections  int64     // Общее количество подключений за все время
	activeConnections int64     // Текущее количество активных подключений
	messagesSent      int64     // Общее количество отправленных сообщений
	messagesReceived  int64     // Общее количество полученных сообщений
	messagesDropped   int64     // Сообщения, отброшенные из-за переполнения буфера
	startTime         time.Time // Время запуска сервера

	mu sync.RWMutex
}

// NewMetrics создает новый экземпляр метрик
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// ConnectionOpened учитывает новое подключение
func (m *Metrics) ConnectionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
}

// ConnectionClosed учитывает закрытое подключение
func (m *Metrics) ConnectionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
}

// MessageSent увеличивает счетчик отправленных сообщений
func (m *Metrics) MessageSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesSent++
}

// MessageReceived увеличивает счетчик полученных сообщений
func (m *Metrics) MessageReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesReceived++
}

// MessageDropped увеличивает счетчик отброшенных сообщений
func (m *Metrics) MessageDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesDropped++
}

// ActiveConnections возвращает текущее количество подключений
func (m *Metrics) ActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Snapshot возвращает все метрики в формате карты для JSON-ответа
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_connections":  m.totalConnections,
		"active_connections": m.activeConnections,
		"messages_sent":      m.messagesSent,
		"messages_received":  m.messagesReceived,
		"messages_dropped":   m.messagesDropped,
		"uptime_seconds":     time.Since(m.startTime).Seconds(),
		"start_time":         m.startTime.Format(time.RFC3339),
	}
}
