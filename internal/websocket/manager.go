package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// ErrHubClosed возвращается при отправке через остановленный хаб
var ErrHubClosed = errors.New("websocket hub is closed")

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Manager обрабатывает входящие WebSocket сообщения и реализует
// интерфейс рассылки для слоя сессий.
type Manager struct {
	hub            HubInterface
	messageHandler map[string]func(data json.RawMessage, client *Client) error
}

// NewManager создает новый менеджер WebSocket
func NewManager(hub HubInterface) *Manager {
	return &Manager{
		hub:            hub,
		messageHandler: make(map[string]func(data json.RawMessage, client *Client) error),
	}
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler func(data json.RawMessage, client *Client) error) {
	m.messageHandler[eventType] = handler
	log.Printf("[WebSocketManager] Зарегистрирован обработчик для сообщений типа: %s", eventType)
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если обработка не удалась и соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[WebSocketManager] Не удалось разобрать сообщение от %s: %v", client.ConnectionID, err)
		m.SendErrorToClient(client, "invalid_format", "Invalid JSON format")
		return nil // Мусорное сообщение не убивает соединение
	}

	handler, ok := m.messageHandler[event.Type]
	if !ok {
		log.Printf("[WebSocketManager] Нет обработчика для типа '%s' от клиента %s", event.Type, client.ConnectionID)
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil
	}

	rawMessage, _ := json.Marshal(event.Data)
	if err := handler(rawMessage, client); err != nil {
		log.Printf("[WebSocketManager] Обработчик типа '%s' вернул ошибку для клиента %s: %v", event.Type, client.ConnectionID, err)
		return err
	}
	return nil
}

// SendErrorToClient отправляет стандартизированное сообщение об ошибке клиенту.
// Этот метод НЕ закрывает соединение.
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	err := m.hub.SendToParticipant(client.ConnectionID, ERROR, map[string]string{
		"code":    code,
		"message": message,
	})
	if err != nil {
		log.Printf("[WebSocketManager] Не удалось отправить ошибку клиенту %s: %v", client.ConnectionID, err)
	}
}

// BroadcastToRoom отправляет событие всем клиентам комнаты
func (m *Manager) BroadcastToRoom(roomID, eventType string, data interface{}) error {
	return m.hub.BroadcastToRoom(roomID, eventType, data)
}

// SendToParticipant отправляет событие одному участнику
func (m *Manager) SendToParticipant(participantID, eventType string, data interface{}) error {
	return m.hub.SendToParticipant(participantID, eventType, data)
}

// EvictParticipant принудительно отключает участника
func (m *Manager) EvictParticipant(participantID string) {
	m.hub.EvictParticipant(participantID)
}

// SubscribeClientToRoom привязывает клиента к рассылкам комнаты
func (m *Manager) SubscribeClientToRoom(client *Client, roomID string) {
	m.hub.SubscribeToRoom(client, roomID)
}

// GetMetrics возвращает текущие метрики WebSocket-системы
func (m *Manager) GetMetrics() map[string]interface{} {
	return m.hub.Metrics().Snapshot()
}
