package websocket

// HubInterface определяет контракт хаба для менеджера сообщений.
// Позволяет подменять хаб моком в тестах.
type HubInterface interface {
	// BroadcastToRoom отправляет событие всем клиентам комнаты
	BroadcastToRoom(roomID, eventType string, data interface{}) error

	// SendToParticipant отправляет событие одному соединению
	SendToParticipant(connectionID, eventType string, data interface{}) error

	// EvictParticipant принудительно закрывает соединение
	EvictParticipant(connectionID string)

	// SubscribeToRoom привязывает клиента к комнате
	SubscribeToRoom(client *Client, roomID string)

	// Metrics возвращает метрики хаба
	Metrics() *Metrics
}

// Проверка реализации на этапе компиляции
var _ HubInterface = (*Hub)(nil)
