package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// broadcastTarget описывает адресацию исходящего сообщения
type broadcastTarget struct {
	// ID комнаты для рассылки всем ее клиентам
	roomID string

	// ID конкретного соединения (приоритетнее roomID, если задан)
	connectionID string

	// Сериализованное сообщение
	message []byte
}

// DisconnectHandler вызывается после снятия клиента с регистрации
type DisconnectHandler func(roomID, connectionID string)

// HubConfig содержит настройки хаба
type HubConfig struct {
	// BroadcastBuffer определяет размер буфера канала рассылки
	BroadcastBuffer int

	// ClientConfig передается создаваемым клиентам
	ClientConfig ClientConfig
}

// DefaultHubConfig возвращает конфигурацию хаба по умолчанию
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BroadcastBuffer: 256,
		ClientConfig:    DefaultClientConfig(),
	}
}

// Hub поддерживает набор активных клиентов и маршрутизирует
// исходящие сообщения: всем клиентам комнаты или одному соединению.
// Медленный клиент отсекается после нескольких переполнений буфера,
// чтобы не тормозить рассылку остальным.
type Hub struct {
	config HubConfig

	// Зарегистрированные клиенты
	clients sync.Map // map[*Client]bool

	// Быстрый поиск клиента по ID соединения
	connMap sync.Map // map[string]*Client

	// Подписки комнат: roomID -> *sync.Map (connectionID -> *Client)
	roomSubscriptions sync.Map

	// Канал регистрации клиентов
	register chan *Client

	// Канал отмены регистрации
	unregister chan *Client

	// Канал исходящих сообщений
	outbound chan broadcastTarget

	// Канал остановки хаба
	done chan struct{}

	closeOnce sync.Once

	// Обработчик отключений (устанавливается до Run)
	disconnectHandler DisconnectHandler

	// Метрики хаба
	metrics *Metrics
}

// NewHub создает новый хаб
func NewHub(config HubConfig) *Hub {
	if config.BroadcastBuffer <= 0 {
		config.BroadcastBuffer = 256
	}
	return &Hub{
		config:     config,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan broadcastTarget, config.BroadcastBuffer),
		done:       make(chan struct{}),
		metrics:    NewMetrics(),
	}
}

// SetDisconnectHandler устанавливает обработчик отключений.
// Должен быть вызван до запуска Run.
func (h *Hub) SetDisconnectHandler(handler DisconnectHandler) {
	h.disconnectHandler = handler
}

// Metrics возвращает метрики хаба
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Run запускает цикл обработки событий хаба
func (h *Hub) Run() {
	log.Printf("[Hub] Цикл обработки запущен")
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case target := <-h.outbound:
			h.deliver(target)

		case <-h.done:
			log.Printf("[Hub] Остановка, закрываем все соединения")
			h.clients.Range(func(key, _ interface{}) bool {
				client := key.(*Client)
				client.CloseSend()
				return true
			})
			return
		}
	}
}

// Close останавливает хаб
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) handleRegister(client *Client) {
	h.clients.Store(client, true)
	h.connMap.Store(client.ConnectionID, client)
	h.metrics.ConnectionOpened()
	log.Printf("[Hub] Клиент %s зарегистрирован (активных: %d)", client.ConnectionID, h.metrics.ActiveConnections())
}

func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients.LoadAndDelete(client); !ok {
		return
	}
	h.connMap.Delete(client.ConnectionID)

	_, _, roomID := client.Identity()
	if roomID != "" {
		if subs, ok := h.roomSubscriptions.Load(roomID); ok {
			subs.(*sync.Map).Delete(client.ConnectionID)
		}
	}

	client.CloseSend()
	h.metrics.ConnectionClosed()
	log.Printf("[Hub] Клиент %s снят с регистрации (активных: %d)", client.ConnectionID, h.metrics.ActiveConnections())

	if h.disconnectHandler != nil && client.IsJoined() {
		// Обработчик уведомляет комнату в отдельной горутине,
		// чтобы не блокировать цикл хаба
		go h.disconnectHandler(roomID, client.ConnectionID)
	}
}

// SubscribeToRoom привязывает клиента к комнате для последующих рассылок
func (h *Hub) SubscribeToRoom(client *Client, roomID string) {
	subs, _ := h.roomSubscriptions.LoadOrStore(roomID, &sync.Map{})
	subs.(*sync.Map).Store(client.ConnectionID, client)
	log.Printf("[Hub] Клиент %s подписан на комнату %s", client.ConnectionID, roomID)
}

// BroadcastToRoom отправляет событие всем клиентам комнаты
func (h *Hub) BroadcastToRoom(roomID, eventType string, data interface{}) error {
	message, err := marshalEvent(eventType, data)
	if err != nil {
		return err
	}
	return h.enqueue(broadcastTarget{roomID: roomID, message: message})
}

// SendToParticipant отправляет событие одному соединению
func (h *Hub) SendToParticipant(connectionID, eventType string, data interface{}) error {
	message, err := marshalEvent(eventType, data)
	if err != nil {
		return err
	}
	return h.enqueue(broadcastTarget{connectionID: connectionID, message: message})
}

// EvictParticipant принудительно закрывает соединение участника.
// Подписка на комнату снимается синхронно до возврата: рассылки,
// идущие после исключения, удаленному клиенту уже не попадают.
// Закрытие канала send завершает write pump, за ним закрывается
// соединение и read pump снимает клиента с регистрации.
func (h *Hub) EvictParticipant(connectionID string) {
	value, ok := h.connMap.Load(connectionID)
	if !ok {
		return
	}
	client := value.(*Client)

	_, _, roomID := client.Identity()
	if roomID != "" {
		if subs, ok := h.roomSubscriptions.Load(roomID); ok {
			subs.(*sync.Map).Delete(connectionID)
		}
	}

	// Даем write pump время доставить kicked-out до закрытия канала
	go func() {
		time.Sleep(100 * time.Millisecond)
		client.CloseSend()
		log.Printf("[Hub] Клиент %s принудительно отключен", connectionID)
	}()
}

func (h *Hub) enqueue(target broadcastTarget) error {
	select {
	case h.outbound <- target:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// deliver доставляет сообщение адресатам внутри цикла хаба
func (h *Hub) deliver(target broadcastTarget) {
	if target.connectionID != "" {
		if value, ok := h.connMap.Load(target.connectionID); ok {
			h.sendToClient(value.(*Client), target.message)
		}
		return
	}

	subs, ok := h.roomSubscriptions.Load(target.roomID)
	if !ok {
		return
	}
	subs.(*sync.Map).Range(func(_, value interface{}) bool {
		h.sendToClient(value.(*Client), target.message)
		return true
	})
}

// sendToClient кладет сообщение в буфер клиента без блокировки цикла.
// Переполненный буфер — признак мертвого или безнадежно медленного
// клиента: после maxBufferWarnings подряд соединение закрывается.
func (h *Hub) sendToClient(client *Client, message []byte) {
	if client.IsSendClosed() {
		return
	}
	select {
	case client.send <- message:
		h.metrics.MessageSent()
	default:
		h.metrics.MessageDropped()
		warnings := client.incrementBufferWarningCount()
		log.Printf("[Hub] Буфер клиента %s переполнен (предупреждение %d/%d)",
			client.ConnectionID, warnings, maxBufferWarnings)
		if warnings >= maxBufferWarnings {
			log.Printf("[Hub] Клиент %s отключается из-за переполнения буфера", client.ConnectionID)
			client.CloseSend()
		}
	}
}

// marshalEvent сериализует событие в конверт {type, data}
func marshalEvent(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Data: data})
}
