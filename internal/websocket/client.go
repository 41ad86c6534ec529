package websocket

import (
	"bytes"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	// 30 секунд для быстрого обнаружения отключений
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 4096

	// Размер буфера по умолчанию для каналов отправки сообщений клиенту
	defaultClientBufferSize = 128

	// Максимальное количество предупреждений о переполнении буфера до отключения
	maxBufferWarnings = 3
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// ClientConfig содержит настройки для клиента
type ClientConfig struct {
	// BufferSize определяет размер буфера канала отправки сообщений
	BufferSize int

	// PingInterval определяет интервал между ping-сообщениями
	PingInterval time.Duration

	// PongWait определяет время ожидания pong-ответа
	PongWait time.Duration

	// WriteWait определяет тайм-аут для записи сообщений
	WriteWait time.Duration

	// MaxMessageSize определяет максимальный размер сообщения
	MaxMessageSize int64
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BufferSize:     defaultClientBufferSize,
		PingInterval:   pingPeriod,
		PongWait:       pongWait,
		WriteWait:      writeWait,
		MaxMessageSize: maxMessageSize,
	}
}

// Client является посредником между WebSocket соединением и hub.
// ConnectionID служит ID участника комнаты: одно соединение — один участник.
type Client struct {
	// Уникальный ID соединения
	ConnectionID string

	// Отображаемое имя, присланное в join-room
	DisplayName string

	// Роль участника ("teacher" или "student")
	Role string

	// ID комнаты, к которой привязан клиент (пусто до join-room)
	RoomID string

	// Hub, к которому подключен клиент
	hub *Hub

	// WebSocket соединение
	conn *websocket.Conn

	// Буферизованный канал для исходящих сообщений
	send chan []byte

	// Флаг, указывающий что канал send закрыт (для предотвращения panic)
	sendClosed atomic.Bool

	// Время последней активности клиента
	lastActivity time.Time

	// Флаг завершения join-room (идентичность установлена)
	joined atomic.Bool

	// Мьютекс для синхронизации доступа к идентичности
	identityMutex sync.RWMutex

	// Счетчик предупреждений о переполнении буфера
	bufferWarningCount int32
	bufferWarningMutex sync.Mutex
}

// NewClient создает нового клиента
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return NewClientWithConfig(hub, conn, DefaultClientConfig())
}

// NewClientWithConfig создает нового клиента с указанной конфигурацией
func NewClientWithConfig(hub *Hub, conn *websocket.Conn, config ClientConfig) *Client {
	if config.BufferSize <= 0 {
		config.BufferSize = defaultClientBufferSize
	}
	return &Client{
		ConnectionID: uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, config.BufferSize),
		lastActivity: time.Now(),
	}
}

// SetIdentity фиксирует имя, роль и комнату клиента после join-room
func (c *Client) SetIdentity(displayName, role, roomID string) {
	c.identityMutex.Lock()
	c.DisplayName = displayName
	c.Role = role
	c.RoomID = roomID
	c.identityMutex.Unlock()
	c.joined.Store(true)
	log.Printf("[Client %s] Идентичность установлена: %s (%s), комната %s", c.ConnectionID, displayName, role, roomID)
}

// Identity возвращает имя, роль и комнату клиента
func (c *Client) Identity() (displayName, role, roomID string) {
	c.identityMutex.RLock()
	defer c.identityMutex.RUnlock()
	return c.DisplayName, c.Role, c.RoomID
}

// IsJoined проверяет, прошел ли клиент join-room
func (c *Client) IsJoined() bool {
	return c.joined.Load()
}

// readPump читает сообщения от клиента и передает их обработчику
func (c *Client) readPump(messageHandler func(message []byte, client *Client) error) {
	defer func() {
		log.Printf("[Client %s] Read pump остановлен", c.ConnectionID)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.lastActivity = time.Now()
		return nil
	})

	log.Printf("[Client %s] Read pump запущен", c.ConnectionID)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[Client %s] Ошибка чтения: %v", c.ConnectionID, err)
			} else if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Client %s] Соединение закрыто штатно: %v", c.ConnectionID, err)
			} else {
				log.Printf("[Client %s] Ошибка чтения: %v", c.ConnectionID, err)
			}
			break
		}

		c.lastActivity = time.Now()
		c.hub.metrics.MessageReceived()

		if handlerErr := safeHandleMessage(message, c, messageHandler); handlerErr != nil {
			log.Printf("[Client %s] Фатальная ошибка обработчика: %v. Закрываем соединение.", c.ConnectionID, handlerErr)
			break
		}

		// Любое сообщение от клиента сбрасывает счетчик предупреждений
		c.resetBufferWarningCount()
	}
}

// safeHandleMessage - обертка для вызова обработчика с recover.
// Паника в обработчике считается фатальной для соединения.
func safeHandleMessage(message []byte, client *Client, messageHandler func(message []byte, client *Client) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Client %s] PANIC в обработчике сообщения: %v\nStack trace:\n%s",
				client.ConnectionID, r, string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	if messageHandler != nil {
		err = messageHandler(message, client)
	} else {
		log.Printf("[Client %s] Обработчик сообщений не зарегистрирован", client.ConnectionID)
	}
	return err
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		log.Printf("[Client %s] Write pump остановлен", c.ConnectionID)
	}()

	log.Printf("[Client %s] Write pump запущен", c.ConnectionID)

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[Client %s] Ошибка SetWriteDeadline: %v", c.ConnectionID, err)
				return
			}

			if !ok {
				// Канал send закрыт хабом
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("[Client %s] Ошибка NextWriter: %v", c.ConnectionID, err)
				return
			}
			if _, err := w.Write(message); err != nil {
				log.Printf("[Client %s] Ошибка записи: %v", c.ConnectionID, err)
			}
			if err := w.Close(); err != nil {
				log.Printf("[Client %s] Ошибка закрытия writer: %v", c.ConnectionID, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[Client %s] Ошибка SetWriteDeadline (ping): %v", c.ConnectionID, err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[Client %s] Ошибка отправки ping: %v", c.ConnectionID, err)
				return
			}
		}
	}
}

// StartPumps регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) StartPumps(messageHandler func(message []byte, client *Client) error) {
	c.hub.register <- c
	go c.writePump()
	go c.readPump(messageHandler)
}

// incrementBufferWarningCount увеличивает счетчик предупреждений и возвращает новое значение
func (c *Client) incrementBufferWarningCount() int32 {
	c.bufferWarningMutex.Lock()
	defer c.bufferWarningMutex.Unlock()
	c.bufferWarningCount++
	return c.bufferWarningCount
}

// resetBufferWarningCount сбрасывает счетчик предупреждений
func (c *Client) resetBufferWarningCount() {
	c.bufferWarningMutex.Lock()
	defer c.bufferWarningMutex.Unlock()
	if c.bufferWarningCount > 0 {
		c.bufferWarningCount = 0
	}
}

// CloseSend безопасно закрывает канал send (только один раз).
// Возвращает true, если канал был закрыт этим вызовом.
func (c *Client) CloseSend() bool {
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
		return true
	}
	return false
}

// IsSendClosed проверяет, закрыт ли канал send
func (c *Client) IsSendClosed() bool {
	return c.sendClosed.Load()
}
