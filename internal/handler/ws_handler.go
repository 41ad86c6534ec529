package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/livepoll-api/internal/domain/entity"
	apperrors "github.com/yourusername/livepoll-api/internal/pkg/errors"
	"github.com/yourusername/livepoll-api/internal/service"
	"github.com/yourusername/livepoll-api/internal/service/sessionmanager"
	"github.com/yourusername/livepoll-api/internal/websocket"
)

// WSHandler обрабатывает WebSocket соединения
type WSHandler struct {
	wsHub          *websocket.Hub
	wsManager      *websocket.Manager
	sessionManager *service.SessionManager
	allowedOrigins []string
	upgrader       gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(
	wsHub *websocket.Hub,
	wsManager *websocket.Manager,
	sessionManager *service.SessionManager,
	allowedOrigins []string,
) *WSHandler {
	handler := &WSHandler{
		wsHub:          wsHub,
		wsManager:      wsManager,
		sessionManager: sessionManager,
		allowedOrigins: allowedOrigins,
	}

	handler.upgrader = gorillaws.Upgrader{
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Пустой Origin - не браузерный клиент (curl, нативное приложение)
			if origin == "" {
				return true
			}
			for _, allowed := range handler.allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			log.Printf("WebSocket: отклонен неразрешенный origin: %s", origin)
			return false
		},
	}

	// Регистрируем обработчики сообщений один раз при создании обработчика
	handler.registerMessageHandlers()

	return handler
}

// HandleConnection обрабатывает входящее WebSocket соединение
func (h *WSHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket: ошибка апгрейда соединения: %v", err)
		return
	}

	// Идентичность клиента устанавливается позже командой join-room
	client := websocket.NewClient(h.wsHub, conn)
	log.Printf("WebSocket: соединение установлено, ConnectionID: %s", client.ConnectionID)

	client.StartPumps(h.wsManager.HandleMessage)
}

// reportError отправляет клиенту событие error со стабильным кодом
func (h *WSHandler) reportError(client *websocket.Client, err error) {
	h.wsManager.SendErrorToClient(client, apperrors.Code(err), err.Error())
}

// performanceName извлекает имя из полезной нагрузки get-performance:
// поддерживаются голая строка и объект {userName}
func performanceName(data json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return name, nil
	}
	var payload struct {
		UserName string `json:"userName"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	return payload.UserName, nil
}

// room возвращает комнату клиента. До join-room комнаты нет.
func (h *WSHandler) room(client *websocket.Client) (*sessionmanager.Room, error) {
	if !client.IsJoined() {
		return nil, fmt.Errorf("join-room is required first: %w", apperrors.ErrForbidden)
	}
	_, _, roomID := client.Identity()
	room, ok := h.sessionManager.GetRoom(roomID)
	if !ok {
		return nil, fmt.Errorf("room %s not found: %w", roomID, apperrors.ErrNotFound)
	}
	return room, nil
}

// registerMessageHandlers регистрирует обработчики для всех команд клиента.
// Доменные ошибки отправляются клиенту событием error и не закрывают
// соединение; фатальна только паника обработчика.
func (h *WSHandler) registerMessageHandlers() {
	// Вход в комнату с именем и ролью
	h.wsManager.RegisterHandler("join-room", func(data json.RawMessage, client *websocket.Client) error {
		var joinEvent struct {
			UserType string `json:"userType"`
			UserName string `json:"userName"`
			RoomID   string `json:"roomId"`
		}
		if err := json.Unmarshal(data, &joinEvent); err != nil {
			log.Printf("[WSHandler] Ошибка парсинга join-room: %v, Data: %s", err, string(data))
			h.wsManager.SendErrorToClient(client, "invalid_format", "Failed to parse join-room event")
			return nil
		}

		if client.IsJoined() {
			h.wsManager.SendErrorToClient(client, "validation_error", "Already joined a room")
			return nil
		}

		role, err := entity.ParseRole(joinEvent.UserType)
		if err != nil {
			h.wsManager.SendErrorToClient(client, "invalid_role", err.Error())
			return nil
		}
		if strings.TrimSpace(joinEvent.UserName) == "" {
			h.wsManager.SendErrorToClient(client, "validation_error", "Display name is required")
			return nil
		}

		room := h.sessionManager.GetOrCreateRoom(joinEvent.RoomID)

		// Сначала подписываем соединение на рассылки комнаты, чтобы
		// не потерять события, выходящие сразу после Join
		client.SetIdentity(joinEvent.UserName, string(role), room.ID())
		h.wsManager.SubscribeClientToRoom(client, room.ID())

		participant := &entity.Participant{
			ID:          client.ConnectionID,
			DisplayName: joinEvent.UserName,
			Role:        role,
		}
		if err := room.Join(participant); err != nil {
			h.reportError(client, err)
		}
		return nil
	})

	// Запуск нового опроса (только учитель)
	h.wsManager.RegisterHandler("create-poll", func(data json.RawMessage, client *websocket.Client) error {
		var spec sessionmanager.PollSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			log.Printf("[WSHandler] Ошибка парсинга create-poll: %v, Data: %s", err, string(data))
			h.wsManager.SendErrorToClient(client, "invalid_format", "Failed to parse create-poll event")
			return nil
		}

		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if _, err := room.CreatePoll(client.ConnectionID, spec); err != nil {
			h.reportError(client, err)
		}
		return nil
	})

	// Ответ студента на активный опрос
	h.wsManager.RegisterHandler("submit-answer", func(data json.RawMessage, client *websocket.Client) error {
		var answerEvent struct {
			Value entity.AnswerValue `json:"value"`
		}
		if err := json.Unmarshal(data, &answerEvent); err != nil {
			log.Printf("[WSHandler] Ошибка парсинга submit-answer: %v, Data: %s", err, string(data))
			h.wsManager.SendErrorToClient(client, "invalid_format", "Failed to parse submit-answer event")
			return nil
		}

		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if err := room.SubmitAnswer(client.ConnectionID, answerEvent.Value); err != nil {
			h.reportError(client, err)
		}
		return nil
	})

	// Завершение активного опроса перед запуском следующего
	h.wsManager.RegisterHandler("ask-new-question", func(data json.RawMessage, client *websocket.Client) error {
		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if err := room.EndPoll(client.ConnectionID); err != nil {
			h.reportError(client, err)
		}
		return nil
	})

	// Досрочное завершение активного опроса
	h.wsManager.RegisterHandler("end-poll", func(data json.RawMessage, client *websocket.Client) error {
		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if err := room.EndPoll(client.ConnectionID); err != nil {
			h.reportError(client, err)
		}
		return nil
	})

	// Удаление участника учителем
	h.wsManager.RegisterHandler("remove-participant", func(data json.RawMessage, client *websocket.Client) error {
		var removeEvent struct {
			ParticipantID string `json:"participantId"`
		}
		if err := json.Unmarshal(data, &removeEvent); err != nil {
			log.Printf("[WSHandler] Ошибка парсинга remove-participant: %v, Data: %s", err, string(data))
			h.wsManager.SendErrorToClient(client, "invalid_format", "Failed to parse remove-participant event")
			return nil
		}

		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if err := room.RemoveParticipant(client.ConnectionID, removeEvent.ParticipantID); err != nil {
			h.reportError(client, err)
		}
		return nil
	})

	// Завершение всей сессии
	h.wsManager.RegisterHandler("end-session", func(data json.RawMessage, client *websocket.Client) error {
		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if err := room.EndSession(client.ConnectionID); err != nil {
			h.reportError(client, err)
		}
		return nil
	})

	// Запрос накопительной успеваемости по имени. Клиенты шлют имя
	// голой строкой или объектом {userName}, под обоими типами команды.
	performanceHandler := func(data json.RawMessage, client *websocket.Client) error {
		name, err := performanceName(data)
		if err != nil {
			log.Printf("[WSHandler] Ошибка парсинга get-performance: %v, Data: %s", err, string(data))
			h.wsManager.SendErrorToClient(client, "invalid_format", "Failed to parse get-performance event")
			return nil
		}

		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}

		if name == "" {
			name, _, _ = client.Identity()
		}
		report, err := room.Performance(name)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if err := h.wsManager.SendToParticipant(client.ConnectionID, websocket.STUDENT_PERFORMANCE, report); err != nil {
			log.Printf("[WSHandler] Ошибка отправки student-performance клиенту %s: %v", client.ConnectionID, err)
		}
		return nil
	}
	h.wsManager.RegisterHandler("get-performance", performanceHandler)
	h.wsManager.RegisterHandler("get-student-performance", performanceHandler)

	// Сообщение в чат комнаты
	h.wsManager.RegisterHandler("send-message", func(data json.RawMessage, client *websocket.Client) error {
		var chatEvent struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &chatEvent); err != nil {
			log.Printf("[WSHandler] Ошибка парсинга send-message: %v, Data: %s", err, string(data))
			h.wsManager.SendErrorToClient(client, "invalid_format", "Failed to parse send-message event")
			return nil
		}

		room, err := h.room(client)
		if err != nil {
			h.reportError(client, err)
			return nil
		}
		if err := room.SendChat(client.ConnectionID, chatEvent.Text); err != nil {
			h.reportError(client, err)
		}
		return nil
	})
}
