package service

import (
	"log"
	"sync"

	"github.com/yourusername/livepoll-api/internal/service/sessionmanager"
)

// DefaultRoomID — комната по умолчанию для клиентов без параметра room
const DefaultRoomID = "main"

// SessionManager управляет жизненным циклом комнат: создает комнату
// при первом обращении и закрывает все комнаты при остановке сервера.
// Вся логика сессии живет внутри sessionmanager.Room.
type SessionManager struct {
	config *sessionmanager.Config
	deps   *sessionmanager.Dependencies

	mu    sync.RWMutex
	rooms map[string]*sessionmanager.Room
}

// NewSessionManager создает менеджер сессий
func NewSessionManager(config *sessionmanager.Config, deps *sessionmanager.Dependencies) *SessionManager {
	return &SessionManager{
		config: config,
		deps:   deps,
		rooms:  make(map[string]*sessionmanager.Room),
	}
}

// GetOrCreateRoom возвращает комнату по ID, создавая ее при необходимости
func (m *SessionManager) GetOrCreateRoom(roomID string) *sessionmanager.Room {
	if roomID == "" {
		roomID = DefaultRoomID
	}

	m.mu.RLock()
	room, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if ok {
		return room
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[roomID]; ok {
		return room
	}
	room = sessionmanager.NewRoom(roomID, m.config, m.deps)
	m.rooms[roomID] = room
	log.Printf("[SessionManager] Создана комната %s (всего комнат: %d)", roomID, len(m.rooms))
	return room
}

// GetRoom возвращает комнату по ID без создания
func (m *SessionManager) GetRoom(roomID string) (*sessionmanager.Room, bool) {
	if roomID == "" {
		roomID = DefaultRoomID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	return room, ok
}

// HandleDisconnect убирает отключившегося участника из его комнаты.
// Вызывается транспортным слоем при закрытии соединения.
func (m *SessionManager) HandleDisconnect(roomID, participantID string) {
	if room, ok := m.GetRoom(roomID); ok {
		room.Leave(participantID)
	}
}

// Shutdown закрывает все комнаты
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, room := range m.rooms {
		room.Close()
		delete(m.rooms, id)
	}
	log.Printf("[SessionManager] Все комнаты закрыты")
}
