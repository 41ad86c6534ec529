package websocket

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Мок хаба
// ============================================================================

type MockHub struct {
	mock.Mock
}

func (m *MockHub) BroadcastToRoom(roomID, eventType string, data interface{}) error {
	args := m.Called(roomID, eventType, data)
	return args.Error(0)
}

func (m *MockHub) SendToParticipant(participantID, eventType string, data interface{}) error {
	args := m.Called(participantID, eventType, data)
	return args.Error(0)
}

func (m *MockHub) EvictParticipant(participantID string) {
	m.Called(participantID)
}

func (m *MockHub) SubscribeToRoom(client *Client, roomID string) {
	m.Called(client, roomID)
}

func (m *MockHub) Metrics() *Metrics {
	args := m.Called()
	return args.Get(0).(*Metrics)
}

// ============================================================================
// Тесты
// ============================================================================

func TestManager_HandleMessage_DispatchesToHandler(t *testing.T) {
	// Arrange
	hub := new(MockHub)
	manager := NewManager(hub)
	client := &Client{ConnectionID: "c1"}

	var received json.RawMessage
	manager.RegisterHandler("join-room", func(data json.RawMessage, c *Client) error {
		received = data
		return nil
	})

	// Act
	err := manager.HandleMessage([]byte(`{"type":"join-room","data":{"userName":"Аня"}}`), client)

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"userName":"Аня"}`, string(received), "Обработчик должен получить полезную нагрузку события")
	hub.AssertExpectations(t)
}

func TestManager_HandleMessage_InvalidJSON(t *testing.T) {
	// Arrange
	hub := new(MockHub)
	hub.On("SendToParticipant", "c1", ERROR, mock.MatchedBy(func(data interface{}) bool {
		payload, ok := data.(map[string]string)
		return ok && payload["code"] == "invalid_format"
	})).Return(nil)
	manager := NewManager(hub)
	client := &Client{ConnectionID: "c1"}

	// Act
	err := manager.HandleMessage([]byte(`{not json`), client)

	// Assert: мусор не убивает соединение, клиенту уходит error-событие
	assert.NoError(t, err)
	hub.AssertExpectations(t)
}

func TestManager_HandleMessage_UnknownType(t *testing.T) {
	// Arrange
	hub := new(MockHub)
	hub.On("SendToParticipant", "c1", ERROR, mock.MatchedBy(func(data interface{}) bool {
		payload, ok := data.(map[string]string)
		return ok && payload["code"] == "unknown_message_type"
	})).Return(nil)
	manager := NewManager(hub)
	client := &Client{ConnectionID: "c1"}

	// Act
	err := manager.HandleMessage([]byte(`{"type":"launch-rocket","data":{}}`), client)

	// Assert
	assert.NoError(t, err)
	hub.AssertExpectations(t)
}

func TestManager_HandleMessage_HandlerErrorPropagates(t *testing.T) {
	// Arrange
	hub := new(MockHub)
	manager := NewManager(hub)
	client := &Client{ConnectionID: "c1"}

	wantErr := errors.New("боль")
	manager.RegisterHandler("create-poll", func(data json.RawMessage, c *Client) error {
		return wantErr
	})

	// Act
	err := manager.HandleMessage([]byte(`{"type":"create-poll","data":{}}`), client)

	// Assert
	assert.ErrorIs(t, err, wantErr)
}

func TestManager_BroadcastDelegation(t *testing.T) {
	// Arrange
	hub := new(MockHub)
	hub.On("BroadcastToRoom", "main", POLL_CREATED, "payload").Return(nil)
	hub.On("SendToParticipant", "p1", TIMER_UPDATE, 42).Return(nil)
	hub.On("EvictParticipant", "p1").Return()
	manager := NewManager(hub)

	// Act
	errBroadcast := manager.BroadcastToRoom("main", POLL_CREATED, "payload")
	errSend := manager.SendToParticipant("p1", TIMER_UPDATE, 42)
	manager.EvictParticipant("p1")

	// Assert
	assert.NoError(t, errBroadcast)
	assert.NoError(t, errSend)
	hub.AssertExpectations(t)
}

func TestManager_GetMetrics(t *testing.T) {
	// Arrange
	hub := new(MockHub)
	metrics := NewMetrics()
	metrics.ConnectionOpened()
	metrics.MessageSent()
	hub.On("Metrics").Return(metrics)
	manager := NewManager(hub)

	// Act
	snapshot := manager.GetMetrics()

	// Assert
	assert.Equal(t, int64(1), snapshot["active_connections"])
	assert.Equal(t, int64(1), snapshot["messages_sent"])
}
