package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformanceName_ObjectPayload(t *testing.T) {
	name, err := performanceName(json.RawMessage(`{"userName":"Аня"}`))

	require.NoError(t, err)
	assert.Equal(t, "Аня", name)
}

func TestPerformanceName_BareStringPayload(t *testing.T) {
	// Исходный клиент шлет get-student-performance с именем голой строкой
	name, err := performanceName(json.RawMessage(`"Аня"`))

	require.NoError(t, err)
	assert.Equal(t, "Аня", name)
}

func TestPerformanceName_EmptyPayload(t *testing.T) {
	// Отсутствие data сериализуется как null: имя пустое, не ошибка —
	// обработчик подставит имя самого клиента
	name, err := performanceName(json.RawMessage(`null`))

	require.NoError(t, err)
	assert.Empty(t, name)

	name, err = performanceName(json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestPerformanceName_MalformedPayload(t *testing.T) {
	_, err := performanceName(json.RawMessage(`42`))

	assert.Error(t, err, "Число не является ни именем, ни объектом {userName}")
}
