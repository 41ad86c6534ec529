package sessionmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/livepoll-api/internal/domain/entity"
)

func TestRoster_AddRemoveOrder(t *testing.T) {
	// Arrange
	roster := NewRoster()
	teacher := &entity.Participant{ID: "t1", DisplayName: "Учитель", Role: entity.RoleTeacher}

	// Act
	roster.Add(teacher)
	roster.Add(student("s1", "Аня"))
	roster.Add(student("s2", "Борис"))
	roster.Add(student("s1", "Аня")) // повтор игнорируется

	// Assert
	assert.Equal(t, 3, roster.Size())
	assert.Equal(t, 2, roster.StudentCount())

	list := roster.List()
	require.Len(t, list, 3)
	assert.Equal(t, "t1", list[0].ID, "Порядок подключения сохраняется")
	assert.Equal(t, "s1", list[1].ID)
	assert.Equal(t, "s2", list[2].ID)

	// Удаление возвращает участника
	removed, ok := roster.Remove("s1")
	require.True(t, ok)
	assert.Equal(t, "Аня", removed.DisplayName)
	_, ok = roster.Get("s1")
	assert.False(t, ok)

	// Повторное удаление — no-op
	_, ok = roster.Remove("s1")
	assert.False(t, ok)

	students := roster.Students()
	require.Len(t, students, 1)
	assert.Equal(t, "s2", students[0].ID)

	teachers := roster.Teachers()
	require.Len(t, teachers, 1)
	assert.Equal(t, "t1", teachers[0].ID)
}
