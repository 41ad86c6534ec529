package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Максимальная длина идентификатора комнаты в query-параметре
const maxRoomIDLength = 64

// ExtractRoomQuery создает middleware для извлечения и валидации ID комнаты
// из query-параметра. Пустое значение заменяется на defaultRoom.
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractRoomQuery(queryName, contextKey, defaultRoom string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := strings.TrimSpace(c.Query(queryName))
		if roomID == "" {
			roomID = defaultRoom
		}
		if len(roomID) > maxRoomIDLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
			c.Abort()
			return
		}
		c.Set(contextKey, roomID)
		c.Next()
	}
}
