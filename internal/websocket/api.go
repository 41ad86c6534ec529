package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// MetricsProvider отдает метрики WebSocket-системы для HTTP-эндпоинтов
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
}

// WebSocketMetricsHandler возвращает обработчик для получения метрик хаба
func WebSocketMetricsHandler(provider MetricsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics := provider.GetMetrics()

		// Добавляем время генерации метрик
		metrics["generated_at"] = time.Now().Format(time.RFC3339)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics); err != nil {
			log.Printf("Ошибка сериализации метрик WebSocket: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}

// WebSocketHealthCheckHandler возвращает обработчик для проверки состояния хаба
func WebSocketHealthCheckHandler(provider MetricsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		statusCode := http.StatusOK

		response := map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if provider != nil {
			response["metrics"] = provider.GetMetrics()
		} else {
			status = "unavailable"
			statusCode = http.StatusServiceUnavailable
			response["status"] = status
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Ошибка сериализации ответа health check: %v", err)
		}
	}
}
