package entity

import "time"

// ChatMessage представляет сообщение чата комнаты.
// История ограничена настраиваемым размером, старые сообщения вытесняются.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender"`
	SenderRole Role      `json:"sender_role"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sent_at"`
}
