package entity

import (
	"time"
)

// Answer представляет ответ участника на опрос.
// Вставляется не более одного раза на участника: повторная отправка
// отклоняется, а не перезаписывается.
type Answer struct {
	ParticipantID  string      `json:"participant_id"`
	DisplayName    string      `json:"name"`
	Value          AnswerValue `json:"value"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	ResponseTimeMs int64       `json:"response_time_ms"`
	// IsCorrect nil для неоцениваемых опросов (text)
	IsCorrect *bool `json:"is_correct,omitempty"`
}

// Graded проверяет, был ли ответ автоматически оценен
func (a *Answer) Graded() bool {
	return a.IsCorrect != nil
}

// Correct возвращает true только для оцененного правильного ответа
func (a *Answer) Correct() bool {
	return a.IsCorrect != nil && *a.IsCorrect
}
