package dto

import (
	"time"

	"github.com/yourusername/livepoll-api/internal/domain/entity"
)

// PollResponse представляет опрос в формате для ответа клиенту.
// Правильный ответ отдается только в историю учителя: живые рассылки
// сериализуют entity.Poll, где это поле скрыто.
type PollResponse struct {
	ID            string             `json:"id"`
	Question      string             `json:"question"`
	PollType      entity.PollType    `json:"pollType"`
	Options       entity.StringArray `json:"options,omitempty"`
	CorrectAnswer entity.StringArray `json:"correctAnswer,omitempty"`
	RatingScale   int                `json:"ratingScale,omitempty"`
	TimeLimitSec  int                `json:"timeLimit"`
	IsAnonymous   bool               `json:"isAnonymous"`
	CreatedAt     time.Time          `json:"createdAt"`
	State         entity.PollState   `json:"state"`
}

// PollRecordResponse представляет завершенный опрос в истории сессии
type PollRecordResponse struct {
	Poll    PollResponse        `json:"poll"`
	Results *entity.PollResults `json:"results"`
	EndedAt time.Time           `json:"endedAt"`
}

// NewPollResponse создает DTO опроса
func NewPollResponse(poll *entity.Poll, includeCorrectAnswer bool) PollResponse {
	resp := PollResponse{
		ID:           poll.ID,
		Question:     poll.Question,
		PollType:     poll.Type,
		Options:      poll.Options,
		RatingScale:  poll.RatingScale,
		TimeLimitSec: poll.TimeLimitSec,
		IsAnonymous:  poll.IsAnonymous,
		CreatedAt:    poll.CreatedAt,
		State:        poll.State,
	}
	if includeCorrectAnswer {
		resp.CorrectAnswer = poll.CorrectAnswer
	}
	return resp
}

// NewPollRecordResponse создает DTO записи истории
func NewPollRecordResponse(record *entity.PollRecord) PollRecordResponse {
	return PollRecordResponse{
		Poll:    NewPollResponse(record.Poll, true),
		Results: record.Results,
		EndedAt: record.EndedAt,
	}
}

// NewHistoryResponse создает список DTO для всей истории сессии
func NewHistoryResponse(records []*entity.PollRecord) []PollRecordResponse {
	out := make([]PollRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, NewPollRecordResponse(record))
	}
	return out
}
