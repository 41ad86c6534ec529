package entity

import "time"

// PollResults представляет агрегированный снимок результатов опроса,
// рассылаемый всем участникам после каждого изменения журнала ответов.
type PollResults struct {
	PollID            string         `json:"pollId"`
	Question          string         `json:"question"`
	Type              PollType       `json:"pollType"`
	Options           StringArray    `json:"options"`
	OptionCounts      map[string]int `json:"optionCounts"`
	TotalStudents     int            `json:"totalStudents"`
	AnsweredStudents  int            `json:"answeredStudents"`
	CorrectAnswers    int            `json:"correctAnswers"`
	IncorrectAnswers  int            `json:"incorrectAnswers"`
	AccuracyRate      int            `json:"accuracyRate"`
	ParticipationRate int            `json:"participationRate"`
}

// AnalyticsSnapshot представляет производное представление для аналитики.
// Пересчитывается при каждом запросе, никогда не кэшируется.
type AnalyticsSnapshot struct {
	PollID                   string         `json:"pollId"`
	Question                 string         `json:"question"`
	TotalStudents            int            `json:"totalStudents"`
	AnsweredStudents         int            `json:"answeredStudents"`
	ParticipationRate        int            `json:"participationRate"`
	AverageResponseTime      int64          `json:"averageResponseTime"` // миллисекунды
	CorrectAnswers           int            `json:"correctAnswers"`
	IncorrectAnswers         int            `json:"incorrectAnswers"`
	AccuracyRate             int            `json:"accuracyRate"`
	ResponseTimeDistribution map[string]int `json:"responseTimeDistribution"`
}

// ParticipationEntry представляет строку списка участия для аналитики и экспорта
type ParticipationEntry struct {
	ParticipantID  string      `json:"participantId"`
	Name           string      `json:"name"`
	HasAnswered    bool        `json:"hasAnswered"`
	ResponseTimeMs *int64      `json:"responseTime,omitempty"`
	Answer         AnswerValue `json:"answer,omitempty"`
	IsCorrect      *bool       `json:"isCorrect,omitempty"`
	SubmittedAt    *time.Time  `json:"timestamp,omitempty"`
}

// PollRecord представляет завершенный опрос в истории сессии.
// История append-only: записи не изменяются после перехода опроса в Ended.
type PollRecord struct {
	Poll    *Poll        `json:"poll"`
	Answers []*Answer    `json:"answers"`
	Results *PollResults `json:"results"`
	EndedAt time.Time    `json:"endedAt"`
}
