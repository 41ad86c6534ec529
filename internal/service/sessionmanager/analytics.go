package sessionmanager

import (
	"fmt"
	"math"

	"github.com/yourusername/livepoll-api/internal/domain/entity"
)

// Агрегатор аналитики: чистые функции над (опрос, ростер, журнал ответов).
// Пересчитываются при каждом обращении и никогда не кэшируются между
// изменениями — снимок всегда отражает актуальный журнал.
//
// Знаменатели, зависящие от ростера (totalStudents, participationRate),
// считаются по текущему ростеру: отключенный участник выпадает из них,
// но его ответ из журнала не отзывается и продолжает учитываться
// в распределении вариантов и точности.

// BuildResults строит агрегированный снимок результатов опроса
func BuildResults(poll *entity.Poll, students []*entity.Participant, answers []*entity.Answer) *entity.PollResults {
	present := make(map[string]struct{}, len(students))
	for _, s := range students {
		present[s.ID] = struct{}{}
	}

	results := &entity.PollResults{
		PollID:        poll.ID,
		Question:      poll.Question,
		Type:          poll.Type,
		Options:       poll.Options,
		OptionCounts:  make(map[string]int, len(poll.Options)),
		TotalStudents: len(students),
	}
	for _, opt := range poll.Options {
		results.OptionCounts[opt] = 0
	}

	graded := 0
	for _, a := range answers {
		if _, ok := present[a.ParticipantID]; ok {
			results.AnsweredStudents++
		}
		for _, v := range a.Value {
			results.OptionCounts[v]++
		}
		if a.Graded() {
			graded++
			if a.Correct() {
				results.CorrectAnswers++
			} else {
				results.IncorrectAnswers++
			}
		}
	}

	results.AccuracyRate = percent(results.CorrectAnswers, graded)
	results.ParticipationRate = percent(results.AnsweredStudents, results.TotalStudents)
	return results
}

// BuildAnalytics строит снимок аналитики для панели учителя
func BuildAnalytics(poll *entity.Poll, students []*entity.Participant, answers []*entity.Answer, bucketsMs []int64) *entity.AnalyticsSnapshot {
	results := BuildResults(poll, students, answers)

	snapshot := &entity.AnalyticsSnapshot{
		PollID:                   results.PollID,
		Question:                 results.Question,
		TotalStudents:            results.TotalStudents,
		AnsweredStudents:         results.AnsweredStudents,
		ParticipationRate:        results.ParticipationRate,
		CorrectAnswers:           results.CorrectAnswers,
		IncorrectAnswers:         results.IncorrectAnswers,
		AccuracyRate:             results.AccuracyRate,
		ResponseTimeDistribution: make(map[string]int, len(bucketsMs)+1),
	}

	for i := range bucketsMs {
		snapshot.ResponseTimeDistribution[bucketLabel(bucketsMs, i)] = 0
	}
	snapshot.ResponseTimeDistribution[bucketLabel(bucketsMs, len(bucketsMs))] = 0

	var totalMs int64
	for _, a := range answers {
		totalMs += a.ResponseTimeMs
		snapshot.ResponseTimeDistribution[bucketFor(bucketsMs, a.ResponseTimeMs)]++
	}
	if len(answers) > 0 {
		snapshot.AverageResponseTime = totalMs / int64(len(answers))
	}
	return snapshot
}

// BuildParticipation строит список участия: одна строка на студента
// текущего ростера, с его ответом, если он есть
func BuildParticipation(students []*entity.Participant, answers map[string]*entity.Answer) []*entity.ParticipationEntry {
	entries := make([]*entity.ParticipationEntry, 0, len(students))
	for _, s := range students {
		entry := &entity.ParticipationEntry{
			ParticipantID: s.ID,
			Name:          s.DisplayName,
		}
		if a, ok := answers[s.ID]; ok {
			entry.HasAnswered = true
			rt := a.ResponseTimeMs
			entry.ResponseTimeMs = &rt
			entry.Answer = a.Value
			entry.IsCorrect = a.IsCorrect
			at := a.SubmittedAt
			entry.SubmittedAt = &at
		}
		entries = append(entries, entry)
	}
	return entries
}

// bucketFor возвращает метку бакета для времени ответа
func bucketFor(bucketsMs []int64, responseTimeMs int64) string {
	for i, upper := range bucketsMs {
		if responseTimeMs < upper {
			return bucketLabel(bucketsMs, i)
		}
	}
	return bucketLabel(bucketsMs, len(bucketsMs))
}

// bucketLabel строит метку вида "0-5s", "5-10s", "20s+"
func bucketLabel(bucketsMs []int64, idx int) string {
	if idx >= len(bucketsMs) {
		return fmt.Sprintf("%ds+", bucketsMs[len(bucketsMs)-1]/1000)
	}
	lower := int64(0)
	if idx > 0 {
		lower = bucketsMs[idx-1]
	}
	return fmt.Sprintf("%d-%ds", lower/1000, bucketsMs[idx]/1000)
}

// percent возвращает округленный процент, 0 при нулевом знаменателе
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
