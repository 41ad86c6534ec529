package sessionmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/livepoll-api/internal/domain/entity"
)

func boolPtr(b bool) *bool { return &b }

func student(id, name string) *entity.Participant {
	return &entity.Participant{ID: id, DisplayName: name, Role: entity.RoleStudent}
}

func TestBuildResults_CountsAndRates(t *testing.T) {
	// Arrange
	poll := &entity.Poll{
		ID:            "p1",
		Question:      "Столица Франции?",
		Type:          entity.PollTypeSingleChoice,
		Options:       entity.StringArray{"Париж", "Лондон"},
		CorrectAnswer: entity.StringArray{"Париж"},
	}
	students := []*entity.Participant{
		student("s1", "Аня"),
		student("s2", "Борис"),
		student("s3", "Вера"),
		student("s4", "Глеб"),
	}
	answers := []*entity.Answer{
		{ParticipantID: "s1", Value: entity.AnswerValue{"Париж"}, IsCorrect: boolPtr(true)},
		{ParticipantID: "s2", Value: entity.AnswerValue{"Лондон"}, IsCorrect: boolPtr(false)},
		{ParticipantID: "s3", Value: entity.AnswerValue{"Париж"}, IsCorrect: boolPtr(true)},
	}

	// Act
	results := BuildResults(poll, students, answers)

	// Assert
	assert.Equal(t, 4, results.TotalStudents)
	assert.Equal(t, 3, results.AnsweredStudents)
	assert.Equal(t, 2, results.OptionCounts["Париж"])
	assert.Equal(t, 1, results.OptionCounts["Лондон"])
	assert.Equal(t, 2, results.CorrectAnswers)
	assert.Equal(t, 1, results.IncorrectAnswers)
	assert.Equal(t, 67, results.AccuracyRate, "2 из 3 оцененных")
	assert.Equal(t, 75, results.ParticipationRate, "3 из 4 студентов ростера")
}

func TestBuildResults_DisconnectedAnswerKept(t *testing.T) {
	// Студент s2 ответил и отключился: его ответ остается в распределении
	// и точности, но выпадает из знаменателей ростера
	poll := &entity.Poll{
		ID:            "p1",
		Type:          entity.PollTypeYesNo,
		Options:       entity.StringArray{"Yes", "No"},
		CorrectAnswer: entity.StringArray{"Yes"},
	}
	students := []*entity.Participant{student("s1", "Аня")}
	answers := []*entity.Answer{
		{ParticipantID: "s1", Value: entity.AnswerValue{"Yes"}, IsCorrect: boolPtr(true)},
		{ParticipantID: "s2", Value: entity.AnswerValue{"No"}, IsCorrect: boolPtr(false)},
	}

	results := BuildResults(poll, students, answers)

	assert.Equal(t, 1, results.TotalStudents)
	assert.Equal(t, 1, results.AnsweredStudents, "Отключившийся не считается ответившим студентом ростера")
	assert.Equal(t, 1, results.OptionCounts["No"], "Ответ отключившегося не отзывается")
	assert.Equal(t, 1, results.CorrectAnswers)
	assert.Equal(t, 1, results.IncorrectAnswers)
	assert.Equal(t, 50, results.AccuracyRate)
	assert.Equal(t, 100, results.ParticipationRate)
}

func TestBuildResults_TextExcludedFromAccuracy(t *testing.T) {
	// Текстовые ответы не оцениваются и не попадают в знаменатель точности
	poll := &entity.Poll{ID: "p1", Type: entity.PollTypeText}
	students := []*entity.Participant{student("s1", "Аня"), student("s2", "Борис")}
	answers := []*entity.Answer{
		{ParticipantID: "s1", Value: entity.AnswerValue{"ответ один"}},
		{ParticipantID: "s2", Value: entity.AnswerValue{"ответ два"}},
	}

	results := BuildResults(poll, students, answers)

	assert.Equal(t, 2, results.AnsweredStudents)
	assert.Equal(t, 0, results.CorrectAnswers)
	assert.Equal(t, 0, results.IncorrectAnswers)
	assert.Equal(t, 0, results.AccuracyRate, "Без оцененных ответов точность 0")
	assert.Equal(t, 100, results.ParticipationRate)
}

func TestBuildAnalytics_ResponseTimeDistribution(t *testing.T) {
	// Arrange
	poll := &entity.Poll{ID: "p1", Type: entity.PollTypeYesNo, Options: entity.StringArray{"Yes", "No"}, CorrectAnswer: entity.StringArray{"Yes"}}
	students := []*entity.Participant{
		student("s1", "Аня"), student("s2", "Борис"), student("s3", "Вера"), student("s4", "Глеб"),
	}
	answers := []*entity.Answer{
		{ParticipantID: "s1", Value: entity.AnswerValue{"Yes"}, IsCorrect: boolPtr(true), ResponseTimeMs: 1200},
		{ParticipantID: "s2", Value: entity.AnswerValue{"Yes"}, IsCorrect: boolPtr(true), ResponseTimeMs: 7000},
		{ParticipantID: "s3", Value: entity.AnswerValue{"No"}, IsCorrect: boolPtr(false), ResponseTimeMs: 15000},
		{ParticipantID: "s4", Value: entity.AnswerValue{"Yes"}, IsCorrect: boolPtr(true), ResponseTimeMs: 40000},
	}
	buckets := []int64{5000, 10000, 20000}

	// Act
	snapshot := BuildAnalytics(poll, students, answers, buckets)

	// Assert
	assert.Equal(t, 1, snapshot.ResponseTimeDistribution["0-5s"])
	assert.Equal(t, 1, snapshot.ResponseTimeDistribution["5-10s"])
	assert.Equal(t, 1, snapshot.ResponseTimeDistribution["10-20s"])
	assert.Equal(t, 1, snapshot.ResponseTimeDistribution["20s+"])
	assert.Equal(t, int64(15800), snapshot.AverageResponseTime, "(1200+7000+15000+40000)/4")
	assert.Equal(t, 75, snapshot.AccuracyRate)
}

func TestBuildAnalytics_EmptyJournal(t *testing.T) {
	poll := &entity.Poll{ID: "p1", Type: entity.PollTypeYesNo, Options: entity.StringArray{"Yes", "No"}}
	snapshot := BuildAnalytics(poll, nil, nil, []int64{5000, 10000, 20000})

	assert.Equal(t, int64(0), snapshot.AverageResponseTime)
	assert.Equal(t, 0, snapshot.ParticipationRate)
	// Все бакеты присутствуют даже при пустом журнале
	assert.Len(t, snapshot.ResponseTimeDistribution, 4)
	for label, count := range snapshot.ResponseTimeDistribution {
		assert.Zero(t, count, "Бакет %s должен быть пустым", label)
	}
}

func TestBuildParticipation(t *testing.T) {
	// Arrange
	submittedAt := time.Now()
	students := []*entity.Participant{student("s1", "Аня"), student("s2", "Борис")}
	answers := map[string]*entity.Answer{
		"s1": {
			ParticipantID:  "s1",
			DisplayName:    "Аня",
			Value:          entity.AnswerValue{"Париж"},
			SubmittedAt:    submittedAt,
			ResponseTimeMs: 3200,
			IsCorrect:      boolPtr(true),
		},
	}

	// Act
	entries := BuildParticipation(students, answers)

	// Assert
	require.Len(t, entries, 2)

	answered := entries[0]
	assert.Equal(t, "Аня", answered.Name)
	assert.True(t, answered.HasAnswered)
	require.NotNil(t, answered.ResponseTimeMs)
	assert.Equal(t, int64(3200), *answered.ResponseTimeMs)
	require.NotNil(t, answered.IsCorrect)
	assert.True(t, *answered.IsCorrect)
	require.NotNil(t, answered.SubmittedAt)
	assert.Equal(t, submittedAt, *answered.SubmittedAt)

	pending := entries[1]
	assert.Equal(t, "Борис", pending.Name)
	assert.False(t, pending.HasAnswered)
	assert.Nil(t, pending.ResponseTimeMs)
	assert.Nil(t, pending.IsCorrect)
	assert.Nil(t, pending.SubmittedAt)
}
