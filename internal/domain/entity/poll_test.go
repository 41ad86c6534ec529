package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_Evaluate_SingleChoice(t *testing.T) {
	// Arrange
	poll := &Poll{
		Type:          PollTypeSingleChoice,
		Options:       StringArray{"Москва", "Париж", "Лондон"},
		CorrectAnswer: StringArray{"Париж"},
	}

	// Act & Assert: точное строковое равенство
	correct := poll.Evaluate(AnswerValue{"Париж"})
	require.NotNil(t, correct)
	assert.True(t, *correct, "Совпадающий вариант должен быть правильным")

	wrong := poll.Evaluate(AnswerValue{"Москва"})
	require.NotNil(t, wrong)
	assert.False(t, *wrong, "Несовпадающий вариант должен быть неправильным")
}

func TestPoll_Evaluate_MultipleChoice_SetEquality(t *testing.T) {
	// Arrange
	poll := &Poll{
		Type:          PollTypeMultipleChoice,
		Options:       StringArray{"A", "B", "C", "D"},
		CorrectAnswer: StringArray{"A", "C"},
	}

	// Act & Assert: порядок не важен
	exact := poll.Evaluate(AnswerValue{"C", "A"})
	require.NotNil(t, exact)
	assert.True(t, *exact, "Полное совпадение множеств в другом порядке должно быть правильным")

	// Частичное пересечение — неправильно
	partial := poll.Evaluate(AnswerValue{"A"})
	require.NotNil(t, partial)
	assert.False(t, *partial, "Подмножество правильных вариантов не засчитывается")

	// Правильные плюс лишний — неправильно
	superset := poll.Evaluate(AnswerValue{"A", "C", "B"})
	require.NotNil(t, superset)
	assert.False(t, *superset, "Лишний вариант делает ответ неправильным")

	// Дубликаты в ответе не меняют множество
	dup := poll.Evaluate(AnswerValue{"A", "A", "C"})
	require.NotNil(t, dup)
	assert.True(t, *dup, "Дубликаты выбранных вариантов игнорируются")
}

func TestPoll_Evaluate_Text_NotGraded(t *testing.T) {
	// Arrange
	poll := &Poll{Type: PollTypeText}

	// Act & Assert: свободный текст не оценивается
	assert.Nil(t, poll.Evaluate(AnswerValue{"любой текст"}), "Текстовый ответ не должен оцениваться")
}

func TestPoll_Evaluate_Rating(t *testing.T) {
	// Arrange
	poll := &Poll{
		Type:          PollTypeRating,
		RatingScale:   RatingScaleFive,
		CorrectAnswer: StringArray{"3"},
	}

	// Act & Assert
	hit := poll.Evaluate(AnswerValue{"3"})
	require.NotNil(t, hit)
	assert.True(t, *hit)

	miss := poll.Evaluate(AnswerValue{"5"})
	require.NotNil(t, miss)
	assert.False(t, *miss)
}

func TestPoll_ValidateAnswer(t *testing.T) {
	single := &Poll{
		Type:    PollTypeSingleChoice,
		Options: StringArray{"A", "B"},
	}
	assert.NoError(t, single.ValidateAnswer(AnswerValue{"A"}))
	assert.Error(t, single.ValidateAnswer(AnswerValue{"C"}), "Вариант вне списка должен отклоняться")
	assert.Error(t, single.ValidateAnswer(AnswerValue{"A", "B"}), "Несколько вариантов для single-choice должны отклоняться")
	assert.Error(t, single.ValidateAnswer(AnswerValue{}), "Пустой ответ должен отклоняться")
	assert.Error(t, single.ValidateAnswer(AnswerValue{"   "}), "Ответ из пробелов должен отклоняться")

	multiple := &Poll{
		Type:    PollTypeMultipleChoice,
		Options: StringArray{"A", "B", "C"},
	}
	assert.NoError(t, multiple.ValidateAnswer(AnswerValue{"A", "C"}))
	assert.Error(t, multiple.ValidateAnswer(AnswerValue{"A", "X"}), "Неизвестный вариант в множестве должен отклоняться")

	rating := &Poll{
		Type:        PollTypeRating,
		RatingScale: RatingScaleFive,
	}
	assert.NoError(t, rating.ValidateAnswer(AnswerValue{"1"}))
	assert.NoError(t, rating.ValidateAnswer(AnswerValue{"5"}))
	assert.Error(t, rating.ValidateAnswer(AnswerValue{"0"}), "Значение ниже шкалы должно отклоняться")
	assert.Error(t, rating.ValidateAnswer(AnswerValue{"6"}), "Значение выше шкалы должно отклоняться")
	assert.Error(t, rating.ValidateAnswer(AnswerValue{"abc"}), "Нечисловое значение должно отклоняться")

	text := &Poll{Type: PollTypeText}
	assert.NoError(t, text.ValidateAnswer(AnswerValue{"произвольный ответ"}))
	assert.Error(t, text.ValidateAnswer(AnswerValue{""}), "Пустой текст должен отклоняться")
}

func TestAnswerValue_UnmarshalJSON(t *testing.T) {
	// Одиночная строка
	var single AnswerValue
	require.NoError(t, json.Unmarshal([]byte(`"Париж"`), &single))
	assert.Equal(t, AnswerValue{"Париж"}, single)

	// Массив строк
	var many AnswerValue
	require.NoError(t, json.Unmarshal([]byte(`["A","C"]`), &many))
	assert.Equal(t, AnswerValue{"A", "C"}, many)

	// Число — ошибка формата
	var bad AnswerValue
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestStringArray_EqualAsSet(t *testing.T) {
	assert.True(t, StringArray{"A", "B"}.EqualAsSet(StringArray{"B", "A"}))
	assert.True(t, StringArray{"A", "B"}.EqualAsSet(StringArray{"B", "A", "A"}))
	assert.False(t, StringArray{"A", "B"}.EqualAsSet(StringArray{"A"}))
	assert.False(t, StringArray{"A"}.EqualAsSet(StringArray{"A", "B"}))
	assert.False(t, StringArray{"A", "B"}.EqualAsSet(StringArray{"A", "C"}))
}

func TestPoll_RemainingSeconds(t *testing.T) {
	// Arrange
	start := time.Now()
	poll := &Poll{
		TimeLimitSec: 30,
		CreatedAt:    start,
	}

	// Act & Assert
	assert.Equal(t, 30, poll.RemainingSeconds(start))
	assert.Equal(t, 20, poll.RemainingSeconds(start.Add(10*time.Second)))
	assert.Equal(t, 0, poll.RemainingSeconds(start.Add(31*time.Second)), "После дедлайна остаток не уходит в минус")
}

func TestDefaultRatingExpected(t *testing.T) {
	assert.Equal(t, 3, DefaultRatingExpected(RatingScaleFive), "Середина шкалы 1-5 с округлением вверх")
	assert.Equal(t, 5, DefaultRatingExpected(RatingScaleTen), "Середина шкалы 1-10 с округлением вверх")
}

func TestPerformance_Accuracy(t *testing.T) {
	// Arrange
	perf := &Performance{DisplayName: "Аня"}

	// Act
	perf.Record(true)
	perf.Record(true)
	perf.Record(false)

	// Assert
	assert.Equal(t, 3, perf.TotalAnswers)
	assert.Equal(t, 2, perf.CorrectAnswers)
	assert.Equal(t, 1, perf.IncorrectAnswers())
	assert.Equal(t, 67, perf.Accuracy(), "2 из 3 округляется до 67")

	empty := &Performance{}
	assert.Equal(t, 0, empty.Accuracy(), "Без ответов точность 0, а не деление на ноль")
}
