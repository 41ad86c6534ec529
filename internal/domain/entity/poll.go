package entity

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// PollType определяет тип вопроса
type PollType string

const (
	PollTypeSingleChoice   PollType = "single-choice"
	PollTypeMultipleChoice PollType = "multiple-choice"
	PollTypeYesNo          PollType = "yes-no"
	PollTypeRating         PollType = "rating"
	PollTypeText           PollType = "text"
)

// IsChoice проверяет, требует ли тип список вариантов ответа
func (t PollType) IsChoice() bool {
	return t == PollTypeSingleChoice || t == PollTypeMultipleChoice
}

// IsGradable проверяет, поддерживает ли тип автоматическую оценку правильности.
// Свободный текст не оценивается и исключается из знаменателя точности.
func (t PollType) IsGradable() bool {
	return t != PollTypeText
}

// PollState определяет состояние жизненного цикла опроса
type PollState string

const (
	PollStateActive PollState = "active"
	PollStateEnded  PollState = "ended"
)

// Ограничения на лимит времени опроса (секунды)
const (
	MinTimeLimitSec = 10
	MaxTimeLimitSec = 300
)

// Допустимые шкалы для рейтинговых опросов
const (
	RatingScaleFive = 5
	RatingScaleTen  = 10
)

// StringArray - список строк для вариантов и правильных ответов
type StringArray []string

// Contains проверяет наличие значения в списке
func (o StringArray) Contains(value string) bool {
	for _, v := range o {
		if v == value {
			return true
		}
	}
	return false
}

// EqualAsSet сравнивает два списка как множества (порядок и дубликаты не важны)
func (o StringArray) EqualAsSet(other StringArray) bool {
	set := make(map[string]struct{}, len(o))
	for _, v := range o {
		set[v] = struct{}{}
	}
	if len(set) != len(other.dedup()) {
		return false
	}
	for _, v := range other {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

func (o StringArray) dedup() StringArray {
	seen := make(map[string]struct{}, len(o))
	out := make(StringArray, 0, len(o))
	for _, v := range o {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// AnswerValue представляет присланное значение ответа.
// Для single-choice/yes-no/rating/text это одно значение,
// для multiple-choice — множество выбранных вариантов.
type AnswerValue StringArray

// UnmarshalJSON принимает как одиночную строку, так и массив строк
// (клиент шлет строку для всех типов, кроме multiple-choice).
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = AnswerValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*v = AnswerValue(many)
		return nil
	}
	return errors.New("answer value must be a string or an array of strings")
}

// MarshalJSON отдает одиночное значение строкой, множество — массивом
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// String возвращает человекочитаемое представление для экспорта
func (v AnswerValue) String() string {
	return strings.Join(v, ", ")
}

// IsEmpty проверяет, что значение отсутствует или состоит из пустых строк
func (v AnswerValue) IsEmpty() bool {
	for _, s := range v {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// Poll представляет один вопрос с ограниченным окном ответов.
// После создания неизменяем, кроме State; журнал ответов хранится отдельно.
type Poll struct {
	ID            string      `json:"id"`
	Question      string      `json:"question"`
	Type          PollType    `json:"pollType"`
	Options       StringArray `json:"options"`
	CorrectAnswer StringArray `json:"-"` // Скрыто от клиентов, отдается учителю через DTO
	RatingScale   int         `json:"ratingScale,omitempty"`
	TimeLimitSec  int         `json:"timeLimit"`
	IsAnonymous   bool        `json:"isAnonymous"`
	CreatedAt     time.Time   `json:"createdAt"`
	State         PollState   `json:"state"`
}

// IsActive проверяет, принимает ли опрос ответы
func (p *Poll) IsActive() bool {
	return p.State == PollStateActive
}

// IsGradable проверяет, оценивается ли опрос автоматически
func (p *Poll) IsGradable() bool {
	return p.Type.IsGradable() && len(p.CorrectAnswer) > 0
}

// ValidateAnswer проверяет, что присланное значение допустимо для типа опроса
func (p *Poll) ValidateAnswer(value AnswerValue) error {
	if value.IsEmpty() {
		return errors.New("answer value is empty")
	}

	switch p.Type {
	case PollTypeSingleChoice, PollTypeYesNo:
		if len(value) != 1 {
			return errors.New("exactly one option must be selected")
		}
		if !p.Options.Contains(value[0]) {
			return errors.New("selected option is not in the poll options")
		}
	case PollTypeMultipleChoice:
		for _, v := range value {
			if !p.Options.Contains(v) {
				return errors.New("selected option is not in the poll options")
			}
		}
	case PollTypeRating:
		if len(value) != 1 {
			return errors.New("exactly one rating value must be submitted")
		}
		rating, err := strconv.Atoi(value[0])
		if err != nil {
			return errors.New("rating value must be a number")
		}
		if rating < 1 || rating > p.RatingScale {
			return errors.New("rating value is outside the scale")
		}
	case PollTypeText:
		// Любой непустой текст допустим
	}
	return nil
}

// Evaluate вычисляет правильность ответа в момент отправки.
// Возвращает nil для неоцениваемых опросов (text) — такие ответы
// не участвуют в знаменателе точности.
func (p *Poll) Evaluate(value AnswerValue) *bool {
	if !p.IsGradable() {
		return nil
	}

	var correct bool
	switch p.Type {
	case PollTypeSingleChoice, PollTypeYesNo, PollTypeRating:
		// Точное строковое равенство с единственным правильным значением
		correct = len(value) == 1 && value[0] == p.CorrectAnswer[0]
	case PollTypeMultipleChoice:
		// Точное равенство множеств: частичное пересечение считается неправильным
		correct = StringArray(value).EqualAsSet(p.CorrectAnswer)
	}
	return &correct
}

// RemainingSeconds возвращает остаток окна ответов на момент now
func (p *Poll) RemainingSeconds(now time.Time) int {
	deadline := p.CreatedAt.Add(time.Duration(p.TimeLimitSec) * time.Second)
	left := int(deadline.Sub(now).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

// DefaultRatingExpected возвращает "ожидаемое" значение рейтинговой шкалы
// по умолчанию: середина шкалы с округлением вверх (3 для 1-5, 5 для 1-10).
// Политика настраивается на уровне координатора, учитель может задать
// явное значение при создании опроса.
func DefaultRatingExpected(scale int) int {
	return (scale + 1) / 2
}
