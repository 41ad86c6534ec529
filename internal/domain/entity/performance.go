package entity

import "math"

// Performance хранит накопительные счетчики успеваемости участника за сессию.
// Ключом служит отображаемое имя, а не ID соединения: переподключение
// не обнуляет результаты. Учитываются только оцениваемые ответы.
type Performance struct {
	DisplayName    string `json:"name"`
	TotalAnswers   int    `json:"totalAnswers"`
	CorrectAnswers int    `json:"correctAnswers"`
}

// Record учитывает один оцененный ответ
func (p *Performance) Record(correct bool) {
	p.TotalAnswers++
	if correct {
		p.CorrectAnswers++
	}
}

// IncorrectAnswers возвращает количество неправильных ответов
func (p *Performance) IncorrectAnswers() int {
	return p.TotalAnswers - p.CorrectAnswers
}

// Accuracy возвращает процент правильных ответов, округленный до целого.
// 0 при отсутствии оцененных ответов.
func (p *Performance) Accuracy() int {
	if p.TotalAnswers == 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.CorrectAnswers) / float64(p.TotalAnswers)))
}
