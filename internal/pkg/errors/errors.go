package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда опрос или участник не найдены
	// (например, submit-answer без активного опроса).
	ErrNotFound = errors.New("record not found")

	// ErrForbidden используется, когда у участника недостаточно прав для команды
	// (не-учитель пытается удалить участника или завершить сессию).
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidRole используется, когда команда не соответствует роли вызывающего
	// (учитель пытается отправить ответ на опрос).
	ErrInvalidRole = errors.New("invalid role for this command")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateAnswer используется при повторной отправке ответа на тот же опрос.
	// Первый ответ сохраняется, повторный отклоняется без изменения состояния.
	ErrDuplicateAnswer = errors.New("answer already submitted")

	// ErrSessionEnded используется для команд, пришедших после завершения сессии.
	ErrSessionEnded = errors.New("session has ended")
)

// Code возвращает стабильный машинный код ошибки для события error,
// отправляемого вызывающему клиенту.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateAnswer):
		return "duplicate_answer"
	case errors.Is(err, ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, ErrForbidden):
		return "authorization_error"
	case errors.Is(err, ErrSessionEnded):
		return "session_ended"
	default:
		return "internal_error"
	}
}
