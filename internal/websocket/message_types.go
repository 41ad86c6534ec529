package websocket

// Типы событий, рассылаемых движком участникам.
// Имена соответствуют проводному протоколу клиента.
const (
	// POLL_CREATED сообщает о запуске нового опроса
	POLL_CREATED = "poll-created"

	// POLL_UPDATE передает опрос вместе с результатами (снимок для учителя
	// и для подключившихся в середине опроса)
	POLL_UPDATE = "poll-update"

	// POLL_RESULTS сообщает об обновлении агрегированных результатов
	POLL_RESULTS = "poll-results"

	// TIMER_UPDATE передает остаток секунд окна ответов
	TIMER_UPDATE = "timer-update"

	// POLL_ENDED сообщает о завершении опроса
	POLL_ENDED = "poll-ended"

	// POLL_RESET очищает доску перед новым вопросом
	POLL_RESET = "poll-reset"

	// KICKED_OUT — адресное уведомление удаленному участнику
	KICKED_OUT = "kicked-out"

	// SESSION_ENDED сообщает о завершении сессии
	SESSION_ENDED = "session-ended"

	// STUDENT_PERFORMANCE — адресный ответ на get-performance
	STUDENT_PERFORMANCE = "student-performance"
)

// Типы событий ростера и чата
const (
	// USER_JOINED сообщает о подключении участника
	USER_JOINED = "user-joined"

	// USER_LEFT сообщает об отключении участника
	USER_LEFT = "user-left"

	// STUDENT_REMOVED сообщает об удалении участника учителем
	// (в дополнение к user-left, клиенты слушают оба)
	STUDENT_REMOVED = "student-removed"

	// USER_LIST_UPDATED передает полный список участников
	USER_LIST_UPDATED = "user-list-updated"

	// NEW_MESSAGE передает новое сообщение чата
	NEW_MESSAGE = "new-message"

	// CHAT_HISTORY передает ограниченную историю чата при подключении
	CHAT_HISTORY = "chat-history"
)

// ERROR — адресное событие об ошибке команды: { code, message }.
// Ошибки локальны для вызывающего и не рассылаются остальным.
const ERROR = "error"
