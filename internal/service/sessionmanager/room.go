package sessionmanager

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/livepoll-api/internal/domain/entity"
	apperrors "github.com/yourusername/livepoll-api/internal/pkg/errors"
	ws "github.com/yourusername/livepoll-api/internal/websocket"
)

// Room — координатор сессии одной комнаты. Все команды (включая тики
// таймера) сериализуются через единую очередь и выполняются строго
// в порядке поступления одной горутиной: состояние комнаты не требует
// мьютекса, а рассылки выходят только после применения перехода.
type Room struct {
	id     string
	config *Config
	deps   *Dependencies

	cmds   chan func()
	closed chan struct{}
	once   sync.Once

	// Состояние ниже принадлежит циклу run
	roster       *Roster
	current      *activePoll
	history      []*entity.PollRecord
	performance  map[string]*entity.Performance
	chat         []*entity.ChatMessage
	sessionEnded bool
}

// activePoll связывает активный опрос с его журналом ответов и таймером
type activePoll struct {
	poll        *entity.Poll
	answers     map[string]*entity.Answer
	order       []string
	cancelTimer context.CancelFunc
}

// NewRoom создает комнату и запускает ее цикл обработки команд
func NewRoom(id string, config *Config, deps *Dependencies) *Room {
	r := &Room{
		id:          id,
		config:      config,
		deps:        deps,
		cmds:        make(chan func(), config.CommandBuffer),
		closed:      make(chan struct{}),
		roster:      NewRoster(),
		performance: make(map[string]*entity.Performance),
	}
	go r.run()
	log.Printf("[Room %s] Комната создана", id)
	return r
}

// ID возвращает идентификатор комнаты
func (r *Room) ID() string {
	return r.id
}

// run выполняет команды комнаты строго в порядке поступления
func (r *Room) run() {
	for {
		select {
		case cmd := <-r.cmds:
			cmd()
		case <-r.closed:
			if r.current != nil {
				r.current.cancelTimer()
				r.current = nil
			}
			log.Printf("[Room %s] Цикл обработки команд остановлен", r.id)
			return
		}
	}
}

// Close останавливает цикл комнаты и таймер активного опроса
func (r *Room) Close() {
	r.once.Do(func() {
		close(r.closed)
	})
}

// do выполняет команду в цикле комнаты и дожидается результата
func (r *Room) do(fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case r.cmds <- func() { errCh <- fn() }:
	case <-r.closed:
		return fmt.Errorf("room %s is closed: %w", r.id, apperrors.ErrNotFound)
	}
	select {
	case err := <-errCh:
		return err
	case <-r.closed:
		return fmt.Errorf("room %s is closed: %w", r.id, apperrors.ErrNotFound)
	}
}

// post ставит команду в очередь без ожидания результата.
// Используется таймером: тик — такая же команда, как и остальные.
func (r *Room) post(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.closed:
	}
}

// ---------------------------------------------------------------------------
// Команды участников
// ---------------------------------------------------------------------------

// Join добавляет участника в ростер и отправляет ему текущий снимок
// состояния: историю чата, активный опрос с результатами и остатком таймера.
func (r *Room) Join(p *entity.Participant) error {
	if strings.TrimSpace(p.DisplayName) == "" {
		return fmt.Errorf("display name is required: %w", apperrors.ErrValidation)
	}
	return r.do(func() error {
		p.ConnectedAt = r.deps.Clock.Now()
		r.roster.Add(p)
		log.Printf("[Room %s] Участник %s (%s) присоединился как %s", r.id, p.DisplayName, p.ID, p.Role)

		// Снимок для подключившегося
		r.sendTo(p.ID, ws.CHAT_HISTORY, r.chat)
		if r.current != nil {
			r.sendTo(p.ID, ws.POLL_UPDATE, map[string]interface{}{
				"poll":    r.current.poll,
				"results": r.buildResults(),
			})
			r.sendTo(p.ID, ws.TIMER_UPDATE, map[string]interface{}{
				"timeLeft": r.current.poll.RemainingSeconds(r.deps.Clock.Now()),
			})
		}
		if r.sessionEnded {
			r.sendTo(p.ID, ws.SESSION_ENDED, map[string]interface{}{})
		}

		r.broadcast(ws.USER_JOINED, map[string]interface{}{"user": p})
		r.broadcastRoster()

		// Новый студент меняет знаменатель участия
		if r.current != nil && p.IsStudent() {
			r.broadcastResults()
		}
		return nil
	})
}

// Leave убирает отключившегося участника из ростера. Его ответ остается
// в журнале, но из расчетов по ростеру участник исключается.
// Отключение транспорта — не ошибка, поэтому отсутствие в ростере — no-op.
func (r *Room) Leave(participantID string) {
	r.post(func() {
		p, ok := r.roster.Remove(participantID)
		if !ok {
			return
		}
		log.Printf("[Room %s] Участник %s (%s) покинул комнату", r.id, p.DisplayName, p.ID)
		r.broadcast(ws.USER_LEFT, map[string]interface{}{"user": p})
		r.broadcastRoster()
		if r.current != nil && p.IsStudent() {
			r.broadcastResults()
		}
	})
}

// CreatePoll проверяет и запускает новый опрос (команда учителя).
// На успех: рассылается poll-created и нулевой снимок результатов,
// стартует таймер обратного отсчета.
func (r *Room) CreatePoll(requesterID string, spec PollSpec) (*entity.Poll, error) {
	var created *entity.Poll
	err := r.do(func() error {
		if r.sessionEnded {
			return apperrors.ErrSessionEnded
		}
		requester, ok := r.roster.Get(requesterID)
		if !ok {
			return fmt.Errorf("requester is not in the room: %w", apperrors.ErrNotFound)
		}
		if !requester.IsTeacher() {
			return fmt.Errorf("only the teacher can create polls: %w", apperrors.ErrForbidden)
		}
		if r.current != nil {
			return fmt.Errorf("another poll is already active: %w", apperrors.ErrValidation)
		}

		poll, err := r.buildPoll(spec)
		if err != nil {
			return err
		}

		r.current = &activePoll{
			poll:    poll,
			answers: make(map[string]*entity.Answer),
		}
		r.current.cancelTimer = r.startTimer(poll.ID, poll.TimeLimitSec)

		log.Printf("[Room %s] Опрос %s запущен: %q (%s, %d сек)", r.id, poll.ID, poll.Question, poll.Type, poll.TimeLimitSec)

		r.broadcast(ws.POLL_CREATED, poll)
		r.broadcastResults()
		r.sendToTeachers(ws.POLL_UPDATE, map[string]interface{}{
			"poll":          poll,
			"correctAnswer": poll.CorrectAnswer,
			"results":       r.buildResults(),
		})

		created = poll
		return nil
	})
	return created, err
}

// SubmitAnswer записывает ответ студента в журнал. Первый ответ побеждает:
// повторная отправка отклоняется с duplicate_answer и не меняет состояние.
func (r *Room) SubmitAnswer(participantID string, value entity.AnswerValue) error {
	return r.do(func() error {
		if r.sessionEnded {
			return apperrors.ErrSessionEnded
		}
		p, ok := r.roster.Get(participantID)
		if !ok {
			return fmt.Errorf("participant is not in the room: %w", apperrors.ErrNotFound)
		}
		if p.IsTeacher() {
			return fmt.Errorf("the teacher cannot submit answers: %w", apperrors.ErrInvalidRole)
		}
		if r.current == nil {
			return fmt.Errorf("no active poll: %w", apperrors.ErrNotFound)
		}
		if _, answered := r.current.answers[participantID]; answered {
			return fmt.Errorf("participant %s: %w", p.DisplayName, apperrors.ErrDuplicateAnswer)
		}
		if err := r.current.poll.ValidateAnswer(value); err != nil {
			return fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
		}

		now := r.deps.Clock.Now()
		responseTimeMs := now.Sub(r.current.poll.CreatedAt).Milliseconds()
		if responseTimeMs < 0 {
			responseTimeMs = 0
		}

		answer := &entity.Answer{
			ParticipantID:  participantID,
			DisplayName:    p.DisplayName,
			Value:          value,
			SubmittedAt:    now,
			ResponseTimeMs: responseTimeMs,
			IsCorrect:      r.current.poll.Evaluate(value),
		}
		r.current.answers[participantID] = answer
		r.current.order = append(r.current.order, participantID)

		// Накопительные счетчики живут независимо от соединения:
		// переподключение под тем же именем не теряет результаты
		if answer.Graded() {
			perf, ok := r.performance[p.DisplayName]
			if !ok {
				perf = &entity.Performance{DisplayName: p.DisplayName}
				r.performance[p.DisplayName] = perf
			}
			perf.Record(answer.Correct())
		}

		log.Printf("[Room %s] Ответ от %s на опрос %s за %d мс", r.id, p.DisplayName, r.current.poll.ID, responseTimeMs)

		r.broadcastResults()
		r.sendIndividualAnswersToTeachers()

		// Досрочное завершение, когда ответили все студенты ростера
		if r.config.AutoEndWhenAllAnswered && r.allStudentsAnswered() {
			log.Printf("[Room %s] Все студенты ответили, опрос %s завершается досрочно", r.id, r.current.poll.ID)
			r.endCurrentPoll("all_answered")
		}
		return nil
	})
}

// RemoveParticipant удаляет участника по команде учителя. Удаленному
// адресно отправляется kicked-out, после чего он отсекается от рассылок.
func (r *Room) RemoveParticipant(requesterID, targetID string) error {
	return r.do(func() error {
		requester, ok := r.roster.Get(requesterID)
		if !ok {
			return fmt.Errorf("requester is not in the room: %w", apperrors.ErrNotFound)
		}
		if !requester.IsTeacher() {
			return fmt.Errorf("only the teacher can remove participants: %w", apperrors.ErrForbidden)
		}
		target, ok := r.roster.Remove(targetID)
		if !ok {
			return fmt.Errorf("participant not found: %w", apperrors.ErrNotFound)
		}

		log.Printf("[Room %s] Участник %s (%s) удален учителем", r.id, target.DisplayName, target.ID)

		r.sendTo(targetID, ws.KICKED_OUT, map[string]interface{}{})
		r.deps.Broadcaster.EvictParticipant(targetID)

		r.broadcast(ws.USER_LEFT, map[string]interface{}{"user": target})
		r.broadcast(ws.STUDENT_REMOVED, map[string]interface{}{"user": target})
		r.broadcastRoster()
		if r.current != nil && target.IsStudent() {
			r.broadcastResults()
		}
		return nil
	})
}

// EndPoll завершает активный опрос по команде учителя (end-poll и
// ask-new-question). Таймер отменяется синхронно до возврата.
func (r *Room) EndPoll(requesterID string) error {
	return r.do(func() error {
		requester, ok := r.roster.Get(requesterID)
		if !ok {
			return fmt.Errorf("requester is not in the room: %w", apperrors.ErrNotFound)
		}
		if !requester.IsTeacher() {
			return fmt.Errorf("only the teacher can end polls: %w", apperrors.ErrForbidden)
		}
		if r.current == nil {
			return fmt.Errorf("no active poll: %w", apperrors.ErrNotFound)
		}
		r.endCurrentPoll("ended_by_teacher")
		r.broadcast(ws.POLL_RESET, map[string]interface{}{})
		return nil
	})
}

// EndSession замораживает сессию: активный опрос завершается, счетчики
// успеваемости становятся доступны, дальнейшие create-poll отклоняются.
func (r *Room) EndSession(requesterID string) error {
	return r.do(func() error {
		requester, ok := r.roster.Get(requesterID)
		if !ok {
			return fmt.Errorf("requester is not in the room: %w", apperrors.ErrNotFound)
		}
		if !requester.IsTeacher() {
			return fmt.Errorf("only the teacher can end the session: %w", apperrors.ErrForbidden)
		}
		if r.sessionEnded {
			return nil // Повторный end-session — no-op
		}
		if r.current != nil {
			r.endCurrentPoll("session_ended")
		}
		r.sessionEnded = true
		log.Printf("[Room %s] Сессия завершена", r.id)
		r.broadcast(ws.SESSION_ENDED, map[string]interface{}{})
		return nil
	})
}

// Performance возвращает накопительные счетчики по имени участника.
// До завершения сессии возвращается стабильный сентинел "не доступно".
func (r *Room) Performance(displayName string) (*PerformanceReport, error) {
	var report *PerformanceReport
	err := r.do(func() error {
		if !r.sessionEnded {
			report = &PerformanceReport{
				Available: false,
				Name:      displayName,
				Message:   "Performance is available after the session ends",
			}
			return nil
		}
		perf, ok := r.performance[displayName]
		if !ok {
			perf = &entity.Performance{DisplayName: displayName}
		}
		report = &PerformanceReport{
			Available:        true,
			Name:             displayName,
			TotalAnswers:     perf.TotalAnswers,
			CorrectAnswers:   perf.CorrectAnswers,
			IncorrectAnswers: perf.IncorrectAnswers(),
			Accuracy:         perf.Accuracy(),
		}
		return nil
	})
	return report, err
}

// SendChat добавляет сообщение в ограниченную историю и рассылает его всем
func (r *Room) SendChat(participantID, text string) error {
	return r.do(func() error {
		p, ok := r.roster.Get(participantID)
		if !ok {
			return fmt.Errorf("participant is not in the room: %w", apperrors.ErrNotFound)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("message text is empty: %w", apperrors.ErrValidation)
		}

		msg := &entity.ChatMessage{
			ID:         uuid.New().String(),
			SenderID:   p.ID,
			SenderName: p.DisplayName,
			SenderRole: p.Role,
			Text:       text,
			SentAt:     r.deps.Clock.Now(),
		}
		r.chat = append(r.chat, msg)
		if len(r.chat) > r.config.ChatHistorySize {
			r.chat = r.chat[len(r.chat)-r.config.ChatHistorySize:]
		}
		r.broadcast(ws.NEW_MESSAGE, msg)
		return nil
	})
}

// ---------------------------------------------------------------------------
// Запросы только на чтение (сериализуются через ту же очередь)
// ---------------------------------------------------------------------------

// Analytics возвращает снимок аналитики активного опроса.
// Отсутствие активного опроса — ErrNotFound, который слой HTTP отличает
// от транспортной ошибки.
func (r *Room) Analytics() (*entity.AnalyticsSnapshot, error) {
	var snapshot *entity.AnalyticsSnapshot
	err := r.do(func() error {
		if r.current == nil {
			return fmt.Errorf("no active poll: %w", apperrors.ErrNotFound)
		}
		snapshot = BuildAnalytics(r.current.poll, r.roster.Students(), r.answerList(), r.config.ResponseTimeBucketsMs)
		return nil
	})
	return snapshot, err
}

// Participation возвращает список участия для активного опроса,
// либо для последнего завершенного (для экспорта после окончания)
func (r *Room) Participation() ([]*entity.ParticipationEntry, error) {
	var entries []*entity.ParticipationEntry
	err := r.do(func() error {
		answers := r.relevantAnswers()
		entries = BuildParticipation(r.roster.Students(), answers)
		return nil
	})
	return entries, err
}

// ExportSnapshot собирает согласованный срез (опрос + аналитика + участие)
// одной командой: все три части отражают одно и то же состояние журнала
func (r *Room) ExportSnapshot() (*ExportSnapshot, error) {
	var snap *ExportSnapshot
	err := r.do(func() error {
		poll, answers := r.relevantPoll()
		if poll == nil {
			return fmt.Errorf("no poll to export: %w", apperrors.ErrNotFound)
		}
		students := r.roster.Students()
		answerMap := make(map[string]*entity.Answer, len(answers))
		for _, a := range answers {
			answerMap[a.ParticipantID] = a
		}
		snap = &ExportSnapshot{
			Poll:          poll,
			Analytics:     BuildAnalytics(poll, students, answers, r.config.ResponseTimeBucketsMs),
			Participation: BuildParticipation(students, answerMap),
		}
		return nil
	})
	return snap, err
}

// History возвращает копию истории завершенных опросов
func (r *Room) History() []*entity.PollRecord {
	var records []*entity.PollRecord
	_ = r.do(func() error {
		records = make([]*entity.PollRecord, len(r.history))
		copy(records, r.history)
		return nil
	})
	return records
}

// Participants возвращает текущий ростер
func (r *Room) Participants() []*entity.Participant {
	var list []*entity.Participant
	_ = r.do(func() error {
		list = r.roster.List()
		return nil
	})
	return list
}

// ---------------------------------------------------------------------------
// Таймер
// ---------------------------------------------------------------------------

// startTimer запускает обратный отсчет опроса. Каждый тик ставится
// в очередь команд с ID опроса: тик, переживший свой опрос, распознается
// как устаревший и игнорируется. Отмена через context синхронна.
func (r *Room) startTimer(pollID string, seconds int) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := r.deps.Clock.NewTicker(r.config.TickInterval)
		defer ticker.Stop()

		remaining := seconds
		for {
			select {
			case <-ticker.Chan():
				remaining--
				left := remaining
				r.post(func() { r.handleTick(pollID, left) })
				if left <= 0 {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancel
}

// handleTick обрабатывает тик таймера внутри цикла команд.
// Тик чужого или уже завершенного опроса — no-op: устаревший тик
// никогда не воскрешает завершенный опрос.
func (r *Room) handleTick(pollID string, secondsLeft int) {
	if r.current == nil || r.current.poll.ID != pollID {
		return
	}
	if secondsLeft > 0 {
		r.broadcast(ws.TIMER_UPDATE, map[string]interface{}{"timeLeft": secondsLeft})
		return
	}
	r.broadcast(ws.TIMER_UPDATE, map[string]interface{}{"timeLeft": 0})
	log.Printf("[Room %s] Время опроса %s истекло", r.id, pollID)
	r.endCurrentPoll("time_expired")
}

// ---------------------------------------------------------------------------
// Внутренние переходы (вызываются только из цикла команд)
// ---------------------------------------------------------------------------

// endCurrentPoll переводит активный опрос в Ended: таймер отменяется
// синхронно, запись добавляется в append-only историю, рассылается
// poll-ended с финальными результатами.
func (r *Room) endCurrentPoll(reason string) {
	active := r.current
	active.cancelTimer()
	active.poll.State = entity.PollStateEnded

	results := r.buildResults()
	record := &entity.PollRecord{
		Poll:    active.poll,
		Answers: r.answerList(),
		Results: results,
		EndedAt: r.deps.Clock.Now(),
	}
	r.history = append(r.history, record)
	r.current = nil

	log.Printf("[Room %s] Опрос %s завершен (%s): ответили %d из %d",
		r.id, active.poll.ID, reason, results.AnsweredStudents, results.TotalStudents)

	r.broadcast(ws.POLL_ENDED, map[string]interface{}{
		"poll":    active.poll,
		"results": results,
		"reason":  reason,
	})
}

// buildPoll проверяет спецификацию команды create-poll и строит опрос
func (r *Room) buildPoll(spec PollSpec) (*entity.Poll, error) {
	question := strings.TrimSpace(spec.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required: %w", apperrors.ErrValidation)
	}

	pollType := entity.PollType(spec.PollType)
	switch pollType {
	case entity.PollTypeSingleChoice, entity.PollTypeMultipleChoice,
		entity.PollTypeYesNo, entity.PollTypeRating, entity.PollTypeText:
	default:
		return nil, fmt.Errorf("unknown poll type %q: %w", spec.PollType, apperrors.ErrValidation)
	}

	if spec.TimeLimit < entity.MinTimeLimitSec || spec.TimeLimit > entity.MaxTimeLimitSec {
		return nil, fmt.Errorf("time limit must be between %d and %d seconds: %w",
			entity.MinTimeLimitSec, entity.MaxTimeLimitSec, apperrors.ErrValidation)
	}

	poll := &entity.Poll{
		ID:           uuid.New().String(),
		Question:     question,
		Type:         pollType,
		TimeLimitSec: spec.TimeLimit,
		IsAnonymous:  spec.IsAnonymous,
		CreatedAt:    r.deps.Clock.Now(),
		State:        entity.PollStateActive,
	}

	switch pollType {
	case entity.PollTypeSingleChoice, entity.PollTypeMultipleChoice:
		for _, opt := range spec.Options {
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				poll.Options = append(poll.Options, trimmed)
			}
		}
		if len(poll.Options) < 2 {
			return nil, fmt.Errorf("at least 2 non-empty options are required: %w", apperrors.ErrValidation)
		}
		if len(spec.CorrectAnswer) == 0 {
			return nil, fmt.Errorf("a correct answer must be marked: %w", apperrors.ErrValidation)
		}
		if pollType == entity.PollTypeSingleChoice && len(spec.CorrectAnswer) != 1 {
			return nil, fmt.Errorf("single-choice polls need exactly one correct answer: %w", apperrors.ErrValidation)
		}
		for _, ca := range spec.CorrectAnswer {
			if !poll.Options.Contains(ca) {
				return nil, fmt.Errorf("correct answer %q is not among the options: %w", ca, apperrors.ErrValidation)
			}
		}
		poll.CorrectAnswer = entity.StringArray(spec.CorrectAnswer)

	case entity.PollTypeYesNo:
		poll.Options = entity.StringArray{"Yes", "No"}
		if len(spec.CorrectAnswer) != 1 || !poll.Options.Contains(spec.CorrectAnswer[0]) {
			return nil, fmt.Errorf("yes-no polls need a correct answer of Yes or No: %w", apperrors.ErrValidation)
		}
		poll.CorrectAnswer = entity.StringArray(spec.CorrectAnswer)

	case entity.PollTypeRating:
		scale := spec.RatingScale
		if scale == 0 {
			scale = entity.RatingScaleFive
		}
		if scale != entity.RatingScaleFive && scale != entity.RatingScaleTen {
			return nil, fmt.Errorf("rating scale must be %d or %d: %w",
				entity.RatingScaleFive, entity.RatingScaleTen, apperrors.ErrValidation)
		}
		poll.RatingScale = scale
		if len(spec.CorrectAnswer) == 1 {
			// Явное значение учителя перекрывает политику по умолчанию
			rating, err := strconv.Atoi(spec.CorrectAnswer[0])
			if err != nil || rating < 1 || rating > scale {
				return nil, fmt.Errorf("expected rating value is outside the scale: %w", apperrors.ErrValidation)
			}
			poll.CorrectAnswer = entity.StringArray{spec.CorrectAnswer[0]}
		} else {
			poll.CorrectAnswer = entity.StringArray{strconv.Itoa(r.config.RatingExpected(scale))}
		}

	case entity.PollTypeText:
		// Свободный текст: без вариантов и без автоматической оценки
	}

	return poll, nil
}

// allStudentsAnswered проверяет, ответили ли все студенты текущего ростера
func (r *Room) allStudentsAnswered() bool {
	students := r.roster.Students()
	if len(students) == 0 {
		return false
	}
	for _, s := range students {
		if _, ok := r.current.answers[s.ID]; !ok {
			return false
		}
	}
	return true
}

// answerList возвращает журнал ответов активного опроса в порядке отправки
func (r *Room) answerList() []*entity.Answer {
	if r.current == nil {
		return nil
	}
	out := make([]*entity.Answer, 0, len(r.current.order))
	for _, id := range r.current.order {
		out = append(out, r.current.answers[id])
	}
	return out
}

// relevantPoll возвращает активный опрос, либо последний завершенный
func (r *Room) relevantPoll() (*entity.Poll, []*entity.Answer) {
	if r.current != nil {
		return r.current.poll, r.answerList()
	}
	if len(r.history) > 0 {
		last := r.history[len(r.history)-1]
		return last.Poll, last.Answers
	}
	return nil, nil
}

// relevantAnswers возвращает журнал активного или последнего опроса как карту
func (r *Room) relevantAnswers() map[string]*entity.Answer {
	_, answers := r.relevantPoll()
	out := make(map[string]*entity.Answer, len(answers))
	for _, a := range answers {
		out[a.ParticipantID] = a
	}
	return out
}

// buildResults строит снимок результатов активного опроса
func (r *Room) buildResults() *entity.PollResults {
	return BuildResults(r.current.poll, r.roster.Students(), r.answerList())
}

// ---------------------------------------------------------------------------
// Рассылки: выходят только после применения перехода в памяти и не
// блокируют цикл — Broadcaster лишь ставит сообщение в буфер соединения
// ---------------------------------------------------------------------------

func (r *Room) broadcast(eventType string, data interface{}) {
	if err := r.deps.Broadcaster.BroadcastToRoom(r.id, eventType, data); err != nil {
		log.Printf("[Room %s] Ошибка рассылки %s: %v", r.id, eventType, err)
	}
}

func (r *Room) sendTo(participantID, eventType string, data interface{}) {
	if err := r.deps.Broadcaster.SendToParticipant(participantID, eventType, data); err != nil {
		log.Printf("[Room %s] Ошибка отправки %s участнику %s: %v", r.id, eventType, participantID, err)
	}
}

func (r *Room) sendToTeachers(eventType string, data interface{}) {
	for _, t := range r.roster.Teachers() {
		r.sendTo(t.ID, eventType, data)
	}
}

func (r *Room) broadcastRoster() {
	r.broadcast(ws.USER_LIST_UPDATED, map[string]interface{}{"users": r.roster.List()})
}

func (r *Room) broadcastResults() {
	r.broadcast(ws.POLL_RESULTS, map[string]interface{}{"results": r.buildResults()})
}

// sendIndividualAnswersToTeachers отправляет учителям пополненный журнал
// индивидуальных ответов. Для анонимных опросов имена не раскрываются.
func (r *Room) sendIndividualAnswersToTeachers() {
	if r.current.poll.IsAnonymous {
		return
	}
	r.sendToTeachers(ws.POLL_UPDATE, map[string]interface{}{
		"poll":              r.current.poll,
		"results":           r.buildResults(),
		"individualAnswers": r.answerList(),
	})
}
