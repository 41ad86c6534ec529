package sessionmanager

import (
	"github.com/yourusername/livepoll-api/internal/domain/entity"
)

// Roster хранит подключенных участников комнаты в порядке подключения.
// Структура принадлежит циклу команд комнаты и не синхронизируется сама.
type Roster struct {
	participants map[string]*entity.Participant
	order        []string
}

// NewRoster создает пустой ростер
func NewRoster() *Roster {
	return &Roster{
		participants: make(map[string]*entity.Participant),
	}
}

// Add добавляет участника. Повторное добавление того же ID игнорируется.
func (r *Roster) Add(p *entity.Participant) {
	if _, ok := r.participants[p.ID]; ok {
		return
	}
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Remove удаляет участника и возвращает его, если он был в ростере
func (r *Roster) Remove(id string) (*entity.Participant, bool) {
	p, ok := r.participants[id]
	if !ok {
		return nil, false
	}
	delete(r.participants, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

// Get возвращает участника по ID
func (r *Roster) Get(id string) (*entity.Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

// List возвращает всех участников в порядке подключения
func (r *Roster) List() []*entity.Participant {
	out := make([]*entity.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.participants[id])
	}
	return out
}

// Students возвращает только студентов в порядке подключения
func (r *Roster) Students() []*entity.Participant {
	out := make([]*entity.Participant, 0, len(r.order))
	for _, id := range r.order {
		if p := r.participants[id]; p.IsStudent() {
			out = append(out, p)
		}
	}
	return out
}

// Teachers возвращает только учителей
func (r *Roster) Teachers() []*entity.Participant {
	out := make([]*entity.Participant, 0, 1)
	for _, id := range r.order {
		if p := r.participants[id]; p.IsTeacher() {
			out = append(out, p)
		}
	}
	return out
}

// StudentCount возвращает количество студентов в ростере
func (r *Roster) StudentCount() int {
	n := 0
	for _, p := range r.participants {
		if p.IsStudent() {
			n++
		}
	}
	return n
}

// Size возвращает общее количество участников
func (r *Roster) Size() int {
	return len(r.participants)
}
