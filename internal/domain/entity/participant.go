package entity

import (
	"fmt"
	"time"
)

// Role определяет роль участника в комнате
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole преобразует строку из команды join-room в Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Participant представляет подключенного участника комнаты.
// ID привязан к соединению (стабилен в рамках одного подключения);
// одинаковые имена допустимы и различаются только по ID.
type Participant struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	Role        Role      `json:"role"`
	ConnectedAt time.Time `json:"connected_at"`
}

// IsTeacher проверяет, является ли участник учителем
func (p *Participant) IsTeacher() bool {
	return p.Role == RoleTeacher
}

// IsStudent проверяет, является ли участник студентом
func (p *Participant) IsStudent() bool {
	return p.Role == RoleStudent
}
