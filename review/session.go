// Package review — конечный автомат одной проверки доступа:
// ожидание кода → проверка команды → завершение. Состояние живёт
// только в памяти на время одного диалога и никуда не сохраняется
package review

import (
	"accessreview/codes"
	"accessreview/roster"
)

type Phase int

const (
	AwaitingCode Phase = iota
	InReview
	Completed
)

// Session — проверка одного руководителя. Флаги approve и remove
// независимы: сотрудник может оказаться в обоих списках, и это
// честно попадает в журнал
type Session struct {
	Phase      Phase
	Supervisor string
	Team       []roster.Employee

	approved []bool
	removed  []bool
}

func NewSession() *Session {
	return &Session{Phase: AwaitingCode}
}

// Start принимает код доступа. При неверном коде сессия остаётся
// в ожидании кода, блокировок и ограничений на попытки нет
func (s *Session) Start(code string, codeMap map[string]string, r *roster.Roster) error {
	sup, err := codes.Resolve(code, codeMap)
	if err != nil {
		return err
	}

	s.Supervisor = sup
	s.Team = r.Team(sup)
	s.approved = make([]bool, len(s.Team))
	s.removed = make([]bool, len(s.Team))
	s.Phase = InReview
	return nil
}

func (s *Session) ToggleApprove(i int) {
	if i >= 0 && i < len(s.approved) {
		s.approved[i] = !s.approved[i]
	}
}

func (s *Session) ToggleRemove(i int) {
	if i >= 0 && i < len(s.removed) {
		s.removed[i] = !s.removed[i]
	}
}

// ApproveAll проставляет всем approve, не трогая remove.
// Отдельные флаги после этого можно снять вручную
func (s *Session) ApproveAll() {
	for i := range s.approved {
		s.approved[i] = true
	}
}

func (s *Session) IsApproved(i int) bool {
	return i >= 0 && i < len(s.approved) && s.approved[i]
}

func (s *Session) IsRemoved(i int) bool {
	return i >= 0 && i < len(s.removed) && s.removed[i]
}

// Submit фиксирует решения и переводит сессию в Completed.
// Возвращает подписи сотрудников в порядке команды
func (s *Session) Submit() (approved, removed []string) {
	for i, emp := range s.Team {
		if s.approved[i] {
			approved = append(approved, emp.Label())
		}
		if s.removed[i] {
			removed = append(removed, emp.Label())
		}
	}

	s.Phase = Completed
	return approved, removed
}

// Reset начинает новую проверку: решения и привязка к руководителю
// сбрасываются, сессия снова ждёт код
func (s *Session) Reset() {
	s.Phase = AwaitingCode
	s.Supervisor = ""
	s.Team = nil
	s.approved = nil
	s.removed = nil
}
