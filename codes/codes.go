// Package codes выдаёт руководителям четырёхзначные коды доступа
// и находит руководителя по введённому коду.
package codes

import (
	"errors"
	"math/rand"
	"strconv"
)

// ErrNotFound — введённый код никому не выдавался
var ErrNotFound = errors.New("access code not found")

const (
	codeMin = 1000
	codeMax = 9999
)

// Issue выдаёт код каждому руководителю, которого ещё нет в карте.
// Уже выданные коды никогда не меняются и не переиспользуются,
// карта накапливается между загрузками ростера
func Issue(supervisors []string, existing map[string]string) map[string]string {
	updated := make(map[string]string, len(existing)+len(supervisors))
	taken := make(map[string]bool, len(existing))
	for sup, code := range existing {
		updated[sup] = code
		taken[code] = true
	}

	for _, sup := range supervisors {
		if sup == "" {
			continue
		}
		if _, ok := updated[sup]; ok {
			continue
		}
		code := generateUniqueCode(taken)
		updated[sup] = code
		taken[code] = true
	}

	return updated
}

// generateUniqueCode подбирает случайный код, пока не найдёт свободный.
// Пространство кодов — 9000 значений, при реальном числе руководителей
// коллизии редки
func generateUniqueCode(taken map[string]bool) string {
	for {
		code := strconv.Itoa(codeMin + rand.Intn(codeMax-codeMin+1))
		if !taken[code] {
			return code
		}
	}
}

// Resolve находит руководителя по коду. Коды уникальны по построению,
// поэтому первое совпадение однозначно
func Resolve(code string, codeMap map[string]string) (string, error) {
	for sup, supCode := range codeMap {
		if supCode == code {
			return sup, nil
		}
	}
	return "", ErrNotFound
}
