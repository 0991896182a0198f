// Package roster нормализует загруженные таблицы сотрудников в один
// канонический ростер и строит по нему команды руководителей.
package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
)

// Имена обязательных и проекционных колонок исходной системы
const (
	ColSupervisor = "Supervisor"
	ColUserID     = "User ID"
	ColUserName   = "User Name"
	ColRole       = "Role"
	ColRoleName   = "Role Name"
)

// Roster — канонический ростер: схема колонок первого файла и все
// строки всех файлов в порядке загрузки. Дубликаты здесь не
// схлопываются, дедупликация происходит на уровне команды руководителя
type Roster struct {
	Columns []string
	Rows    [][]string
}

// Employee — проекция строки ростера для экрана проверки
type Employee struct {
	UserID   string
	UserName string
	Role     string
	RoleName string
}

// Label — подпись сотрудника в том виде, в котором она попадает
// в решения проверки
func (e Employee) Label() string {
	return fmt.Sprintf("%s - %s", e.UserID, e.UserName)
}

// SchemaError — загруженный файл не соответствует схеме ростера
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string {
	return e.Msg
}

// findColumn ищет колонку без учёта регистра
func findColumn(columns []string, name string) int {
	for i, col := range columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

func (r *Roster) value(row []string, column string) string {
	idx := findColumn(r.Columns, column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Supervisors возвращает отсортированный список руководителей
// без пустых значений
func (r *Roster) Supervisors() []string {
	seen := make(map[string]bool)
	var supervisors []string

	for _, row := range r.Rows {
		sup := strings.TrimSpace(r.value(row, ColSupervisor))
		if sup == "" || seen[sup] {
			continue
		}
		seen[sup] = true
		supervisors = append(supervisors, sup)
	}

	sort.Strings(supervisors)
	return supervisors
}

// Team строит команду руководителя: строки с его именем,
// спроецированные на четыре колонки и дедуплицированные по точному
// совпадению всех полей. Порядок строк ростера сохраняется
func (r *Roster) Team(supervisor string) []Employee {
	seen := make(map[Employee]bool)
	var team []Employee

	for _, row := range r.Rows {
		if strings.TrimSpace(r.value(row, ColSupervisor)) != supervisor {
			continue
		}
		emp := Employee{
			UserID:   r.value(row, ColUserID),
			UserName: r.value(row, ColUserName),
			Role:     r.value(row, ColRole),
			RoleName: r.value(row, ColRoleName),
		}
		if seen[emp] {
			continue
		}
		seen[emp] = true
		team = append(team, emp)
	}

	return team
}

// EncodeCSV сериализует канонический ростер в UTF-8 CSV —
// в этом виде он сохраняется на диск и на него указывает
// active_config.json
func (r *Roster) EncodeCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(r.Columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range r.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
