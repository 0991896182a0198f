// Package audit ведёт журнал решений проверки доступа в xlsx-файле.
// Журнал только дописывается: строки никогда не правятся, не
// удаляются и не переупорядочиваются
package audit

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"accessreview/roster"

	"github.com/tealeg/xlsx"
)

const (
	ActionApproved = "Approved"
	ActionRemoved  = "Removed"

	timestampFormat = "2006-01-02 15:04:05"
	sheetName       = "Sheet"
)

var header = []string{"User ID", "User Name", "Role", "Role Name", "Supervisor", "Action", "Timestamp"}

type Record struct {
	UserID     string
	UserName   string
	Role       string
	RoleName   string
	Supervisor string
	Action     string
	Timestamp  string
}

type Log struct {
	Path string
}

func NewLog(path string) *Log {
	return &Log{Path: path}
}

// Record дописывает решения одной отправки. Подпись "UserID - UserName"
// режется по первому " - ", по UserID берётся первая подходящая строка
// дедуплицированной команды руководителя. Подписи, не нашедшие строку
// ростера (например, после смены активного ростера под ногами сессии),
// отбрасываются — их число возвращается вторым значением. Все строки
// одной отправки получают один и тот же штамп времени; пустая отправка
// не трогает файл вообще
func (l *Log) Record(supervisor string, approved, removed []string, r *roster.Roster) (int, int, error) {
	timestamp := time.Now().Format(timestampFormat)
	team := r.Team(supervisor)

	groups := []struct {
		action string
		labels []string
	}{
		{ActionApproved, approved},
		{ActionRemoved, removed},
	}

	var records []Record
	dropped := 0
	for _, group := range groups {
		for _, label := range group.labels {
			uid := label
			if i := strings.Index(label, " - "); i >= 0 {
				uid = label[:i]
			}

			emp, ok := findByUserID(team, uid)
			if !ok {
				log.Printf("Dropping unresolvable decision %q for supervisor %s", label, supervisor)
				dropped++
				continue
			}

			records = append(records, Record{
				UserID:     emp.UserID,
				UserName:   emp.UserName,
				Role:       emp.Role,
				RoleName:   emp.RoleName,
				Supervisor: supervisor,
				Action:     group.action,
				Timestamp:  timestamp,
			})
		}
	}

	if len(records) == 0 {
		return 0, dropped, nil
	}

	if err := l.append(records); err != nil {
		return 0, dropped, err
	}

	return len(records), dropped, nil
}

func findByUserID(team []roster.Employee, uid string) (roster.Employee, bool) {
	for _, emp := range team {
		if emp.UserID == uid {
			return emp, true
		}
	}
	return roster.Employee{}, false
}

// append создаёт файл с заголовком при первой записи, иначе загружает
// существующий, дописывает строки и сохраняет целиком
func (l *Log) append(records []Record) error {
	var file *xlsx.File
	var sheet *xlsx.Sheet

	if _, err := os.Stat(l.Path); os.IsNotExist(err) {
		file = xlsx.NewFile()
		sheet, err = file.AddSheet(sheetName)
		if err != nil {
			return fmt.Errorf("failed to create sheet: %v", err)
		}
		headerRow := sheet.AddRow()
		for _, col := range header {
			headerRow.AddCell().Value = col
		}
	} else {
		file, err = xlsx.OpenFile(l.Path)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %v", err)
		}
		if len(file.Sheets) == 0 {
			return fmt.Errorf("audit log has no sheets")
		}
		sheet = file.Sheets[0]
	}

	for _, rec := range records {
		row := sheet.AddRow()
		for _, value := range []string{rec.UserID, rec.UserName, rec.Role, rec.RoleName, rec.Supervisor, rec.Action, rec.Timestamp} {
			row.AddCell().Value = value
		}
	}

	if err := file.Save(l.Path); err != nil {
		return fmt.Errorf("failed to save audit log: %v", err)
	}

	return nil
}
