package audit

import (
	"os"
	"path/filepath"
	"testing"

	"accessreview/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, _, err := roster.Normalize([]roster.File{{
		Name: "roster.csv",
		Data: []byte("User ID,User Name,Role,Role Name,Supervisor\n" +
			"E1,Alice,R1,Admin,Jordan\n" +
			"E2,Bob,R2,Viewer,Jordan\n" +
			"E3,Carol,R3,Editor,Casey\n"),
	}})
	require.NoError(t, err)
	return r
}

func readLog(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	return rows
}

func TestRecordAppendsApprovedBeforeRemoved(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "log.xlsx"))

	appended, dropped, err := l.Record("Jordan",
		[]string{"E1 - Alice"}, []string{"E2 - Bob"}, testRoster(t))
	require.NoError(t, err)
	assert.Equal(t, 2, appended)
	assert.Equal(t, 0, dropped)

	rows := readLog(t, l.Path)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"E1", "Alice", "R1", "Admin", "Jordan", "Approved"}, rows[1][:6])
	assert.Equal(t, []string{"E2", "Bob", "R2", "Viewer", "Jordan", "Removed"}, rows[2][:6])

	// Все строки одной отправки разделяют один штамп времени
	assert.Equal(t, rows[1][6], rows[2][6])
}

func TestRecordEmptySubmissionLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	l := NewLog(path)

	// Пустая отправка не создаёт файл
	appended, dropped, err := l.Record("Jordan", nil, nil, testRoster(t))
	require.NoError(t, err)
	assert.Equal(t, 0, appended)
	assert.Equal(t, 0, dropped)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// И не трогает существующий: файл байт-в-байт тот же
	_, _, err = l.Record("Jordan", []string{"E1 - Alice"}, nil, testRoster(t))
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	appended, dropped, err = l.Record("Jordan", nil, []string{"E9 - Ghost"}, testRoster(t))
	require.NoError(t, err)
	assert.Equal(t, 0, appended)
	assert.Equal(t, 1, dropped)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRecordDropsUnresolvableLabels(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "log.xlsx"))

	// E3 из команды другого руководителя и E9 из устаревшего ростера
	// пропадают молча, E1 записывается
	appended, dropped, err := l.Record("Jordan",
		[]string{"E1 - Alice", "E3 - Carol"}, []string{"E9 - Ghost"}, testRoster(t))
	require.NoError(t, err)
	assert.Equal(t, 1, appended)
	assert.Equal(t, 2, dropped)

	rows := readLog(t, l.Path)
	require.Len(t, rows, 2)
	assert.Equal(t, "E1", rows[1][0])
}

func TestRecordAppendsAcrossSubmissions(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "log.xlsx"))
	r := testRoster(t)

	_, _, err := l.Record("Jordan", []string{"E1 - Alice"}, nil, r)
	require.NoError(t, err)
	_, _, err = l.Record("Casey", nil, []string{"E3 - Carol"}, r)
	require.NoError(t, err)

	// Порядок вставки сохраняется, заголовок один
	rows := readLog(t, l.Path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"E1", "Alice", "R1", "Admin", "Jordan", "Approved"}, rows[1][:6])
	assert.Equal(t, []string{"E3", "Carol", "R3", "Editor", "Casey", "Removed"}, rows[2][:6])
}

func TestRecordLabelWithoutSeparator(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "log.xlsx"))

	// Подпись без " - " трактуется как голый UserID
	appended, dropped, err := l.Record("Jordan", []string{"E1"}, nil, testRoster(t))
	require.NoError(t, err)
	assert.Equal(t, 1, appended)
	assert.Equal(t, 0, dropped)
}

func TestRecordBothDecisionsForOneEmployee(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "log.xlsx"))

	appended, _, err := l.Record("Jordan",
		[]string{"E1 - Alice"}, []string{"E1 - Alice"}, testRoster(t))
	require.NoError(t, err)
	assert.Equal(t, 2, appended)

	rows := readLog(t, l.Path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Approved", rows[1][5])
	assert.Equal(t, "Removed", rows[2][5])
}
