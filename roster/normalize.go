package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// File — сырой загруженный файл ростера
type File struct {
	Name string
	Data []byte
}

// Normalize объединяет загруженные файлы в один канонический ростер.
// Первый файл задаёт схему колонок (после чистки BOM и пробелов),
// в нём обязана быть колонка Supervisor. Последующие файлы разбираются
// по канонической схеме: их первая строка пропускается, только если
// совпадает с каноническим заголовком (допускается другой порядок
// колонок — строки перестраиваются по именам), иначе считается данными.
// Строки с неподходящим числом колонок пропускаются, их количество
// возвращается вторым значением
func Normalize(files []File) (*Roster, int, error) {
	if len(files) == 0 {
		return nil, 0, fmt.Errorf("no files to normalize")
	}

	roster := &Roster{}
	skipped := 0

	for idx, file := range files {
		rawRows, badRows, err := parseFile(file)
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to parse %s: %w", file.Name, err)
		}
		skipped += badRows
		if len(rawRows) == 0 {
			continue
		}

		if idx == 0 {
			// Первый файл: его заголовок становится канонической схемой
			roster.Columns = cleanHeader(rawRows[0])
			if findColumn(roster.Columns, ColSupervisor) < 0 {
				return nil, skipped, &SchemaError{Msg: "missing Supervisor column"}
			}
			skipped += roster.appendRows(rawRows[1:], nil)
			continue
		}

		// Последующие файлы: заголовок распознаём, данные — по схеме
		dataRows := rawRows
		var mapping []int
		if m, ok := headerMapping(roster.Columns, cleanHeader(rawRows[0])); ok {
			dataRows = rawRows[1:]
			mapping = m
		}
		skipped += roster.appendRows(dataRows, mapping)
	}

	if roster.Columns == nil {
		return nil, skipped, fmt.Errorf("no parsable files in upload")
	}

	return roster, skipped, nil
}

// appendRows добавляет строки, отбрасывая не подходящие под схему.
// mapping != nil — колонки файла переставлены, выравниваем по именам
func (r *Roster) appendRows(rows [][]string, mapping []int) int {
	skipped := 0
	for _, row := range rows {
		if len(row) != len(r.Columns) {
			skipped++
			continue
		}
		if mapping != nil {
			aligned := make([]string, len(r.Columns))
			for i, src := range mapping {
				aligned[i] = row[src]
			}
			row = aligned
		}
		r.Rows = append(r.Rows, row)
	}
	return skipped
}

// cleanHeader убирает BOM и пробелы по краям имён колонок
func cleanHeader(header []string) []string {
	cleaned := make([]string, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		cleaned[i] = strings.TrimSpace(col)
	}
	return cleaned
}

// headerMapping проверяет, является ли первая строка файла повтором
// канонического заголовка (те же имена, возможно в другом порядке),
// и строит перестановку: mapping[i] — откуда брать i-ю колонку схемы
func headerMapping(canonical, header []string) ([]int, bool) {
	if len(header) != len(canonical) {
		return nil, false
	}

	mapping := make([]int, len(canonical))
	used := make([]bool, len(header))
	for i, col := range canonical {
		found := -1
		for j, h := range header {
			if !used[j] && strings.EqualFold(h, col) {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		mapping[i] = found
		used[found] = true
	}

	return mapping, true
}

// parseFile разбирает файл по расширению: .xlsx через excelize,
// остальное — как CSV. Второе значение — число строк, которые не
// удалось разобрать
func parseFile(file File) ([][]string, int, error) {
	if strings.ToLower(filepath.Ext(file.Name)) == ".xlsx" {
		return parseExcel(file.Data)
	}
	return parseCSV(file.Data)
}

func parseExcel(data []byte) ([][]string, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, fmt.Errorf("no sheets found in excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rows: %v", err)
	}

	return rows, 0, nil
}

func parseCSV(data []byte) ([][]string, int, error) {
	decoded, err := decodeBytes(data)
	if err != nil {
		return nil, 0, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Число колонок проверяем сами против канонической схемы
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	bad := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Кривая строка пропускается, разбор продолжается
			bad++
			continue
		}
		rows = append(rows, row)
	}

	return rows, bad, nil
}

// decodeBytes приводит файл к UTF-8. Выгрузки исходной системы идут
// в ISO-8859-1, поэтому невалидный UTF-8 перекодируем через charmap
func decodeBytes(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode latin-1: %w", err)
	}
	return decoded, nil
}
