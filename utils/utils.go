package utils

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

func DownloadFile(url, filepath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsRosterFile — допустимые форматы загрузки ростера
func IsRosterFile(filename string) bool {
	ext := GetFileExtension(filename)
	return ext == ".csv" || ext == ".xlsx"
}

var codeRegex = regexp.MustCompile(`^\d{4}$`)

// IsAccessCode проверяет, что строка похожа на четырёхзначный код
func IsAccessCode(input string) bool {
	return codeRegex.MatchString(strings.TrimSpace(input))
}

// SanitizeFileName оставляет от имени загруженного файла только
// базовую часть, чтобы не выйти за пределы каталога данных
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return "upload"
	}
	return name
}
