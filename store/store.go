// Package store работает с долговременными документами на диске:
// указатель активного ростера и карта кодов руководителей. Каждый
// документ перезаписывается целиком, записи атомарны (temp + rename),
// чтобы частичная запись никогда не была видна при следующем чтении.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigMissing — активный ростер ещё не настроен администратором
var ErrConfigMissing = errors.New("no active config found, upload a roster first")

type ActiveConfig struct {
	ActiveCSV string `json:"active_csv"`
}

// LoadActivePath возвращает путь к активному файлу ростера
func LoadActivePath(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrConfigMissing
		}
		return "", fmt.Errorf("failed to read active config: %w", err)
	}

	var cfg ActiveConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("failed to parse active config: %w", err)
	}

	if cfg.ActiveCSV == "" {
		return "", ErrConfigMissing
	}

	return cfg.ActiveCSV, nil
}

// SaveActivePath перезаписывает указатель активного ростера
func SaveActivePath(configPath, rosterPath string) error {
	abs, err := filepath.Abs(rosterPath)
	if err != nil {
		return fmt.Errorf("failed to resolve roster path: %w", err)
	}

	data, err := json.Marshal(ActiveConfig{ActiveCSV: abs})
	if err != nil {
		return fmt.Errorf("failed to marshal active config: %w", err)
	}

	return WriteDocument(configPath, data)
}

// LoadCodes читает карту кодов. Отсутствие файла — не ошибка:
// возвращается пустая карта, коды накапливаются между загрузками
func LoadCodes(codesPath string) (map[string]string, error) {
	data, err := os.ReadFile(codesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read code map: %w", err)
	}

	codeMap := map[string]string{}
	if err := json.Unmarshal(data, &codeMap); err != nil {
		return nil, fmt.Errorf("failed to parse code map: %w", err)
	}

	return codeMap, nil
}

// SaveCodes перезаписывает карту кодов целиком
func SaveCodes(codesPath string, codeMap map[string]string) error {
	data, err := json.MarshalIndent(codeMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal code map: %w", err)
	}

	return WriteDocument(codesPath, data)
}

// WriteDocument атомарно записывает документ: сначала во временный файл
// в том же каталоге, затем rename. При сбое на диске остаётся либо
// старая, либо новая полная версия
func WriteDocument(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
