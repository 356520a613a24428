package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// historyLimit caps the recent-keyword list.
const historyLimit = 20

const historyFileName = ".foldersearch_history.json"

// HistoryPath is the per-user keyword history location.
func HistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(home, historyFileName)
}

// LoadHistory reads the recent-keyword list; a missing or unreadable
// file is an empty history, never an error.
func LoadHistory(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var h []string
	if err := json.Unmarshal(data, &h); err != nil {
		return nil
	}
	return h
}

// SaveHistory persists the list.
func SaveHistory(path string, h []string) error {
	data, err := json.MarshalIndent(h, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PushHistory prepends a keyword unless already present and trims to
// the limit, most recent first.
func PushHistory(h []string, keyword string) []string {
	for _, k := range h {
		if k == keyword {
			return h
		}
	}
	h = append([]string{keyword}, h...)
	if len(h) > historyLimit {
		h = h[:historyLimit]
	}
	return h
}
