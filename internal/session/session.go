// Package session remembers which user is logged in on this machine.
package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/projtrack/internal/config"
)

// Session file path
func filePath() (string, error) {
	dir, err := config.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session"), nil
}

// Current returns the logged-in username, or "" if nobody is logged in
func Current() string {
	path, err := filePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Set records username as logged in
func Set(username string) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(username), 0600)
}

// Clear removes the session file
func Clear() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
