// Package store keeps small bits of local history between runs. Sessions,
// tokens and passwords are never written here.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appDir         = "cinema-booking-cli"
	maxRecentEmail = 5
	maxRecentDates = 8
)

type historyEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// RecentAccount is an e-mail address that logged in successfully.
type RecentAccount struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	LastUsed time.Time `json:"last_used"`
}

func LoadRecentAccounts() ([]RecentAccount, error) {
	path, err := configPath("accounts.json")
	if err != nil {
		return nil, err
	}
	history, err := loadHistory[[]RecentAccount](path)
	if err != nil {
		return nil, errors.New("invalid account history format")
	}
	return history.Data, nil
}

// RememberAccount moves email to the front of the recent accounts.
func RememberAccount(email string, username string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	history, _ := LoadRecentAccounts()
	next := []RecentAccount{{Email: email, Username: username, LastUsed: time.Now()}}
	for _, existing := range history {
		if strings.EqualFold(existing.Email, email) || existing.Email == "" {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentEmail {
			break
		}
	}
	path, err := configPath("accounts.json")
	if err != nil {
		return err
	}
	return saveHistory(path, next)
}

// LastAccountEmail is the most recently used e-mail, if any.
func LastAccountEmail() string {
	accounts, err := LoadRecentAccounts()
	if err != nil || len(accounts) == 0 {
		return ""
	}
	return accounts[0].Email
}

func LoadRecentDates() ([]string, error) {
	path, err := configPath("dates.json")
	if err != nil {
		return nil, err
	}
	history, err := loadHistory[[]string](path)
	if err != nil {
		return nil, errors.New("invalid date history format")
	}
	return history.Data, nil
}

// RememberDate records a date filter in yyyy-mm-dd form.
func RememberDate(date time.Time) error {
	key := date.Format(time.DateOnly)
	history, _ := LoadRecentDates()
	next := []string{key}
	for _, existing := range history {
		if existing == key || existing == "" {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentDates {
			break
		}
	}
	path, err := configPath("dates.json")
	if err != nil {
		return err
	}
	return saveHistory(path, next)
}

func loadHistory[T any](path string) (historyEnvelope[T], error) {
	var history historyEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return history, nil
		}
		return history, err
	}
	if err := json.Unmarshal(data, &history); err != nil {
		return history, err
	}
	return history, nil
}

func saveHistory[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	history := historyEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	payload, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}
