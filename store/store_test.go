package store

import (
	"testing"
	"time"
)

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
}

func TestRememberAccount_MostRecentFirst(t *testing.T) {
	setTestConfigDir(t)

	accounts, err := LoadRecentAccounts()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected no accounts, got %+v", accounts)
	}

	if err := RememberAccount("a@example.com", "a"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberAccount("b@example.com", "b"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberAccount("A@example.com", "a"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	accounts, err = LoadRecentAccounts()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %+v", accounts)
	}
	if accounts[0].Email != "A@example.com" || accounts[1].Email != "b@example.com" {
		t.Fatalf("unexpected order: %+v", accounts)
	}
	if got := LastAccountEmail(); got != "A@example.com" {
		t.Fatalf("expected last email %q, got %q", "A@example.com", got)
	}
}

func TestRememberAccount_InvalidInput(t *testing.T) {
	setTestConfigDir(t)

	if err := RememberAccount("  ", "x"); err == nil {
		t.Fatal("expected error for empty email")
	}
}

func TestRememberAccount_Capped(t *testing.T) {
	setTestConfigDir(t)

	for _, email := range []string{"1@x", "2@x", "3@x", "4@x", "5@x", "6@x", "7@x"} {
		if err := RememberAccount(email, ""); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	accounts, err := LoadRecentAccounts()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(accounts) != maxRecentEmail {
		t.Fatalf("expected %d accounts, got %d", maxRecentEmail, len(accounts))
	}
	if accounts[0].Email != "7@x" {
		t.Fatalf("expected newest first, got %+v", accounts[0])
	}
}

func TestRememberDate_Dedupes(t *testing.T) {
	setTestConfigDir(t)

	first := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, date := range []time.Time{first, second, first} {
		if err := RememberDate(date); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	dates, err := LoadRecentDates()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-03-01" || dates[1] != "2026-03-02" {
		t.Fatalf("unexpected dates: %+v", dates)
	}
}
