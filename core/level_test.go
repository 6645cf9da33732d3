package core

import (
	"errors"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{NOTSET, "NOTSET"},
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARNING, "WARNING"},
		{ERROR, "ERROR"},
		{CRITICAL, "CRITICAL"},
		{Level(35), "Level 35"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warning")
	if err != nil {
		t.Fatalf("ParseLevel(warning) error = %v", err)
	}
	if level != WARNING {
		t.Errorf("ParseLevel(warning) = %d, want %d", level, WARNING)
	}

	// WARN and FATAL are accepted aliases.
	if level, _ := ParseLevel("WARN"); level != WARNING {
		t.Errorf("ParseLevel(WARN) = %d, want WARNING", level)
	}
	if level, _ := ParseLevel("FATAL"); level != CRITICAL {
		t.Errorf("ParseLevel(FATAL) = %d, want CRITICAL", level)
	}

	_, err = ParseLevel("VERBOSE")
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("ParseLevel(VERBOSE) error = %v, want ErrInvalidLevel", err)
	}
}

func TestAddLevelName(t *testing.T) {
	AddLevelName(Level(25), "NOTICE")

	if got := Level(25).String(); got != "NOTICE" {
		t.Errorf("Level(25).String() = %q, want NOTICE", got)
	}
	level, err := ParseLevel("notice")
	if err != nil {
		t.Fatalf("ParseLevel(notice) error = %v", err)
	}
	if level != Level(25) {
		t.Errorf("ParseLevel(notice) = %d, want 25", level)
	}
	if err := CheckLevel(Level(25)); err != nil {
		t.Errorf("CheckLevel(25) error = %v after registration", err)
	}
}

func TestCheckLevel(t *testing.T) {
	if err := CheckLevel(INFO); err != nil {
		t.Errorf("CheckLevel(INFO) error = %v", err)
	}
	if err := CheckLevel(NOTSET); err != nil {
		t.Errorf("CheckLevel(NOTSET) error = %v", err)
	}
	if err := CheckLevel(Level(17)); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("CheckLevel(17) error = %v, want ErrInvalidLevel", err)
	}
}
