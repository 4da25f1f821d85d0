// ABOUTME: Tests for shared CLI utility functions
package commands

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten..", 13, "exactly ten.."},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-48 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		if got := formatTime(tt.t); got != tt.want {
			t.Errorf("formatTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}

	old := now.Add(-30 * 24 * time.Hour)
	if got := formatTime(old); got != old.Format("2006-01-02") {
		t.Errorf("formatTime(old) = %q, want date format", got)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt(5, "limit"); err != nil {
		t.Errorf("positive value should pass: %v", err)
	}
	if err := validatePositiveInt(0, "limit"); err == nil {
		t.Error("zero should fail")
	}
	if err := validatePositiveInt(-1, "limit"); err == nil {
		t.Error("negative should fail")
	}
}
