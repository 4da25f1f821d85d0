// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output helpers used by search, policies, and ingest
package commands

import (
	"fmt"
	"time"

	"github.com/tripcortex/trip-cortex/internal/config"
	"github.com/tripcortex/trip-cortex/internal/storage"
)

// openStorage opens the chunk store at the configured path, falling back to
// the default XDG location
func openStorage(cfg *config.Config) (*storage.Storage, error) {
	if cfg.DBPath == "" {
		return storage.NewStorage()
	}
	return storage.NewStorageWithPath(cfg.DBPath)
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
