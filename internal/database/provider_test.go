package database

import (
	"context"
	"errors"
	"testing"
)

func TestGetHistoryWriter_NotInitialized(t *testing.T) {
	ResetForTesting()
	if IsInitialized() {
		t.Fatal("expected no backend after reset")
	}
	if _, err := GetHistoryWriter(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := GetHistoryReader(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if BackendName() != "" {
		t.Errorf("expected empty backend name, got %q", BackendName())
	}
}
