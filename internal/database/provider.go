package database

import (
	"context"
	"errors"
	"sync"
)

// ErrNotInitialized is returned when no history backend has been registered.
var ErrNotInitialized = errors.New("history backend not initialized")

var (
	providerMu    sync.RWMutex
	historyWriter func() HistoryWriter
	backendName   string
)

// RegisterHistoryBackend registers the constructor of the active history
// store. This is called by the backend packages to avoid import cycles.
func RegisterHistoryBackend(name string, writer func() HistoryWriter) {
	providerMu.Lock()
	defer providerMu.Unlock()
	backendName = name
	historyWriter = writer
}

// IsInitialized returns whether a history backend has been registered.
func IsInitialized() bool {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return historyWriter != nil
}

// BackendName returns the name of the registered backend, or "" if none.
func BackendName() string {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return backendName
}

// GetHistoryWriter returns a HistoryWriter from the registered backend
func GetHistoryWriter(ctx context.Context) (HistoryWriter, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if historyWriter == nil {
		return nil, ErrNotInitialized
	}
	return historyWriter(), nil
}

// GetHistoryReader returns a HistoryReader from the registered backend
func GetHistoryReader(ctx context.Context) (HistoryReader, error) {
	w, err := GetHistoryWriter(ctx)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ResetForTesting clears the registered backend.
func ResetForTesting() {
	providerMu.Lock()
	defer providerMu.Unlock()
	historyWriter = nil
	backendName = ""
}
