package postgres

import (
	"context"
	"testing"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database"
)

func TestInitialize_MissingURL(t *testing.T) {
	database.ResetForTesting()
	t.Cleanup(database.ResetForTesting)

	for _, cfg := range []*config.DatabaseConfig{nil, {}} {
		pool, applied, err := Initialize(context.Background(), cfg)
		if err == nil {
			t.Fatal("expected an error without a database URL")
		}
		if pool != nil || applied != nil {
			t.Errorf("expected no pool or migrations, got %v %v", pool, applied)
		}
	}
	if database.IsInitialized() {
		t.Error("backend registered despite failed initialization")
	}
}

func TestPoolClose_Unopened(t *testing.T) {
	if err := (&Pool{}).Close(); err != nil {
		t.Errorf("closing an unopened pool: %v", err)
	}
}
