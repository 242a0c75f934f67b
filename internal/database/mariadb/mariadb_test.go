package mariadb

import (
	"strings"
	"testing"

	"github.com/kozaktomas/photo-sheet/internal/config"
)

func TestNormalizeDSN(t *testing.T) {
	got, err := normalizeDSN("photosheet:secret@tcp(db:3306)/photosheet")
	if err != nil {
		t.Fatalf("normalizeDSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Errorf("expected parseTime=true in %q", got)
	}
	if !strings.HasPrefix(got, "photosheet:secret@tcp(db:3306)/photosheet") {
		t.Errorf("credentials or address lost: %q", got)
	}

	if _, err := normalizeDSN("not a dsn"); err == nil {
		t.Error("expected an error for a malformed DSN")
	}
}

func TestNewPool_EmptyDSN(t *testing.T) {
	if _, err := NewPool(&config.MariaDBConfig{}); err == nil {
		t.Error("expected an error for an empty DSN")
	}
	if _, err := NewPool(nil); err == nil {
		t.Error("expected an error for a nil config")
	}
}

func TestOpenDB_AppliesPoolSizes(t *testing.T) {
	db, err := openDB(&config.MariaDBConfig{
		DSN:          "photosheet:secret@tcp(db:3306)/photosheet",
		MaxOpenConns: 7,
		MaxIdleConns: 3,
	})
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Errorf("expected 7 max open connections, got %d", got)
	}
}
