package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestPending(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_b.sql":   {Data: []byte("SELECT 2;")},
		"migrations/001_a.sql":   {Data: []byte("SELECT 1;")},
		"migrations/003_c.sql":   {Data: []byte("SELECT 3;")},
		"migrations/README.md":   {Data: []byte("docs")},
		"migrations/004_d.sql.x": {Data: []byte("nope")},
	}
	got, err := Pending(fsys, "migrations", []string{"002_b.sql"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"001_a.sql", "003_c.sql"}, got); diff != "" {
		t.Errorf("pending (-want +got):\n%s", diff)
	}

	if _, err := Pending(fsys, "missing", nil); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestStatements(t *testing.T) {
	content := `-- photosheets
CREATE TABLE a (
    id INT
);

CREATE INDEX idx ON a (id);
-- trailing comment
`
	want := []string{
		"CREATE TABLE a (\n    id INT\n);",
		"CREATE INDEX idx ON a (id);",
	}
	if diff := cmp.Diff(want, Statements(content)); diff != "" {
		t.Errorf("statements (-want +got):\n%s", diff)
	}
	if got := Statements("  \n-- only comments\n"); len(got) != 0 {
		t.Errorf("expected no statements, got %q", got)
	}
}
