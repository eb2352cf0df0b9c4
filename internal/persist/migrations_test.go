package persist

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationFS(t *testing.T) {
	fsys, err := migrationFS()
	if err != nil {
		t.Fatal(err)
	}
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"00001_create_levels.sql", "00002_create_level_runs.sql"}
	if len(names) != len(want) {
		t.Fatalf("migrations = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("migration %d = %s, want %s", i, names[i], n)
		}
		body, err := fs.ReadFile(fsys, n)
		if err != nil {
			t.Fatal(err)
		}
		s := string(body)
		if !strings.Contains(s, "-- +goose Up") || !strings.Contains(s, "-- +goose Down") {
			t.Errorf("%s lacks goose Up/Down annotations", n)
		}
	}
}
