package store

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	t.Run("creates the schema", func(t *testing.T) {
		for _, table := range []string{"images", "tags", "image_tags"} {
			var count int
			err := db.QueryRow(
				"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).
				Scan(&count)
			if err != nil || count == 0 {
				t.Errorf("table %s missing after migration (err=%v)", table, err)
			}
		}
	})

	t.Run("enables foreign keys", func(t *testing.T) {
		var enabled int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("pragma query error = %v", err)
		}
		if enabled != 1 {
			t.Error("foreign_keys pragma is off")
		}
	})

	t.Run("migrating twice is a no-op", func(t *testing.T) {
		if err := Migrate(db); err != nil {
			t.Errorf("second Migrate() error = %v", err)
		}
	})
}

func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// The single-connection pool must keep every statement on the same
	// in-memory database.
	if _, err := db.Exec("INSERT INTO tags (name) VALUES ('probe')"); err != nil {
		t.Fatalf("insert error = %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
