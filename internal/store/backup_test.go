package store

import (
	"testing"
	"time"

	"github.com/larderhq/larder/internal/database"
)

func setupBackupTestDB(t *testing.T) *BackupStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBackupStore(db)
}

func TestBackupInsertAndList(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, err := bs.Insert("backups/larder-20260831.db.enc", 4096)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if b.ObjectKey != "backups/larder-20260831.db.enc" {
		t.Errorf("object key = %q", b.ObjectKey)
	}
	if b.SizeBytes != 4096 {
		t.Errorf("size = %d, want 4096", b.SizeBytes)
	}

	backups, err := bs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := setupBackupTestDB(t)

	bs.Insert("backups/old.db.enc", 100)
	bs.Insert("backups/new.db.enc", 200)

	// Nothing is older than a cutoff in the past.
	keys, err := bs.DeleteOlderThan(time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no pruned keys, got %v", keys)
	}

	// Everything is older than a cutoff in the future.
	keys, err = bs.DeleteOlderThan(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 pruned keys, got %v", keys)
	}

	backups, _ := bs.List()
	if len(backups) != 0 {
		t.Errorf("expected 0 backups after prune, got %d", len(backups))
	}
}
