package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/munscan/internal/model"
)

// setupTestDB creates a temporary database whose clock advances one second
// per check-in.
func setupTestDB(t *testing.T) *AttendanceDB {
	t.Helper()

	var mu sync.Mutex
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	opts := DefaultOptions()
	opts.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	db, err := Open(t.TempDir(), opts)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{EnableWAL: true})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("Open() error = %v, want ErrDatabaseNotFound", err)
		}
	})

	t.Run("CreateIfNotExists=false opens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := db.MarkAttendance(context.Background(), "D1", "desk"); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()
		present, err := db.IsPresent(context.Background(), "D1")
		if err != nil || !present {
			t.Errorf("IsPresent() = %v, %v; want true", present, err)
		}
	})
}

func TestMarkAttendance(t *testing.T) {
	t.Parallel()

	t.Run("first check-in wins", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		first, created, err := db.MarkAttendance(ctx, "D42", "desk-1")
		if err != nil {
			t.Fatalf("MarkAttendance() error = %v", err)
		}
		if !created {
			t.Error("expected first check-in to create a record")
		}

		second, created, err := db.MarkAttendance(ctx, "D42", "desk-2")
		if err != nil {
			t.Fatalf("MarkAttendance() error = %v", err)
		}
		if created {
			t.Error("expected repeat check-in to keep the existing record")
		}
		if second.ScannedBy != "desk-1" || !second.Timestamp.Equal(first.Timestamp) {
			t.Errorf("repeat returned %+v, want %+v", second, first)
		}
	})

	t.Run("concurrent check-ins store one record", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		var mu sync.Mutex
		createdCount := 0
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, created, err := db.MarkAttendance(ctx, "D7", "desk-"+string(rune('a'+i)))
				if err != nil {
					t.Errorf("MarkAttendance() error = %v", err)
					return
				}
				if created {
					mu.Lock()
					createdCount++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if createdCount != 1 {
			t.Errorf("created %d records, want 1", createdCount)
		}
	})

	tests := []struct {
		name      string
		id        model.DelegateID
		scannedBy string
		want      error
	}{
		{name: "rejects an empty delegate id", id: "  ", scannedBy: "desk", want: ErrEmptyDelegateID},
		{name: "rejects an empty scanner", id: "D1", scannedBy: " ", want: ErrEmptyScanner},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			db := setupTestDB(t)
			if _, _, err := db.MarkAttendance(context.Background(), tc.id, tc.scannedBy); !errors.Is(err, tc.want) {
				t.Errorf("MarkAttendance() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAttendanceQueries(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	for _, c := range []struct {
		id model.DelegateID
		by string
	}{{"D9", "desk-1"}, {"D1", "desk-2"}, {"D5", "desk-1"}} {
		if _, _, err := db.MarkAttendance(ctx, c.id, c.by); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := db.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalScanned != 3 {
		t.Errorf("TotalScanned = %d, want 3", summary.TotalScanned)
	}
	wantOrder := []model.DelegateID{"D9", "D1", "D5"}
	for i, id := range wantOrder {
		if summary.PresentDelegateIDs[i] != id {
			t.Errorf("PresentDelegateIDs = %v, want %v", summary.PresentDelegateIDs, wantOrder)
			break
		}
	}
	if summary.ScannedBy["desk-1"] != 2 || summary.ScannedBy["desk-2"] != 1 {
		t.Errorf("ScannedBy = %v", summary.ScannedBy)
	}

	rec, ok, err := db.Get(ctx, "D1")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if rec.ScannedBy != "desk-2" || rec.Timestamp.IsZero() {
		t.Errorf("Get() = %+v", rec)
	}

	if _, ok, err := db.Get(ctx, "nobody"); err != nil || ok {
		t.Errorf("Get(nobody) = %v, %v; want false, nil", ok, err)
	}

	removed, err := db.Remove(ctx, "D1")
	if err != nil || !removed {
		t.Errorf("Remove() = %v, %v; want true", removed, err)
	}
	removed, err = db.Remove(ctx, "D1")
	if err != nil || removed {
		t.Errorf("second Remove() = %v, %v; want false", removed, err)
	}

	n, err := db.Clear(ctx)
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v; want 2", n, err)
	}
	summary, err = db.Summary(ctx)
	if err != nil || summary.TotalScanned != 0 || len(summary.Records) != 0 {
		t.Errorf("Summary() after Clear = %+v, %v", summary, err)
	}
}
