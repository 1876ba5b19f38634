package journal

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "mediastore-journal-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM media_events`).Scan(&count); err != nil {
		t.Fatalf("media_events table missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, p := range []string{"public/a.png", "public/b.png", "public/c.png"} {
		if err := db.Record(ctx, Entry{Path: p, State: StatePresent}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := db.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Path != "public/c.png" || got[1].Path != "public/b.png" {
		t.Errorf("order = %q, %q; want newest first", got[0].Path, got[1].Path)
	}
	if got[0].At.IsZero() {
		t.Error("timestamp not stamped")
	}
}

func TestRecentEmpty(t *testing.T) {
	db := testDB(t)
	got, err := db.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestHookRecordsState(t *testing.T) {
	db := testDB(t)
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/repo/public/here.png", []byte("x"), 0o644)

	hook := db.Hook(fs, "/repo")
	ctx := context.Background()
	if err := hook(ctx, "public/here.png"); err != nil {
		t.Fatalf("hook: %v", err)
	}
	if err := hook(ctx, "public/gone.png"); err != nil {
		t.Fatalf("hook: %v", err)
	}

	got, _ := db.Recent(ctx, 10)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].State != StateAbsent {
		t.Errorf("gone.png state = %q, want absent", got[0].State)
	}
	if got[1].State != StatePresent {
		t.Errorf("here.png state = %q, want present", got[1].State)
	}
}
