package storageengine

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"SharpHSQL/dberror"
	checkpoint "SharpHSQL/storage_engine/checkpoint_manager"
	"SharpHSQL/storage_engine/wal_manager"

	"github.com/cockroachdb/errors"
)

// lineTarget is a database whose state is the list of statements applied
// to it.
type lineTarget struct {
	lines    []string
	finished int
}

func (t *lineTarget) ResetForReplay() { t.lines = nil }

func (t *lineTarget) FinishReplay() error {
	t.finished++
	return nil
}

func (t *lineTarget) Replay(l wal_manager.Line) error {
	t.lines = append(t.lines, l.SQL)
	return nil
}

func (t *lineTarget) WriteScript(w io.Writer, _ bool) error {
	for _, l := range t.lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (t *lineTarget) exec(l *Log, sql string) error {
	t.lines = append(t.lines, sql)
	return l.Write(0, sql)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WriteDelay = false
	return cfg
}

func openLog(t *testing.T, path string, cfg Config, target *lineTarget) *Log {
	t.Helper()
	l := NewLog(path, cfg)
	if err := l.Open(target); err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	return l
}

// TestFreshDatabase checks a new database gets its properties and that the
// flag follows open and close.
func TestFreshDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	l := openLog(t, path, testConfig(), &lineTarget{})

	p := l.Properties()
	if p.Modified != checkpoint.ModifiedYes {
		t.Errorf("Modified mismatch while open: got %s", p.Modified)
	}
	if p.DatabaseID == "" || p.LogFile != "test.script" || p.DataFile != "test.data" {
		t.Errorf("Unexpected properties: %+v", p)
	}
	if err := l.Close(false); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if l.Properties().Modified != checkpoint.ModifiedNo {
		t.Errorf("Modified mismatch after close: got %s", l.Properties().Modified)
	}
	for _, ext := range []string{".properties", ".script", ".data", ".backup"} {
		if _, err := os.Stat(path + ext); err != nil {
			t.Errorf("Missing %s file: %v", ext, err)
		}
	}
}

// TestReplayAfterShutdown checks statements written since the last
// checkpoint come back after an immediate shutdown.
func TestReplayAfterShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	target := &lineTarget{}
	l := openLog(t, path, testConfig(), target)
	for _, s := range []string{"A", "B"} {
		if err := target.exec(l, s); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
	}
	if err := l.Checkpoint(); err != nil {
		t.Fatalf("Failed to checkpoint: %v", err)
	}
	if err := target.exec(l, "C"); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := l.Shutdown(); err != nil {
		t.Fatalf("Failed to shut down: %v", err)
	}

	again := &lineTarget{}
	l2 := openLog(t, path, testConfig(), again)
	defer l2.Close(false)
	if !slices.Equal(again.lines, []string{"A", "B", "C"}) {
		t.Errorf("Replayed lines mismatch: %v", again.lines)
	}
	if again.finished != 1 {
		t.Errorf("FinishReplay called %d times", again.finished)
	}
}

// TestAlreadyInUse checks a second open of a running database is refused.
func TestAlreadyInUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	l := openLog(t, path, testConfig(), &lineTarget{})
	defer l.Close(false)

	err := NewLog(path, testConfig()).Open(&lineTarget{})
	if !errors.Is(err, dberror.ErrAlreadyInUse) {
		t.Errorf("Expected already-in-use error, got %v", err)
	}
}

// TestCompressedBackup checks an xz backup restores and that a damaged one
// is refused.
func TestCompressedBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	cfg := testConfig()
	cfg.BackupCompression = CompressionXZ

	target := &lineTarget{}
	l := openLog(t, path, cfg, target)
	if err := target.exec(l, "A"); err != nil {
		t.Fatal(err)
	}
	if err := l.Checkpoint(); err != nil {
		t.Fatalf("Failed to checkpoint: %v", err)
	}
	if l.Properties().BackupChecksum == "" {
		t.Fatalf("Checkpoint left no checksum")
	}
	l.crash()

	again := &lineTarget{}
	l2 := openLog(t, path, cfg, again)
	if !slices.Equal(again.lines, []string{"A"}) {
		t.Errorf("Replayed lines mismatch: %v", again.lines)
	}
	l2.crash()

	if err := os.WriteFile(path+".backup", []byte("not xz"), 0644); err != nil {
		t.Fatal(err)
	}
	err := NewLog(path, cfg).Open(&lineTarget{})
	if !errors.Is(err, dberror.ErrCorrupted) {
		t.Errorf("Expected corruption error, got %v", err)
	}
}

// TestCrashBeforeRename stops a checkpoint after its new files are written
// and checks the next open completes it.
func TestCrashBeforeRename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	target := &lineTarget{}
	l := openLog(t, path, testConfig(), target)
	for _, s := range []string{"A", "B"} {
		if err := target.exec(l, s); err != nil {
			t.Fatal(err)
		}
	}

	stop := errors.New("power cut")
	l.beforeRename = func() error { return stop }
	if err := l.Checkpoint(); !errors.Is(err, stop) {
		t.Fatalf("Expected checkpoint to stop, got %v", err)
	}
	l.crash()

	if _, err := os.Stat(path + ".script.new"); err != nil {
		t.Fatalf("New script missing: %v", err)
	}

	again := &lineTarget{}
	l2 := openLog(t, path, testConfig(), again)
	defer l2.Close(false)
	if !slices.Equal(again.lines, []string{"A", "B"}) {
		t.Errorf("Replayed lines mismatch: %v", again.lines)
	}
	if _, err := os.Stat(path + ".script.new"); !os.IsNotExist(err) {
		t.Errorf("New script was not promoted")
	}
}
