package loop

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDocLock_AcquireRelease(t *testing.T) {
	dir := t.TempDir()
	lock := NewDocLock(dir)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, lockFileName))
	if err != nil {
		t.Fatalf("lock file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("lock file should contain the owning PID")
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFileName)); !os.IsNotExist(err) {
		t.Error("lock file should be removed after release")
	}
}

func TestDocLock_SecondAcquireFails(t *testing.T) {
	dir := t.TempDir()
	lock := NewDocLock(dir)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	// The lock file names this live process, so a second acquisition on the
	// same work directory must be refused.
	if err := NewDocLock(dir).Acquire(); err == nil {
		t.Fatal("second Acquire should fail while the lock is held")
	}
}

func TestDocLock_StaleLockReclaimed(t *testing.T) {
	dir := t.TempDir()
	// PID 99999999 is above the default pid_max, so no live process owns it.
	if err := os.WriteFile(filepath.Join(dir, lockFileName), []byte("99999999"), 0644); err != nil {
		t.Fatalf("write stale lock: %v", err)
	}

	lock := NewDocLock(dir)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("stale lock should be reclaimed: %v", err)
	}
	defer lock.Release()
}

func TestDocLock_InvalidContentReclaimed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, lockFileName), []byte("not a pid"), 0644); err != nil {
		t.Fatalf("write invalid lock: %v", err)
	}

	lock := NewDocLock(dir)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("invalid lock content should be treated as stale: %v", err)
	}
	defer lock.Release()
}

func TestDocLock_ReleaseIdempotent(t *testing.T) {
	lock := NewDocLock(t.TempDir())
	if err := lock.Release(); err != nil {
		t.Fatalf("Release on missing lock should be a no-op: %v", err)
	}
}

func TestDocLock_IsLocked(t *testing.T) {
	dir := t.TempDir()
	lock := NewDocLock(dir)

	locked, err := lock.IsLocked()
	if err != nil {
		t.Fatalf("IsLocked: %v", err)
	}
	if locked {
		t.Error("fresh directory should not be locked")
	}

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	locked, err = lock.IsLocked()
	if err != nil {
		t.Fatalf("IsLocked: %v", err)
	}
	if !locked {
		t.Error("should report locked while held by a live process")
	}

	lock.Release()
	locked, err = lock.IsLocked()
	if err != nil {
		t.Fatalf("IsLocked: %v", err)
	}
	if locked {
		t.Error("should report unlocked after release")
	}
}
