package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTmp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "build.db"))
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndLatest(t *testing.T) {
	c := openTmp(t)

	runID, err := c.RecordBuild("src1", "out1", "arena")
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	rec, err := c.Latest("src1", "arena")
	if err != nil {
		t.Fatalf("latest error: %v", err)
	}
	if rec.RunID != runID {
		t.Errorf("run ID = %q, want %q", rec.RunID, runID)
	}
	if rec.OutputHash != "out1" {
		t.Errorf("output hash = %q, want out1", rec.OutputHash)
	}
}

func TestLatestNotFound(t *testing.T) {
	c := openTmp(t)
	if _, err := c.Latest("missing", "arena"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLatestScopedByNamespace(t *testing.T) {
	c := openTmp(t)
	if _, err := c.RecordBuild("src1", "out1", "arena"); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if _, err := c.Latest("src1", "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for a different namespace", err)
	}
}

func TestPrune(t *testing.T) {
	c := openTmp(t)
	if _, err := c.RecordBuild("src1", "out1", "arena"); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := c.Prune(time.Hour); err != nil {
		t.Fatalf("prune error: %v", err)
	}
	if _, err := c.Latest("src1", "arena"); err != nil {
		t.Errorf("recent record pruned: %v", err)
	}
	if err := c.Prune(-time.Hour); err != nil {
		t.Fatalf("prune error: %v", err)
	}
	if _, err := c.Latest("src1", "arena"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound after pruning everything", err)
	}
}
