package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lumeiq-app/lumeiq/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestNewChecker(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir(), true)
	if c == nil {
		t.Fatal("NewChecker() returned nil")
	}
	if len(c.checks) != 3 {
		t.Errorf("checks = %d, want 3", len(c.checks))
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir(), true)
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir(), true)

	// Before any run, there are no statuses — IsHealthy returns true (vacuously)
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_VisionUnconfigured(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir(), false)
	c.runAll(context.Background())

	found := false
	for _, s := range c.Statuses() {
		if s.Name == "vision" {
			found = true
			if s.Healthy {
				t.Error("vision check should report degraded without an API key")
			}
			if s.Error == "" {
				t.Error("vision check should explain the degradation")
			}
		}
	}
	if !found {
		t.Error("vision check not found in statuses")
	}
	if c.IsHealthy() {
		t.Error("IsHealthy() should be false with an unhealthy check")
	}
}

func TestChecker_DataDirMissing(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, filepath.Join(t.TempDir(), "nonexistent"), true)
	c.runAll(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "data_dir" && s.Healthy {
			t.Error("data_dir check should fail for a missing directory")
		}
	}
}

func TestChecker_DataDirIsFile(t *testing.T) {
	db := newTestDB(t)
	path := filepath.Join(t.TempDir(), "data")
	os.WriteFile(path, []byte("not a dir"), 0644)

	c := NewChecker(db, path, true)
	c.runAll(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "data_dir" && s.Healthy {
			t.Error("data_dir check should fail when path is a file")
		}
	}
}

func TestChecker_FailingCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{
				Name: "always_fail",
				CheckFn: func(ctx context.Context) error {
					return os.ErrPermission
				},
			},
		},
	}

	c.runAll(context.Background())

	statuses := c.Statuses()
	if statuses[0].Healthy {
		t.Error("always_fail check should not be healthy")
	}
	if statuses[0].Error == "" {
		t.Error("error message should be populated")
	}
}

func TestChecker_StatusesCopy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir(), true)
	c.runAll(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()

	// Verify it's a copy, not the same slice
	if len(s1) > 0 {
		s1[0].Healthy = false
		if !s2[0].Healthy {
			t.Error("Statuses() should return a copy, not a reference")
		}
	}
}
