package engine

import (
	"context"
	"testing"

	macebridge "github.com/macebridge/mace-bridge"
)

// The runtime context is process-wide state, so these tests run sequentially
// and always drain the refcount they create.

func TestAcquireReleaseSymmetry(t *testing.T) {
	ctx := context.Background()
	t.Setenv(macebridge.EnvModulePath, "")
	t.Setenv(macebridge.EnvHome, "")

	const k = 3
	ctxs := make([]*Context, 0, k)
	for i := 0; i < k; i++ {
		c, err := Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
		ctxs = append(ctxs, c)
	}

	if got := Refcount(); got != k {
		t.Fatalf("Refcount = %d, want %d", got, k)
	}
	for i := 1; i < k; i++ {
		if ctxs[i] != ctxs[0] {
			t.Fatal("acquires returned different contexts")
		}
	}

	for i, c := range ctxs {
		if err := c.Release(ctx); err != nil {
			t.Fatalf("Release %d: %v", i, err)
		}
	}
	if got := Refcount(); got != 0 {
		t.Fatalf("Refcount after full release = %d, want 0", got)
	}

	// Idempotent re-acquisition from scratch.
	c, err := Acquire(ctx)
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	if err := c.Release(ctx); err != nil {
		t.Fatalf("re-Release: %v", err)
	}
}

func TestSearchPathAssembledOncePerLifetime(t *testing.T) {
	ctx := context.Background()
	dirA := t.TempDir()
	dirB := t.TempDir()
	t.Setenv(macebridge.EnvHome, "")
	t.Setenv(macebridge.EnvModulePath, dirA)

	c1, err := Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Environment changes between handles must not re-run the sanitizer.
	t.Setenv(macebridge.EnvModulePath, dirB)
	c2, err := Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}

	if contains(c2.SearchPath(), dirB) {
		t.Errorf("search path picked up %q while the runtime was live", dirB)
	}
	if !contains(c2.SearchPath(), dirA) {
		t.Errorf("search path lost %q: %v", dirA, c2.SearchPath())
	}

	if err := c1.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c2.Release(ctx); err != nil {
		t.Fatal(err)
	}

	// A teardown-then-reacquire cycle redoes the preparation.
	c3, err := Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after teardown: %v", err)
	}
	defer c3.Release(ctx)

	if !contains(c3.SearchPath(), dirB) {
		t.Errorf("search path not reassembled after teardown: %v", c3.SearchPath())
	}
}

func TestReleaseInactiveContext(t *testing.T) {
	ctx := context.Background()
	t.Setenv(macebridge.EnvModulePath, "")
	t.Setenv(macebridge.EnvHome, "")

	c, err := Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Release(ctx); err != nil {
		t.Fatal(err)
	}

	if err := c.Release(ctx); err == nil {
		t.Fatal("expected error releasing a torn-down context")
	}
}

func TestLoadForeignModuleNotFound(t *testing.T) {
	ctx := context.Background()
	t.Setenv(macebridge.EnvModulePath, t.TempDir())
	t.Setenv(macebridge.EnvHome, "")

	c, err := Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Release(ctx)

	if _, err := c.LoadForeignModule(ctx, macebridge.ModuleName); err == nil {
		t.Fatal("expected module resolution to fail in an empty search path")
	}
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
