package runlock_test

import (
	"errors"
	"strings"
	"testing"

	"idmend/internal/runlock"
)

func TestAcquireIsExclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := runlock.Acquire(dir, "/data/hydrants.gpkg", "Hydrants")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := runlock.Acquire(dir, "/data/hydrants.gpkg", "hydrants"); !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked for the same feature class, got %v", err)
	}

	other, err := runlock.Acquire(dir, "/data/hydrants.gpkg", "Valves")
	if err != nil {
		t.Fatalf("Acquire for another feature class: %v", err)
	}
	defer other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := runlock.Acquire(dir, "/data/hydrants.gpkg", "Hydrants")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	if again.Path() != first.Path() {
		t.Fatalf("expected stable lock path, got %q and %q", first.Path(), again.Path())
	}
	_ = again.Release()
}

func TestNameSanitizesFeatureClass(t *testing.T) {
	name := runlock.Name("host=db dbname=gis", "gis.Hydrants/Main")
	if !strings.HasPrefix(name, "gis.hydrants_main-") || !strings.HasSuffix(name, ".lock") {
		t.Fatalf("unexpected lock name %q", name)
	}
	if runlock.Name("a.gpkg", "Hydrants") == runlock.Name("b.gpkg", "Hydrants") {
		t.Fatal("expected workspaces to get distinct lock names")
	}
}

func TestReleaseNilLock(t *testing.T) {
	var l *runlock.Lock
	if err := l.Release(); err != nil {
		t.Fatalf("Release on nil lock: %v", err)
	}
}
