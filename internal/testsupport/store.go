package testsupport

import (
	"context"
	"testing"

	"idmend/internal/config"
	"idmend/internal/geodb"
)

// MustOpenStore opens the workspace named by cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *geodb.Store {
	t.Helper()

	store, err := geodb.Open(context.Background(), geodb.Workspace{
		Driver: cfg.Dataset.Driver,
		DSN:    cfg.Dataset.Workspace,
	})
	if err != nil {
		t.Fatalf("geodb.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustFeatureClass resolves the feature class named by cfg.
func MustFeatureClass(t testing.TB, store *geodb.Store, cfg *config.Config) *geodb.FeatureClass {
	t.Helper()

	fc, err := store.FeatureClass(context.Background(), geodb.Ref{
		Name:     cfg.Dataset.FeatureClass,
		OIDField: cfg.Dataset.OIDField,
		IDField:  cfg.Dataset.IDField,
	})
	if err != nil {
		t.Fatalf("FeatureClass: %v", err)
	}
	return fc
}
