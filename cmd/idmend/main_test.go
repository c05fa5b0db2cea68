package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"idmend/internal/config"
	"idmend/internal/runlock"
	"idmend/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, features []testsupport.Feature) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	t.Setenv("HOME", filepath.Join(testsupport.BaseDir(cfg), "home"))
	testsupport.WriteGeoPackage(t, cfg.Dataset.Workspace, testsupport.TableFor(cfg, "TEXT"), features)

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	flags = append(flags, "--log-format", "json", "--log-level", "warn")
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestFixCommandRewritesDuplicates(t *testing.T) {
	env := setupCLITestEnv(t, []testsupport.Feature{{OID: 1, ID: "10"}, {OID: 2, ID: "10"}, {OID: 3, ID: "7"}})

	out, _, err := runCLI(t, []string{"fix"}, env.configPath)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	requireContains(t, out, "Max identifier:  10")
	requireContains(t, out, "Updated 1 record (last identifier 11)")

	got := testsupport.ReadIDs(t, env.cfg.Dataset.Workspace, testsupport.HydrantTable())
	if diff := cmp.Diff(map[int64]string{1: "10", 2: "11", 3: "7"}, got); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	out, _, err = runCLI(t, []string{"fix"}, env.configPath)
	if err != nil {
		t.Fatalf("second fix: %v", err)
	}
	requireContains(t, out, "No duplicate identifiers found")
}

func TestFixDryRunLeavesDataUntouched(t *testing.T) {
	features := []testsupport.Feature{{OID: 1, ID: "1500"}}
	for oid := int64(2); oid <= 4; oid++ {
		features = append(features, testsupport.Feature{OID: oid, ID: "1500"})
	}
	env := setupCLITestEnv(t, features)

	out, _, err := runCLI(t, []string{"fix", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("fix --dry-run: %v", err)
	}
	requireContains(t, out, "Max identifier:  1,500")
	requireContains(t, out, "Dry run: 3 records would be updated (last identifier 1,503)")
	requireContains(t, out, "1501")

	got := testsupport.ReadIDs(t, env.cfg.Dataset.Workspace, testsupport.HydrantTable())
	for oid, v := range got {
		if v != "1500" {
			t.Fatalf("dry run changed oid %d to %q", oid, v)
		}
	}
}

func TestFixRefusesWhenLocked(t *testing.T) {
	env := setupCLITestEnv(t, []testsupport.Feature{{OID: 1, ID: "1"}, {OID: 2, ID: "1"}})

	lock, err := runlock.Acquire(env.cfg.Paths.StateDir, env.cfg.Dataset.Workspace, env.cfg.Dataset.FeatureClass)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"fix"}, env.configPath)
	if !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if got := testsupport.ReadIDs(t, env.cfg.Dataset.Workspace, testsupport.HydrantTable()); got[2] != "1" {
		t.Fatalf("locked run must not edit, got %v", got)
	}
}

func TestFixReportsRollback(t *testing.T) {
	env := setupCLITestEnv(t, []testsupport.Feature{{OID: 1, ID: "5"}, {OID: 2, ID: "5"}})
	testsupport.Exec(t, env.cfg.Dataset.Workspace, `CREATE TRIGGER hydrant_fail BEFORE UPDATE ON Hydrants
        BEGIN SELECT RAISE(ABORT, 'disk I/O error'); END`)

	out, _, err := runCLI(t, []string{"fix"}, env.configPath)
	if err == nil {
		t.Fatal("expected fix to fail")
	}
	requireContains(t, out, "Rewrite failed; no changes were saved")
	if got := testsupport.ReadIDs(t, env.cfg.Dataset.Workspace, testsupport.HydrantTable()); got[2] != "5" {
		t.Fatalf("expected rollback, got %v", got)
	}
}

func TestScanCommandListsGroups(t *testing.T) {
	env := setupCLITestEnv(t, []testsupport.Feature{
		{OID: 1, ID: "10"}, {OID: 2, ID: "10"}, {OID: 3, ID: "abc"}, {OID: 4, ID: "abc"}, {OID: 5, ID: "7"},
	})

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Duplicates:      2")
	requireContains(t, out, "Distinct values: 3")
	requireContains(t, out, "abc")
	requireContains(t, out, "Run `idmend fix` to reassign 2 records")

	got := testsupport.ReadIDs(t, env.cfg.Dataset.Workspace, testsupport.HydrantTable())
	if got[2] != "10" || got[4] != "abc" {
		t.Fatalf("scan must not edit, got %v", got)
	}
}

func TestLayersCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, []string{"layers"}, env.configPath)
	if err != nil {
		t.Fatalf("layers: %v", err)
	}
	requireContains(t, out, "Hydrants")
	requireContains(t, out, "POINT")
	requireContains(t, out, "4326")
}

func TestFixUnknownFeatureClass(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	env.cfg.Dataset.FeatureClass = "Valves"
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"fix"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "Valves") {
		t.Fatalf("expected missing feature class error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "HYDRANT_ID")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", env.configPath, "--log-level", "loud", "scan"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected invalid log level to be rejected")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "[OK] Hydrants (HYDRANT_ID text, row-id OBJECTID)")

	env.cfg.Dataset.IDField = "ASSET_ID"
	writeTestConfig(t, env.configPath, env.cfg)
	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail for a missing field")
	}
	requireContains(t, out, "[ERROR]")
}

func TestCommandContextBuildsLoggerOnce(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	configFlag := env.configPath
	var level, format string
	ctx := newCommandContext(&configFlag, &level, &format)

	first, err := ctx.logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	second, err := ctx.logger()
	if err != nil {
		t.Fatalf("second logger: %v", err)
	}
	if first != second {
		t.Fatal("expected the same logger on repeated calls")
	}
}
