// 指示: miu200521358
package mconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

func writeConfigFile(t *testing.T, name string, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestLoadYaml(t *testing.T) {
	path := writeConfigFile(t, "retarget.yaml", `
retarget:
  angle_weight: 2
  roll_mode: joint
  threads: 3
  allow_cyclic: true
log:
  level: debug
  verbose: [graph, solve]
`)
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Retarget.AngleWeight != 2 || cfg.Retarget.LengthWeight != 1 {
		t.Fatalf("weights mismatch: %+v", cfg.Retarget)
	}
	if cfg.Retarget.RollMode != "joint" || cfg.Retarget.Threads != 3 || !cfg.Retarget.AllowCyclic {
		t.Fatalf("retarget config mismatch: %+v", cfg.Retarget)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	opts := cfg.Log.LoggerOptions(nil)
	if opts.Level != logging.LOG_LEVEL_DEBUG || len(opts.Verbose) != 2 {
		t.Fatalf("logger options mismatch: %+v", opts)
	}
	if cfg.Path != path {
		t.Fatalf("path mismatch: %s", cfg.Path)
	}
}

func TestLoadToml(t *testing.T) {
	path := writeConfigFile(t, "retarget.toml", `
[retarget]
mode_policy = "length"
symmetry_limit = 0.25

[log]
file = "retarget.log"
max_size_mb = 5
`)
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Retarget.ModePolicy != "length" || cfg.Retarget.SymmetryLimit != 0.25 {
		t.Fatalf("retarget config mismatch: %+v", cfg.Retarget)
	}
	if cfg.Log.File != "retarget.log" || cfg.Log.MaxSizeMB != 5 {
		t.Fatalf("log config mismatch: %+v", cfg.Log)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	cfg := Default()
	if err := cfg.loadFile("retarget.ini"); !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("ext should be rejected: %v", err)
	}
	if err := cfg.loadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, merr.ErrIoFileNotFound) {
		t.Fatalf("missing file should fail: %v", err)
	}
	broken := writeConfigFile(t, "broken.yaml", "retarget:\n  unknown_key: 1\n")
	if err := cfg.loadFile(broken); !errors.Is(err, merr.ErrIoParseFailed) {
		t.Fatalf("unknown key should fail: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		ENV_THREADS:   "4",
		ENV_ROLL:      "none",
		ENV_MODE:      "auto",
		ENV_LOG_LEVEL: "warn",
	}
	cfg := Default()
	if err := cfg.ApplyEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}); err != nil {
		t.Fatalf("apply env failed: %v", err)
	}
	if cfg.Retarget.Threads != 4 || cfg.Retarget.RollMode != "none" || cfg.Retarget.ModePolicy != "auto" {
		t.Fatalf("env overrides mismatch: %+v", cfg.Retarget)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level mismatch: %s", cfg.Log.Level)
	}

	env[ENV_THREADS] = "many"
	if err := Default().ApplyEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}); !errors.Is(err, merr.ErrInvalidConfig) {
		t.Fatalf("non numeric threads should fail: %v", err)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Retarget.DistanceWeight = -1 },
		func(c *Config) { c.Retarget.SymmetryLimit = 0 },
		func(c *Config) { c.Retarget.Threads = -2 },
		func(c *Config) { c.Retarget.RollMode = "spin" },
		func(c *Config) { c.Retarget.ModePolicy = "greedy" },
		func(c *Config) { c.Log.Level = "trace" },
		func(c *Config) { c.Log.Verbose = []string{"mesh"} },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, merr.ErrInvalidConfig) {
			t.Fatalf("case %d should be rejected: %v", i, err)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default should be valid: %v", err)
	}
	if err := Default().ApplyEnv(noEnv); err != nil {
		t.Fatalf("empty env should be ignored: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeConfigFile(t, ".env", ENV_ROLL+"=joint\n")
	t.Setenv(ENV_ROLL, "")
	os.Unsetenv(ENV_ROLL)
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv failed: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Retarget.RollMode != "joint" {
		t.Fatalf("dotenv override mismatch: %s", cfg.Retarget.RollMode)
	}
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing dotenv should be ignored: %v", err)
	}
}
