// 指示: miu200521358
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model/skel"
	"github.com/miu200521358/mu_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/infra/mconfig"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

// clearEnv は環境変数による上書きを無効にする。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		mconfig.ENV_THREADS,
		mconfig.ENV_ROLL,
		mconfig.ENV_MODE,
		mconfig.ENV_LOG_LEVEL,
		mconfig.ENV_CONFIG,
		mconfig.ENV_LANG,
	} {
		t.Setenv(key, "")
	}
}

// writeInputs は1本のボーンを持つリグと、その2倍の長さのメッシュスケルトンを書き出す。
func writeInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	rigPath := filepath.Join(dir, "arm.yaml")
	meshPath := filepath.Join(dir, "body.json")
	if err := os.WriteFile(rigPath, []byte(`
name: arm
bones:
  - {name: arm, head: [0, 0, 0], tail: [0, 1, 0]}
`), 0o644); err != nil {
		t.Fatalf("write rig failed: %v", err)
	}
	if err := os.WriteFile(meshPath, []byte(`{
  "name": "body",
  "levels": [{
    "head": 0,
    "nodes": [{"position": [0, 0, 0]}, {"position": [0, 2, 0]}],
    "arcs": [{
      "head": 0, "tail": 1,
      "buckets": [{"position": [0, 0.5, 0]}, {"position": [0, 1, 0]}, {"position": [0, 1.5, 0]}]
    }]
  }]
}`), 0o644); err != nil {
		t.Fatalf("write mesh failed: %v", err)
	}
	return rigPath, meshPath
}

func TestRunWithFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	rigPath, meshPath := writeInputs(t, dir)
	outputPath := filepath.Join(dir, "out", "arm.json")

	out := bytes.NewBuffer(nil)
	errOut := bytes.NewBuffer(nil)
	err := run([]string{
		"--rig", rigPath,
		"--mesh", meshPath,
		"--out", outputPath,
		"--threads", "1",
		"--lang", "en",
	}, out, errOut)
	if err != nil {
		t.Fatalf("run failed: %v (stderr=%s)", err, errOut.String())
	}

	for _, want := range []string{
		"[mu_retarget] loading: " + rigPath,
		"retargeted 1 / emergency 0 / unmatched 0",
		"moved bones: 1",
		"[mu_retarget] saved: " + outputPath,
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output should contain %q: %s", want, out.String())
		}
	}

	saved, err := skel.NewRigRepository().Load(outputPath)
	if err != nil {
		t.Fatalf("saved rig should load: %v", err)
	}
	arm, _ := saved.Bones.GetByName("arm")
	if !arm.Tail.NearEquals(mmath.NewVec3(0, 2, 0), 1e-9) {
		t.Fatalf("arm tail mismatch: %v", arm.Tail)
	}
}

func TestRunWithPositionals(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	rigPath, meshPath := writeInputs(t, dir)

	out := bytes.NewBuffer(nil)
	if err := run([]string{rigPath, meshPath}, out, bytes.NewBuffer(nil)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "arm_retarget.yaml")); err != nil {
		t.Fatalf("default output should exist: %v", err)
	}
	if !strings.Contains(out.String(), "移動ボーン: 1本") {
		t.Fatalf("japanese summary expected: %s", out.String())
	}
}

func TestRunRequiresInputs(t *testing.T) {
	clearEnv(t)
	err := run(nil, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if err == nil || !strings.Contains(err.Error(), "--rig") {
		t.Fatalf("missing rig should fail: %v", err)
	}
	err = run([]string{"arm.yaml"}, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if err == nil || !strings.Contains(err.Error(), "--mesh") {
		t.Fatalf("missing mesh should fail: %v", err)
	}
	if err := run([]string{"a", "b", "c", "d"}, bytes.NewBuffer(nil), bytes.NewBuffer(nil)); err == nil {
		t.Fatalf("too many positionals should fail")
	}
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	rigPath, meshPath := writeInputs(t, dir)

	err := run([]string{rigPath, meshPath, "--roll", "spin"}, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if !errors.Is(err, merr.ErrInvalidConfig) {
		t.Fatalf("unknown roll should fail: %v", err)
	}
	if !isUsageError(err) {
		t.Fatalf("invalid config should be a usage error")
	}

	err = run([]string{rigPath, meshPath, filepath.Join(dir, "arm.pmx")}, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("unsupported output ext should fail: %v", err)
	}
}

func TestRunUsesConfigFromEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	rigPath, meshPath := writeInputs(t, dir)
	configPath := filepath.Join(dir, "retarget.toml")
	if err := os.WriteFile(configPath, []byte(`
[retarget]
mode_policy = "length"
threads = 1

[log]
level = "debug"
no_color = true
`), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv(mconfig.ENV_CONFIG, configPath)

	errOut := bytes.NewBuffer(nil)
	if err := run([]string{rigPath, meshPath, "--mode", "bogus"}, bytes.NewBuffer(nil), errOut); !errors.Is(err, merr.ErrInvalidConfig) {
		t.Fatalf("flag should override config and fail validation: %v", err)
	}
	if err := run([]string{rigPath, meshPath}, bytes.NewBuffer(nil), errOut); err != nil {
		t.Fatalf("run with config failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "DEBUG") {
		t.Fatalf("debug log should be written: %s", errOut.String())
	}
}

func TestRetargetOptionsFromConfig(t *testing.T) {
	cfg := mconfig.Default().Retarget
	cfg.RollMode = "joint"
	cfg.ModePolicy = "length"
	cfg.Threads = 3
	opts := retargetOptions(cfg)
	if opts.RollMode != model.ROLL_MODE_JOINT || opts.ModePolicy != model.MODE_POLICY_LENGTH || opts.Threads != 3 {
		t.Fatalf("options mismatch: %+v", opts)
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("default config should give valid options: %v", err)
	}
}

func TestFailureMessageKey(t *testing.T) {
	saveErr := fmt.Errorf("save: %w", merr.NewIoSaveFailed("disk full", nil))
	if got := failureMessageKey(saveErr); got != messages.MessageSaveFailed {
		t.Fatalf("save failure key mismatch: %s", got)
	}
	if got := failureMessageKey(merr.NewIoParseFailed("broken", nil)); got != messages.MessageLoadFailed {
		t.Fatalf("load failure key mismatch: %s", got)
	}
	if got := failureMessageKey(merr.NewCyclicGraph(2)); got != messages.MessageRetargetFailed {
		t.Fatalf("retarget failure key mismatch: %s", got)
	}
}
