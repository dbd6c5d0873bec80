// 指示: miu200521358
package io_model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

func TestRigRepositoryDispatchesByExt(t *testing.T) {
	repository := NewRigRepository()

	for _, path := range []string{"arm.yaml", "arm.jsonc", "avatar.vrm", "avatar.glb"} {
		if !repository.CanLoad(path) {
			t.Fatalf("expected %s to be loadable", path)
		}
	}
	if repository.CanLoad("avatar.pmx") {
		t.Fatalf("expected pmx to be not loadable")
	}
	if repository.CanSave("avatar.vrm") || !repository.CanSave("arm.json") {
		t.Fatalf("only skel formats should be savable")
	}
	if got := repository.InferName(filepath.Join("work", "avatar.vrm")); got != "avatar" {
		t.Fatalf("infer name mismatch: %s", got)
	}
	if _, err := repository.Load("avatar.pmx"); !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("expected ext invalid, got %v", err)
	}
}

func TestRigRepositoryLoadsSkelRig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.yaml")
	if err := os.WriteFile(path, []byte(`
bones:
  - {name: arm, head: [0, 0, 0], tail: [0, 1, 0]}
`), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	repository := NewRigRepository()
	rig, err := repository.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	out := filepath.Join(t.TempDir(), "arm.json")
	if err := repository.Save(out, rig); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	reloaded, err := repository.Load(out)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Bones.Hash() != rig.Bones.Hash() {
		t.Fatalf("round trip should keep bones")
	}
}
