// 指示: miu200521358
package minteractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model/skel"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"github.com/miu200521358/mu_retarget/pkg/usecase/retarget"
)

type progressRecorder struct {
	events []RetargetProgressEvent
}

func (r *progressRecorder) ReportRetargetProgress(event RetargetProgressEvent) {
	r.events = append(r.events, event)
}

func (r *progressRecorder) types() []RetargetProgressEventType {
	types := make([]RetargetProgressEventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}

// writeUsecaseInputs は1本のボーンを持つリグと、その2倍の長さのメッシュスケルトンを書き出す。
func writeUsecaseInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	rigPath := filepath.Join(dir, "arm.yaml")
	meshPath := filepath.Join(dir, "body.yaml")
	files := map[string]string{
		rigPath: `
name: arm
bones:
  - {name: arm, head: [0, 0, 0], tail: [0, 1, 0]}
`,
		meshPath: `
name: body
levels:
  - head: 0
    nodes:
      - {position: [0, 0, 0]}
      - {position: [0, 2, 0]}
    arcs:
      - head: 0
        tail: 1
        buckets:
          - {position: [0, 0.5, 0]}
          - {position: [0, 1, 0]}
          - {position: [0, 1.5, 0]}
`,
	}
	for path, body := range files {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s failed: %v", path, err)
		}
	}
	return rigPath, meshPath
}

func newTestUsecase() *RetargetUsecase {
	return NewRetargetUsecase(RetargetUsecaseDeps{
		RigReader:  skel.NewRigRepository(),
		RigWriter:  skel.NewRigRepository(),
		MeshReader: skel.NewMeshRepository(),
	})
}

func TestRetargetUsecaseRetargetSavesRig(t *testing.T) {
	dir := t.TempDir()
	rigPath, meshPath := writeUsecaseInputs(t, dir)
	templatePath := filepath.Join(dir, "ik_template.yaml")
	if err := os.WriteFile(templatePath, []byte(`
bones:
  - {name: "ik_&S", head: [0, 1, 0], tail: [0, 1.5, 0], flags: [no_deform]}
`), 0o644); err != nil {
		t.Fatalf("write template failed: %v", err)
	}

	recorder := &progressRecorder{}
	result, err := newTestUsecase().Retarget(context.Background(), RetargetRequest{
		RigPath:          rigPath,
		MeshPath:         meshPath,
		TemplatePath:     templatePath,
		TemplateParent:   "arm",
		Side:             "L",
		Options:          retarget.DefaultOptions(),
		ProgressReporter: recorder,
	})
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	wantPath := filepath.Join(dir, "arm_retarget.yaml")
	if result.OutputPath != wantPath {
		t.Fatalf("output path mismatch: got=%s want=%s", result.OutputPath, wantPath)
	}
	if result.ClonedBones != 1 || len(result.Report.Warnings) != 0 {
		t.Fatalf("result mismatch: cloned=%d warnings=%+v", result.ClonedBones, result.Report.Warnings)
	}

	saved, err := skel.NewRigRepository().Load(wantPath)
	if err != nil {
		t.Fatalf("saved rig should load: %v", err)
	}
	arm, _ := saved.Bones.GetByName("arm")
	if !arm.Tail.NearEquals(mmath.NewVec3(0, 2, 0), 1e-9) {
		t.Fatalf("arm should follow the mesh: %v", arm.Tail)
	}
	ik, err := saved.Bones.GetByName("ik_L")
	if err != nil {
		t.Fatalf("template bone missing: %v", err)
	}
	if !ik.Head.NearEquals(mmath.NewVec3(0, 2, 0), 1e-9) || !ik.Tail.NearEquals(mmath.NewVec3(0, 3, 0), 1e-9) {
		t.Fatalf("template control should follow the arm: head=%v tail=%v", ik.Head, ik.Tail)
	}

	want := []RetargetProgressEventType{
		RetargetProgressEventTypeOutputPathResolved,
		RetargetProgressEventTypeInputValidated,
		RetargetProgressEventTypeRigLoaded,
		RetargetProgressEventTypeMeshLoaded,
		RetargetProgressEventTypeTemplateCloned,
		RetargetProgressEventTypeRetargeted,
		RetargetProgressEventTypeSaved,
	}
	got := recorder.types()
	if len(got) != len(want) {
		t.Fatalf("progress events mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress event %d mismatch: got=%s want=%s", i, got[i], want[i])
		}
	}
}

func TestRetargetUsecasePrepareDoesNotSave(t *testing.T) {
	dir := t.TempDir()
	rigPath, meshPath := writeUsecaseInputs(t, dir)

	result, err := newTestUsecase().PrepareRetarget(context.Background(), RetargetRequest{
		RigPath:  rigPath,
		MeshPath: meshPath,
		Options:  retarget.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if result.Report.CountOutcome(retarget.ARC_OUTCOME_RETARGETED) != 1 {
		t.Fatalf("arc should be retargeted: %+v", result.Report.Arcs)
	}
	if result.OutputPath != "" {
		t.Fatalf("prepare should not resolve output: %s", result.OutputPath)
	}
	if _, err := os.Stat(filepath.Join(dir, "arm_retarget.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("rig should not be saved in prepare phase: %v", err)
	}
}

func TestRetargetUsecaseValidatesRequest(t *testing.T) {
	dir := t.TempDir()
	rigPath, meshPath := writeUsecaseInputs(t, dir)
	uc := newTestUsecase()

	if _, err := uc.PrepareRetarget(context.Background(), RetargetRequest{MeshPath: meshPath}); err == nil {
		t.Fatalf("missing rig should fail")
	}
	if _, err := uc.PrepareRetarget(context.Background(), RetargetRequest{RigPath: rigPath}); err == nil {
		t.Fatalf("missing mesh should fail")
	}
	_, err := uc.Retarget(context.Background(), RetargetRequest{
		RigPath:    rigPath,
		MeshPath:   meshPath,
		OutputPath: filepath.Join(dir, "arm.pmx"),
	})
	if !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("unsupported output ext should fail: %v", err)
	}
	opts := retarget.DefaultOptions()
	opts.AngleWeight = -1
	if _, err := uc.PrepareRetarget(context.Background(), RetargetRequest{
		RigPath:  rigPath,
		MeshPath: meshPath,
		Options:  opts,
	}); !errors.Is(err, merr.ErrInvalidConfig) {
		t.Fatalf("invalid options should fail: %v", err)
	}
	if _, err := uc.LoadMesh(nil, filepath.Join(dir, "body.obj")); !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("unsupported mesh ext should fail: %v", err)
	}
}

func TestRetargetUsecaseWithoutRepositories(t *testing.T) {
	uc := NewRetargetUsecase(RetargetUsecaseDeps{})
	if _, err := uc.LoadRig(nil, "arm.yaml"); err == nil {
		t.Fatalf("missing reader should fail")
	}
	if err := uc.SaveRig(nil, "arm.yaml", nil); err == nil {
		t.Fatalf("missing writer should fail")
	}
}

func TestBuildDefaultOutputPath(t *testing.T) {
	if got := BuildDefaultOutputPath(filepath.Join("rigs", "arm.jsonc")); got != filepath.Join("rigs", "arm_retarget.jsonc") {
		t.Fatalf("default output mismatch: %s", got)
	}
	if got := BuildDefaultOutputPath(""); got != "" {
		t.Fatalf("empty input should give empty output: %s", got)
	}
}

func TestResolveOutputPathFallsBackToSavableExt(t *testing.T) {
	uc := newTestUsecase()
	got, err := uc.resolveOutputPath(filepath.Join("avatars", "avatar.vrm"), "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if want := filepath.Join("avatars", "avatar_retarget"+DEFAULT_OUTPUT_EXT); got != want {
		t.Fatalf("fallback output mismatch: got=%s want=%s", got, want)
	}
	if _, err := uc.resolveOutputPath("avatar.vrm", "avatar.vrm"); !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("explicit unsavable output should fail: %v", err)
	}
}
