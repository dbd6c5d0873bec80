// 指示: miu200521358
package vrm

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

func TestVrmRepositoryCanLoad(t *testing.T) {
	repository := NewVrmRepository()

	if !repository.CanLoad("sample.vrm") || !repository.CanLoad("sample.VRM") || !repository.CanLoad("sample.glb") {
		t.Fatalf("expected vrm/glb to be loadable")
	}
	if repository.CanLoad("sample.pmx") {
		t.Fatalf("expected sample.pmx to be not loadable")
	}
	if got := repository.InferName("C:/work/avatar.vrm"); got != "avatar" {
		t.Fatalf("expected avatar, got %s", got)
	}
}

func TestVrmRepositoryLoadErrors(t *testing.T) {
	repository := NewVrmRepository()

	if _, err := repository.Load("sample.pmx"); !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("expected ext invalid, got %v", err)
	}
	if _, err := repository.Load(filepath.Join(t.TempDir(), "missing.vrm")); !errors.Is(err, merr.ErrIoFileNotFound) {
		t.Fatalf("expected file not found, got %v", err)
	}

	broken := filepath.Join(t.TempDir(), "broken.vrm")
	if err := os.WriteFile(broken, bytes.Repeat([]byte{0x01}, 32), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := repository.Load(broken); !errors.Is(err, merr.ErrIoParseFailed) {
		t.Fatalf("expected parse failed, got %v", err)
	}

	cyclic := filepath.Join(t.TempDir(), "cyclic.glb")
	writeGLBFileForTest(t, cyclic, map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "a", "children": []int{1}},
			map[string]any{"name": "b", "children": []int{0}},
		},
	})
	if _, err := repository.Load(cyclic); !errors.Is(err, merr.ErrIoParseFailed) {
		t.Fatalf("expected cyclic nodes to fail, got %v", err)
	}
}

func TestVrmRepositoryLoadVrm1Humanoid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.vrm")
	half := math.Sqrt(0.5)
	writeGLBFileForTest(t, path, map[string]any{
		"asset":          map[string]any{"version": "2.0", "generator": "test"},
		"extensionsUsed": []string{"VRMC_vrm"},
		"nodes": []any{
			map[string]any{"name": "Root", "children": []int{1, 3}},
			map[string]any{
				"name":        "J_Hips",
				"translation": []float64{0, 1, 0},
				"rotation":    []float64{0, 0, half, half},
				"children":    []int{2},
			},
			map[string]any{"name": "J_Spine", "translation": []float64{0, 0.5, 0}, "children": []int{4}},
			map[string]any{"name": "Body", "mesh": 0},
			map[string]any{"name": "J_Head", "translation": []float64{0, 0.3, 0}},
		},
		"skins": []any{map[string]any{"joints": []int{1, 2}}},
		"extensions": map[string]any{
			"VRMC_vrm": map[string]any{
				"humanoid": map[string]any{
					"humanBones": map[string]any{
						"hips":  map[string]any{"node": 1},
						"spine": map[string]any{"node": 2},
						"head":  map[string]any{"node": 4},
					},
				},
			},
		},
	})

	events := []LoadProgressEventType{}
	repository := NewVrmRepository()
	repository.SetLoadProgressReporter(func(event LoadProgressEvent) {
		events = append(events, event.Type)
	})
	rig, err := repository.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rig.Name != "avatar" || rig.Bones.Len() != 3 {
		t.Fatalf("rig mismatch: name=%s bones=%d", rig.Name, rig.Bones.Len())
	}
	if len(events) != 3 || events[2] != LoadProgressEventTypeCompleted {
		t.Fatalf("progress events mismatch: %v", events)
	}

	hips := mustBone(t, rig, "hips")
	spine := mustBone(t, rig, "spine")
	head := mustBone(t, rig, model.HEAD_BONE_NAME)
	if hips.HasParent() || spine.ParentIndex != hips.Index || head.ParentIndex != spine.Index {
		t.Fatalf("hierarchy mismatch: hips=%d spine=%d head=%d", hips.ParentIndex, spine.ParentIndex, head.ParentIndex)
	}
	assertVec(t, "hips head", hips.Head, mmath.NewVec3(0, 1, 0))
	assertVec(t, "hips tail", hips.Tail, mmath.NewVec3(-0.5, 1, 0))
	assertVec(t, "spine tail", spine.Tail, mmath.NewVec3(-0.8, 1, 0))
	assertVec(t, "head tail", head.Tail, mmath.NewVec3(-0.95, 1, 0))
	if !spine.IsConnected() || !head.IsConnected() || hips.IsConnected() {
		t.Fatalf("connected flags mismatch")
	}
}

func TestVrmRepositoryLoadVrm0WithoutSkin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.vrm")
	writeGLBFileForTest(t, path, map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "Armature", "children": []int{1}},
			map[string]any{"name": "Hips", "translation": []float64{0, 1, 0}, "children": []int{2}},
			map[string]any{"name": "Mesh", "mesh": 0},
		},
		"extensions": map[string]any{
			"VRM": map[string]any{
				"humanoid": map[string]any{
					"humanBones": []any{map[string]any{"bone": "hips", "node": 1}},
				},
			},
		},
	})

	rig, err := NewVrmRepository().Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rig.Bones.Len() != 2 {
		t.Fatalf("mesh node should not become a bone: %d", rig.Bones.Len())
	}
	armature := mustBone(t, rig, "Armature")
	hips := mustBone(t, rig, "hips")
	assertVec(t, "armature tail", armature.Tail, mmath.NewVec3(0, 1, 0))
	assertVec(t, "hips tail", hips.Tail, mmath.NewVec3(0, 1.5, 0))
}

func TestVrmRepositoryLoadMatrixAndDuplicateNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.glb")
	writeGLBFileForTest(t, path, map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "J"},
			map[string]any{"name": "J", "matrix": []float64{
				1, 0, 0, 0,
				0, 1, 0, 0,
				0, 0, 1, 0,
				1, 0, 0, 1,
			}},
			map[string]any{},
		},
	})

	rig, err := NewVrmRepository().Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	second := mustBone(t, rig, "J_2")
	assertVec(t, "matrix head", second.Head, mmath.NewVec3(1, 0, 0))
	assertVec(t, "root tail", second.Tail, mmath.NewVec3(1, rootTailLength, 0))
	mustBone(t, rig, "node_002")
}

func mustBone(t *testing.T, rig *model.Rig, name string) *model.Bone {
	t.Helper()
	bone, err := rig.Bones.GetByName(name)
	if err != nil {
		t.Fatalf("bone %s missing: %v", name, err)
	}
	return bone
}

func assertVec(t *testing.T, label string, got mmath.Vec3, want mmath.Vec3) {
	t.Helper()
	if !got.NearEquals(want, 1e-9) {
		t.Fatalf("%s mismatch: got=%v want=%v", label, got, want)
	}
}

func writeGLBFileForTest(t *testing.T, path string, doc map[string]any) {
	t.Helper()
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	padSize := (4 - (len(jsonBytes) % 4)) % 4
	if padSize > 0 {
		jsonBytes = append(jsonBytes, bytes.Repeat([]byte(" "), padSize)...)
	}
	totalLength := uint32(glbHeaderLength + glbChunkHeadSize + len(jsonBytes))

	var buf bytes.Buffer
	for _, value := range []uint32{glbMagic, 2, totalLength, uint32(len(jsonBytes)), glbJSONChunkType} {
		if err := binary.Write(&buf, binary.LittleEndian, value); err != nil {
			t.Fatalf("write header failed: %v", err)
		}
	}
	buf.Write(jsonBytes)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write glb failed: %v", err)
	}
}
