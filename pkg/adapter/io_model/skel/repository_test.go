// 指示: miu200521358
package skel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

func writeFile(t *testing.T, name string, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

const rigYaml = `
name: arm
bones:
  - name: lower
    parent: upper
    head: [0, 1, 0]
    tail: [0, 2, 0]
    flags: [connected]
  - name: upper
    head: [0, 0, 0]
    tail: [0, 1, 0]
    roll: 0.5
  - name: ik
    head: [0, 2, 0]
    tail: [0, 2.5, 0]
    flags: [no_deform]
constraints:
  - name: IK
    type: ik
    owner: lower
    targets:
      - subtarget: ik
`

func TestRigRepositoryLoadYaml(t *testing.T) {
	path := writeFile(t, "arm.yaml", rigYaml)
	repo := NewRigRepository()
	events := make([]LoadProgressEventType, 0)
	repo.SetLoadProgressReporter(func(event LoadProgressEvent) {
		events = append(events, event.Type)
	})

	rig, err := repo.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rig.Name != "arm" || rig.Bones.Len() != 3 {
		t.Fatalf("rig mismatch: name=%s bones=%d", rig.Name, rig.Bones.Len())
	}
	lower, _ := rig.Bones.GetByName("lower")
	upper, _ := rig.Bones.GetByName("upper")
	if lower.ParentIndex != upper.Index || !lower.IsConnected() {
		t.Fatalf("parent should resolve regardless of order: %+v", lower)
	}
	if upper.Roll != 0.5 {
		t.Fatalf("roll mismatch: %v", upper.Roll)
	}
	ik, _ := rig.Bones.GetByName("ik")
	if ik.IsDeform() {
		t.Fatalf("ik should be non-deform")
	}
	if len(rig.Constraints) != 1 || rig.Constraints[0].Type != model.CONSTRAINT_TYPE_IK {
		t.Fatalf("constraint mismatch: %+v", rig.Constraints)
	}
	if len(events) != 2 || events[1] != LoadProgressEventTypeCompleted {
		t.Fatalf("progress events mismatch: %v", events)
	}
}

func TestRigRepositoryRoundTrip(t *testing.T) {
	repo := NewRigRepository()
	rig, err := repo.Load(writeFile(t, "arm.yaml", rigYaml))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for _, name := range []string{"arm.json", "arm.yml"} {
		path := filepath.Join(t.TempDir(), "out", name)
		if err := repo.Save(path, rig); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
		loaded, err := repo.Load(path)
		if err != nil {
			t.Fatalf("reload %s failed: %v", name, err)
		}
		if loaded.Bones.Hash() != rig.Bones.Hash() {
			t.Fatalf("%s round trip should keep bones", name)
		}
		if len(loaded.Constraints) != 1 || loaded.Constraints[0].Targets[0].SubTarget != "ik" {
			t.Fatalf("%s constraints mismatch: %+v", name, loaded.Constraints)
		}
	}
}

func TestRigRepositoryLoadJsonc(t *testing.T) {
	path := writeFile(t, "tail.jsonc", `{
  // コメント付き
  "bones": [
    {"name": "root", "head": [0, 0, 0], "tail": [0, 1, 0]},
  ],
}`)
	rig, err := NewRigRepository().Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rig.Name != "tail" {
		t.Fatalf("name should come from the file name: %s", rig.Name)
	}
}

func TestRigRepositoryErrors(t *testing.T) {
	repo := NewRigRepository()
	if repo.CanLoad("arm.vrm") {
		t.Fatalf("vrm should not be loadable")
	}
	if _, err := repo.Load("arm.vrm"); !errors.Is(err, merr.ErrIoExtInvalid) {
		t.Fatalf("ext should be rejected: %v", err)
	}
	if _, err := repo.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, merr.ErrIoFileNotFound) {
		t.Fatalf("missing file should fail: %v", err)
	}
	unknownParent := writeFile(t, "bad.yaml", "bones:\n  - {name: a, parent: z, head: [0, 0, 0], tail: [0, 1, 0]}\n")
	if _, err := repo.Load(unknownParent); !errors.Is(err, merr.ErrIoParseFailed) || !errors.Is(err, merr.ErrNameNotFound) {
		t.Fatalf("unknown parent should fail: %v", err)
	}
	loop := writeFile(t, "loop.yaml", `
bones:
  - {name: a, parent: b, head: [0, 0, 0], tail: [0, 1, 0]}
  - {name: b, parent: a, head: [0, 1, 0], tail: [0, 2, 0]}
`)
	if _, err := repo.Load(loop); !errors.Is(err, merr.ErrIoParseFailed) {
		t.Fatalf("parent loop should fail: %v", err)
	}
	badFlag := writeFile(t, "flag.yaml", "bones:\n  - {name: a, head: [0, 0, 0], tail: [0, 1, 0], flags: [hidden]}\n")
	if _, err := repo.Load(badFlag); !errors.Is(err, merr.ErrIoParseFailed) {
		t.Fatalf("unknown flag should fail: %v", err)
	}
}

func newTestMesh() *reeb.MeshSkeleton {
	fine := reeb.NewLevel()
	a := fine.AddNode(mmath.NewVec3(0, 0, 0))
	b := fine.AddNode(mmath.NewVec3(0, 2, 0))
	fine.AddArc(a, b, []reeb.Bucket{{Position: mmath.NewVec3(0, 1, 0), Normal: mmath.NewVec3(0, 0, 1)}})

	coarse := reeb.NewLevel()
	c := coarse.AddNode(mmath.NewVec3(0, 0, 0))
	d := coarse.AddNode(mmath.NewVec3(0, 2, 0))
	coarse.AddArc(c, d, nil)
	coarse.Arcs[0].Symmetry = bgraph.ArcSymmetry{Level: 1, Flag: bgraph.SYMMETRY_FLAG_TOPOLOGICAL, Group: 1}

	fine.Nodes[a].LinkUp = c
	fine.Nodes[b].LinkUp = d
	coarse.Nodes[c].LinkDown = a
	coarse.Nodes[d].LinkDown = b
	fine.Arcs[0].LinkUp = 0
	return reeb.NewMeshSkeleton("body", fine, coarse)
}

func TestMeshRepositoryRoundTrip(t *testing.T) {
	repo := NewMeshRepository()
	mesh := newTestMesh()
	for _, name := range []string{"body.json", "body.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := repo.Save(path, mesh); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
		loaded, err := repo.Load(path)
		if err != nil {
			t.Fatalf("load %s failed: %v", name, err)
		}
		if loaded.Name != "body" || loaded.LevelCount() != 2 {
			t.Fatalf("%s mesh mismatch: %s %d", name, loaded.Name, loaded.LevelCount())
		}
		fine := loaded.Level(0)
		if fine.Nodes[1].LinkUp != 1 || fine.Arcs[0].LinkUp != 0 || loaded.Level(1).Nodes[0].LinkDown != 0 {
			t.Fatalf("%s links mismatch", name)
		}
		if fine.Nodes[0].LinkDown != reeb.NO_LINK {
			t.Fatalf("%s missing link should stay empty: %d", name, fine.Nodes[0].LinkDown)
		}
		if !fine.Arcs[0].Buckets[0].Normal.NearEquals(mmath.NewVec3(0, 0, 1), 1e-12) {
			t.Fatalf("%s bucket normal mismatch", name)
		}
		if loaded.Level(1).Arcs[0].Symmetry.Group != 1 || fine.HasSymmetry() {
			t.Fatalf("%s symmetry mismatch", name)
		}
		if len(fine.NodeArcs(0)) != 1 {
			t.Fatalf("%s adjacency should be rebuilt", name)
		}
	}
}

func TestMeshRepositoryRejectsBrokenReferences(t *testing.T) {
	repo := NewMeshRepository()
	outOfRange := writeFile(t, "broken.yaml", `
levels:
  - head: 0
    nodes:
      - {position: [0, 0, 0]}
    arcs:
      - {head: 0, tail: 3, buckets: []}
`)
	if _, err := repo.Load(outOfRange); !errors.Is(err, merr.ErrIoParseFailed) || !errors.Is(err, merr.ErrIndexOutOfRange) {
		t.Fatalf("out of range arc should fail: %v", err)
	}
	badLink := writeFile(t, "link.yaml", `
levels:
  - head: 0
    nodes:
      - {position: [0, 0, 0], link_up: 2}
    arcs: []
`)
	if _, err := repo.Load(badLink); !errors.Is(err, merr.ErrIoParseFailed) {
		t.Fatalf("dangling link should fail: %v", err)
	}
	empty := writeFile(t, "empty.json", `{"name": "empty", "levels": []}`)
	if _, err := repo.Load(empty); !errors.Is(err, merr.ErrNoMeshSkeleton) {
		t.Fatalf("empty mesh should fail: %v", err)
	}
}
