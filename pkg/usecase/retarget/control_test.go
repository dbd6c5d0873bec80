// 指示: miu200521358
package retarget

import (
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
)

// newIkRig は2本の腕ボーンとIKターゲット、ポール、FK制御ボーンを持つリグを生成する。
func newIkRig(t *testing.T) *model.Rig {
	rig := newRigFromBones(t, "arm", []testBone{
		{name: "upper", head: v3(0, 0, 0), tail: v3(0, 1, 0)},
		{name: "lower", parent: "upper", head: v3(0, 1, 0), tail: v3(0, 2, 0), connected: true},
		{name: "ik", head: v3(0, 2, 0), tail: v3(0, 2.5, 0), flag: model.BONE_FLAG_NO_DEFORM},
		{name: "ik_child", parent: "ik", head: v3(0, 2.5, 0), tail: v3(0, 3, 0), flag: model.BONE_FLAG_NO_DEFORM},
		{name: "pole", head: v3(1, 1, 0), tail: v3(1, 1.5, 0), flag: model.BONE_FLAG_NO_DEFORM},
		{name: "upper_fk", head: v3(0, 0, 0), tail: v3(0, 1, 0), flag: model.BONE_FLAG_NO_DEFORM},
	})
	rig.Constraints = append(rig.Constraints, &model.Constraint{
		Name:  "IK",
		Type:  model.CONSTRAINT_TYPE_IK,
		Owner: "lower",
		Targets: []model.ConstraintTarget{
			{SubTarget: "ik"},
			{Object: "arm", SubTarget: "pole"},
		},
	})
	return rig
}

func controlOf(t *testing.T, g *Graph, name string) *Control {
	t.Helper()
	bone, err := g.Rig().Bones.GetByName(name)
	if err != nil {
		t.Fatalf("bone %s missing: %v", name, err)
	}
	ctrl, ok := g.ControlOfBone(bone.Index)
	if !ok {
		t.Fatalf("bone %s should be a control", name)
	}
	return ctrl
}

func boneIndex(t *testing.T, rig *model.Rig, name string) int {
	t.Helper()
	bone, err := rig.Bones.GetByName(name)
	if err != nil {
		t.Fatalf("bone %s missing: %v", name, err)
	}
	return bone.Index
}

func TestBindControlsDirectLinks(t *testing.T) {
	rig := newIkRig(t)
	g, err := BuildGraph(rig, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	g.BindControls()

	ik := controlOf(t, g, "ik")
	if ik.Link != boneIndex(t, rig, "lower") {
		t.Fatalf("ik target should bind to the constraint owner: %d", ik.Link)
	}
	if !ik.Offset.NearEquals(v3(0, 1, 0), 1e-12) {
		t.Fatalf("ik offset mismatch: %v", ik.Offset)
	}

	pole := controlOf(t, g, "pole")
	if pole.Link != boneIndex(t, rig, "upper") {
		t.Fatalf("pole should bind to the owner's parent: %d", pole.Link)
	}

	fk := controlOf(t, g, "upper_fk")
	if fk.Link != boneIndex(t, rig, "upper") {
		t.Fatalf("fk should bind to the coincident bone: %d", fk.Link)
	}
	if fk.Flag&CONTROL_FLAG_FIT_BONE == 0 || fk.Flag&CONTROL_FLAG_FIT_ROOT == 0 {
		t.Fatalf("fk should fit the bone: %v", fk.Flag)
	}
}

func TestBindControlsPropagatesThroughControls(t *testing.T) {
	rig := newIkRig(t)
	g, err := BuildGraph(rig, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	g.BindControls()

	child := controlOf(t, g, "ik_child")
	if child.Link != boneIndex(t, rig, "ik") {
		t.Fatalf("child control should bind to its control parent: %d", child.Link)
	}
	for _, ctrl := range g.Controls {
		if !ctrl.IsBound() {
			t.Fatalf("control %d should be bound", ctrl.BoneIndex)
		}
		if ctrl.Owner() != 0 {
			t.Fatalf("control %d owner mismatch: %d", ctrl.BoneIndex, ctrl.Owner())
		}
	}
}

func TestBindControlsKeepsBetterFit(t *testing.T) {
	rig := newRigFromBones(t, "fit", []testBone{
		{name: "bone", head: v3(0, 0, 0), tail: v3(0, 1, 0)},
		{name: "ctrl", head: v3(0, 0, 0), tail: v3(0, 2, 0), flag: model.BONE_FLAG_NO_DEFORM},
	})
	g, err := BuildGraph(rig, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	ctrl := g.Controls[0]
	bone, _ := rig.Bones.Get(0)
	if !g.parentControl(ctrl, bone) {
		t.Fatalf("first link should be accepted")
	}
	if ctrl.Flag&controlFlagFit != CONTROL_FLAG_FIT_ROOT|CONTROL_FLAG_FIT_BONE {
		t.Fatalf("fit flag mismatch: %v", ctrl.Flag)
	}

	far := model.NewBone("far", v3(5, 0, 0), v3(5, 1, 0))
	far.Index = 7
	if g.parentControl(ctrl, far) {
		t.Fatalf("worse fit should be rejected")
	}
	if ctrl.Link != 0 {
		t.Fatalf("link should be kept: %d", ctrl.Link)
	}
}

func TestBindControlsPrefersDeformParentOverChild(t *testing.T) {
	rig := newRigFromBones(t, "between", []testBone{
		{name: "upper", head: v3(0, 0, 0), tail: v3(0, 1, 0)},
		{name: "ctrl", parent: "upper", head: v3(0.5, 0.5, 0), tail: v3(0.5, 1, 0), flag: model.BONE_FLAG_NO_DEFORM},
		{name: "lower", parent: "ctrl", head: v3(0.5, 1.5, 0), tail: v3(0.5, 2.5, 0)},
	})
	g, err := BuildGraph(rig, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	g.BindControls()

	ctrl := controlOf(t, g, "ctrl")
	if ctrl.Link != boneIndex(t, rig, "upper") {
		t.Fatalf("control should stay on its deform parent: %d", ctrl.Link)
	}
	if !ctrl.Offset.NearEquals(v3(0.5, 0.5, 0), 1e-9) {
		t.Fatalf("offset mismatch: %v", ctrl.Offset)
	}
}

func TestBindControlTails(t *testing.T) {
	rig := newRigFromBones(t, "tail", []testBone{
		{name: "arm", head: v3(0, 0, 0), tail: v3(0, 1, 0)},
		{name: "aim", parent: "arm", head: v3(1, 0, 0), tail: v3(0, 1, 0), flag: model.BONE_FLAG_NO_DEFORM},
	})
	g, err := BuildGraph(rig, DefaultOptions())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	g.BindControls()

	aim := controlOf(t, g, "aim")
	if aim.Link != 0 || aim.TailMode != CONTROL_TAIL_TAIL || aim.LinkTail != 0 {
		t.Fatalf("aim tail binding mismatch: link=%d mode=%v tail=%d", aim.Link, aim.TailMode, aim.LinkTail)
	}
}
