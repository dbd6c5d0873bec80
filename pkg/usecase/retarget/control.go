// 指示: miu200521358
package retarget

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
)

const (
	// CONTROL_FIT_EPSILON は根元一致と方向一致の判定に使う2乗距離。
	CONTROL_FIT_EPSILON = 0.0001
	// CONTROL_TAIL_EPSILON は先端接続の判定距離。
	CONTROL_TAIL_EPSILON = 0.01
)

// ControlTailMode は制御ボーン先端の接続先を表す。
type ControlTailMode int

const (
	// CONTROL_TAIL_NONE は先端接続無し。
	CONTROL_TAIL_NONE ControlTailMode = iota
	// CONTROL_TAIL_HEAD は接続ボーンの根元に先端を合わせる。
	CONTROL_TAIL_HEAD
	// CONTROL_TAIL_TAIL は接続ボーンの先端に先端を合わせる。
	CONTROL_TAIL_TAIL
)

// ControlFlag は制御ボーンの接続品質と処理状態を表す。
type ControlFlag int

const (
	// CONTROL_FLAG_FIT_ROOT は根元が接続先と一致。
	CONTROL_FLAG_FIT_ROOT ControlFlag = 1 << 0
	// CONTROL_FLAG_FIT_BONE は根元と方向が接続先と一致。
	CONTROL_FLAG_FIT_BONE ControlFlag = 1 << 1
	// CONTROL_FLAG_HEAD_DONE は根元を再配置済み。
	CONTROL_FLAG_HEAD_DONE ControlFlag = 1 << 2
	// CONTROL_FLAG_TAIL_DONE は先端を再配置済み。
	CONTROL_FLAG_TAIL_DONE ControlFlag = 1 << 3

	controlFlagDone = CONTROL_FLAG_HEAD_DONE | CONTROL_FLAG_TAIL_DONE
	controlFlagFit  = CONTROL_FLAG_FIT_ROOT | CONTROL_FLAG_FIT_BONE
)

// Control は変形しない制御ボーンを表す。
type Control struct {
	BoneIndex int
	Head      mmath.Vec3
	Tail      mmath.Vec3
	UpAxis    mmath.Vec3
	// Offset は接続ボーン根元から自身の根元への差分。
	Offset   mmath.Vec3
	TailMode ControlTailMode
	// Link は接続先ボーンindex。変形ボーンか接続済みの制御ボーン。
	Link     int
	LinkTail int
	Flag     ControlFlag

	owner int
	qrot  mmath.Quaternion
}

// IsBound は接続先を持つか判定する。
func (c *Control) IsBound() bool {
	return c.Link >= 0
}

// Owner は再配置を担当するアークindexを返す。
func (c *Control) Owner() int {
	return c.owner
}

func (g *Graph) addControl(bone *model.Bone) {
	g.controlByBone[bone.Index] = len(g.Controls)
	g.Controls = append(g.Controls, &Control{
		BoneIndex: bone.Index,
		Head:      bone.Head,
		Tail:      bone.Tail,
		UpAxis:    bone.UpAxis(),
		Link:      -1,
		LinkTail:  -1,
		owner:     -1,
	})
}

// isGraphBone はグラフのアークに含まれる変形ボーンか判定する。
func (g *Graph) isGraphBone(boneIndex int) bool {
	_, ok := g.arcByBone[boneIndex]
	return ok
}

// parentControl はlinkを接続先候補として評価し、採用したらtrueを返す。
// 一致度が低い候補は捨て、同じ一致度なら既存接続の親方向にある候補だけ採用する。
func (g *Graph) parentControl(ctrl *Control, link *model.Bone) bool {
	if link == nil {
		return false
	}

	offset := ctrl.Head.Subed(link.Head)
	flag := ControlFlag(0)
	if offset.LengthSqr() < CONTROL_FIT_EPSILON {
		flag |= CONTROL_FLAG_FIT_ROOT
		vbone := ctrl.Tail.Subed(ctrl.Head)
		vlink := link.Tail.Subed(link.Head)
		if vbone.Dot(vlink) > 0 && vbone.Cross(vlink).LengthSqr() < CONTROL_FIT_EPSILON {
			flag |= CONTROL_FLAG_FIT_BONE
		}
	}

	current := ctrl.Flag & controlFlagFit
	if flag < current {
		return false
	}
	if ctrl.IsBound() && flag == current && !g.rig.Bones.IsAncestor(link.Index, ctrl.Link) {
		return false
	}

	ctrl.Link = link.Index
	ctrl.Flag = (ctrl.Flag &^ controlFlagFit) | flag
	ctrl.Offset = offset
	return true
}

// BindControls は制御ボーンを変形ボーンへ接続する。
// 拘束、親子、位置一致から直接接続し、制御ボーン同士の連鎖を伝播させ、最後に先端接続を探す。
func (g *Graph) BindControls() {
	bones := g.rig.Bones
	children := bones.ChildrenMap()

	for _, ctrl := range g.Controls {
		bone, err := bones.Get(ctrl.BoneIndex)
		if err != nil {
			continue
		}

		found := false
		for _, link := range g.constraintLinks(bone) {
			if g.parentControl(ctrl, link) {
				found = true
			}
		}

		if !found {
			if parent, ok := bones.Parent(bone); ok && g.isGraphBone(parent.Index) {
				found = g.parentControl(ctrl, parent)
			}
			found = g.parentControl(ctrl, g.coincidentLink(ctrl)) || found
		}

		if !found {
			g.parentControl(ctrl, g.childLink(bone, children))
		}
	}

	g.propagateControls()
	g.bindControlTails()
	g.assignControlOwners()
}

// constraintLinks はbone を対象に取る拘束の持ち主から接続候補を返す。
// IKのポールターゲットは持ち主の親が変形ボーンならそちらを返す。
func (g *Graph) constraintLinks(bone *model.Bone) []*model.Bone {
	bones := g.rig.Bones
	name := model.NormalizeBoneName(bone.Name)
	links := make([]*model.Bone, 0)
	for _, constraint := range g.rig.Constraints {
		for ti, target := range constraint.Targets {
			if !g.rig.TargetsSelf(target) || model.NormalizeBoneName(target.SubTarget) != name {
				continue
			}
			owner, err := bones.GetByName(constraint.Owner)
			if err != nil || !g.isGraphBone(owner.Index) {
				continue
			}
			link := owner
			if constraint.IsPoleTarget(ti) {
				if parent, ok := bones.Parent(owner); ok && g.isGraphBone(parent.Index) {
					link = parent
				}
			}
			links = append(links, link)
		}
	}
	return links
}

// coincidentLink は根元か先端が一致する変形ボーンを、対称レベルの低いアーク優先で返す。
func (g *Graph) coincidentLink(ctrl *Control) *model.Bone {
	var link *model.Bone
	bestLevel := 0
	for _, arc := range g.Arcs {
		for _, edge := range arc.Edges {
			if edge.IsVirtual() {
				continue
			}
			bone, err := g.rig.Bones.Get(edge.BoneIndex)
			if err != nil {
				continue
			}
			fit := ctrl.Head.Distance(bone.Head) < CONTROL_FIT_EPSILON ||
				ctrl.Tail.Distance(bone.Tail) < CONTROL_FIT_EPSILON
			if fit && (link == nil || arc.Symmetry.Level < bestLevel) {
				link = bone
				bestLevel = arc.Symmetry.Level
			}
		}
	}
	return link
}

// childLink は親がboneである変形ボーンを、対称レベルの低いアーク優先で返す。
func (g *Graph) childLink(bone *model.Bone, children map[int][]int) *model.Bone {
	var link *model.Bone
	bestLevel := 0
	for _, child := range children[bone.Index] {
		arcIndex, ok := g.arcByBone[child]
		if !ok {
			continue
		}
		level := g.Arcs[arcIndex].Symmetry.Level
		if link == nil || level < bestLevel {
			link, _ = g.rig.Bones.Get(child)
			bestLevel = level
		}
	}
	return link
}

// propagateControls は未接続の制御ボーンを、接続済みの制御ボーン経由で接続する。
func (g *Graph) propagateControls() {
	bones := g.rig.Bones
	for changed := true; changed; {
		changed = false
		for _, ctrl := range g.Controls {
			if ctrl.IsBound() {
				continue
			}
			bone, err := bones.Get(ctrl.BoneIndex)
			if err != nil {
				continue
			}

			if link := g.constraintControlLink(bone); link != nil {
				if g.parentControl(ctrl, link) {
					changed = true
				}
				continue
			}

			if parentCtrl, ok := g.ControlOfBone(bone.ParentIndex); ok && parentCtrl.IsBound() {
				parent, _ := bones.Get(parentCtrl.BoneIndex)
				if g.parentControl(ctrl, parent) {
					changed = true
				}
				continue
			}

			for _, child := range g.Controls {
				childBone, err := bones.Get(child.BoneIndex)
				if err != nil || !child.IsBound() || childBone.ParentIndex != bone.Index {
					continue
				}
				if g.parentControl(ctrl, childBone) {
					changed = true
				}
				break
			}
		}
	}
}

// constraintControlLink はboneを対象に取る拘束を持つ接続済み制御ボーンを返す。
func (g *Graph) constraintControlLink(bone *model.Bone) *model.Bone {
	name := model.NormalizeBoneName(bone.Name)
	for _, constraint := range g.rig.Constraints {
		for _, target := range constraint.Targets {
			if !g.rig.TargetsSelf(target) || model.NormalizeBoneName(target.SubTarget) != name {
				continue
			}
			owner, err := g.rig.Bones.GetByName(constraint.Owner)
			if err != nil {
				continue
			}
			if ownerCtrl, ok := g.ControlOfBone(owner.Index); ok && ownerCtrl.IsBound() {
				return owner
			}
		}
	}
	return nil
}

// bindControlTails は方向まで一致していない制御ボーンの先端を、近傍の変形ボーン端点へ接続する。
func (g *Graph) bindControlTails() {
	for _, ctrl := range g.Controls {
		if ctrl.Flag&CONTROL_FLAG_FIT_BONE != 0 {
			continue
		}
		for _, bone := range g.rig.Bones.Values() {
			if !g.isGraphBone(bone.Index) || bone.ParentIndex == ctrl.BoneIndex {
				continue
			}
			if ctrl.Tail.Distance(bone.Head) < CONTROL_TAIL_EPSILON {
				ctrl.TailMode = CONTROL_TAIL_HEAD
				ctrl.LinkTail = bone.Index
				break
			}
			if ctrl.Tail.Distance(bone.Tail) < CONTROL_TAIL_EPSILON {
				ctrl.TailMode = CONTROL_TAIL_TAIL
				ctrl.LinkTail = bone.Index
				break
			}
		}
	}
}

// assignControlOwners は接続を変形ボーンまで辿り、再配置を担当するアークを決める。
func (g *Graph) assignControlOwners() {
	for _, ctrl := range g.Controls {
		ctrl.owner = -1
		current := ctrl.Link
		for steps := 0; current >= 0 && steps <= len(g.Controls); steps++ {
			if arc, ok := g.arcByBone[current]; ok {
				ctrl.owner = arc
				break
			}
			linked, ok := g.ControlOfBone(current)
			if !ok {
				break
			}
			current = linked.Link
		}
	}
}

// controlsLinkedTo はボーンへ根元接続された制御ボーンを返す。
func (g *Graph) controlsLinkedTo(boneIndex int) []*Control {
	linked := make([]*Control, 0)
	for _, ctrl := range g.Controls {
		if ctrl.Link == boneIndex {
			linked = append(linked, ctrl)
		}
	}
	return linked
}

// controlsTailLinkedTo はボーンへ先端接続された制御ボーンを返す。
func (g *Graph) controlsTailLinkedTo(boneIndex int) []*Control {
	linked := make([]*Control, 0)
	for _, ctrl := range g.Controls {
		if ctrl.LinkTail == boneIndex {
			linked = append(linked, ctrl)
		}
	}
	return linked
}
