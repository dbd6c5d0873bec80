// 指示: miu200521358
package retarget

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
)

// arcJob はアーク1本の配置計算とボーン書き込みを行う。
// 書き込むのは自アークのボーンと、担当する制御ボーンだけ。
type arcJob struct {
	graph    *Graph
	arcIndex int
	path     Path
	opts     Options
	moved    []int
	warnings []Warning
	report   ArcReport
}

func newArcJob(g *Graph, arcIndex int, path Path, opts Options) *arcJob {
	return &arcJob{
		graph:    g,
		arcIndex: arcIndex,
		path:     path,
		opts:     opts,
		moved:    make([]int, 0),
		warnings: make([]Warning, 0),
	}
}

// run は配置方式を選んで関節位置を求め、成功した場合だけボーンへ書き込む。
func (j *arcJob) run() ArcReport {
	arc := j.graph.Arcs[j.arcIndex]
	report := ArcReport{
		Arc:         j.arcIndex,
		Bones:       arc.BoneIndexes(),
		Outcome:     ARC_OUTCOME_RETARGETED,
		EdgeCount:   len(arc.Edges),
		SampleCount: j.path.SampleCount(),
		MeshArc:     arc.MeshArc,
	}
	if arc.Emergency {
		report.Outcome = ARC_OUTCOME_EMERGENCY
	}

	placement, ok := j.place(arc)
	if !ok {
		report.Outcome = ARC_OUTCOME_INSUFFICIENT_SAMPLES
		report.Mode = SelectMode(arc.Edges, j.path.SampleCount(), j.opts.ModePolicy)
		return report
	}
	report.Mode = placement.Mode
	report.Cost = placement.Cost

	j.apply(arc, placement)
	return report
}

// place は関節位置を求める。サンプル不足ならfalse、有限コストの配置が無ければ長さ比例へ切り替える。
func (j *arcJob) place(arc *Arc) (Placement, bool) {
	edges := arc.Edges
	if len(edges) == 1 {
		return SolveDirect(j.path), true
	}

	mode := SelectMode(edges, j.path.SampleCount(), j.opts.ModePolicy)
	if mode != ARC_MODE_AGGRESSIVE {
		return SolveLength(edges, j.path), true
	}

	weights := CostWeights{
		Angle:    j.opts.AngleWeight,
		Length:   j.opts.LengthWeight,
		Distance: j.opts.DistanceWeight,
	}
	placement, status := SolveAggressive(edges, j.path, weights)
	switch status {
	case SOLVE_STATUS_INSUFFICIENT_SAMPLES:
		j.warn(model.RetargetWarningInsufficientSamples,
			"アーク%dは関節%d個に対してサンプルが%d個しかないため変更しません",
			j.arcIndex, len(edges)-1, j.path.SampleCount())
		return Placement{}, false
	case SOLVE_STATUS_INFEASIBLE:
		logRetargetDebug("アーク%dは有限コストの配置が無いため長さ比例で配置します", j.arcIndex)
		return SolveLength(edges, j.path), true
	}
	return placement, true
}

func (j *arcJob) warn(id string, format string, params ...any) {
	j.warnings = append(j.warnings, Warning{ID: id, Arc: j.arcIndex, Message: fmt.Sprintf(format, params...)})
	logRetargetWarn(format, params...)
}

// apply は関節位置に従って辺ごとにボーンを書き込む。
func (j *arcJob) apply(arc *Arc, placement Placement) {
	var previous *edgeFrame
	for k, edge := range arc.Edges {
		head := placement.Joints[k].Position
		tail := placement.Joints[k+1].Position
		aligned := placement.Joints[k+1].Normal
		if frame, ok := j.repositionEdge(edge, head, tail, aligned, previous); ok {
			previous = frame
		}
	}
}

// repositionEdge は1本の辺のボーンを移動、回転、ロール補正し、接続された制御ボーンを追従させる。
func (j *arcJob) repositionEdge(
	edge *Edge,
	head mmath.Vec3,
	tail mmath.Vec3,
	aligned mmath.Vec3,
	previous *edgeFrame,
) (*edgeFrame, bool) {
	if edge.IsVirtual() {
		return nil, false
	}
	bone, err := j.graph.rig.Bones.Get(edge.BoneIndex)
	if err != nil {
		return nil, false
	}

	oldDir := edge.Direction()
	newDir := tail.Subed(head)
	qrot := mmath.NewQuaternionBetween(oldDir, newDir)
	resize := 1.0
	if oldLength := oldDir.Length(); oldLength > mmath.EPSILON {
		resize = newDir.Length() / oldLength
	}

	if edge.Reversed {
		bone.Head, bone.Tail = tail, head
	} else {
		bone.Head, bone.Tail = head, tail
	}

	up, qroll := resolveUp(j.opts.RollMode, edge, newDir, qrot, aligned, previous)
	bone.Roll = mmath.RollToVector(bone.Direction(), up)
	qrot = qroll.Muled(qrot)
	j.moved = append(j.moved, bone.Index)

	for _, ctrl := range j.graph.controlsLinkedTo(bone.Index) {
		if ctrl.owner == j.arcIndex {
			j.repositionControl(ctrl, bone.Head, qrot, resize)
		}
	}
	for _, ctrl := range j.graph.controlsTailLinkedTo(bone.Index) {
		if ctrl.owner == j.arcIndex {
			j.repositionTailControl(ctrl)
		}
	}

	return &edgeFrame{direction: newDir, up: up}, true
}

// repositionControl は接続先の回転と伸縮で制御ボーンの根元を動かす。
// 先端接続が無ければ自身の長さも同じ比率で伸縮する。
func (j *arcJob) repositionControl(ctrl *Control, linkHead mmath.Vec3, qrot mmath.Quaternion, resize float64) {
	bone, err := j.graph.rig.Bones.Get(ctrl.BoneIndex)
	if err != nil {
		return
	}

	bone.Head = linkHead.Added(qrot.MulVec3(ctrl.Offset.MuledScalar(resize)))
	ctrl.qrot = qrot
	ctrl.Flag |= CONTROL_FLAG_HEAD_DONE

	if ctrl.TailMode == CONTROL_TAIL_NONE {
		bone.Tail = bone.Head.Added(qrot.MulVec3(ctrl.Tail.Subed(ctrl.Head).MuledScalar(resize)))
		ctrl.Flag |= CONTROL_FLAG_TAIL_DONE
	}
	j.moved = append(j.moved, bone.Index)

	j.finalizeControl(ctrl, resize)
}

// repositionTailControl は先端接続先の現在位置へ制御ボーンの先端を合わせる。
func (j *arcJob) repositionTailControl(ctrl *Control) {
	repositionTail(j.graph, ctrl)
	j.finalizeControl(ctrl, 1)
}

// finalizeControl は根元と先端が揃った制御ボーンのロールを決め、連なる制御ボーンへ伝える。
func (j *arcJob) finalizeControl(ctrl *Control, resize float64) {
	if ctrl.Flag&controlFlagDone != controlFlagDone {
		return
	}
	bone, err := j.graph.rig.Bones.Get(ctrl.BoneIndex)
	if err != nil {
		return
	}

	if ctrl.TailMode != CONTROL_TAIL_NONE {
		v1 := ctrl.qrot.MulVec3(ctrl.Tail.Subed(ctrl.Head))
		v2 := bone.Direction()
		ctrl.qrot = mmath.NewQuaternionBetween(v1, v2).Muled(ctrl.qrot)
		if length := v1.Length(); length > mmath.EPSILON {
			resize = v2.Length() / length
		}
	}
	bone.Roll = rollByQuat(bone.Direction(), ctrl.UpAxis, ctrl.qrot)

	for _, child := range j.graph.controlsLinkedTo(ctrl.BoneIndex) {
		if child.owner == ctrl.owner {
			j.repositionControl(child, bone.Head, ctrl.qrot, resize)
		}
	}
	for _, child := range j.graph.controlsTailLinkedTo(ctrl.BoneIndex) {
		if child.owner == ctrl.owner {
			j.repositionTailControl(child)
		}
	}
}

// repositionTail は制御ボーンの先端を接続先ボーンの根元か先端へ合わせる。
func repositionTail(g *Graph, ctrl *Control) {
	bone, err := g.rig.Bones.Get(ctrl.BoneIndex)
	if err != nil {
		return
	}
	link, err := g.rig.Bones.Get(ctrl.LinkTail)
	if err != nil {
		return
	}
	if ctrl.TailMode == CONTROL_TAIL_HEAD {
		bone.Tail = link.Head
	} else {
		bone.Tail = link.Tail
	}
	ctrl.Flag |= CONTROL_FLAG_TAIL_DONE
}

// resetControls は処理状態を初期化する。
func (g *Graph) resetControls() {
	for _, ctrl := range g.Controls {
		ctrl.Flag &^= controlFlagDone
		ctrl.qrot = mmath.NewQuaternion()
	}
}

// repositionDeferredControls は並列処理の後で、先端接続先が別アークだった制御ボーンを仕上げる。
// 仕上げで新たに揃う制御ボーンが無くなるまで繰り返す。
func (g *Graph) repositionDeferredControls(opts Options) []int {
	moved := make([]int, 0)
	for changed := true; changed; {
		changed = false
		for _, ctrl := range g.Controls {
			if ctrl.owner < 0 || ctrl.TailMode == CONTROL_TAIL_NONE {
				continue
			}
			if ctrl.Flag&CONTROL_FLAG_HEAD_DONE == 0 || ctrl.Flag&CONTROL_FLAG_TAIL_DONE != 0 {
				continue
			}
			job := newArcJob(g, ctrl.owner, Path{}, opts)
			job.repositionTailControl(ctrl)
			moved = append(moved, ctrl.BoneIndex)
			moved = append(moved, job.moved...)
			changed = true
		}
	}
	return moved
}

// reconcileConnected は親が動いた接続ボーンの根元を親の先端へ合わせ、動いたボーン一覧を返す。
// frozenのボーンは配置しなかったアークのものなので触らない。
func reconcileConnected(rig *model.Rig, moved []int, frozen map[int]struct{}) []int {
	movedSet := make(map[int]struct{}, len(moved))
	for _, index := range moved {
		movedSet[index] = struct{}{}
	}

	children := rig.Bones.ChildrenMap()
	queue := append([]int(nil), rig.Bones.Roots()...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		parent, err := rig.Bones.Get(current)
		if err != nil {
			continue
		}
		_, parentMoved := movedSet[current]
		for _, childIndex := range children[current] {
			child, err := rig.Bones.Get(childIndex)
			_, skipped := frozen[childIndex]
			if err == nil && parentMoved && !skipped && child.IsConnected() && !child.Head.NearEquals(parent.Tail, mmath.EPSILON) {
				child.Head = parent.Tail
				movedSet[childIndex] = struct{}{}
			}
			queue = append(queue, childIndex)
		}
	}

	result := make([]int, 0, len(movedSet))
	for index := range movedSet {
		result = append(result, index)
	}
	sort.Ints(result)
	return result
}
