// 指示: miu200521358
package retarget

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

// OFFSET_EPSILON はボーン根元が連鎖の末端と一致するとみなす距離。
const OFFSET_EPSILON = 1e-6

// BuildGraph はRigのボーン階層からスケルトングラフを構築し、単純化と頭ノード決定まで行う。
// 閉路を持つグラフはAllowCyclicが無ければエラーにする。
func BuildGraph(rig *model.Rig, opts Options) (*Graph, error) {
	if rig == nil || rig.Bones.Len() == 0 {
		name := ""
		if rig != nil {
			name = rig.Name
		}
		return nil, merr.NewEmptyRig(name)
	}

	g := newGraph(rig)
	children := rig.Bones.ChildrenMap()
	for _, root := range rig.Bones.Roots() {
		g.arcFromBoneChain(root, -1, children, opts.SelectedOnly)
	}
	if len(g.Arcs) == 0 {
		return nil, merr.NewEmptyRig(rig.Name)
	}

	g.simplify()
	g.indexBones()
	g.findHead()

	g.Cyclic = bgraph.IsCyclic(g)
	if g.Cyclic && !opts.AllowCyclic {
		return nil, merr.NewCyclicGraph(len(g.Arcs))
	}
	return g, nil
}

// arcFromBoneChain はstartから最初の子を辿ってアークを作る。
// 子が複数あるボーンでアークを閉じ、子ごとに新しい連鎖を始める。
func (g *Graph) arcFromBoneChain(start int, startNode int, children map[int][]int, selectedOnly bool) {
	bones := g.rig.Bones
	startBone, err := bones.Get(start)
	if err != nil {
		return
	}

	var arc *Arc
	var lastBone *model.Bone
	for current := start; current >= 0; {
		bone, err := bones.Get(current)
		if err != nil {
			break
		}

		if !selectedOnly || bone.IsSelected() {
			if bone.IsDeform() {
				if arc == nil {
					if startNode < 0 {
						startNode = g.addNode(startBone.Head)
					}
					arc = g.Arcs[g.addArc(startNode)]
				}
				end := g.Nodes[arc.Head].Position
				if len(arc.Edges) > 0 {
					end = arc.Edges[len(arc.Edges)-1].Tail
				}
				if bone.Head.Distance(end) > OFFSET_EPSILON {
					g.appendEdge(arc, bone.Head, nil)
				}
				g.appendEdge(arc, bone.Tail, bone)
				lastBone = bone
				if model.NormalizeBoneName(bone.Name) == model.HEAD_BONE_NAME {
					g.headBone = bone.Index
				}
			} else if !bone.IsLocked() {
				g.addControl(bone)
			}
		}

		kids := children[current]
		if len(kids) > 1 {
			endNode := g.addNode(bone.Tail)
			if arc != nil {
				arc.Tail = endNode
			}
			for _, child := range kids {
				g.arcFromBoneChain(child, endNode, children, selectedOnly)
			}
			return
		}
		current = -1
		if len(kids) == 1 {
			current = kids[0]
		}
	}

	if arc != nil {
		arc.Tail = g.addNode(lastBone.Tail)
	}
}

// indexBones は変形ボーンから所属アークへの対応を作る。
func (g *Graph) indexBones() {
	g.arcByBone = make(map[int]int, len(g.Arcs))
	for i, arc := range g.Arcs {
		for _, boneIndex := range arc.BoneIndexes() {
			g.arcByBone[boneIndex] = i
		}
	}
}

// findHead は頭ノードを決める。
// headボーンがあればその先端に近い端、単一アークなら始点、
// 末尾ボーンが選択されたアークがあればその終点、それ以外は最初のノード。
func (g *Graph) findHead() {
	g.Head = -1
	if g.headBone >= 0 {
		if arcIndex, ok := g.arcByBone[g.headBone]; ok {
			arc := g.Arcs[arcIndex]
			bone, _ := g.rig.Bones.Get(g.headBone)
			g.Head = arc.Tail
			if bone.Tail.Distance(g.Nodes[arc.Head].Position) < bone.Tail.Distance(g.Nodes[arc.Tail].Position) {
				g.Head = arc.Head
			}
			return
		}
	}

	if len(g.Arcs) == 1 {
		g.Head = g.Arcs[0].Head
		return
	}

	for _, arc := range g.Arcs {
		last := arc.Edges[len(arc.Edges)-1]
		if last.IsVirtual() {
			continue
		}
		bone, err := g.rig.Bones.Get(last.BoneIndex)
		if err == nil && bone.IsTipSelected() {
			g.Head = arc.Tail
			return
		}
	}

	if len(g.Nodes) > 0 {
		g.Head = 0
	}
}

// calculateArcs はアーク長、辺の角度、ねじれ角を計算し直す。
func (g *Graph) calculateArcs() {
	for _, arc := range g.Arcs {
		arc.Length = 0
		previousBone := -1
		for k, edge := range arc.Edges {
			edge.Length = edge.Direction().Length()
			arc.Length += edge.Length

			edge.Angle = 0
			if k+1 < len(arc.Edges) {
				edge.Angle = mmath.AngleBetween(edge.Direction(), arc.Edges[k+1].Direction())
			}

			edge.UpAngle = 0
			if edge.IsVirtual() {
				continue
			}
			if previousBone >= 0 {
				previous := arc.Edges[previousBone]
				transported := transportUp(previous.UpAxis, previous.Direction(), edge.Direction())
				edge.UpAngle = mmath.SignedAngleAround(transported, edge.UpAxis, edge.Direction())
			}
			previousBone = k
		}
	}
}
