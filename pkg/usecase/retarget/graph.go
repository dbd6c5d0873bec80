// 指示: miu200521358
// Package retarget はボーン階層をメッシュスケルトンへ合わせて再配置する。
package retarget

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
)

// VIRTUAL_EDGE は実ボーンを持たないオフセット辺のボーンindex。
const VIRTUAL_EDGE = -1

// Edge はアーク内の1ボーン、または親から離れた根元へのオフセットを表す。
// Head/Tailはアークの向きに揃えた座標で、Reversedならボーンの根元と先端が逆になる。
type Edge struct {
	BoneIndex int
	Head      mmath.Vec3
	Tail      mmath.Vec3
	Length    float64
	// Angle は次の辺とのなす角。末尾の辺は0。
	Angle float64
	// UpAxis はボーンのZ軸。
	UpAxis mmath.Vec3
	// UpAngle は前のボーン辺から輸送したZ軸と自身のZ軸の差。
	UpAngle  float64
	Reversed bool
}

// IsVirtual はオフセット辺か判定する。
func (e *Edge) IsVirtual() bool {
	return e.BoneIndex == VIRTUAL_EDGE
}

// Direction はアーク向きの方向ベクトルを返す。
func (e *Edge) Direction() mmath.Vec3 {
	return e.Tail.Subed(e.Head)
}

// reverse は辺の向きを反転する。
func (e *Edge) reverse() {
	e.Head, e.Tail = e.Tail, e.Head
	e.Reversed = !e.Reversed
}

// Node は分岐点、根、末端を表す。
type Node struct {
	Position mmath.Vec3
	Arcs     []int
	Symmetry bgraph.NodeSymmetry
	MeshNode reeb.NodeRef
	removed  bool
}

// Degree は接続アーク数を返す。
func (n *Node) Degree() int {
	return len(n.Arcs)
}

// Arc は分岐の無いボーン連鎖を表す。
type Arc struct {
	Head     int
	Tail     int
	Edges    []*Edge
	Length   float64
	Symmetry bgraph.ArcSymmetry
	// MeshArc は対応付いたメッシュ側アーク。
	MeshArc reeb.ArcRef
	// MeshFromHead はメッシュ側サンプルを始点側から辿るか。
	MeshFromHead bool
	Emergency    bool
	removed      bool
}

// IsMatched はメッシュ側アークと対応付いているか判定する。
func (a *Arc) IsMatched() bool {
	return a.MeshArc.IsValid()
}

// BoneIndexes は辺が持つボーンindexを返す。
func (a *Arc) BoneIndexes() []int {
	indexes := make([]int, 0, len(a.Edges))
	for _, edge := range a.Edges {
		if !edge.IsVirtual() {
			indexes = append(indexes, edge.BoneIndex)
		}
	}
	return indexes
}

// reverse はアークの向きを反転する。
func (a *Arc) reverse() {
	a.Head, a.Tail = a.Tail, a.Head
	for i, j := 0, len(a.Edges)-1; i < j; i, j = i+1, j-1 {
		a.Edges[i], a.Edges[j] = a.Edges[j], a.Edges[i]
	}
	for _, edge := range a.Edges {
		edge.reverse()
	}
}

// Graph はリグのボーン階層から作るスケルトングラフを表す。
type Graph struct {
	rig      *model.Rig
	Nodes    []*Node
	Arcs     []*Arc
	Controls []*Control
	Head     int
	Cyclic   bool

	// headBone は頭として指定されたボーンindex。
	headBone int
	// arcByBone は変形ボーンindexから所属アークindexへの対応。
	arcByBone map[int]int
	// controlByBone は制御ボーンindexからControls内indexへの対応。
	controlByBone map[int]int
}

func newGraph(rig *model.Rig) *Graph {
	return &Graph{
		rig:           rig,
		Nodes:         make([]*Node, 0),
		Arcs:          make([]*Arc, 0),
		Controls:      make([]*Control, 0),
		Head:          -1,
		headBone:      -1,
		arcByBone:     map[int]int{},
		controlByBone: map[int]int{},
	}
}

// Rig は元になったRigを返す。
func (g *Graph) Rig() *model.Rig {
	return g.rig
}

// ArcOfBone は変形ボーンが属するアークindexを返す。
func (g *Graph) ArcOfBone(boneIndex int) (int, bool) {
	arc, ok := g.arcByBone[boneIndex]
	return arc, ok
}

// ControlOfBone は制御ボーンのControlを返す。
func (g *Graph) ControlOfBone(boneIndex int) (*Control, bool) {
	index, ok := g.controlByBone[boneIndex]
	if !ok {
		return nil, false
	}
	return g.Controls[index], true
}

func (g *Graph) addNode(position mmath.Vec3) int {
	g.Nodes = append(g.Nodes, &Node{Position: position, MeshNode: reeb.NO_NODE})
	return len(g.Nodes) - 1
}

func (g *Graph) addArc(head int) int {
	g.Arcs = append(g.Arcs, &Arc{Head: head, Tail: -1, MeshArc: reeb.NO_ARC})
	return len(g.Arcs) - 1
}

// appendEdge はアーク末尾へ辺を追加する。根元は直前の辺の先端か始点ノード。
func (g *Graph) appendEdge(arc *Arc, tail mmath.Vec3, bone *model.Bone) {
	head := g.Nodes[arc.Head].Position
	if len(arc.Edges) > 0 {
		head = arc.Edges[len(arc.Edges)-1].Tail
	}
	edge := &Edge{
		BoneIndex: VIRTUAL_EDGE,
		Head:      head,
		Tail:      tail,
		Length:    tail.Distance(head),
	}
	if bone != nil {
		edge.BoneIndex = bone.Index
		edge.UpAxis = bone.UpAxis()
	}
	arc.Edges = append(arc.Edges, edge)
	arc.Length += edge.Length
}

// buildAdjacency はアーク両端からノードの接続リストを作り直す。
func (g *Graph) buildAdjacency() {
	for _, node := range g.Nodes {
		node.Arcs = node.Arcs[:0]
	}
	for i, arc := range g.Arcs {
		if arc.removed {
			continue
		}
		g.Nodes[arc.Head].Arcs = append(g.Nodes[arc.Head].Arcs, i)
		if arc.Tail != arc.Head {
			g.Nodes[arc.Tail].Arcs = append(g.Nodes[arc.Tail].Arcs, i)
		}
	}
}

func (g *Graph) NodeCount() int                   { return len(g.Nodes) }
func (g *Graph) ArcCount() int                    { return len(g.Arcs) }
func (g *Graph) NodePosition(node int) mmath.Vec3 { return g.Nodes[node].Position }
func (g *Graph) NodeArcs(node int) []int          { return g.Nodes[node].Arcs }

func (g *Graph) ArcNodes(arc int) (int, int) {
	return g.Arcs[arc].Head, g.Arcs[arc].Tail
}

// ArcWeight はリグ側では辺の数。
func (g *Graph) ArcWeight(arc int) int {
	return len(g.Arcs[arc].Edges)
}

func (g *Graph) ArcSymmetry(arc int) bgraph.ArcSymmetry {
	return g.Arcs[arc].Symmetry
}

func (g *Graph) SetArcSymmetry(arc int, symmetry bgraph.ArcSymmetry) {
	g.Arcs[arc].Symmetry = symmetry
}

func (g *Graph) NodeSymmetry(node int) bgraph.NodeSymmetry {
	return g.Nodes[node].Symmetry
}

func (g *Graph) SetNodeSymmetry(node int, symmetry bgraph.NodeSymmetry) {
	g.Nodes[node].Symmetry = symmetry
}

// AnalyzeSymmetry は頭ノードから対称情報を付ける。閉路を持つ場合は何もしない。
func (g *Graph) AnalyzeSymmetry(limit float64) bool {
	if g.Cyclic || g.Head < 0 {
		return false
	}
	return bgraph.MarkdownSymmetry(g, g.Head, limit)
}
