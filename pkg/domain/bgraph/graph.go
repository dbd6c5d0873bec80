// 指示: miu200521358
// Package bgraph はノードとアークからなるスケルトングラフ共通の探索と対称性判定を提供する。
package bgraph

import "github.com/miu200521358/mu_retarget/pkg/domain/mmath"

const (
	// SHAPE_RADIX は部分木形状値の基数。
	SHAPE_RADIX = 10
	// SHAPE_LEVELS は形状比較に使う剰余。
	SHAPE_LEVELS = SHAPE_RADIX * SHAPE_RADIX
)

// SymmetryFlag は対称性の種別を表す。
type SymmetryFlag int

const (
	// SYMMETRY_FLAG_NONE は対称性無し。
	SYMMETRY_FLAG_NONE SymmetryFlag = 0
	// SYMMETRY_FLAG_TOPOLOGICAL は位相的な対称。
	SYMMETRY_FLAG_TOPOLOGICAL SymmetryFlag = 1 << 0
	// SYMMETRY_FLAG_PHYSICAL は幾何的な対称。
	SYMMETRY_FLAG_PHYSICAL SymmetryFlag = 1 << 1
	// SYMMETRY_FLAG_AXIAL は軸対称。
	SYMMETRY_FLAG_AXIAL SymmetryFlag = 1 << 2
	// SYMMETRY_FLAG_RADIAL は放射対称。
	SYMMETRY_FLAG_RADIAL SymmetryFlag = 1 << 3
	// SYMMETRY_FLAG_SIDE_POSITIVE は軸の正側。
	SYMMETRY_FLAG_SIDE_POSITIVE SymmetryFlag = 1 << 4
	// SYMMETRY_FLAG_SIDE_NEGATIVE は軸の負側。
	SYMMETRY_FLAG_SIDE_NEGATIVE SymmetryFlag = 1 << 5
	// SYMMETRY_FLAG_SIDE_RADIAL は放射対称の一員。
	SYMMETRY_FLAG_SIDE_RADIAL SymmetryFlag = 1 << 6
)

// ArcSymmetry はアークの対称情報を表す。
type ArcSymmetry struct {
	Level int
	Flag  SymmetryFlag
	Group int
}

// NodeSymmetry はノードの対称情報を表す。Axisは対称ノードのみ有効。
type NodeSymmetry struct {
	Level int
	Flag  SymmetryFlag
	Axis  mmath.Vec3
}

// IGraph はスケルトングラフの共通契約を表す。
// ノードとアークはindexで参照し、隣接リストは構築済みであること。
type IGraph interface {
	NodeCount() int
	ArcCount() int
	NodePosition(node int) mmath.Vec3
	NodeArcs(node int) []int
	ArcNodes(arc int) (head int, tail int)
	// ArcWeight は深さ計算に使うアークの重み。
	ArcWeight(arc int) int
	ArcSymmetry(arc int) ArcSymmetry
	SetArcSymmetry(arc int, symmetry ArcSymmetry)
	NodeSymmetry(node int) NodeSymmetry
	SetNodeSymmetry(node int, symmetry NodeSymmetry)
}

// OtherNode はアークのもう一方のノードを返す。
func OtherNode(g IGraph, arc int, node int) int {
	head, tail := g.ArcNodes(arc)
	if head == node {
		return tail
	}
	return head
}

// SubtreeShape はrootArcを除いた部分木の形状値を返す。葉は1、内部は10*子の和+1。
func SubtreeShape(g IGraph, node int, rootArc int) int {
	visited := make([]bool, g.NodeCount())
	return subtreeShape(g, node, rootArc, visited)
}

func subtreeShape(g IGraph, node int, rootArc int, visited []bool) int {
	visited[node] = true
	arcs := g.NodeArcs(node)
	if len(arcs) == 0 {
		return 0
	}
	depth := 0
	for _, arc := range arcs {
		next := OtherNode(g, arc, node)
		if arc != rootArc && !visited[next] {
			depth += subtreeShape(g, next, arc, visited)
		}
	}
	return SHAPE_RADIX*depth + 1
}

// ArcShape はnodeから出るarcとその先の部分木の形状値を返す。
func ArcShape(g IGraph, node int, arc int) int {
	visited := make([]bool, g.NodeCount())
	visited[node] = true
	return SHAPE_RADIX*subtreeShape(g, OtherNode(g, arc, node), arc, visited) + 1
}

// SubtreeDepth はnodeからrootArcを除いて葉までの最大重みを返す。
func SubtreeDepth(g IGraph, node int, rootArc int) int {
	visited := make([]bool, g.NodeCount())
	return subtreeDepth(g, node, rootArc, visited)
}

func subtreeDepth(g IGraph, node int, rootArc int, visited []bool) int {
	visited[node] = true
	depth := 0
	for _, arc := range g.NodeArcs(node) {
		if arc == rootArc {
			continue
		}
		next := OtherNode(g, arc, node)
		if visited[next] {
			continue
		}
		if d := g.ArcWeight(arc) + subtreeDepth(g, next, arc, visited); d > depth {
			depth = d
		}
	}
	return depth
}

// ArcDepth はnodeから出るarc経由で葉までの最大重みを返す。
func ArcDepth(g IGraph, node int, arc int) int {
	next := OtherNode(g, arc, node)
	visited := make([]bool, g.NodeCount())
	visited[node] = true
	return g.ArcWeight(arc) + subtreeDepth(g, next, arc, visited)
}

// IsCyclic は閉路を持つか判定する。
func IsCyclic(g IGraph) bool {
	visited := make([]bool, g.NodeCount())
	for node := 0; node < g.NodeCount(); node++ {
		if visited[node] {
			continue
		}
		if detectCycle(g, node, -1, visited) {
			return true
		}
	}
	return false
}

func detectCycle(g IGraph, node int, srcArc int, visited []bool) bool {
	if visited[node] {
		return true
	}
	visited[node] = true
	for _, arc := range g.NodeArcs(node) {
		if arc == srcArc {
			continue
		}
		if detectCycle(g, OtherNode(g, arc, node), arc, visited) {
			return true
		}
	}
	return false
}
