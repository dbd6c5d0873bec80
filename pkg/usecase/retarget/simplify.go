// 指示: miu200521358
package retarget

import (
	"slices"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
)

// NODE_MERGE_EPSILON は同一位置とみなすノード間距離。
const NODE_MERGE_EPSILON = 0.001

// simplify は重複ノード統合、次数2ノードの連結、不要オフセット除去を変化が無くなるまで繰り返し、配列を詰め直す。
// オフセット除去でアーク端が既存ノードへ付け替わると、そのノードが次数2になることがある。
func (g *Graph) simplify() {
	before := g.topology()
	for range len(g.Nodes) + len(g.Arcs) + 1 {
		g.removeDoubleNodes(NODE_MERGE_EPSILON)
		g.removeNormalNodes()
		g.removeUnneededOffsets()
		after := g.topology()
		if slices.Equal(before, after) {
			break
		}
		before = after
	}
	g.compact()
	g.buildAdjacency()
	g.calculateArcs()
}

// topology は有効なノード数と各アークの端点、辺数を並べた値を返す。
func (g *Graph) topology() []int {
	values := make([]int, 0, 1+len(g.Arcs)*3)
	live := 0
	for _, node := range g.Nodes {
		if !node.removed {
			live++
		}
	}
	values = append(values, live)
	for _, arc := range g.Arcs {
		if arc.removed {
			values = append(values, -1, -1, 0)
			continue
		}
		values = append(values, arc.Head, arc.Tail, len(arc.Edges))
	}
	return values
}

// incidentArcs はnodeに接続する有効アークを返す。
func (g *Graph) incidentArcs(node int) []int {
	arcs := make([]int, 0, 4)
	for i, arc := range g.Arcs {
		if arc.removed {
			continue
		}
		if arc.Head == node || arc.Tail == node {
			arcs = append(arcs, i)
		}
	}
	return arcs
}

// degree はnodeの次数を返す。
func (g *Graph) degree(node int) int {
	return len(g.incidentArcs(node))
}

// replaceNode はoldNodeを参照する全アークをnewNodeへ付け替え、自己ループになったアークを除く。
func (g *Graph) replaceNode(newNode int, oldNode int) {
	for _, arc := range g.Arcs {
		if arc.removed {
			continue
		}
		if arc.Head == oldNode {
			arc.Head = newNode
		}
		if arc.Tail == oldNode {
			arc.Tail = newNode
		}
		if arc.Head == arc.Tail {
			arc.removed = true
		}
	}
	g.Nodes[oldNode].removed = true
}

// replaceNodeInArc はアークの端oldNodeをnewNodeへ付け替える。
func replaceNodeInArc(arc *Arc, newNode int, oldNode int) {
	if arc.Head == oldNode {
		arc.Head = newNode
	}
	if arc.Tail == oldNode {
		arc.Tail = newNode
	}
}

// findNodeByPosition はposition近傍の有効ノードを返す。
func (g *Graph) findNodeByPosition(position mmath.Vec3, limit float64) int {
	for i, node := range g.Nodes {
		if !node.removed && node.Position.Distance(position) <= limit {
			return i
		}
	}
	return -1
}

// removeDoubleNodes は距離limit以内のノードを統合する。
func (g *Graph) removeDoubleNodes(limit float64) {
	for i, src := range g.Nodes {
		if src.removed {
			continue
		}
		for j := i + 1; j < len(g.Nodes); j++ {
			replaced := g.Nodes[j]
			if replaced.removed {
				continue
			}
			if src.Position.Distance(replaced.Position) <= limit {
				g.replaceNode(i, j)
			}
		}
	}
}

// removeNormalNodes は次数2のノードを挟む2アークを1本に連結する。
func (g *Graph) removeNormalNodes() {
	for changed := true; changed; {
		changed = false
		for i, node := range g.Nodes {
			if node.removed {
				continue
			}
			arcs := g.incidentArcs(i)
			if len(arcs) != 2 || arcs[0] == arcs[1] {
				continue
			}
			g.joinArcs(i, g.Arcs[arcs[0]], g.Arcs[arcs[1]])
			changed = true
		}
	}
}

// joinArcs はnodeで接する2アークを連結する。向きが揃わないアークは反転して繋ぐ。
func (g *Graph) joinArcs(node int, first *Arc, second *Arc) {
	if first.Head == node && second.Tail == node {
		first, second = second, first
	}
	if first.Tail != node {
		first.reverse()
	}
	if second.Head != node {
		second.reverse()
	}

	first.Edges = append(first.Edges, second.Edges...)
	first.Length += second.Length
	first.Tail = second.Tail
	second.Edges = nil
	second.removed = true
	g.Nodes[node].removed = true
}

// removeEdgeAt はアークからk番目の辺を除く。辺が1本だけなら除かない。
func removeEdgeAt(arc *Arc, k int) bool {
	if len(arc.Edges) <= 1 || k < 0 || k >= len(arc.Edges) {
		return false
	}
	arc.Edges = append(arc.Edges[:k], arc.Edges[k+1:]...)
	return true
}

// removeUnneededOffsets はアーク端のオフセット辺を除き、必要ならノードを付け替える。
func (g *Graph) removeUnneededOffsets() {
	for ai, arc := range g.Arcs {
		if arc.removed || len(arc.Edges) == 0 {
			continue
		}
		if arc.Edges[0].IsVirtual() {
			g.removeHeadOffset(ai, arc)
		}
		if last := arc.Edges[len(arc.Edges)-1]; last.IsVirtual() {
			g.removeTailOffset(arc, last)
		}
	}
}

// removeHeadOffset は始点側のオフセット辺を処理する。
func (g *Graph) removeHeadOffset(ai int, arc *Arc) {
	first := arc.Edges[0]
	head := g.Nodes[arc.Head]

	if first.Tail.Distance(head.Position) <= NODE_MERGE_EPSILON {
		removeEdgeAt(arc, 0)
		return
	}

	if g.degree(arc.Head) == 1 {
		if newNode := g.findNodeByPosition(first.Tail, NODE_MERGE_EPSILON); newNode >= 0 && newNode != arc.Tail {
			if removeEdgeAt(arc, 0) {
				replaceNodeInArc(arc, newNode, arc.Head)
			}
		} else if len(arc.Edges) > 1 {
			removeEdgeAt(arc, 0)
			head.Position = arc.Edges[0].Head
		}
		return
	}

	// 同じ始点を持つ全アークがオフセット辺で始まる場合だけ、まとめて除く
	others := make([]int, 0)
	for oi, other := range g.Arcs {
		if oi == ai || other.removed || len(other.Edges) == 0 {
			continue
		}
		switch {
		case other.Head == arc.Head:
			if !other.Edges[0].IsVirtual() {
				return
			}
		case other.Tail == arc.Head:
			if !other.Edges[len(other.Edges)-1].IsVirtual() {
				return
			}
		default:
			continue
		}
		others = append(others, oi)
	}

	oldNode := arc.Head
	newNode := g.findNodeByPosition(first.Tail, NODE_MERGE_EPSILON)
	if newNode < 0 || newNode == arc.Tail {
		if len(arc.Edges) <= 1 {
			return
		}
		removeEdgeAt(arc, 0)
		head.Position = arc.Edges[0].Head
		for _, oi := range others {
			other := g.Arcs[oi]
			if other.Head == oldNode {
				removeEdgeAt(other, 0)
			} else {
				removeEdgeAt(other, len(other.Edges)-1)
			}
		}
		return
	}

	for _, oi := range others {
		other := g.Arcs[oi]
		if other.Head == oldNode {
			replaceNodeInArc(other, newNode, oldNode)
			removeEdgeAt(other, 0)
		} else {
			replaceNodeInArc(other, newNode, oldNode)
			removeEdgeAt(other, len(other.Edges)-1)
		}
	}
	if removeEdgeAt(arc, 0) {
		replaceNodeInArc(arc, newNode, oldNode)
	}
}

// removeTailOffset は終点側のオフセット辺を処理する。
func (g *Graph) removeTailOffset(arc *Arc, last *Edge) {
	tail := g.Nodes[arc.Tail]
	lastIndex := len(arc.Edges) - 1

	if last.Head.Distance(tail.Position) <= NODE_MERGE_EPSILON {
		removeEdgeAt(arc, lastIndex)
		return
	}
	if g.degree(arc.Tail) != 1 {
		return
	}

	if newNode := g.findNodeByPosition(last.Head, NODE_MERGE_EPSILON); newNode >= 0 && newNode != arc.Head {
		if removeEdgeAt(arc, lastIndex) {
			replaceNodeInArc(arc, newNode, arc.Tail)
		}
	} else if removeEdgeAt(arc, lastIndex) {
		tail.Position = arc.Edges[len(arc.Edges)-1].Tail
	}
}

// compact は削除済みと孤立したノード、削除済みアークを除き、indexを詰め直す。
func (g *Graph) compact() {
	used := make([]bool, len(g.Nodes))
	arcs := make([]*Arc, 0, len(g.Arcs))
	for _, arc := range g.Arcs {
		if arc.removed || len(arc.Edges) == 0 {
			continue
		}
		used[arc.Head] = true
		used[arc.Tail] = true
		arcs = append(arcs, arc)
	}

	remap := make([]int, len(g.Nodes))
	nodes := make([]*Node, 0, len(g.Nodes))
	for i, node := range g.Nodes {
		remap[i] = -1
		if node.removed || !used[i] {
			continue
		}
		remap[i] = len(nodes)
		nodes = append(nodes, node)
	}
	for _, arc := range arcs {
		arc.Head = remap[arc.Head]
		arc.Tail = remap[arc.Tail]
	}

	g.Nodes = nodes
	g.Arcs = arcs
}
