// 指示: miu200521358
// Package reeb はメッシュから抽出された多重解像度スケルトンを表す。
package reeb

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
)

// NO_LINK は上下解像度へのリンク無しを表す。
const NO_LINK = -1

// Bucket はアーク上のサンプル点を表す。
type Bucket struct {
	Position mmath.Vec3
	Normal   mmath.Vec3
}

// Node はスケルトンのノードを表す。
type Node struct {
	Position   mmath.Vec3
	Normal     mmath.Vec3
	MultiLevel int
	// LinkUp は1段粗いレベルの対応ノードindex。
	LinkUp int
	// LinkDown は1段細かいレベルの対応ノードindex。
	LinkDown int
	Arcs     []int
	Symmetry bgraph.NodeSymmetry
}

// Arc はノード間のサンプル列を表す。Bucketsは両端ノードを含まない。
type Arc struct {
	Head     int
	Tail     int
	Buckets  []Bucket
	Symmetry bgraph.ArcSymmetry
	LinkUp   int
}

// Level は1解像度分のグラフを表す。
type Level struct {
	Nodes []*Node
	Arcs  []*Arc
	Head  int
}

// NewLevel は空のレベルを生成する。
func NewLevel() *Level {
	return &Level{
		Nodes: make([]*Node, 0),
		Arcs:  make([]*Arc, 0),
	}
}

// AddNode はノードを追加してindexを返す。
func (l *Level) AddNode(position mmath.Vec3) int {
	l.Nodes = append(l.Nodes, &Node{
		Position: position,
		LinkUp:   NO_LINK,
		LinkDown: NO_LINK,
		Arcs:     make([]int, 0),
	})
	return len(l.Nodes) - 1
}

// AddArc はアークを追加してindexを返す。隣接リストも更新する。
func (l *Level) AddArc(head int, tail int, buckets []Bucket) int {
	l.Arcs = append(l.Arcs, &Arc{
		Head:    head,
		Tail:    tail,
		Buckets: buckets,
		LinkUp:  NO_LINK,
	})
	index := len(l.Arcs) - 1
	l.Nodes[head].Arcs = append(l.Nodes[head].Arcs, index)
	if tail != head {
		l.Nodes[tail].Arcs = append(l.Nodes[tail].Arcs, index)
	}
	return index
}

// BuildAdjacency はアークの両端からノードの隣接リストを作り直す。
func (l *Level) BuildAdjacency() {
	for _, node := range l.Nodes {
		node.Arcs = node.Arcs[:0]
	}
	for i, arc := range l.Arcs {
		l.Nodes[arc.Head].Arcs = append(l.Nodes[arc.Head].Arcs, i)
		if arc.Tail != arc.Head {
			l.Nodes[arc.Tail].Arcs = append(l.Nodes[arc.Tail].Arcs, i)
		}
	}
}

// HasSymmetry はいずれかのアークに対称情報が付いているか判定する。
func (l *Level) HasSymmetry() bool {
	for _, arc := range l.Arcs {
		if arc.Symmetry.Level > 0 {
			return true
		}
	}
	return false
}

func (l *Level) NodeCount() int                   { return len(l.Nodes) }
func (l *Level) ArcCount() int                    { return len(l.Arcs) }
func (l *Level) NodePosition(node int) mmath.Vec3 { return l.Nodes[node].Position }
func (l *Level) NodeArcs(node int) []int          { return l.Nodes[node].Arcs }

func (l *Level) ArcNodes(arc int) (int, int) {
	return l.Arcs[arc].Head, l.Arcs[arc].Tail
}

// ArcWeight はメッシュ側では常に1。
func (l *Level) ArcWeight(arc int) int { return 1 }

func (l *Level) ArcSymmetry(arc int) bgraph.ArcSymmetry {
	return l.Arcs[arc].Symmetry
}

func (l *Level) SetArcSymmetry(arc int, symmetry bgraph.ArcSymmetry) {
	l.Arcs[arc].Symmetry = symmetry
}

func (l *Level) NodeSymmetry(node int) bgraph.NodeSymmetry {
	return l.Nodes[node].Symmetry
}

func (l *Level) SetNodeSymmetry(node int, symmetry bgraph.NodeSymmetry) {
	l.Nodes[node].Symmetry = symmetry
}
