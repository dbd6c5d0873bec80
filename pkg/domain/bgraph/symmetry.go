// 指示: miu200521358
package bgraph

import "github.com/miu200521358/mu_retarget/pkg/domain/mmath"

// DEFAULT_SYMMETRY_LIMIT は対称判定の既定許容距離。
const DEFAULT_SYMMETRY_LIMIT = 0.1

// symmetryMarker は1回の対称判定の作業状態を保持する。
// アークレベルは0が未判定、負値が深さ(-depth)を表す。
type symmetryMarker struct {
	g         IGraph
	limit     float64
	arcLevel  []int
	arcFlag   []SymmetryFlag
	arcGroup  []int
	nodeFlag  []SymmetryFlag
	nodeAxis  []mmath.Vec3
	nodeLevel []int
}

// MarkdownSymmetry はheadから対称レベルと対称種別を判定してグラフへ書き込む。
// 閉路を持つグラフは判定せずfalseを返す。
func MarkdownSymmetry(g IGraph, head int, limit float64) bool {
	if g == nil || head < 0 || head >= g.NodeCount() {
		return false
	}
	if IsCyclic(g) {
		return false
	}

	m := &symmetryMarker{
		g:         g,
		limit:     limit,
		arcLevel:  make([]int, g.ArcCount()),
		arcFlag:   make([]SymmetryFlag, g.ArcCount()),
		arcGroup:  make([]int, g.ArcCount()),
		nodeFlag:  make([]SymmetryFlag, g.NodeCount()),
		nodeAxis:  make([]mmath.Vec3, g.NodeCount()),
		nodeLevel: make([]int, g.NodeCount()),
	}

	arcs := g.NodeArcs(head)
	if len(arcs) == 1 {
		m.markArc(arcs[0], head, 1)
	} else if len(arcs) > 1 {
		m.markArc(-1, head, 1)
	}
	m.finish()
	return true
}

// markArc はarcにレベルを付け、先のノードで軸と対称グループを判定する。
func (m *symmetryMarker) markArc(arc int, node int, level int) {
	if arc >= 0 {
		m.arcLevel[arc] = level
		node = OtherNode(m.g, arc, node)
	}

	arcs := m.g.NodeArcs(node)
	for _, connected := range arcs {
		if connected != arc {
			m.arcLevel[connected] = -ArcDepth(m.g, node, connected)
		}
	}

	// 深さが他と重ならないアークがちょうど1本なら、それを軸として同レベルで辿る
	axisArc := -1
	uniqueCount := 0
	for _, connected := range arcs {
		if connected == arc || m.arcLevel[connected] >= 0 {
			continue
		}
		shared := false
		for _, other := range arcs {
			if other != connected && other != arc && m.arcLevel[other] == m.arcLevel[connected] {
				shared = true
				break
			}
		}
		if !shared {
			uniqueCount++
			axisArc = connected
		}
	}
	if uniqueCount == 1 {
		m.markArc(axisArc, node, level)
	}

	for _, connected := range arcs {
		if m.arcLevel[connected] < 0 {
			m.markSecondary(node, -m.arcLevel[connected], level)
		}
	}
}

// markSecondary は同じ深さの兄弟アーク群を軸対称/放射対称として判定する。
func (m *symmetryMarker) markSecondary(node int, depth int, level int) {
	axis := mmath.Vec3{}
	members := make([]int, 0)
	for _, connected := range m.g.NodeArcs(node) {
		switch m.arcLevel[connected] {
		case -depth:
			members = append(members, connected)
		case level:
			head, tail := m.g.ArcNodes(connected)
			axis = axis.Added(m.g.NodePosition(head)).Subed(m.g.NodePosition(tail))
		}
	}
	axis = axis.Normalized()

	if len(members) == 2 {
		m.testAxial(node, members, axis)
	} else if len(members) > 2 {
		m.testRadial(node, members, axis)
	}

	for _, member := range members {
		m.markArc(member, node, level+1)
	}
}

// testAxial は2本のアーク端点が鏡映関係か判定する。
func (m *symmetryMarker) testAxial(node int, members []int, axis mmath.Vec3) {
	root := m.g.NodePosition(node)
	p1 := m.g.NodePosition(OtherNode(m.g, members[0], node))
	p2 := m.g.NodePosition(OtherNode(m.g, members[1], node))

	// 鏡映面は片側の端点と軸だけから決める
	nor := p1.Subed(root).Cross(axis).Cross(axis).Normalized()
	if nor.IsZero() {
		return
	}
	nor = nor.CanonicalSign()

	mirrored := mmath.MirrorAlongAxis(p2, root, nor)
	if p1.Distance(mirrored) > m.limit {
		return
	}

	m.nodeFlag[node] |= SYMMETRY_FLAG_TOPOLOGICAL | SYMMETRY_FLAG_PHYSICAL | SYMMETRY_FLAG_AXIAL
	m.nodeAxis[node] = nor
	for _, member := range members {
		end := m.g.NodePosition(OtherNode(m.g, member, node))
		if end.Subed(root).Dot(nor) < 0 {
			m.arcFlag[member] = SYMMETRY_FLAG_SIDE_NEGATIVE
		} else {
			m.arcFlag[member] = SYMMETRY_FLAG_SIDE_POSITIVE
		}
		m.arcGroup[member] = 1
	}
}

type radialEntry struct {
	arc    int
	normal mmath.Vec3
}

// testRadial は3本以上のアーク端点が軸回りに回転対称か判定する。
func (m *symmetryMarker) testRadial(node int, members []int, axis mmath.Vec3) {
	root := m.g.NodePosition(node)
	ring := make([]radialEntry, len(members))
	for i, member := range members {
		end := m.g.NodePosition(OtherNode(m.g, member, node))
		ring[i] = radialEntry{arc: member, normal: end.Subed(root).Rejected(axis).Normalized()}
	}

	// 隣接する腕が続くよう内積で貪欲に並べる。負の内積は1..2へ写して後回しにする
	for i := 0; i < len(ring)-1; i++ {
		minAngle := 3.0
		minIndex := -1
		for j := i + 1; j < len(ring); j++ {
			angle := ring[i].normal.Dot(ring[j].normal)
			if angle < 0 {
				angle = 1 - angle
			}
			if angle < minAngle {
				minAngle = angle
				minIndex = j
			}
		}
		if minIndex >= 0 && minIndex != i+1 {
			ring[i+1], ring[minIndex] = ring[minIndex], ring[i+1]
		}
	}

	for i := 0; i < len(ring)-1; i++ {
		j := i + 1
		planeNormal := ring[i].normal.Added(ring[j].normal).Cross(axis)
		if planeNormal.IsZero() {
			return
		}
		pi := m.g.NodePosition(OtherNode(m.g, ring[i].arc, node))
		pj := m.g.NodePosition(OtherNode(m.g, ring[j].arc, node))
		if pi.Distance(mmath.MirrorAlongAxis(pj, root, planeNormal)) > m.limit {
			return
		}
	}

	m.nodeFlag[node] |= SYMMETRY_FLAG_TOPOLOGICAL | SYMMETRY_FLAG_PHYSICAL | SYMMETRY_FLAG_RADIAL
	m.nodeAxis[node] = axis
	for i, entry := range ring {
		m.arcFlag[entry.arc] = SYMMETRY_FLAG_SIDE_RADIAL
		m.arcGroup[entry.arc] = i + 1
	}
}

// finish は未到達アークのレベルを確定し、ノードへ最小レベルを付けて書き込む。
func (m *symmetryMarker) finish() {
	for arc := 0; arc < m.g.ArcCount(); arc++ {
		if m.arcLevel[arc] < 0 {
			m.arcLevel[arc] = -m.arcLevel[arc]
			continue
		}
		if m.arcLevel[arc] == 0 {
			continue
		}
		head, tail := m.g.ArcNodes(arc)
		for _, node := range []int{head, tail} {
			if m.nodeLevel[node] == 0 || m.nodeLevel[node] > m.arcLevel[arc] {
				m.nodeLevel[node] = m.arcLevel[arc]
			}
		}
	}

	for arc := 0; arc < m.g.ArcCount(); arc++ {
		m.g.SetArcSymmetry(arc, ArcSymmetry{
			Level: m.arcLevel[arc],
			Flag:  m.arcFlag[arc],
			Group: m.arcGroup[arc],
		})
	}
	for node := 0; node < m.g.NodeCount(); node++ {
		m.g.SetNodeSymmetry(node, NodeSymmetry{
			Level: m.nodeLevel[node],
			Flag:  m.nodeFlag[node],
			Axis:  m.nodeAxis[node],
		})
	}
}
