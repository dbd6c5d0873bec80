// 指示: miu200521358
package retarget

import (
	"fmt"

	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
)

// matcher はリグのアークをメッシュスケルトンのアークへ対応付ける作業状態を保持する。
type matcher struct {
	g        *Graph
	mesh     *reeb.MeshSkeleton
	usage    *reeb.UsageTable
	visited  []bool
	warnings []Warning
}

// MatchMesh は頭ノードから深さ優先でアークを対応付け、対応できなかったアークの警告を返す。
// 対応できなかったアークの先は辿らない。
func (g *Graph) MatchMesh(mesh *reeb.MeshSkeleton) []Warning {
	return newMatcher(g, mesh).run()
}

func newMatcher(g *Graph, mesh *reeb.MeshSkeleton) *matcher {
	return &matcher{
		g:        g,
		mesh:     mesh,
		usage:    reeb.NewUsageTable(mesh),
		visited:  make([]bool, len(g.Arcs)),
		warnings: make([]Warning, 0),
	}
}

func (m *matcher) run() []Warning {
	g := m.g
	for _, arc := range g.Arcs {
		arc.MeshArc = reeb.NO_ARC
		arc.MeshFromHead = true
		arc.Emergency = false
	}
	for _, node := range g.Nodes {
		node.MeshNode = reeb.NO_NODE
	}
	if g.Head < 0 || m.mesh.LevelCount() == 0 {
		return m.warnings
	}

	m.matchStartingNode(g.Head)
	m.retargetSubgraph(-1, g.Head)

	for i, arc := range g.Arcs {
		if !arc.IsMatched() && !m.visited[i] {
			m.warn(model.RetargetWarningNoMatch, i, "アーク%dは対応済みアークの先に無いため対応付けできませんでした", i)
		}
	}
	return m.warnings
}

func (m *matcher) warn(id string, arc int, format string, params ...any) {
	message := fmt.Sprintf(format, params...)
	m.warnings = append(m.warnings, Warning{ID: id, Arc: arc, Message: message})
	logRetargetWarn("%s", message)
}

// matchStartingNode は細かいレベルから順に、頭ノードと形状値が一致するレベルを探す。
func (m *matcher) matchStartingNode(node int) {
	shape := bgraph.SubtreeShape(m.g, node, -1) % bgraph.SHAPE_LEVELS
	for level := 0; level < m.mesh.LevelCount(); level++ {
		ref := m.mesh.HeadNode(level)
		if ref.IsValid() && m.mesh.NodeShape(ref) == shape {
			m.g.Nodes[node].MeshNode = ref
			logRetargetDebug("頭ノードをレベル%dへ対応付け: shape=%d", level, shape)
			return
		}
	}

	coarsest := m.mesh.HeadNode(m.mesh.LevelCount() - 1)
	m.g.Nodes[node].MeshNode = coarsest
	m.warn(model.RetargetWarningHeadShapeMismatch, -1,
		"頭ノードの形状値%dに一致するレベルが無いため最も粗いレベル%dを使います", shape, coarsest.Level)
}

// retargetSubgraph はstartArcを経てstartNodeの先にあるアークを順に対応付ける。
func (m *matcher) retargetSubgraph(startArc int, startNode int) {
	node := startNode
	if startArc >= 0 {
		arc := m.g.Arcs[startArc]
		meshNode := m.mesh.OtherNode(arc.MeshArc, m.g.Nodes[startNode].MeshNode)
		node = bgraph.OtherNode(m.g, startArc, startNode)
		m.matchMultiResolutionNode(node, meshNode)
	}

	for _, next := range m.g.Nodes[node].Arcs {
		if next == startArc || m.visited[next] {
			continue
		}
		m.visited[next] = true

		m.findCorrespondingArc(next, node, true)
		arc := m.g.Arcs[next]
		if !arc.IsMatched() {
			m.warn(model.RetargetWarningNoMatch, next, "アーク%dに対応するメッシュアークがありません", next)
			continue
		}
		m.orient(next, node)
		m.retargetSubgraph(next, node)
	}
}

// matchMultiResolutionNode は形状値が変わらない限り細かいレベルへ降りてノードを対応付ける。
func (m *matcher) matchMultiResolutionNode(node int, meshNode reeb.NodeRef) {
	shape := bgraph.SubtreeShape(m.g, node, -1) % bgraph.SHAPE_LEVELS
	for {
		down := m.mesh.NodeDown(meshNode)
		if !down.IsValid() || m.mesh.NodeShape(down) != shape {
			break
		}
		meshNode = down
	}
	m.g.Nodes[node].MeshNode = meshNode
}

// findCorrespondingArc はノードの対応メッシュノードから、対称情報が一致する未使用アークを探す。
// 見つからなければ粗いレベルへ上がり、根の呼び出しで無ければ対称レベルだけで探す。
func (m *matcher) findCorrespondingArc(arcIndex int, startNode int, root bool) {
	arc := m.g.Arcs[arcIndex]
	node := m.g.Nodes[startNode]
	meshNode := node.MeshNode
	arc.MeshArc = reeb.NO_ARC

	for _, candidate := range m.mesh.NodeArcs(meshNode) {
		meshArc, _ := m.mesh.Arc(candidate)
		if m.usage.IsFree(candidate) && meshArc.Symmetry == arc.Symmetry {
			m.matchMultiResolutionArc(startNode, arcIndex, candidate)
			break
		}
	}

	if !arc.IsMatched() {
		if up := m.mesh.NodeUp(meshNode); up.IsValid() {
			logRetargetVerbose(logging.VERBOSE_INDEX_MATCH,
				"アーク%dはレベル%dに対応が無いためレベル%dで探します", arcIndex, meshNode.Level, up.Level)
			node.MeshNode = up
			m.findCorrespondingArc(arcIndex, startNode, false)
			if arc.IsMatched() {
				m.claimFinerArcs(meshNode, arc.MeshArc)
			}
		}
	}

	if root && !arc.IsMatched() {
		node.MeshNode = meshNode
		for _, candidate := range m.mesh.NodeArcs(meshNode) {
			meshArc, _ := m.mesh.Arc(candidate)
			if m.usage.IsFree(candidate) && meshArc.Symmetry.Level == arc.Symmetry.Level {
				m.matchMultiResolutionArc(startNode, arcIndex, candidate)
				arc.Emergency = true
				m.warn(model.RetargetWarningEmergencyMatch, arcIndex,
					"アーク%dを対称情報を無視してレベル%dのアーク%dへ対応付けました", arcIndex, candidate.Level, candidate.Index)
				break
			}
		}
	}
}

// matchMultiResolutionArc は形状値が一致するまで粗いレベルへ上がってアークを確定する。
// 通過した細かいアークは使用不可にする。
func (m *matcher) matchMultiResolutionArc(startNode int, arcIndex int, meshArc reeb.ArcRef) {
	shape := bgraph.ArcShape(m.g, startNode, arcIndex) % bgraph.SHAPE_LEVELS
	start := m.g.Nodes[startNode].MeshNode
	for m.meshArcShape(meshArc, start) != shape {
		up := m.mesh.ArcUp(meshArc)
		if !up.IsValid() {
			break
		}
		m.usage.Set(meshArc, reeb.USAGE_FLAG_TAKEN)
		meshArc = up
	}

	m.usage.Set(meshArc, reeb.USAGE_FLAG_USED)
	m.g.Arcs[arcIndex].MeshArc = meshArc
	m.markMultiResolutionArc(meshArc)
	logRetargetVerbose(logging.VERBOSE_INDEX_MATCH,
		"アーク%dをレベル%dのアーク%dへ対応付け: shape=%d", arcIndex, meshArc.Level, meshArc.Index, shape)
}

// claimFinerArcs はnodeに接続する未使用アークのうち、粗い側でmatchedへ繋がるものを使用不可にする。
func (m *matcher) claimFinerArcs(node reeb.NodeRef, matched reeb.ArcRef) {
	for _, candidate := range m.mesh.NodeArcs(node) {
		if !m.usage.IsFree(candidate) {
			continue
		}
		for up := m.mesh.ArcUp(candidate); up.IsValid(); up = m.mesh.ArcUp(up) {
			if up == matched {
				m.usage.Set(candidate, reeb.USAGE_FLAG_TAKEN)
				break
			}
		}
	}
}

// meshArcShape はstart側の端から見たメッシュアークの形状値を返す。
func (m *matcher) meshArcShape(meshArc reeb.ArcRef, start reeb.NodeRef) int {
	head, tail := m.mesh.ArcNodes(meshArc)
	near := head
	if m.mesh.Equivalent(tail, start) && !m.mesh.Equivalent(head, start) {
		near = tail
	}
	level := m.mesh.Level(meshArc.Level)
	return bgraph.ArcShape(level, near.Index, meshArc.Index) % bgraph.SHAPE_LEVELS
}

// markMultiResolutionArc は確定したアークより粗い対応アークと、その先の枝を使用不可にする。
func (m *matcher) markMultiResolutionArc(start reeb.ArcRef) {
	_, startTail := m.mesh.ArcNodes(start)
	for current := m.mesh.ArcUp(start); current.IsValid(); current = m.mesh.ArcUp(current) {
		m.usage.Set(current, reeb.USAGE_FLAG_TAKEN)
		_, tail := m.mesh.ArcNodes(current)
		if !m.mesh.Equivalent(tail, startTail) {
			m.markMultiResolutionChildArc(tail, tail)
		}
	}
}

// markMultiResolutionChildArc はnodeから未使用の枝を1本ずつ辿って使用不可にする。
func (m *matcher) markMultiResolutionChildArc(end reeb.NodeRef, node reeb.NodeRef) {
	for _, candidate := range m.mesh.NodeArcs(node) {
		if !m.usage.IsFree(candidate) {
			continue
		}
		m.usage.Set(candidate, reeb.USAGE_FLAG_TAKEN)
		_, tail := m.mesh.ArcNodes(candidate)
		if tail != end && len(m.mesh.NodeArcs(tail)) > 1 {
			m.markMultiResolutionChildArc(end, tail)
		}
		break
	}
}

// orient はリグのアーク向きとメッシュアークのサンプル走査向きを揃える。
func (m *matcher) orient(arcIndex int, startNode int) {
	arc := m.g.Arcs[arcIndex]
	start := m.g.Nodes[startNode].MeshNode
	head, tail := m.mesh.ArcNodes(arc.MeshArc)

	meshStartIsHead := m.mesh.Equivalent(head, start)
	if !meshStartIsHead && !m.mesh.Equivalent(tail, start) {
		headNode, _ := m.mesh.Node(head)
		tailNode, _ := m.mesh.Node(tail)
		position := m.g.Nodes[startNode].Position
		meshStartIsHead = position.Distance(headNode.Position) <= position.Distance(tailNode.Position)
	}
	arc.MeshFromHead = meshStartIsHead == (startNode == arc.Head)
}

// meshPath は対応付いたメッシュアークをリグのアーク向きで辿るPathを返す。
func (g *Graph) meshPath(mesh *reeb.MeshSkeleton, arc *Arc) Path {
	head, tail := mesh.ArcNodes(arc.MeshArc)
	if !arc.MeshFromHead {
		head, tail = tail, head
	}
	return NewPath(meshBucket(mesh, head), meshBucket(mesh, tail), mesh.NewArcIterator(arc.MeshArc, arc.MeshFromHead))
}

func meshBucket(mesh *reeb.MeshSkeleton, ref reeb.NodeRef) reeb.Bucket {
	node, ok := mesh.Node(ref)
	if !ok {
		return reeb.Bucket{}
	}
	return reeb.Bucket{Position: node.Position, Normal: node.Normal}
}
