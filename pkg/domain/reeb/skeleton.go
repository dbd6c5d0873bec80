// 指示: miu200521358
package reeb

import (
	"fmt"

	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"github.com/tiendc/go-deepcopy"
)

// NodeRef はレベルとindexでノードを指す。
type NodeRef struct {
	Level int
	Index int
}

// ArcRef はレベルとindexでアークを指す。
type ArcRef struct {
	Level int
	Index int
}

// NO_NODE は未解決のノード参照。
var NO_NODE = NodeRef{Level: -1, Index: -1}

// NO_ARC は未解決のアーク参照。
var NO_ARC = ArcRef{Level: -1, Index: -1}

// IsValid は参照が設定済みか判定する。
func (r NodeRef) IsValid() bool { return r.Level >= 0 && r.Index >= 0 }

// IsValid は参照が設定済みか判定する。
func (r ArcRef) IsValid() bool { return r.Level >= 0 && r.Index >= 0 }

// MeshSkeleton は多重解像度スケルトンを表す。Levels[0]が最も細かい。
type MeshSkeleton struct {
	Name   string
	Levels []*Level
}

// NewMeshSkeleton はスケルトンを生成する。
func NewMeshSkeleton(name string, levels ...*Level) *MeshSkeleton {
	return &MeshSkeleton{Name: name, Levels: levels}
}

// Copy はスケルトンを複製する。
func (s *MeshSkeleton) Copy() (*MeshSkeleton, error) {
	if s == nil {
		return nil, nil
	}
	levels := make([]*Level, 0, len(s.Levels))
	if err := deepcopy.Copy(&levels, s.Levels); err != nil {
		return nil, fmt.Errorf("メッシュスケルトン複製に失敗しました: %w", err)
	}
	return &MeshSkeleton{Name: s.Name, Levels: levels}, nil
}

// LevelCount はレベル数を返す。
func (s *MeshSkeleton) LevelCount() int {
	if s == nil {
		return 0
	}
	return len(s.Levels)
}

// Level はindexのレベルを返す。
func (s *MeshSkeleton) Level(level int) *Level {
	if s == nil || level < 0 || level >= len(s.Levels) {
		return nil
	}
	return s.Levels[level]
}

// Node は参照先ノードを返す。
func (s *MeshSkeleton) Node(ref NodeRef) (*Node, bool) {
	level := s.Level(ref.Level)
	if level == nil || ref.Index < 0 || ref.Index >= len(level.Nodes) {
		return nil, false
	}
	return level.Nodes[ref.Index], true
}

// Arc は参照先アークを返す。
func (s *MeshSkeleton) Arc(ref ArcRef) (*Arc, bool) {
	level := s.Level(ref.Level)
	if level == nil || ref.Index < 0 || ref.Index >= len(level.Arcs) {
		return nil, false
	}
	return level.Arcs[ref.Index], true
}

// HeadNode は指定レベルの頭ノードを返す。
func (s *MeshSkeleton) HeadNode(level int) NodeRef {
	l := s.Level(level)
	if l == nil || len(l.Nodes) == 0 {
		return NO_NODE
	}
	return NodeRef{Level: level, Index: l.Head}
}

// NodeUp は1段粗い対応ノードを返す。
func (s *MeshSkeleton) NodeUp(ref NodeRef) NodeRef {
	node, ok := s.Node(ref)
	if !ok || node.LinkUp == NO_LINK || ref.Level+1 >= s.LevelCount() {
		return NO_NODE
	}
	return NodeRef{Level: ref.Level + 1, Index: node.LinkUp}
}

// NodeDown は1段細かい対応ノードを返す。
func (s *MeshSkeleton) NodeDown(ref NodeRef) NodeRef {
	node, ok := s.Node(ref)
	if !ok || node.LinkDown == NO_LINK || ref.Level == 0 {
		return NO_NODE
	}
	return NodeRef{Level: ref.Level - 1, Index: node.LinkDown}
}

// ArcUp は1段粗い対応アークを返す。
func (s *MeshSkeleton) ArcUp(ref ArcRef) ArcRef {
	arc, ok := s.Arc(ref)
	if !ok || arc.LinkUp == NO_LINK || ref.Level+1 >= s.LevelCount() {
		return NO_ARC
	}
	return ArcRef{Level: ref.Level + 1, Index: arc.LinkUp}
}

// ArcNodes はアーク両端のノード参照を返す。
func (s *MeshSkeleton) ArcNodes(ref ArcRef) (NodeRef, NodeRef) {
	arc, ok := s.Arc(ref)
	if !ok {
		return NO_NODE, NO_NODE
	}
	return NodeRef{Level: ref.Level, Index: arc.Head}, NodeRef{Level: ref.Level, Index: arc.Tail}
}

// NodeArcs はノードに接続するアーク参照を返す。
func (s *MeshSkeleton) NodeArcs(ref NodeRef) []ArcRef {
	node, ok := s.Node(ref)
	if !ok {
		return nil
	}
	arcs := make([]ArcRef, len(node.Arcs))
	for i, arc := range node.Arcs {
		arcs[i] = ArcRef{Level: ref.Level, Index: arc}
	}
	return arcs
}

// upChain はrefから粗い方向へ辿れるノード列を返す。
func (s *MeshSkeleton) upChain(ref NodeRef) []NodeRef {
	chain := make([]NodeRef, 0, s.LevelCount())
	for current := ref; current.IsValid() && len(chain) <= s.LevelCount(); current = s.NodeUp(current) {
		chain = append(chain, current)
	}
	return chain
}

// Equivalent は2ノードが解像度リンクで同じ位置を指すか判定する。
func (s *MeshSkeleton) Equivalent(a NodeRef, b NodeRef) bool {
	if a == b {
		return a.IsValid()
	}
	for _, ref := range s.upChain(a) {
		if ref == b {
			return true
		}
	}
	for _, ref := range s.upChain(b) {
		if ref == a {
			return true
		}
	}
	return false
}

// OtherNode はnodeと反対側のアーク端を返す。
func (s *MeshSkeleton) OtherNode(arc ArcRef, node NodeRef) NodeRef {
	head, tail := s.ArcNodes(arc)
	if s.Equivalent(head, node) {
		return tail
	}
	return head
}

// NodeShape はノードの部分木形状値を比較用の剰余で返す。
func (s *MeshSkeleton) NodeShape(ref NodeRef) int {
	level := s.Level(ref.Level)
	if level == nil || ref.Index < 0 || ref.Index >= len(level.Nodes) {
		return 0
	}
	return bgraph.SubtreeShape(level, ref.Index, -1) % bgraph.SHAPE_LEVELS
}

// Annotate は対称情報を持たないレベルに対称判定を行い、判定したレベル数を返す。
func (s *MeshSkeleton) Annotate(limit float64) int {
	count := 0
	for _, level := range s.Levels {
		if level == nil || len(level.Nodes) == 0 || level.HasSymmetry() {
			continue
		}
		if bgraph.MarkdownSymmetry(level, level.Head, limit) {
			count++
		}
	}
	return count
}

// Validate は参照とリンクの整合を検証する。
func (s *MeshSkeleton) Validate() error {
	if s == nil || len(s.Levels) == 0 {
		return merr.NewNoMeshSkeleton()
	}
	for li, level := range s.Levels {
		if level == nil || len(level.Nodes) == 0 {
			return fmt.Errorf("レベル%dにノードがありません: %w", li, merr.NewNoMeshSkeleton())
		}
		if level.Head < 0 || level.Head >= len(level.Nodes) {
			return fmt.Errorf("レベル%dの頭ノード: %w", li, merr.NewIndexOutOfRange(level.Head, len(level.Nodes)))
		}
		var coarser, finer *Level
		if li+1 < len(s.Levels) {
			coarser = s.Levels[li+1]
		}
		if li > 0 {
			finer = s.Levels[li-1]
		}
		for ni, node := range level.Nodes {
			if err := validateLink(node.LinkUp, coarser); err != nil {
				return fmt.Errorf("レベル%dノード%dの上位リンク: %w", li, ni, err)
			}
			if err := validateLink(node.LinkDown, finer); err != nil {
				return fmt.Errorf("レベル%dノード%dの下位リンク: %w", li, ni, err)
			}
		}
		for ai, arc := range level.Arcs {
			if arc.Head < 0 || arc.Head >= len(level.Nodes) {
				return fmt.Errorf("レベル%dアーク%dの始点: %w", li, ai, merr.NewIndexOutOfRange(arc.Head, len(level.Nodes)))
			}
			if arc.Tail < 0 || arc.Tail >= len(level.Nodes) {
				return fmt.Errorf("レベル%dアーク%dの終点: %w", li, ai, merr.NewIndexOutOfRange(arc.Tail, len(level.Nodes)))
			}
			if arc.LinkUp != NO_LINK && (coarser == nil || arc.LinkUp < 0 || arc.LinkUp >= len(coarser.Arcs)) {
				return fmt.Errorf("レベル%dアーク%dの上位リンク: %w", li, ai, merr.NewIndexOutOfRange(arc.LinkUp, levelArcCount(coarser)))
			}
		}
	}
	return nil
}

func validateLink(link int, level *Level) error {
	if link == NO_LINK {
		return nil
	}
	if level == nil || link < 0 || link >= len(level.Nodes) {
		count := 0
		if level != nil {
			count = len(level.Nodes)
		}
		return merr.NewIndexOutOfRange(link, count)
	}
	return nil
}

func levelArcCount(level *Level) int {
	if level == nil {
		return 0
	}
	return len(level.Arcs)
}
