// 指示: miu200521358
package reeb

import (
	"errors"
	"testing"

	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

// newTwoLevelSkeleton はY字の細かいレベルと1本の粗いレベルを持つスケルトンを生成する。
func newTwoLevelSkeleton() *MeshSkeleton {
	fine := NewLevel()
	center := fine.AddNode(mmath.NewVec3(0, 0, 0))
	root := fine.AddNode(mmath.NewVec3(0, -2, 0))
	left := fine.AddNode(mmath.NewVec3(1, 0.5, 0))
	right := fine.AddNode(mmath.NewVec3(-1, 0.5, 0))
	fine.AddArc(root, center, []Bucket{{Position: mmath.NewVec3(0, -1, 0)}})
	fine.AddArc(center, left, []Bucket{
		{Position: mmath.NewVec3(0.3, 0.15, 0)},
		{Position: mmath.NewVec3(0.6, 0.3, 0)},
	})
	fine.AddArc(center, right, nil)
	fine.Head = root

	coarse := NewLevel()
	coarseRoot := coarse.AddNode(mmath.NewVec3(0, -2, 0))
	coarseEnd := coarse.AddNode(mmath.NewVec3(1, 0.5, 0))
	coarse.AddArc(coarseRoot, coarseEnd, nil)

	fine.Nodes[root].LinkUp = coarseRoot
	fine.Nodes[left].LinkUp = coarseEnd
	coarse.Nodes[coarseRoot].LinkDown = root
	coarse.Nodes[coarseEnd].LinkDown = left
	fine.Arcs[1].LinkUp = 0

	return NewMeshSkeleton("mesh", fine, coarse)
}

func TestEquivalentFollowsLinks(t *testing.T) {
	s := newTwoLevelSkeleton()
	if !s.Equivalent(NodeRef{Level: 0, Index: 1}, NodeRef{Level: 1, Index: 0}) {
		t.Fatalf("linked nodes should be equivalent")
	}
	if s.Equivalent(NodeRef{Level: 0, Index: 0}, NodeRef{Level: 1, Index: 0}) {
		t.Fatalf("center should not be equivalent to coarse root")
	}
	other := s.OtherNode(ArcRef{Level: 1, Index: 0}, NodeRef{Level: 0, Index: 1})
	if other != (NodeRef{Level: 1, Index: 1}) {
		t.Fatalf("other node mismatch: %+v", other)
	}
	if up := s.ArcUp(ArcRef{Level: 0, Index: 1}); up != (ArcRef{Level: 1, Index: 0}) {
		t.Fatalf("arc up mismatch: %+v", up)
	}
	if up := s.ArcUp(ArcRef{Level: 1, Index: 0}); up.IsValid() {
		t.Fatalf("coarsest arc should have no up link: %+v", up)
	}
}

func TestNodeShape(t *testing.T) {
	s := newTwoLevelSkeleton()
	if got := s.NodeShape(NodeRef{Level: 0, Index: 0}); got != 31 {
		t.Fatalf("center shape mismatch: %d", got)
	}
	if got := s.NodeShape(NodeRef{Level: 0, Index: 1}); got != 211%bgraph.SHAPE_LEVELS {
		t.Fatalf("root shape mismatch: %d", got)
	}
}

func TestArcIteratorBothDirections(t *testing.T) {
	s := newTwoLevelSkeleton()
	forward := s.NewArcIterator(ArcRef{Level: 0, Index: 1}, true)
	backward := s.NewArcIterator(ArcRef{Level: 0, Index: 1}, false)
	if forward.Len() != 2 || backward.Len() != 2 {
		t.Fatalf("length mismatch: %d %d", forward.Len(), backward.Len())
	}
	first, _ := forward.Next()
	last, _ := backward.Next()
	if !first.Position.NearEquals(mmath.NewVec3(0.3, 0.15, 0), 1e-12) {
		t.Fatalf("forward order mismatch: %v", first.Position)
	}
	if !last.Position.NearEquals(mmath.NewVec3(0.6, 0.3, 0), 1e-12) {
		t.Fatalf("backward order mismatch: %v", last.Position)
	}
	forward.Next()
	if _, ok := forward.Next(); ok {
		t.Fatalf("iterator should be exhausted")
	}
	forward.Reset()
	if again, ok := forward.Next(); !ok || again != first {
		t.Fatalf("reset should restart iteration")
	}
}

func TestValidateRejectsBrokenLinks(t *testing.T) {
	s := newTwoLevelSkeleton()
	if err := s.Validate(); err != nil {
		t.Fatalf("valid skeleton rejected: %v", err)
	}
	s.Levels[0].Nodes[0].LinkUp = 9
	if err := s.Validate(); !errors.Is(err, merr.ErrIndexOutOfRange) {
		t.Fatalf("broken link should fail: %v", err)
	}
	if err := (&MeshSkeleton{}).Validate(); !errors.Is(err, merr.ErrNoMeshSkeleton) {
		t.Fatalf("empty skeleton should fail: %v", err)
	}
}

func TestAnnotateMarksLevelsOnce(t *testing.T) {
	s := newTwoLevelSkeleton()
	if got := s.Annotate(bgraph.DEFAULT_SYMMETRY_LIMIT); got != 2 {
		t.Fatalf("annotated level count mismatch: %d", got)
	}
	center := s.Levels[0].Nodes[0]
	if center.Symmetry.Flag&bgraph.SYMMETRY_FLAG_AXIAL == 0 {
		t.Fatalf("center should be axial: %v", center.Symmetry.Flag)
	}
	if got := s.Annotate(bgraph.DEFAULT_SYMMETRY_LIMIT); got != 0 {
		t.Fatalf("annotated levels should be skipped: %d", got)
	}
}

func TestCopyKeepsSourceUnannotated(t *testing.T) {
	s := newTwoLevelSkeleton()
	copied, err := s.Copy()
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if copied.Annotate(bgraph.DEFAULT_SYMMETRY_LIMIT) != 2 {
		t.Fatalf("copy should be annotated")
	}
	for i, level := range s.Levels {
		if level.HasSymmetry() {
			t.Fatalf("source level %d should stay unannotated", i)
		}
	}
	if copied.Levels[0].Arcs[0].LinkUp != s.Levels[0].Arcs[0].LinkUp {
		t.Fatalf("links should be copied")
	}
	copied.Levels[0].Nodes[0].Position = mmath.NewVec3(9, 9, 9)
	if s.Levels[0].Nodes[0].Position.Distance(mmath.NewVec3(9, 9, 9)) < 1e-9 {
		t.Fatalf("nodes should not be shared")
	}
}

func TestUsageTable(t *testing.T) {
	s := newTwoLevelSkeleton()
	table := NewUsageTable(s)
	ref := ArcRef{Level: 0, Index: 2}
	if !table.IsFree(ref) {
		t.Fatalf("new table should be free")
	}
	table.Set(ref, USAGE_FLAG_TAKEN)
	if table.Flag(ref) != USAGE_FLAG_TAKEN {
		t.Fatalf("flag mismatch: %v", table.Flag(ref))
	}
	if table.IsFree(ArcRef{Level: 3, Index: 0}) {
		t.Fatalf("out of range should not be free")
	}
}
