// 指示: miu200521358
package model

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"github.com/tiendc/go-deepcopy"
	"github.com/zeebo/blake3"
)

// BoneCollection はindex順のボーン集合を表す。
type BoneCollection struct {
	values      []*Bone
	nameIndexes map[string]int
}

// NewBoneCollection はボーン集合を生成する。
func NewBoneCollection(capacity int) *BoneCollection {
	return &BoneCollection{
		values:      make([]*Bone, 0, capacity),
		nameIndexes: make(map[string]int, capacity),
	}
}

// Len は件数を返す。
func (c *BoneCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Values は全ボーンを返す。
func (c *BoneCollection) Values() []*Bone {
	if c == nil {
		return nil
	}
	return c.values
}

// Append はボーンを末尾に追加し、indexを設定する。
func (c *BoneCollection) Append(bone *Bone) error {
	if bone == nil {
		return fmt.Errorf("追加対象ボーンがnilです")
	}
	key := NormalizeBoneName(bone.Name)
	if key == "" {
		return fmt.Errorf("ボーン名が空です")
	}
	if _, exists := c.nameIndexes[key]; exists {
		return merr.NewNameConflict(bone.Name)
	}
	bone.Index = len(c.values)
	c.values = append(c.values, bone)
	c.nameIndexes[key] = bone.Index
	return nil
}

// Get はindexのボーンを返す。
func (c *BoneCollection) Get(index int) (*Bone, error) {
	if c == nil || index < 0 || index >= len(c.values) {
		return nil, merr.NewIndexOutOfRange(index, c.Len())
	}
	return c.values[index], nil
}

// GetByName は名前でボーンを返す。
func (c *BoneCollection) GetByName(name string) (*Bone, error) {
	if c == nil {
		return nil, merr.NewNameNotFound(name)
	}
	index, ok := c.nameIndexes[NormalizeBoneName(name)]
	if !ok {
		return nil, merr.NewNameNotFound(name)
	}
	return c.values[index], nil
}

// ContainsByName は名前が登録済みか判定する。
func (c *BoneCollection) ContainsByName(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.nameIndexes[NormalizeBoneName(name)]
	return ok
}

// Parent は親ボーンを返す。
func (c *BoneCollection) Parent(bone *Bone) (*Bone, bool) {
	if bone == nil || !bone.HasParent() {
		return nil, false
	}
	parent, err := c.Get(bone.ParentIndex)
	if err != nil {
		return nil, false
	}
	return parent, true
}

// ChildrenMap は親index毎の子index一覧をindex昇順で返す。
func (c *BoneCollection) ChildrenMap() map[int][]int {
	children := map[int][]int{}
	for _, bone := range c.Values() {
		if bone == nil || !bone.HasParent() {
			continue
		}
		children[bone.ParentIndex] = append(children[bone.ParentIndex], bone.Index)
	}
	return children
}

// Roots は親を持たないボーンindexを返す。
func (c *BoneCollection) Roots() []int {
	roots := make([]int, 0)
	for _, bone := range c.Values() {
		if bone == nil {
			continue
		}
		if !bone.HasParent() || bone.ParentIndex >= c.Len() {
			roots = append(roots, bone.Index)
		}
	}
	return roots
}

// IsAncestor はancestorがindexの祖先(自身を含む)か判定する。
func (c *BoneCollection) IsAncestor(ancestor int, index int) bool {
	visited := map[int]struct{}{}
	for current := index; current >= 0 && current < c.Len(); {
		if current == ancestor {
			return true
		}
		if _, seen := visited[current]; seen {
			return false
		}
		visited[current] = struct{}{}
		current = c.values[current].ParentIndex
	}
	return false
}

// UniqueName は既存名と衝突しない名前を返す。
func (c *BoneCollection) UniqueName(base string) string {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = fmt.Sprintf("Bone_%d", c.Len())
	}
	candidate := trimmed
	serial := 2
	for c.ContainsByName(candidate) {
		candidate = fmt.Sprintf("%s_%d", trimmed, serial)
		serial++
	}
	return candidate
}

// Copy はボーン集合を複製する。
func (c *BoneCollection) Copy() (*BoneCollection, error) {
	copied := NewBoneCollection(c.Len())
	if c == nil {
		return copied, nil
	}
	values := make([]*Bone, 0, len(c.values))
	if err := deepcopy.Copy(&values, c.values); err != nil {
		return nil, fmt.Errorf("ボーン複製に失敗しました: %w", err)
	}
	copied.values = values
	for _, bone := range values {
		copied.nameIndexes[NormalizeBoneName(bone.Name)] = bone.Index
	}
	return copied, nil
}

// Hash はボーン配置のblake3ハッシュを返す。
func (c *BoneCollection) Hash() string {
	hasher := blake3.New()
	buf := make([]byte, 8)
	writeFloat := func(value float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(value))
		_, _ = hasher.Write(buf)
	}
	for _, bone := range c.Values() {
		if bone == nil {
			continue
		}
		_, _ = hasher.Write([]byte(bone.Name))
		_, _ = hasher.Write([]byte{0})
		for _, value := range []float64{
			bone.Head.X, bone.Head.Y, bone.Head.Z,
			bone.Tail.X, bone.Tail.Y, bone.Tail.Z,
			bone.Roll, float64(bone.ParentIndex), float64(bone.BoneFlag),
		} {
			writeFloat(value)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
