// 指示: miu200521358
package model

import (
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// BoneFlag はボーンの状態フラグを表す。
type BoneFlag uint32

const (
	// BONE_FLAG_NONE はフラグ無し。
	BONE_FLAG_NONE BoneFlag = 0
	// BONE_FLAG_NO_DEFORM は変形に使わないボーン。
	BONE_FLAG_NO_DEFORM BoneFlag = 1 << 0
	// BONE_FLAG_LOCKED は編集ロックされたボーン。
	BONE_FLAG_LOCKED BoneFlag = 1 << 1
	// BONE_FLAG_CONNECTED は親の先端に根元が接続されたボーン。
	BONE_FLAG_CONNECTED BoneFlag = 1 << 2
	// BONE_FLAG_SELECTED は選択中のボーン。
	BONE_FLAG_SELECTED BoneFlag = 1 << 3
	// BONE_FLAG_TIP_SELECTED は先端が選択中のボーン。
	BONE_FLAG_TIP_SELECTED BoneFlag = 1 << 4
)

// HEAD_BONE_NAME は頭ノードを指定するボーン名。
const HEAD_BONE_NAME = "head"

// Bone はボーンを表す。
type Bone struct {
	Index       int
	Name        string
	Head        mmath.Vec3
	Tail        mmath.Vec3
	Roll        float64
	ParentIndex int
	BoneFlag    BoneFlag
}

// NewBone はボーンを生成する。
func NewBone(name string, head mmath.Vec3, tail mmath.Vec3) *Bone {
	return &Bone{
		Index:       -1,
		Name:        name,
		Head:        head,
		Tail:        tail,
		ParentIndex: -1,
	}
}

// IsDeform は変形ボーンか判定する。
func (b *Bone) IsDeform() bool {
	return b != nil && b.BoneFlag&BONE_FLAG_NO_DEFORM == 0
}

// IsLocked は編集ロックされているか判定する。
func (b *Bone) IsLocked() bool {
	return b != nil && b.BoneFlag&BONE_FLAG_LOCKED != 0
}

// IsConnected は親と接続されているか判定する。
func (b *Bone) IsConnected() bool {
	return b != nil && b.BoneFlag&BONE_FLAG_CONNECTED != 0
}

// IsSelected は選択中か判定する。
func (b *Bone) IsSelected() bool {
	return b != nil && b.BoneFlag&BONE_FLAG_SELECTED != 0
}

// IsTipSelected は本体か先端が選択中か判定する。
func (b *Bone) IsTipSelected() bool {
	return b != nil && b.BoneFlag&(BONE_FLAG_SELECTED|BONE_FLAG_TIP_SELECTED) != 0
}

// HasParent は親を持つか判定する。
func (b *Bone) HasParent() bool {
	return b != nil && b.ParentIndex >= 0
}

// Direction は根元から先端への方向を返す。
func (b *Bone) Direction() mmath.Vec3 {
	return b.Tail.Subed(b.Head)
}

// Length はボーン長を返す。
func (b *Bone) Length() float64 {
	return b.Direction().Length()
}

// UpAxis はロールを反映したボーンのZ軸を返す。
func (b *Bone) UpAxis() mmath.Vec3 {
	return mmath.BoneUpAxis(b.Direction(), b.Roll)
}

// NormalizeBoneName は名前照合用に前後空白除去、NFC正規化、全角半角の統一を行う。
func NormalizeBoneName(name string) string {
	return width.Fold.String(norm.NFC.String(strings.TrimSpace(name)))
}
