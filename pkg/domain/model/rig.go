// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// ConstraintType は姿勢拘束の種別を表す。
type ConstraintType string

const (
	// CONSTRAINT_TYPE_IK は運動連鎖(IK)拘束。
	CONSTRAINT_TYPE_IK ConstraintType = "ik"
	// CONSTRAINT_TYPE_COPY_ROTATION は回転コピー拘束。
	CONSTRAINT_TYPE_COPY_ROTATION ConstraintType = "copy_rotation"
	// CONSTRAINT_TYPE_COPY_LOCATION は位置コピー拘束。
	CONSTRAINT_TYPE_COPY_LOCATION ConstraintType = "copy_location"
	// CONSTRAINT_TYPE_TRACK_TO は追従拘束。
	CONSTRAINT_TYPE_TRACK_TO ConstraintType = "track_to"
	// CONSTRAINT_TYPE_OTHER はその他の拘束。
	CONSTRAINT_TYPE_OTHER ConstraintType = "other"
)

// IK_POLE_TARGET_INDEX はIK拘束でポールを表すターゲット番号。
const IK_POLE_TARGET_INDEX = 1

// ConstraintTarget は拘束ターゲットを表す。
type ConstraintTarget struct {
	Object    string
	SubTarget string
}

// Constraint はボーンに付く姿勢拘束を表す。
type Constraint struct {
	Name    string
	Type    ConstraintType
	Owner   string
	Targets []ConstraintTarget
}

// IsPoleTarget はtargetIndexがポールターゲットか判定する。
func (c *Constraint) IsPoleTarget(targetIndex int) bool {
	return c != nil && c.Type == CONSTRAINT_TYPE_IK && targetIndex == IK_POLE_TARGET_INDEX
}

// Rig はボーン階層と姿勢拘束をまとめたアーマチュアを表す。
type Rig struct {
	Name        string
	Bones       *BoneCollection
	Constraints []*Constraint
}

// NewRig はRigを生成する。
func NewRig(name string) *Rig {
	return &Rig{
		Name:        name,
		Bones:       NewBoneCollection(0),
		Constraints: make([]*Constraint, 0),
	}
}

// AddBone は親名を解決してボーンを追加する。
func (r *Rig) AddBone(bone *Bone, parentName string) error {
	if r == nil || bone == nil {
		return fmt.Errorf("追加対象が未設定です")
	}
	bone.ParentIndex = -1
	if strings.TrimSpace(parentName) != "" {
		parent, err := r.Bones.GetByName(parentName)
		if err != nil {
			return fmt.Errorf("親ボーンの解決に失敗しました: bone=%s: %w", bone.Name, err)
		}
		bone.ParentIndex = parent.Index
	}
	return r.Bones.Append(bone)
}

// TargetsSelf は拘束ターゲットがこのRig自身を指すか判定する。
func (r *Rig) TargetsSelf(target ConstraintTarget) bool {
	object := strings.TrimSpace(target.Object)
	return object == "" || NormalizeBoneName(object) == NormalizeBoneName(r.Name)
}

// Copy はRigを複製する。
func (r *Rig) Copy() (*Rig, error) {
	if r == nil {
		return nil, fmt.Errorf("複製対象Rigがnilです")
	}
	bones, err := r.Bones.Copy()
	if err != nil {
		return nil, err
	}
	constraints := make([]*Constraint, 0, len(r.Constraints))
	if err := deepcopy.Copy(&constraints, r.Constraints); err != nil {
		return nil, fmt.Errorf("拘束複製に失敗しました: %w", err)
	}
	return &Rig{Name: r.Name, Bones: bones, Constraints: constraints}, nil
}
