// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

const (
	// TEMPLATE_SIDE_PLACEHOLDER はテンプレート名の左右置換子。
	TEMPLATE_SIDE_PLACEHOLDER = "&S"
	// TEMPLATE_NUMBER_PLACEHOLDER はテンプレート名の番号置換子。
	TEMPLATE_NUMBER_PLACEHOLDER = "&N"
)

// ApplyNameTemplate はテンプレート名の置換子を置き換える。
func ApplyNameTemplate(template string, side string, number string) string {
	name := strings.ReplaceAll(template, TEMPLATE_SIDE_PLACEHOLDER, side)
	return strings.ReplaceAll(name, TEMPLATE_NUMBER_PLACEHOLDER, number)
}

// CloneTemplate はテンプレートRigのボーンと拘束をdstへ複製し、旧index→新indexを返す。
// 名前は置換子を展開し、重複時は連番で解決する。テンプレート外の親は親無しとする。
func CloneTemplate(dst *Rig, template *Rig, side string, number string, parentName string) (map[int]int, error) {
	if dst == nil || template == nil {
		return nil, fmt.Errorf("テンプレート複製対象が未設定です")
	}
	parentIndex := -1
	if strings.TrimSpace(parentName) != "" {
		parent, err := dst.Bones.GetByName(parentName)
		if err != nil {
			return nil, fmt.Errorf("テンプレート親ボーンの解決に失敗しました: %w", err)
		}
		parentIndex = parent.Index
	}

	sources := make([]*Bone, 0, template.Bones.Len())
	if err := deepcopy.Copy(&sources, template.Bones.Values()); err != nil {
		return nil, fmt.Errorf("テンプレートボーン複製に失敗しました: %w", err)
	}

	indexMap := make(map[int]int, len(sources))
	nameMap := make(map[string]string, len(sources))
	for _, bone := range sources {
		if bone == nil {
			continue
		}
		oldIndex := bone.Index
		oldName := bone.Name
		bone.Name = dst.Bones.UniqueName(ApplyNameTemplate(bone.Name, side, number))
		if newParent, ok := indexMap[bone.ParentIndex]; ok {
			bone.ParentIndex = newParent
		} else {
			bone.ParentIndex = parentIndex
			bone.BoneFlag &^= BONE_FLAG_CONNECTED
		}
		if err := dst.Bones.Append(bone); err != nil {
			return nil, err
		}
		indexMap[oldIndex] = bone.Index
		nameMap[NormalizeBoneName(oldName)] = bone.Name
	}

	for _, constraint := range template.Constraints {
		if constraint == nil {
			continue
		}
		owner, ok := nameMap[NormalizeBoneName(constraint.Owner)]
		if !ok {
			continue
		}
		cloned := &Constraint{
			Name:    ApplyNameTemplate(constraint.Name, side, number),
			Type:    constraint.Type,
			Owner:   owner,
			Targets: make([]ConstraintTarget, 0, len(constraint.Targets)),
		}
		for _, target := range constraint.Targets {
			subTarget := target.SubTarget
			object := target.Object
			if renamed, exists := nameMap[NormalizeBoneName(subTarget)]; exists && template.TargetsSelf(target) {
				subTarget = renamed
				object = dst.Name
			}
			cloned.Targets = append(cloned.Targets, ConstraintTarget{Object: object, SubTarget: subTarget})
		}
		dst.Constraints = append(dst.Constraints, cloned)
	}
	return indexMap, nil
}
