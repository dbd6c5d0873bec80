// 指示: miu200521358
package skel

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

// rigDocument はリグファイルの構造を表す。
type rigDocument struct {
	Name        string               `yaml:"name" json:"name"`
	Bones       []boneDocument       `yaml:"bones" json:"bones"`
	Constraints []constraintDocument `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

type boneDocument struct {
	Name   string     `yaml:"name" json:"name"`
	Parent string     `yaml:"parent,omitempty" json:"parent,omitempty"`
	Head   [3]float64 `yaml:"head,flow" json:"head"`
	Tail   [3]float64 `yaml:"tail,flow" json:"tail"`
	Roll   float64    `yaml:"roll,omitempty" json:"roll,omitempty"`
	Flags  []string   `yaml:"flags,omitempty,flow" json:"flags,omitempty"`
}

type constraintDocument struct {
	Name    string           `yaml:"name" json:"name"`
	Type    string           `yaml:"type" json:"type"`
	Owner   string           `yaml:"owner" json:"owner"`
	Targets []targetDocument `yaml:"targets" json:"targets"`
}

type targetDocument struct {
	Object    string `yaml:"object,omitempty" json:"object,omitempty"`
	SubTarget string `yaml:"subtarget" json:"subtarget"`
}

// meshDocument はメッシュスケルトンファイルの構造を表す。levelsは細かい順。
type meshDocument struct {
	Name   string          `yaml:"name" json:"name"`
	Levels []levelDocument `yaml:"levels" json:"levels"`
}

type levelDocument struct {
	Head  int            `yaml:"head" json:"head"`
	Nodes []nodeDocument `yaml:"nodes" json:"nodes"`
	Arcs  []arcDocument  `yaml:"arcs" json:"arcs"`
}

type nodeDocument struct {
	Position [3]float64  `yaml:"position,flow" json:"position"`
	Normal   *[3]float64 `yaml:"normal,omitempty,flow" json:"normal,omitempty"`
	LinkUp   *int        `yaml:"link_up,omitempty" json:"link_up,omitempty"`
	LinkDown *int        `yaml:"link_down,omitempty" json:"link_down,omitempty"`
}

type arcDocument struct {
	Head     int               `yaml:"head" json:"head"`
	Tail     int               `yaml:"tail" json:"tail"`
	LinkUp   *int              `yaml:"link_up,omitempty" json:"link_up,omitempty"`
	Buckets  []bucketDocument  `yaml:"buckets" json:"buckets"`
	Symmetry *symmetryDocument `yaml:"symmetry,omitempty" json:"symmetry,omitempty"`
}

type bucketDocument struct {
	Position [3]float64  `yaml:"position,flow" json:"position"`
	Normal   *[3]float64 `yaml:"normal,omitempty,flow" json:"normal,omitempty"`
}

type symmetryDocument struct {
	Level int `yaml:"level" json:"level"`
	Flag  int `yaml:"flag" json:"flag"`
	Group int `yaml:"group" json:"group"`
}

// boneFlagNames はファイル上のフラグ名とボーンフラグの対応。
var boneFlagNames = []struct {
	name string
	flag model.BoneFlag
}{
	{"no_deform", model.BONE_FLAG_NO_DEFORM},
	{"locked", model.BONE_FLAG_LOCKED},
	{"connected", model.BONE_FLAG_CONNECTED},
	{"selected", model.BONE_FLAG_SELECTED},
	{"tip_selected", model.BONE_FLAG_TIP_SELECTED},
}

func parseBoneFlags(names []string) (model.BoneFlag, error) {
	flag := model.BONE_FLAG_NONE
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		found := false
		for _, entry := range boneFlagNames {
			if entry.name == normalized {
				flag |= entry.flag
				found = true
				break
			}
		}
		if !found {
			return flag, fmt.Errorf("未対応のボーンフラグです: %s", name)
		}
	}
	return flag, nil
}

func formatBoneFlags(flag model.BoneFlag) []string {
	names := make([]string, 0)
	for _, entry := range boneFlagNames {
		if flag&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

func parseConstraintType(value string) model.ConstraintType {
	switch model.ConstraintType(strings.ToLower(strings.TrimSpace(value))) {
	case model.CONSTRAINT_TYPE_IK:
		return model.CONSTRAINT_TYPE_IK
	case model.CONSTRAINT_TYPE_COPY_ROTATION:
		return model.CONSTRAINT_TYPE_COPY_ROTATION
	case model.CONSTRAINT_TYPE_COPY_LOCATION:
		return model.CONSTRAINT_TYPE_COPY_LOCATION
	case model.CONSTRAINT_TYPE_TRACK_TO:
		return model.CONSTRAINT_TYPE_TRACK_TO
	}
	return model.CONSTRAINT_TYPE_OTHER
}

// toRig はファイル内容からRigを組み立てる。親は名前で後から解決するので記述順は問わない。
func (d *rigDocument) toRig(fallbackName string) (*model.Rig, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = fallbackName
	}
	rig := model.NewRig(name)
	for _, doc := range d.Bones {
		flag, err := parseBoneFlags(doc.Flags)
		if err != nil {
			return nil, err
		}
		bone := model.NewBone(doc.Name, mmath.Vec3FromArray(doc.Head), mmath.Vec3FromArray(doc.Tail))
		bone.Roll = doc.Roll
		bone.BoneFlag = flag
		if err := rig.Bones.Append(bone); err != nil {
			return nil, err
		}
	}
	for i, doc := range d.Bones {
		if strings.TrimSpace(doc.Parent) == "" {
			continue
		}
		parent, err := rig.Bones.GetByName(doc.Parent)
		if err != nil {
			return nil, fmt.Errorf("ボーン%sの親: %w", doc.Name, err)
		}
		bone, _ := rig.Bones.Get(i)
		bone.ParentIndex = parent.Index
	}
	if err := checkParentLoops(rig.Bones); err != nil {
		return nil, err
	}
	for _, doc := range d.Constraints {
		constraint := &model.Constraint{
			Name:    doc.Name,
			Type:    parseConstraintType(doc.Type),
			Owner:   doc.Owner,
			Targets: make([]model.ConstraintTarget, 0, len(doc.Targets)),
		}
		for _, target := range doc.Targets {
			constraint.Targets = append(constraint.Targets, model.ConstraintTarget{
				Object:    target.Object,
				SubTarget: target.SubTarget,
			})
		}
		rig.Constraints = append(rig.Constraints, constraint)
	}
	return rig, nil
}

// checkParentLoops は親をたどって循環が無いことを確認する。
func checkParentLoops(bones *model.BoneCollection) error {
	count := bones.Len()
	for _, bone := range bones.Values() {
		current := bone
		for steps := 0; current.HasParent(); steps++ {
			if steps >= count {
				return fmt.Errorf("ボーン%sの親子関係が循環しています", bone.Name)
			}
			parent, ok := bones.Parent(current)
			if !ok {
				return merr.NewIndexOutOfRange(current.ParentIndex, count)
			}
			current = parent
		}
	}
	return nil
}

func newRigDocument(rig *model.Rig) *rigDocument {
	doc := &rigDocument{
		Name:        rig.Name,
		Bones:       make([]boneDocument, 0, rig.Bones.Len()),
		Constraints: make([]constraintDocument, 0, len(rig.Constraints)),
	}
	for _, bone := range rig.Bones.Values() {
		parentName := ""
		if parent, ok := rig.Bones.Parent(bone); ok {
			parentName = parent.Name
		}
		doc.Bones = append(doc.Bones, boneDocument{
			Name:   bone.Name,
			Parent: parentName,
			Head:   bone.Head.Vector(),
			Tail:   bone.Tail.Vector(),
			Roll:   bone.Roll,
			Flags:  formatBoneFlags(bone.BoneFlag),
		})
	}
	for _, constraint := range rig.Constraints {
		if constraint == nil {
			continue
		}
		targets := make([]targetDocument, 0, len(constraint.Targets))
		for _, target := range constraint.Targets {
			targets = append(targets, targetDocument{Object: target.Object, SubTarget: target.SubTarget})
		}
		doc.Constraints = append(doc.Constraints, constraintDocument{
			Name:    constraint.Name,
			Type:    string(constraint.Type),
			Owner:   constraint.Owner,
			Targets: targets,
		})
	}
	return doc
}

// toMeshSkeleton はファイル内容からメッシュスケルトンを組み立てる。
func (d *meshDocument) toMeshSkeleton(fallbackName string) (*reeb.MeshSkeleton, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = fallbackName
	}
	levels := make([]*reeb.Level, 0, len(d.Levels))
	for li, levelDoc := range d.Levels {
		level := reeb.NewLevel()
		level.Head = levelDoc.Head
		for _, nodeDoc := range levelDoc.Nodes {
			index := level.AddNode(mmath.Vec3FromArray(nodeDoc.Position))
			node := level.Nodes[index]
			node.Normal = optionalVec(nodeDoc.Normal)
			node.LinkUp = optionalLink(nodeDoc.LinkUp)
			node.LinkDown = optionalLink(nodeDoc.LinkDown)
		}
		for ai, arcDoc := range levelDoc.Arcs {
			if arcDoc.Head < 0 || arcDoc.Head >= len(level.Nodes) || arcDoc.Tail < 0 || arcDoc.Tail >= len(level.Nodes) {
				return nil, fmt.Errorf("レベル%dアーク%dの端点: %w", li, ai,
					merr.NewIndexOutOfRange(max(arcDoc.Head, arcDoc.Tail), len(level.Nodes)))
			}
			buckets := make([]reeb.Bucket, 0, len(arcDoc.Buckets))
			for _, bucketDoc := range arcDoc.Buckets {
				buckets = append(buckets, reeb.Bucket{
					Position: mmath.Vec3FromArray(bucketDoc.Position),
					Normal:   optionalVec(bucketDoc.Normal),
				})
			}
			index := level.AddArc(arcDoc.Head, arcDoc.Tail, buckets)
			arc := level.Arcs[index]
			arc.LinkUp = optionalLink(arcDoc.LinkUp)
			if arcDoc.Symmetry != nil {
				arc.Symmetry = bgraph.ArcSymmetry{
					Level: arcDoc.Symmetry.Level,
					Flag:  bgraph.SymmetryFlag(arcDoc.Symmetry.Flag),
					Group: arcDoc.Symmetry.Group,
				}
			}
		}
		levels = append(levels, level)
	}
	skeleton := reeb.NewMeshSkeleton(name, levels...)
	if err := skeleton.Validate(); err != nil {
		return nil, err
	}
	return skeleton, nil
}

func newMeshDocument(skeleton *reeb.MeshSkeleton) *meshDocument {
	doc := &meshDocument{Name: skeleton.Name, Levels: make([]levelDocument, 0, skeleton.LevelCount())}
	for _, level := range skeleton.Levels {
		levelDoc := levelDocument{
			Head:  level.Head,
			Nodes: make([]nodeDocument, 0, len(level.Nodes)),
			Arcs:  make([]arcDocument, 0, len(level.Arcs)),
		}
		for _, node := range level.Nodes {
			levelDoc.Nodes = append(levelDoc.Nodes, nodeDocument{
				Position: node.Position.Vector(),
				Normal:   vecDocument(node.Normal),
				LinkUp:   linkDocument(node.LinkUp),
				LinkDown: linkDocument(node.LinkDown),
			})
		}
		for _, arc := range level.Arcs {
			arcDoc := arcDocument{
				Head:    arc.Head,
				Tail:    arc.Tail,
				LinkUp:  linkDocument(arc.LinkUp),
				Buckets: make([]bucketDocument, 0, len(arc.Buckets)),
			}
			for _, bucket := range arc.Buckets {
				arcDoc.Buckets = append(arcDoc.Buckets, bucketDocument{
					Position: bucket.Position.Vector(),
					Normal:   vecDocument(bucket.Normal),
				})
			}
			if arc.Symmetry.Level > 0 {
				arcDoc.Symmetry = &symmetryDocument{
					Level: arc.Symmetry.Level,
					Flag:  int(arc.Symmetry.Flag),
					Group: arc.Symmetry.Group,
				}
			}
			levelDoc.Arcs = append(levelDoc.Arcs, arcDoc)
		}
		doc.Levels = append(doc.Levels, levelDoc)
	}
	return doc
}

func optionalVec(values *[3]float64) mmath.Vec3 {
	if values == nil {
		return mmath.Vec3{}
	}
	return mmath.Vec3FromArray(*values)
}

func optionalLink(link *int) int {
	if link == nil {
		return reeb.NO_LINK
	}
	return *link
}

func vecDocument(v mmath.Vec3) *[3]float64 {
	if v.IsZero() {
		return nil
	}
	values := v.Vector()
	return &values
}

func linkDocument(link int) *int {
	if link == reeb.NO_LINK {
		return nil
	}
	return &link
}
