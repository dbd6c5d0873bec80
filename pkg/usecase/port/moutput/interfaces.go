// 指示: miu200521358
package moutput

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
)

// IRigReader はリグ読み込み契約を表す。
type IRigReader interface {
	CanLoad(path string) bool
	InferName(path string) string
	Load(path string) (*model.Rig, error)
}

// IRigWriter はリグ保存契約を表す。
type IRigWriter interface {
	CanSave(path string) bool
	Save(path string, rig *model.Rig) error
}

// IMeshReader はメッシュスケルトン読み込み契約を表す。
type IMeshReader interface {
	CanLoad(path string) bool
	Load(path string) (*reeb.MeshSkeleton, error)
}
