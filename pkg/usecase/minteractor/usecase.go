// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"

// RetargetUsecaseDeps はリターゲットユースケースの依存を表す。
type RetargetUsecaseDeps struct {
	RigReader  moutput.IRigReader
	RigWriter  moutput.IRigWriter
	MeshReader moutput.IMeshReader
}

// RetargetUsecase はリグ読込からリターゲット、保存までをまとめたユースケースを表す。
type RetargetUsecase struct {
	rigReader  moutput.IRigReader
	rigWriter  moutput.IRigWriter
	meshReader moutput.IMeshReader
}

// NewRetargetUsecase はリターゲットユースケースを生成する。
func NewRetargetUsecase(deps RetargetUsecaseDeps) *RetargetUsecase {
	return &RetargetUsecase{
		rigReader:  deps.RigReader,
		rigWriter:  deps.RigWriter,
		meshReader: deps.MeshReader,
	}
}
