// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

// LoadRig はリグを読み込む。
func (uc *RetargetUsecase) LoadRig(rep moutput.IRigReader, path string) (*model.Rig, error) {
	repo := rep
	if repo == nil {
		repo = uc.rigReader
	}
	if repo == nil {
		return nil, fmt.Errorf("リグ読み込みリポジトリが設定されていません")
	}
	if !repo.CanLoad(path) {
		return nil, merr.NewIoExtInvalid(path, nil)
	}
	return repo.Load(path)
}

// LoadMesh はメッシュスケルトンを読み込む。
func (uc *RetargetUsecase) LoadMesh(rep moutput.IMeshReader, path string) (*reeb.MeshSkeleton, error) {
	repo := rep
	if repo == nil {
		repo = uc.meshReader
	}
	if repo == nil {
		return nil, fmt.Errorf("メッシュスケルトン読み込みリポジトリが設定されていません")
	}
	if !repo.CanLoad(path) {
		return nil, merr.NewIoExtInvalid(path, nil)
	}
	return repo.Load(path)
}

// resolveRig は読込済みリグか、パスから読み込んだリグを返す。
func (uc *RetargetUsecase) resolveRig(path string, rig *model.Rig) (*model.Rig, error) {
	if rig != nil {
		return rig, nil
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力リグパスが未指定です")
	}
	loaded, err := uc.LoadRig(nil, path)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, fmt.Errorf("リグ読み込み結果が空です")
	}
	return loaded, nil
}

// resolveMesh は読込済みメッシュスケルトンか、パスから読み込んだものを返す。
func (uc *RetargetUsecase) resolveMesh(path string, mesh *reeb.MeshSkeleton) (*reeb.MeshSkeleton, error) {
	if mesh != nil {
		return mesh, nil
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力メッシュスケルトンパスが未指定です")
	}
	loaded, err := uc.LoadMesh(nil, path)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, fmt.Errorf("メッシュスケルトン読み込み結果が空です")
	}
	return loaded, nil
}
