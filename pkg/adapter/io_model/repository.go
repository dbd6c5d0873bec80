// 指示: miu200521358
// Package io_model は拡張子に応じてリグの読み書き先を振り分ける。
package io_model

import (
	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model/skel"
	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

// rigLoader は拡張子単位のリグ読み込み契約を表す。
type rigLoader interface {
	CanLoad(path string) bool
	InferName(path string) string
	Load(path string) (*model.Rig, error)
}

// RigRepository はskel形式とVRM/GLBのリグ入出力を束ねる。保存はskel形式のみ。
type RigRepository struct {
	loaders []rigLoader
	writer  *skel.RigRepository
}

// NewRigRepository はRigRepositoryを生成する。
func NewRigRepository() *RigRepository {
	writer := skel.NewRigRepository()
	return &RigRepository{
		loaders: []rigLoader{writer, vrm.NewVrmRepository()},
		writer:  writer,
	}
}

// CanLoad はいずれかの形式で読み込めるか判定する。
func (r *RigRepository) CanLoad(path string) bool {
	return r.loaderFor(path) != nil
}

// InferName はパスから表示名を推定する。
func (r *RigRepository) InferName(path string) string {
	if loader := r.loaderFor(path); loader != nil {
		return loader.InferName(path)
	}
	return r.writer.InferName(path)
}

// Load は拡張子に対応する形式でリグを読み込む。
func (r *RigRepository) Load(path string) (*model.Rig, error) {
	loader := r.loaderFor(path)
	if loader == nil {
		return nil, merr.NewIoExtInvalid(path, nil)
	}
	return loader.Load(path)
}

// CanSave は保存可否を判定する。
func (r *RigRepository) CanSave(path string) bool {
	return r.writer.CanSave(path)
}

// Save はリグをskel形式で保存する。
func (r *RigRepository) Save(path string, rig *model.Rig) error {
	return r.writer.Save(path, rig)
}

func (r *RigRepository) loaderFor(path string) rigLoader {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return loader
		}
	}
	return nil
}
