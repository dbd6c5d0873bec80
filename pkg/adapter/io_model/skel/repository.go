// 指示: miu200521358
package skel

import (
	"fmt"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

// LoadProgressEventType は読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileParsed はファイル解析完了イベントを表す。
	LoadProgressEventTypeFileParsed LoadProgressEventType = "file_parsed"
	// LoadProgressEventTypeCompleted は読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent は読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type       LoadProgressEventType
	Path       string
	BoneCount  int
	LevelCount int
	ArcCount   int
}

// RigRepository はリグファイルの読み書きを表す。
type RigRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewRigRepository はRigRepositoryを生成する。
func NewRigRepository() *RigRepository {
	return &RigRepository{}
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *RigRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *RigRepository) CanLoad(path string) bool {
	return canLoad(path)
}

// InferName はパスから表示名を推定する。
func (r *RigRepository) InferName(path string) string {
	return inferName(path)
}

// Load はリグを読み込む。名前が無い場合はファイル名を使う。
func (r *RigRepository) Load(path string) (*model.Rig, error) {
	doc := rigDocument{}
	if err := readDocument(path, "リグ", &doc); err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:      LoadProgressEventTypeFileParsed,
		Path:      path,
		BoneCount: len(doc.Bones),
	})
	rig, err := doc.toRig(r.InferName(path))
	if err != nil {
		return nil, merr.NewIoParseFailed("リグの構築に失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:      LoadProgressEventTypeCompleted,
		Path:      path,
		BoneCount: rig.Bones.Len(),
	})
	return rig, nil
}

// CanSave は拡張子に応じて保存可否を判定する。
func (r *RigRepository) CanSave(path string) bool {
	return canLoad(path)
}

// Save はリグを拡張子に応じた形式で保存する。
func (r *RigRepository) Save(path string, rig *model.Rig) error {
	if rig == nil {
		return fmt.Errorf("保存対象リグが未設定です")
	}
	return writeDocument(path, "リグ", newRigDocument(rig))
}

func (r *RigRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// MeshRepository はメッシュスケルトンファイルの読み書きを表す。
type MeshRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewMeshRepository はMeshRepositoryを生成する。
func NewMeshRepository() *MeshRepository {
	return &MeshRepository{}
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *MeshRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *MeshRepository) CanLoad(path string) bool {
	return canLoad(path)
}

// InferName はパスから表示名を推定する。
func (r *MeshRepository) InferName(path string) string {
	return inferName(path)
}

// Load はメッシュスケルトンを読み込み、参照とリンクの整合を検証する。
func (r *MeshRepository) Load(path string) (*reeb.MeshSkeleton, error) {
	doc := meshDocument{}
	if err := readDocument(path, "メッシュスケルトン", &doc); err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:       LoadProgressEventTypeFileParsed,
		Path:       path,
		LevelCount: len(doc.Levels),
	})
	skeleton, err := doc.toMeshSkeleton(r.InferName(path))
	if err != nil {
		return nil, merr.NewIoParseFailed("メッシュスケルトンの構築に失敗しました", err)
	}
	arcCount := 0
	for _, level := range skeleton.Levels {
		arcCount += level.ArcCount()
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:       LoadProgressEventTypeCompleted,
		Path:       path,
		LevelCount: skeleton.LevelCount(),
		ArcCount:   arcCount,
	})
	return skeleton, nil
}

// Save はメッシュスケルトンを拡張子に応じた形式で保存する。
func (r *MeshRepository) Save(path string, skeleton *reeb.MeshSkeleton) error {
	if skeleton == nil {
		return fmt.Errorf("保存対象メッシュスケルトンが未設定です")
	}
	return writeDocument(path, "メッシュスケルトン", newMeshDocument(skeleton))
}

func (r *MeshRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}
