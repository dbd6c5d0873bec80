// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"github.com/miu200521358/mu_retarget/pkg/usecase/retarget"
)

// RetargetProgressEventType はリターゲット処理の進捗イベント種別を表す。
type RetargetProgressEventType string

const (
	// RetargetProgressEventTypeInputValidated は入力検証完了イベントを表す。
	RetargetProgressEventTypeInputValidated RetargetProgressEventType = "input_validated"
	// RetargetProgressEventTypeOutputPathResolved は出力パス解決完了イベントを表す。
	RetargetProgressEventTypeOutputPathResolved RetargetProgressEventType = "output_path_resolved"
	// RetargetProgressEventTypeRigLoaded はリグ読込完了イベントを表す。
	RetargetProgressEventTypeRigLoaded RetargetProgressEventType = "rig_loaded"
	// RetargetProgressEventTypeMeshLoaded はメッシュスケルトン読込完了イベントを表す。
	RetargetProgressEventTypeMeshLoaded RetargetProgressEventType = "mesh_loaded"
	// RetargetProgressEventTypeTemplateCloned はテンプレート複製完了イベントを表す。
	RetargetProgressEventTypeTemplateCloned RetargetProgressEventType = "template_cloned"
	// RetargetProgressEventTypeRetargeted はリターゲット完了イベントを表す。
	RetargetProgressEventTypeRetargeted RetargetProgressEventType = "retargeted"
	// RetargetProgressEventTypeSaved は保存完了イベントを表す。
	RetargetProgressEventTypeSaved RetargetProgressEventType = "saved"
)

// RetargetProgressEvent はリターゲット処理の進捗イベントを表す。
type RetargetProgressEvent struct {
	Type         RetargetProgressEventType
	BoneCount    int
	LevelCount   int
	ArcCount     int
	WarningCount int
	// Path は出力先パス解決時だけ設定する。
	Path string
}

// IRetargetProgressReporter はリターゲット処理の進捗通知契約を表す。
type IRetargetProgressReporter interface {
	// ReportRetargetProgress はリターゲット処理進捗を通知する。
	ReportRetargetProgress(event RetargetProgressEvent)
}

// RetargetRequest はリターゲット要求を表す。
type RetargetRequest struct {
	RigPath    string
	MeshPath   string
	OutputPath string
	// Rig と Mesh は読込済みの入力。設定されていればパスからは読まない。
	Rig  *model.Rig
	Mesh *reeb.MeshSkeleton
	// TemplatePath はリターゲット前にRigへ複製するテンプレートリグ。
	TemplatePath   string
	TemplateParent string
	Side           string
	Number         string

	Options          retarget.Options
	ProgressReporter IRetargetProgressReporter
}

// RetargetResult はリターゲット結果を表す。
type RetargetResult struct {
	Rig         *model.Rig
	Report      *retarget.Report
	OutputPath  string
	ClonedBones int
}
