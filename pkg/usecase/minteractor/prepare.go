// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_retarget/pkg/usecase/retarget"
)

// PrepareRetarget は入力を読み込み、テンプレート複製とリターゲットを行う。
// リグファイルは保存しない。
func (uc *RetargetUsecase) PrepareRetarget(ctx context.Context, request RetargetRequest) (*RetargetResult, error) {
	if request.Rig == nil && strings.TrimSpace(request.RigPath) == "" {
		return nil, fmt.Errorf("入力リグパスが未指定です")
	}
	if request.Mesh == nil && strings.TrimSpace(request.MeshPath) == "" {
		return nil, fmt.Errorf("入力メッシュスケルトンパスが未指定です")
	}
	if err := request.Options.Validate(); err != nil {
		return nil, err
	}
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type: RetargetProgressEventTypeInputValidated,
	})

	rig, err := uc.resolveRig(request.RigPath, request.Rig)
	if err != nil {
		return nil, err
	}
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type:      RetargetProgressEventTypeRigLoaded,
		BoneCount: rig.Bones.Len(),
	})

	mesh, err := uc.resolveMesh(request.MeshPath, request.Mesh)
	if err != nil {
		return nil, err
	}
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type:       RetargetProgressEventTypeMeshLoaded,
		LevelCount: mesh.LevelCount(),
	})

	cloned, err := uc.applyTemplate(rig, request)
	if err != nil {
		return nil, err
	}
	if cloned > 0 {
		reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
			Type:      RetargetProgressEventTypeTemplateCloned,
			BoneCount: cloned,
		})
	}

	report, err := retarget.Retarget(ctx, rig, mesh, request.Options)
	if err != nil {
		return nil, fmt.Errorf("リターゲットに失敗しました: %w", err)
	}
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type:         RetargetProgressEventTypeRetargeted,
		BoneCount:    len(report.Moved),
		ArcCount:     len(report.Arcs),
		WarningCount: len(report.Warnings),
	})

	return &RetargetResult{Rig: rig, Report: report, ClonedBones: cloned}, nil
}

// reportRetargetProgress はリターゲット処理の進捗を通知する。
func reportRetargetProgress(reporter IRetargetProgressReporter, event RetargetProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportRetargetProgress(event)
}

// logInteractorInfo はユースケースのINFOログを出力する。
func logInteractorInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
