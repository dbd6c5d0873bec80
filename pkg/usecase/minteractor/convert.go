// 指示: miu200521358
package minteractor

import "context"

// Retarget は入力を読み込んでリターゲットし、結果のリグを保存する。
// 出力パス未指定時は入力リグの隣に接尾辞付きで保存する。
func (uc *RetargetUsecase) Retarget(ctx context.Context, request RetargetRequest) (*RetargetResult, error) {
	outputPath, err := uc.resolveOutputPath(request.RigPath, request.OutputPath)
	if err != nil {
		return nil, err
	}
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type: RetargetProgressEventTypeOutputPathResolved,
		Path: outputPath,
	})

	result, err := uc.PrepareRetarget(ctx, request)
	if err != nil {
		return nil, err
	}
	if err := uc.SaveRig(nil, outputPath, result.Rig); err != nil {
		return nil, err
	}
	result.OutputPath = outputPath
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type:      RetargetProgressEventTypeSaved,
		BoneCount: result.Rig.Bones.Len(),
	})
	logInteractorInfo("リグ保存: %s", outputPath)
	return result, nil
}
