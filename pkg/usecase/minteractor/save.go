// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"github.com/miu200521358/mu_retarget/pkg/usecase/port/moutput"
)

const (
	// DEFAULT_OUTPUT_SUFFIX は既定出力ファイル名に付ける接尾辞。
	DEFAULT_OUTPUT_SUFFIX = "_retarget"
	// DEFAULT_OUTPUT_EXT は入力形式で保存できない場合の既定拡張子。
	DEFAULT_OUTPUT_EXT = ".yaml"
)

// SaveRig はリグを保存する。
func (uc *RetargetUsecase) SaveRig(rep moutput.IRigWriter, path string, rig *model.Rig) error {
	writer := rep
	if writer == nil {
		writer = uc.rigWriter
	}
	if writer == nil {
		return fmt.Errorf("リグ保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if rig == nil {
		return fmt.Errorf("保存対象リグが未設定です")
	}
	if !writer.CanSave(path) {
		return merr.NewIoExtInvalid(path, nil)
	}
	return writer.Save(path, rig)
}

// BuildDefaultOutputPath は入力リグパスから既定の出力パスを生成する。
func BuildDefaultOutputPath(rigPath string) string {
	base := filepath.Base(rigPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if strings.TrimSpace(stem) == "" || strings.TrimSpace(rigPath) == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(rigPath), stem+DEFAULT_OUTPUT_SUFFIX+ext)
}

// resolveOutputPath は出力先パスを解決し、拡張子を検証する。
func (uc *RetargetUsecase) resolveOutputPath(rigPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(rigPath)
		if resolved != "" && uc.rigWriter != nil && !uc.rigWriter.CanSave(resolved) {
			resolved = strings.TrimSuffix(resolved, filepath.Ext(resolved)) + DEFAULT_OUTPUT_EXT
		}
	}
	if resolved == "" {
		return "", fmt.Errorf("保存先リグパスが未指定です")
	}
	if uc.rigWriter != nil && !uc.rigWriter.CanSave(resolved) {
		return "", merr.NewIoExtInvalid(resolved, nil)
	}
	return resolved, nil
}
