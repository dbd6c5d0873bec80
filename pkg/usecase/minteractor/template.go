// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
)

// applyTemplate はテンプレートリグを読み込んでrigへ複製し、追加したボーン数を返す。
// テンプレート未指定なら何もしない。
func (uc *RetargetUsecase) applyTemplate(rig *model.Rig, request RetargetRequest) (int, error) {
	if strings.TrimSpace(request.TemplatePath) == "" {
		return 0, nil
	}
	template, err := uc.LoadRig(nil, request.TemplatePath)
	if err != nil {
		return 0, fmt.Errorf("テンプレートリグの読み込みに失敗しました: %w", err)
	}
	indexMap, err := model.CloneTemplate(rig, template, request.Side, request.Number, request.TemplateParent)
	if err != nil {
		return 0, fmt.Errorf("テンプレートリグの複製に失敗しました: %w", err)
	}
	logInteractorInfo("テンプレート複製: template=%s bones=%d side=%s number=%s",
		template.Name, len(indexMap), request.Side, request.Number)
	return len(indexMap), nil
}
