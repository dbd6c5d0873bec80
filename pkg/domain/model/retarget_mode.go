// 指示: miu200521358
package model

import "strings"

// RollMode はボーンロールの再計算方式を表す。
type RollMode string

const (
	// ROLL_MODE_NONE は記録済みZ軸を回転するのみ。
	ROLL_MODE_NONE RollMode = "none"
	// ROLL_MODE_VIEW はサンプル法線に揃える。
	ROLL_MODE_VIEW RollMode = "view"
	// ROLL_MODE_JOINT は前ボーンからのねじれ関係を維持する。
	ROLL_MODE_JOINT RollMode = "joint"
)

// ParseRollMode は文字列からロール方式を解決する。空文字は既定値。
func ParseRollMode(value string) (RollMode, bool) {
	switch RollMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ROLL_MODE_VIEW:
		return ROLL_MODE_VIEW, true
	case ROLL_MODE_NONE:
		return ROLL_MODE_NONE, true
	case ROLL_MODE_JOINT:
		return ROLL_MODE_JOINT, true
	}
	return ROLL_MODE_VIEW, false
}

// ModePolicy はアーク配置方式の選択方針を表す。
type ModePolicy string

const (
	// MODE_POLICY_AGGRESSIVE は常にコスト最適化配置を使う。
	MODE_POLICY_AGGRESSIVE ModePolicy = "aggressive"
	// MODE_POLICY_LENGTH は常に長さ比例配置を使う。
	MODE_POLICY_LENGTH ModePolicy = "length"
	// MODE_POLICY_AUTO は角度分布とサンプル数から選ぶ。
	MODE_POLICY_AUTO ModePolicy = "auto"
)

// ParseModePolicy は文字列から配置方針を解決する。空文字は既定値。
func ParseModePolicy(value string) (ModePolicy, bool) {
	switch ModePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", MODE_POLICY_AGGRESSIVE:
		return MODE_POLICY_AGGRESSIVE, true
	case MODE_POLICY_LENGTH:
		return MODE_POLICY_LENGTH, true
	case MODE_POLICY_AUTO:
		return MODE_POLICY_AUTO, true
	}
	return MODE_POLICY_AGGRESSIVE, false
}
