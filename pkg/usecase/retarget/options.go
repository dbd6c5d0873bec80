// 指示: miu200521358
package retarget

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/bgraph"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

const (
	// DEFAULT_ANGLE_WEIGHT は角度コストの既定重み。
	DEFAULT_ANGLE_WEIGHT = 1.0
	// DEFAULT_LENGTH_WEIGHT は長さコストの既定重み。
	DEFAULT_LENGTH_WEIGHT = 1.0
	// DEFAULT_DISTANCE_WEIGHT は距離コストの既定重み。
	DEFAULT_DISTANCE_WEIGHT = 1.0
)

// Options はリターゲット設定を表す。
type Options struct {
	AngleWeight    float64
	LengthWeight   float64
	DistanceWeight float64
	SymmetryLimit  float64
	RollMode       model.RollMode
	ModePolicy     model.ModePolicy
	// Threads は並列数。0以下ならCPU数。
	Threads      int
	AllowCyclic  bool
	SelectedOnly bool
}

// DefaultOptions は既定設定を返す。
func DefaultOptions() Options {
	return Options{
		AngleWeight:    DEFAULT_ANGLE_WEIGHT,
		LengthWeight:   DEFAULT_LENGTH_WEIGHT,
		DistanceWeight: DEFAULT_DISTANCE_WEIGHT,
		SymmetryLimit:  bgraph.DEFAULT_SYMMETRY_LIMIT,
		RollMode:       model.ROLL_MODE_VIEW,
		ModePolicy:     model.MODE_POLICY_AGGRESSIVE,
	}
}

// Validate は設定値を検証する。
func (o Options) Validate() error {
	if o.AngleWeight < 0 || o.LengthWeight < 0 || o.DistanceWeight < 0 {
		return merr.NewInvalidConfig("コスト重みは0以上で指定してください: angle=%v length=%v distance=%v",
			o.AngleWeight, o.LengthWeight, o.DistanceWeight)
	}
	if o.SymmetryLimit < 0 {
		return merr.NewInvalidConfig("対称判定距離は0以上で指定してください: %v", o.SymmetryLimit)
	}
	if _, ok := model.ParseRollMode(string(o.RollMode)); !ok {
		return merr.NewInvalidConfig("未対応のロール方式です: %s", o.RollMode)
	}
	if _, ok := model.ParseModePolicy(string(o.ModePolicy)); !ok {
		return merr.NewInvalidConfig("未対応の配置方針です: %s", o.ModePolicy)
	}
	return nil
}

// normalized は未指定の列挙値と対称判定距離を既定値で埋める。
func (o Options) normalized() Options {
	o.RollMode, _ = model.ParseRollMode(string(o.RollMode))
	o.ModePolicy, _ = model.ParseModePolicy(string(o.ModePolicy))
	if o.SymmetryLimit <= 0 {
		o.SymmetryLimit = bgraph.DEFAULT_SYMMETRY_LIMIT
	}
	return o
}
