// 指示: miu200521358
package retarget

import (
	"math"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"gonum.org/v1/gonum/stat"
)

// ArcMode はアークの関節配置方式を表す。
type ArcMode string

const (
	// ARC_MODE_DIRECT は1本だけのボーンを両端ノードへ合わせる。
	ARC_MODE_DIRECT ArcMode = "direct"
	// ARC_MODE_LENGTH は長さ比例で配置する。
	ARC_MODE_LENGTH ArcMode = "length"
	// ARC_MODE_AGGRESSIVE はコスト最小化で配置する。
	ARC_MODE_AGGRESSIVE ArcMode = "aggressive"
)

// LARGE_ANGLE_DEVIATION は大きな屈曲とみなす平均角度からの差。
const LARGE_ANGLE_DEVIATION = math.Pi / 6

// angleStats は末尾以外の辺角度の平均と分散を返す。
func angleStats(edges []*Edge) (float64, float64) {
	if len(edges) < 2 {
		return 0, 0
	}
	angles := make([]float64, len(edges)-1)
	for i := range angles {
		angles[i] = edges[i].Angle
	}
	if len(angles) == 1 {
		return angles[0], 0
	}
	return stat.MeanVariance(angles, nil)
}

// DetectArcMode は辺の屈曲とサンプル数から配置方式を推定する。
// ほぼ直線か、サンプル数が関節数以下なら長さ比例を選ぶ。
func DetectArcMode(edges []*Edge, sampleCount int) ArcMode {
	if len(edges) <= 1 {
		return ARC_MODE_DIRECT
	}
	average, _ := angleStats(edges)

	largeAngle := false
	if len(edges) > 2 {
		for _, edge := range edges {
			if math.Abs(edge.Angle-average) > LARGE_ANGLE_DEVIATION {
				largeAngle = true
				break
			}
		}
	} else if average > 0 {
		largeAngle = true
	}

	if !largeAngle || sampleCount <= len(edges)-1 {
		return ARC_MODE_LENGTH
	}
	return ARC_MODE_AGGRESSIVE
}

// SelectMode は配置方針に従って配置方式を決める。
func SelectMode(edges []*Edge, sampleCount int, policy model.ModePolicy) ArcMode {
	if len(edges) <= 1 {
		return ARC_MODE_DIRECT
	}
	switch policy {
	case model.MODE_POLICY_LENGTH:
		return ARC_MODE_LENGTH
	case model.MODE_POLICY_AUTO:
		return DetectArcMode(edges, sampleCount)
	}
	return ARC_MODE_AGGRESSIVE
}
