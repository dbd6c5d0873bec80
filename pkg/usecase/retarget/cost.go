// 指示: miu200521358
package retarget

import (
	"math"

	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
)

// MAX_COST は採用しない遷移を表すコスト。
const MAX_COST = math.MaxFloat64

// CostWeights は配置コストの重みを表す。
type CostWeights struct {
	Angle    float64
	Length   float64
	Distance float64
}

// costAngle は新旧の関節角の差を返す。どちらかのベクトルが退化していれば最大角。
func costAngle(originalAngle float64, first mmath.Vec3, second mmath.Vec3, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	if first.IsZero() || second.IsZero() {
		return weight * math.Pi
	}
	current := math.Acos(mmath.Clamp(first.Normalized().Dot(second.Normalized()), -1, 1))
	return weight * math.Abs(current-originalAngle)
}

// costLength は元の辺長に対する相対誤差の2乗を返す。新しい長さが0なら採用しない。
func costLength(originalLength float64, currentLength float64, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	if currentLength == 0 {
		return MAX_COST
	}
	if originalLength <= mmath.EPSILON {
		return weight * currentLength * currentLength
	}
	ratio := (currentLength - originalLength) / originalLength
	return weight * ratio * ratio
}

// costDistance はfromからtoの間で飛ばしたサンプルの、線分からの最大距離の2乗を返す。
func costDistance(path Path, from int, to int, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	start := path.Point(from).Position
	end := path.Point(to).Position
	segment := start.Subed(end)
	segmentSqr := segment.LengthSqr()
	if segmentSqr <= 0 {
		return MAX_COST
	}

	maxDistance := 0.0
	for j := from + 1; j < to; j++ {
		offset := path.Point(j).Position.Subed(end)
		distance := segment.Cross(offset).LengthSqr() / segmentSqr
		maxDistance = math.Max(maxDistance, distance)
	}
	return weight * maxDistance
}

// segmentCost は関節previous、currentを経てnextへ伸ばす辺edgeIndexのコストを返す。
func segmentCost(edges []*Edge, edgeIndex int, path Path, previous int, current int, next int, weights CostWeights) float64 {
	edge := edges[edgeIndex]
	vec0 := path.Point(previous).Position
	vec1 := path.Point(current).Position
	vec2 := path.Point(next).Position
	second := vec2.Subed(vec1)

	cost := 0.0
	if edgeIndex > 0 {
		cost += costAngle(edges[edgeIndex-1].Angle, vec1.Subed(vec0), second, weights.Angle)
	}

	lengthCost := costLength(edge.Length, second.Length(), weights.Length)
	if lengthCost >= MAX_COST {
		return MAX_COST
	}
	cost += lengthCost

	distanceCost := costDistance(path, current, next, weights.Distance)
	if distanceCost >= MAX_COST {
		return MAX_COST
	}
	return cost + distanceCost
}
