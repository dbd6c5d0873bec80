// 指示: miu200521358
package retarget

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
)

// transportUp はfromからtoへの最小回転でupを運ぶ。方向が退化していればそのまま返す。
func transportUp(up mmath.Vec3, from mmath.Vec3, to mmath.Vec3) mmath.Vec3 {
	axis := from.Cross(to)
	if from.IsZero() || to.IsZero() || axis.IsZero() {
		return up
	}
	return mmath.NewQuaternionFromAxisAngle(axis, mmath.AngleBetween(from, to)).MulVec3(up)
}

// rollByQuat は記録済みZ軸をqrotで回したベクトルへ向けるロールを返す。
func rollByQuat(direction mmath.Vec3, upAxis mmath.Vec3, qrot mmath.Quaternion) float64 {
	return mmath.RollToVector(direction, qrot.MulVec3(upAxis))
}

// alignedUp は回転後のZ軸に近い方の基準軸を返す。
// 基準軸はボーン方向とalignedの外積と、それをボーン方向へもう一度掛けた軸の2本。
func alignedUp(direction mmath.Vec3, rotatedUp mmath.Vec3, aligned mmath.Vec3) (mmath.Vec3, bool) {
	xAxis := direction.Cross(aligned).Normalized()
	if xAxis.IsZero() {
		return mmath.Vec3{}, false
	}
	zAxis := xAxis.Cross(direction).Normalized()
	up := rotatedUp.Normalized()
	if up.Dot(xAxis) < 0 {
		xAxis = xAxis.Negated()
	}
	if up.Dot(zAxis) < 0 {
		zAxis = zAxis.Negated()
	}
	if mmath.AngleBetween(xAxis, up) < mmath.AngleBetween(zAxis, up) {
		return xAxis, true
	}
	return zAxis, true
}

// edgeFrame はロール計算後の辺の向きとZ軸を表す。
type edgeFrame struct {
	direction mmath.Vec3
	up        mmath.Vec3
}

// resolveUp はロール方式に従って再配置後のZ軸とロール補正回転を返す。
func resolveUp(
	mode model.RollMode,
	edge *Edge,
	direction mmath.Vec3,
	qrot mmath.Quaternion,
	aligned mmath.Vec3,
	previous *edgeFrame,
) (mmath.Vec3, mmath.Quaternion) {
	rotatedUp := qrot.MulVec3(edge.UpAxis)

	if mode == model.ROLL_MODE_JOINT && previous != nil {
		up := transportUp(previous.up, previous.direction, direction)
		up = mmath.NewQuaternionFromAxisAngle(direction, edge.UpAngle).MulVec3(up)
		return up, mmath.NewQuaternionBetween(rotatedUp, up)
	}

	if mode != model.ROLL_MODE_NONE && !aligned.IsZero() {
		if up, ok := alignedUp(direction, rotatedUp, aligned); ok {
			return up, mmath.NewQuaternionBetween(rotatedUp, up)
		}
	}
	return rotatedUp, mmath.NewQuaternion()
}
