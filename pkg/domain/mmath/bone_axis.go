// 指示: miu200521358
package mmath

import "math"

// boneBaseRotation はY軸をボーン方向へ向ける回転を返す。
// 真逆方向はZ軸回りの半回転とする。
func boneBaseRotation(direction Vec3) Quaternion {
	nor := direction.Normalized()
	if nor.IsZero() {
		return NewQuaternion()
	}
	axis := UNIT_Y_VEC3.Cross(nor)
	if axis.Length() <= 1e-8 {
		if UNIT_Y_VEC3.Dot(nor) > 0 {
			return NewQuaternion()
		}
		return NewQuaternionFromAxisAngle(UNIT_Z_VEC3, math.Pi)
	}
	return NewQuaternionFromAxisAngle(axis, AngleBetween(UNIT_Y_VEC3, nor))
}

// BoneUpAxis はボーン方向とロールから姿勢行列のZ軸を返す。
func BoneUpAxis(direction Vec3, roll float64) Vec3 {
	nor := direction.Normalized()
	if nor.IsZero() {
		return UNIT_Z_VEC3
	}
	base := boneBaseRotation(nor)
	rolled := NewQuaternionFromAxisAngle(nor, roll).Muled(base)
	return rolled.MulVec3(UNIT_Z_VEC3).Normalized()
}

// RollToVector はZ軸をalignへ向けるロールを返す。alignはボーン垂直面へ射影して使う。
func RollToVector(direction Vec3, align Vec3) float64 {
	nor := direction.Normalized()
	if nor.IsZero() || align.IsZero() {
		return 0
	}
	up0 := BoneUpAxis(nor, 0)
	return SignedAngleAround(up0, align, nor)
}

// NormalizeRoll はロールを(-π, π]へ丸める。
func NormalizeRoll(roll float64) float64 {
	r := math.Mod(roll, 2*math.Pi)
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
