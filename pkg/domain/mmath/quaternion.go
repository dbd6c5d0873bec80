// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quaternion は回転クォータニオンを表す。
type Quaternion struct {
	q mgl64.Quat
}

// NewQuaternion は単位クォータニオンを生成する。
func NewQuaternion() Quaternion {
	return Quaternion{q: mgl64.QuatIdent()}
}

// NewQuaternionFromAxisAngle は軸と角度からクォータニオンを生成する。軸がゼロなら単位回転。
func NewQuaternionFromAxisAngle(axis Vec3, angle float64) Quaternion {
	n := axis.Normalized()
	if n.IsZero() {
		return NewQuaternion()
	}
	return Quaternion{q: mgl64.QuatRotate(angle, toMgl(n))}
}

// NewQuaternionBetween はfromからtoへの最短回転を生成する。どちらかがゼロなら単位回転。
func NewQuaternionBetween(from Vec3, to Vec3) Quaternion {
	if from.IsZero() || to.IsZero() {
		return NewQuaternion()
	}
	return Quaternion{q: mgl64.QuatBetweenVectors(toMgl(from.Normalized()), toMgl(to.Normalized())).Normalize()}
}

// Muled は q * other を返す。other を先に適用する。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{q: q.quat().Mul(other.quat())}
}

// MulVec3 はベクトルを回転する。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	return fromMgl(q.quat().Rotate(toMgl(v)))
}

// Normalized は正規化クォータニオンを返す。
func (q Quaternion) Normalized() Quaternion {
	return Quaternion{q: q.quat().Normalize()}
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	return Quaternion{q: q.quat().Inverse()}
}

// Angle は回転角を返す。
func (q Quaternion) Angle() float64 {
	w := Clamp(math.Abs(q.quat().W), 0, 1)
	return 2 * math.Acos(w)
}

// IsIdent は単位回転か判定する。
func (q Quaternion) IsIdent() bool {
	return q.Angle() <= 1e-9
}

// quat はゼロ値を単位回転として扱う。
func (q Quaternion) quat() mgl64.Quat {
	if q.q.W == 0 && q.q.V[0] == 0 && q.q.V[1] == 0 && q.q.V[2] == 0 {
		return mgl64.QuatIdent()
	}
	return q.q
}

func toMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) Vec3 {
	return NewVec3(v[0], v[1], v[2])
}
