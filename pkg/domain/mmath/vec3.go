// 指示: miu200521358
// Package mmath はボーン配置計算で使うベクトルと回転を提供する。
package mmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// EPSILON はゼロ判定に使う閾値。
	EPSILON = 1e-10
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

// NewVec3 はVec3を生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// UNIT_Y_VEC3 はY軸単位ベクトル。
var UNIT_Y_VEC3 = NewVec3(0, 1, 0)

// UNIT_Z_VEC3 はZ軸単位ベクトル。
var UNIT_Z_VEC3 = NewVec3(0, 0, 1)

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MuledScalar はスカラー倍を返す。
func (v Vec3) MuledScalar(s float64) Vec3 {
	return Vec3{Vec: r3.Scale(s, v.Vec)}
}

// Negated は符号反転を返す。
func (v Vec3) Negated() Vec3 {
	return v.MuledScalar(-1)
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Cross は外積を返す。
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{Vec: r3.Cross(v.Vec, other.Vec)}
}

// Length は長さを返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// LengthSqr は長さの2乗を返す。
func (v Vec3) LengthSqr() float64 {
	return r3.Norm2(v.Vec)
}

// Distance は2点間距離を返す。
func (v Vec3) Distance(other Vec3) float64 {
	return v.Subed(other).Length()
}

// IsZero はゼロベクトルか判定する。
func (v Vec3) IsZero() bool {
	return v.LengthSqr() <= EPSILON*EPSILON
}

// Normalized は正規化ベクトルを返す。ゼロベクトルはそのまま返す。
func (v Vec3) Normalized() Vec3 {
	if v.IsZero() {
		return Vec3{}
	}
	return Vec3{Vec: r3.Unit(v.Vec)}
}

// NearEquals は各成分が閾値以内で一致するか判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// Lerp は線形補間を返す。
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Added(other.Subed(v).MuledScalar(t))
}

// ProjectedOn は軸への射影を返す。軸がゼロの場合はゼロを返す。
func (v Vec3) ProjectedOn(axis Vec3) Vec3 {
	denom := axis.LengthSqr()
	if denom <= EPSILON*EPSILON {
		return Vec3{}
	}
	return axis.MuledScalar(v.Dot(axis) / denom)
}

// Rejected は軸に垂直な成分を返す。
func (v Vec3) Rejected(axis Vec3) Vec3 {
	return v.Subed(v.ProjectedOn(axis))
}

// CanonicalSign は絶対値最大成分が正になるよう符号を揃える。
func (v Vec3) CanonicalSign() Vec3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax > ay && ax > az:
		if v.X < 0 {
			return v.Negated()
		}
	case ay > ax && ay > az:
		if v.Y < 0 {
			return v.Negated()
		}
	case az > ax && az > ay:
		if v.Z < 0 {
			return v.Negated()
		}
	}
	return v
}

// Vector は配列表現を返す。
func (v Vec3) Vector() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Vec3FromArray は配列からVec3を生成する。
func Vec3FromArray(values [3]float64) Vec3 {
	return NewVec3(values[0], values[1], values[2])
}

// AngleBetween は2ベクトルのなす角を返す。どちらかがゼロなら0。
func AngleBetween(a Vec3, b Vec3) float64 {
	na := a.Normalized()
	nb := b.Normalized()
	if na.IsZero() || nb.IsZero() {
		return 0
	}
	return math.Acos(Clamp(na.Dot(nb), -1, 1))
}

// SignedAngleAround は軸回りにfromからtoへの符号付き角度を返す。
func SignedAngleAround(from Vec3, to Vec3, axis Vec3) float64 {
	n := axis.Normalized()
	f := from.Rejected(n)
	t := to.Rejected(n)
	if f.IsZero() || t.IsZero() {
		return 0
	}
	return math.Atan2(f.Cross(t).Dot(n), f.Dot(t))
}

// MirrorAlongAxis は中心を通り軸を法線とする平面でvを鏡映する。
func MirrorAlongAxis(v Vec3, center Vec3, axis Vec3) Vec3 {
	projected := v.Subed(center).ProjectedOn(axis)
	return v.Subed(projected.MuledScalar(2))
}

// Clamp は値を範囲内に丸める。
func Clamp(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RadToDeg はラジアンを度へ変換する。
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// DegToRad は度をラジアンへ変換する。
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
