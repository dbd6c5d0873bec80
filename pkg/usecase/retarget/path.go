// 指示: miu200521358
package retarget

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
)

// Path はアークを配置する始点、走査順のサンプル列、終点を表す。
type Path struct {
	Start   reeb.Bucket
	End     reeb.Bucket
	Samples []reeb.Bucket
}

// NewPath はイテレータのサンプルを走査順に集めてPathを作る。
func NewPath(start reeb.Bucket, end reeb.Bucket, it *reeb.ArcIterator) Path {
	path := Path{Start: start, End: end}
	if it == nil {
		return path
	}
	it.Reset()
	path.Samples = make([]reeb.Bucket, 0, it.Len())
	for bucket, ok := it.Next(); ok; bucket, ok = it.Next() {
		path.Samples = append(path.Samples, bucket)
	}
	return path
}

// SampleCount はサンプル数を返す。
func (p Path) SampleCount() int {
	return len(p.Samples)
}

// Point は始点を0、終点をSampleCount()+1とする通し番号で点を返す。
func (p Path) Point(i int) reeb.Bucket {
	switch {
	case i <= 0:
		return p.Start
	case i > len(p.Samples):
		return p.End
	}
	return p.Samples[i-1]
}

// EmbeddingLength は始点からサンプルを経て終点までの折れ線長を返す。
func (p Path) EmbeddingLength() float64 {
	length := 0.0
	for i := 1; i <= len(p.Samples)+1; i++ {
		length += p.Point(i).Position.Distance(p.Point(i - 1).Position)
	}
	return length
}

// pointAt は始点から折れ線に沿ってdistance進んだ位置と法線を返す。
func (p Path) pointAt(distance float64) reeb.Bucket {
	if distance <= 0 {
		return p.Start
	}
	traveled := 0.0
	for i := 1; i <= len(p.Samples)+1; i++ {
		from := p.Point(i - 1)
		to := p.Point(i)
		segment := to.Position.Distance(from.Position)
		if segment > 0 && traveled+segment >= distance {
			t := (distance - traveled) / segment
			return reeb.Bucket{
				Position: from.Position.Lerp(to.Position, t),
				Normal:   blendNormal(from.Normal, to.Normal, t),
			}
		}
		traveled += segment
	}
	return p.End
}

// blendNormal は法線を補間する。片方がゼロなら他方を返す。
func blendNormal(from mmath.Vec3, to mmath.Vec3, t float64) mmath.Vec3 {
	switch {
	case from.IsZero():
		return to
	case to.IsZero():
		return from
	}
	blended := from.Lerp(to, t).Normalized()
	if blended.IsZero() {
		return to
	}
	return blended
}
