// 指示: miu200521358
package retarget

import (
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"gonum.org/v1/gonum/floats"
)

// Placement はアークの関節配置結果を表す。Jointsは始点から終点まで辺数+1個。
type Placement struct {
	Mode   ArcMode
	Joints []reeb.Bucket
	// Indexes は関節に選んだサンプルの位置(1始まりの通し番号)。コスト最小化時のみ。
	Indexes []int
	Cost    float64
}

// SolveDirect は1本のボーンを両端へ合わせる。
func SolveDirect(path Path) Placement {
	return Placement{
		Mode:   ARC_MODE_DIRECT,
		Joints: []reeb.Bucket{path.Start, path.End},
	}
}

// SolveLength は元の辺長の比率で折れ線上の距離を割り当て、関節位置を補間する。
func SolveLength(edges []*Edge, path Path) Placement {
	lengths := make([]float64, len(edges))
	for i, edge := range edges {
		lengths[i] = edge.Length
	}
	total := floats.Sum(lengths)
	embedding := path.EmbeddingLength()

	joints := make([]reeb.Bucket, len(edges)+1)
	joints[0] = path.Start
	joints[len(edges)] = path.End

	cumulative := 0.0
	for k := 0; k < len(edges)-1; k++ {
		ratio := float64(k+1) / float64(len(edges))
		if total > 0 {
			cumulative += lengths[k]
			ratio = cumulative / total
		}
		joints[k+1] = path.pointAt(ratio * embedding)
	}

	return Placement{Mode: ARC_MODE_LENGTH, Joints: joints}
}
