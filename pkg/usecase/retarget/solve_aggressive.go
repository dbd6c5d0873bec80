// 指示: miu200521358
package retarget

import "github.com/miu200521358/mu_retarget/pkg/domain/reeb"

// SolveStatus はコスト最小化配置の結果種別を表す。
type SolveStatus int

const (
	// SOLVE_STATUS_OK は配置できた。
	SOLVE_STATUS_OK SolveStatus = iota
	// SOLVE_STATUS_INSUFFICIENT_SAMPLES は関節数よりサンプルが少ない。
	SOLVE_STATUS_INSUFFICIENT_SAMPLES
	// SOLVE_STATUS_INFEASIBLE は有限コストの配置が無い。
	SOLVE_STATUS_INFEASIBLE
)

type memoKey struct {
	previous int
	current  int
	left     int
}

type memoEntry struct {
	weight float64
	next   int
}

// aggressiveSolver は(前の関節, 今の関節, 残り関節数)を状態とするメモ化探索を行う。
type aggressiveSolver struct {
	edges     []*Edge
	path      Path
	weights   CostWeights
	joints    int
	positions int
	memo      map[memoKey]memoEntry
}

// SolveAggressive は関節をサンプル上へ置く組合せのうち総コスト最小のものを返す。
// 同じコストの候補は先に見つかったものを採る。
func SolveAggressive(edges []*Edge, path Path, weights CostWeights) (Placement, SolveStatus) {
	joints := len(edges) - 1
	if joints <= 0 {
		return SolveDirect(path), SOLVE_STATUS_OK
	}
	positions := path.SampleCount()
	if joints > positions {
		return Placement{}, SOLVE_STATUS_INSUFFICIENT_SAMPLES
	}

	s := &aggressiveSolver{
		edges:     edges,
		path:      path,
		weights:   weights,
		joints:    joints,
		positions: positions,
		memo:      make(map[memoKey]memoEntry, positions*joints),
	}
	root := s.solve(0, 0, joints)
	if root.next < 0 || root.weight >= MAX_COST {
		return Placement{}, SOLVE_STATUS_INFEASIBLE
	}

	indexes := make([]int, joints)
	jointBuckets := make([]reeb.Bucket, 0, joints+2)
	jointBuckets = append(jointBuckets, path.Start)
	previous, current := 0, 0
	for left := joints; left > 0; left-- {
		entry := s.memo[memoKey{previous: previous, current: current, left: left}]
		indexes[joints-left] = entry.next
		jointBuckets = append(jointBuckets, path.Point(entry.next))
		previous, current = current, entry.next
	}
	jointBuckets = append(jointBuckets, path.End)

	return Placement{
		Mode:    ARC_MODE_AGGRESSIVE,
		Joints:  jointBuckets,
		Indexes: indexes,
		Cost:    root.weight,
	}, SOLVE_STATUS_OK
}

// solve は状態から終点までの最小コストと次の関節位置を返す。
func (s *aggressiveSolver) solve(previous int, current int, left int) memoEntry {
	key := memoKey{previous: previous, current: current, left: left}
	if entry, ok := s.memo[key]; ok {
		return entry
	}

	edgeIndex := s.joints - left
	entry := memoEntry{weight: MAX_COST, next: -1}
	if left == 0 {
		end := s.positions + 1
		entry.weight = segmentCost(s.edges, edgeIndex, s.path, previous, current, end, s.weights)
		entry.next = end
	} else {
		for next := current + 1; next <= s.positions-(left-1); next++ {
			weight := segmentCost(s.edges, edgeIndex, s.path, previous, current, next, s.weights)
			if weight >= MAX_COST {
				continue
			}
			child := s.solve(current, next, left-1)
			if child.next < 0 || child.weight >= MAX_COST {
				continue
			}
			weight += child.weight
			if entry.next < 0 || weight < entry.weight {
				entry.weight = weight
				entry.next = next
			}
		}
	}

	s.memo[key] = entry
	return entry
}
