// 指示: miu200521358
package retarget

import (
	"time"

	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
)

// ArcOutcome はアークごとの処理結果を表す。
type ArcOutcome string

const (
	// ARC_OUTCOME_RETARGETED は再配置済み。
	ARC_OUTCOME_RETARGETED ArcOutcome = "retargeted"
	// ARC_OUTCOME_EMERGENCY は緊急対応付けで再配置済み。
	ARC_OUTCOME_EMERGENCY ArcOutcome = "emergency"
	// ARC_OUTCOME_UNMATCHED は対応アーク無しで未変更。
	ARC_OUTCOME_UNMATCHED ArcOutcome = "unmatched"
	// ARC_OUTCOME_INSUFFICIENT_SAMPLES はサンプル不足で未変更。
	ARC_OUTCOME_INSUFFICIENT_SAMPLES ArcOutcome = "insufficient_samples"
)

// Warning は処理を止めない警告を表す。Arcは関係するアークindexで、無ければ-1。
type Warning struct {
	ID      string
	Arc     int
	Message string
}

// ArcReport はアーク1本の処理結果を表す。
type ArcReport struct {
	Arc         int
	Bones       []int
	Outcome     ArcOutcome
	Mode        ArcMode
	Cost        float64
	EdgeCount   int
	SampleCount int
	MeshArc     reeb.ArcRef
}

// PhaseDuration は工程ごとの所要時間を表す。
type PhaseDuration struct {
	Name     string
	Duration time.Duration
}

// Report はリターゲット結果を表す。
type Report struct {
	RigHash    string
	ResultHash string
	Arcs       []ArcReport
	Phases     []PhaseDuration
	Warnings   []Warning
	// Moved は位置か向きを変えたボーンindex。
	Moved []int
}

// HasWarning は指定IDの警告を含むか判定する。
func (r *Report) HasWarning(id string) bool {
	if r == nil {
		return false
	}
	for _, warning := range r.Warnings {
		if warning.ID == id {
			return true
		}
	}
	return false
}

// CountOutcome は指定結果のアーク数を返す。
func (r *Report) CountOutcome(outcome ArcOutcome) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, arc := range r.Arcs {
		if arc.Outcome == outcome {
			count++
		}
	}
	return count
}

// TotalDuration は全工程の合計時間を返す。
func (r *Report) TotalDuration() time.Duration {
	if r == nil {
		return 0
	}
	total := time.Duration(0)
	for _, phase := range r.Phases {
		total += phase.Duration
	}
	return total
}
