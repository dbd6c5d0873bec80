// 指示: miu200521358
package retarget

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/domain/reeb"
	"github.com/miu200521358/mu_retarget/pkg/infra/miter"
	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

const (
	// PHASE_GRAPH はグラフ構築工程。
	PHASE_GRAPH = "graph"
	// PHASE_SYMMETRY は対称判定工程。
	PHASE_SYMMETRY = "symmetry"
	// PHASE_BIND は制御ボーン接続工程。
	PHASE_BIND = "bind"
	// PHASE_MATCH は対応付け工程。
	PHASE_MATCH = "match"
	// PHASE_SOLVE は並列配置工程。
	PHASE_SOLVE = "solve"
	// PHASE_FINALIZE は後処理工程。
	PHASE_FINALIZE = "finalize"
)

// Retarget はrigのボーンをmeshのスケルトンに沿って再配置する。rigは直接書き換えるがmeshは書き換えない。
// 開始前の検証と閉路検出でだけエラーを返し、アーク単位の失敗はReportの警告と結果に記録する。
func Retarget(ctx context.Context, rig *model.Rig, mesh *reeb.MeshSkeleton, opts Options) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()
	if rig == nil || rig.Bones == nil || rig.Bones.Len() == 0 {
		name := ""
		if rig != nil {
			name = rig.Name
		}
		return nil, merr.NewEmptyRig(name)
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	// 対称情報の付与は複製側に行う
	mesh, err := mesh.Copy()
	if err != nil {
		return nil, err
	}

	report := &Report{
		RigHash:  rig.Bones.Hash(),
		Arcs:     make([]ArcReport, 0),
		Phases:   make([]PhaseDuration, 0, 6),
		Warnings: make([]Warning, 0),
	}

	var g *Graph
	if err := report.timePhase(PHASE_GRAPH, func() error {
		built, err := BuildGraph(rig, opts)
		if err != nil {
			return err
		}
		g = built
		logRetargetVerbose(logging.VERBOSE_INDEX_GRAPH, "グラフ構築: nodes=%d arcs=%d controls=%d head=%d",
			len(g.Nodes), len(g.Arcs), len(g.Controls), g.Head)
		return nil
	}); err != nil {
		return nil, err
	}
	if g.Cyclic {
		report.warn(model.RetargetWarningCyclicGraph, -1, "閉路を持つグラフのため対称判定を省略して処理を続けます")
	}

	_ = report.timePhase(PHASE_SYMMETRY, func() error {
		g.AnalyzeSymmetry(opts.SymmetryLimit)
		annotated := mesh.Annotate(opts.SymmetryLimit)
		logRetargetDebug("メッシュスケルトンの対称判定: %dレベル", annotated)
		return nil
	})

	_ = report.timePhase(PHASE_BIND, func() error {
		g.BindControls()
		for _, ctrl := range g.Controls {
			if !ctrl.IsBound() {
				report.warn(model.RetargetWarningUnboundControl, -1,
					"制御ボーン%sの接続先が見つかりません", boneName(rig, ctrl.BoneIndex))
			}
		}
		return nil
	})

	_ = report.timePhase(PHASE_MATCH, func() error {
		report.Warnings = append(report.Warnings, g.MatchMesh(mesh)...)
		return nil
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs := make([]*arcJob, 0, len(g.Arcs))
	for i, arc := range g.Arcs {
		if arc.IsMatched() {
			jobs = append(jobs, newArcJob(g, i, g.meshPath(mesh, arc), opts))
		}
	}
	g.resetControls()

	if err := report.timePhase(PHASE_SOLVE, func() error {
		return miter.IterParallelByList(jobs, 1, opts.Threads,
			func(_ int, job *arcJob) error {
				job.report = job.run()
				return nil
			},
			func(iterIndex, allCount int) {
				logRetargetVerbose(logging.VERBOSE_INDEX_SOLVE, "アーク再配置: %d/%d", iterIndex, allCount)
			})
	}); err != nil {
		return nil, err
	}

	_ = report.timePhase(PHASE_FINALIZE, func() error {
		moved := make([]int, 0)
		matched := make(map[int]struct{}, len(jobs))
		for _, job := range jobs {
			matched[job.arcIndex] = struct{}{}
			report.Arcs = append(report.Arcs, job.report)
			report.Warnings = append(report.Warnings, job.warnings...)
			moved = append(moved, job.moved...)
		}
		for i, arc := range g.Arcs {
			if _, ok := matched[i]; ok {
				continue
			}
			report.Arcs = append(report.Arcs, ArcReport{
				Arc:       i,
				Bones:     arc.BoneIndexes(),
				Outcome:   ARC_OUTCOME_UNMATCHED,
				EdgeCount: len(arc.Edges),
				MeshArc:   reeb.NO_ARC,
			})
		}
		sort.Slice(report.Arcs, func(a, b int) bool {
			return report.Arcs[a].Arc < report.Arcs[b].Arc
		})

		frozen := make(map[int]struct{})
		for _, arc := range report.Arcs {
			if arc.Outcome == ARC_OUTCOME_UNMATCHED || arc.Outcome == ARC_OUTCOME_INSUFFICIENT_SAMPLES {
				for _, boneIndex := range arc.Bones {
					frozen[boneIndex] = struct{}{}
				}
			}
		}

		moved = append(moved, g.repositionDeferredControls(opts)...)
		report.Moved = reconcileConnected(rig, moved, frozen)
		return nil
	})

	report.ResultHash = rig.Bones.Hash()
	logRetargetInfo("リターゲット完了: arcs=%d retargeted=%d emergency=%d unmatched=%d insufficient=%d warnings=%d",
		len(report.Arcs),
		report.CountOutcome(ARC_OUTCOME_RETARGETED),
		report.CountOutcome(ARC_OUTCOME_EMERGENCY),
		report.CountOutcome(ARC_OUTCOME_UNMATCHED),
		report.CountOutcome(ARC_OUTCOME_INSUFFICIENT_SAMPLES),
		len(report.Warnings))
	return report, nil
}

// timePhase は工程を実行して所要時間を記録する。
func (r *Report) timePhase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	r.Phases = append(r.Phases, PhaseDuration{Name: name, Duration: elapsed})
	logRetargetInfo("工程 %s: %s", name, elapsed)
	return err
}

func (r *Report) warn(id string, arc int, format string, params ...any) {
	r.Warnings = append(r.Warnings, Warning{ID: id, Arc: arc, Message: fmt.Sprintf(format, params...)})
	logRetargetWarn(format, params...)
}

func boneName(rig *model.Rig, index int) string {
	bone, err := rig.Bones.Get(index)
	if err != nil {
		return "?"
	}
	return bone.Name
}

// logRetargetInfo はリターゲットのINFOログを出力する。
func logRetargetInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logRetargetWarn はリターゲットの警告ログを出力する。
func logRetargetWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

func logRetargetDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logRetargetVerbose は指定対象の冗長ログが有効な場合だけ出力する。
func logRetargetVerbose(index logging.VerboseIndex, format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil || !logger.IsVerboseEnabled(index) {
		return
	}
	logger.Verbose(index, format, params...)
}
