// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model"
	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model/skel"
	"github.com/miu200521358/mu_retarget/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_retarget/pkg/usecase/retarget"
)

const (
	batchOutputDirMode = 0o755
	rigMarker          = ".rig"
	meshMarker         = ".mesh"
)

// batchConfig はバッチリターゲットの実行設定を表す。
type batchConfig struct {
	InputRoot  string
	OutputRoot string
	Threads    int
	DryRun     bool
	FailFast   bool
}

// retargetEntry は1組分のリターゲット入力情報を表す。
type retargetEntry struct {
	Index      int
	Name       string
	RigPath    string
	MeshPath   string
	CaseDir    string
	OutputPath string
}

// retargetResult は1組分のリターゲット結果を表す。
type retargetResult struct {
	Entry     retargetEntry
	Status    string
	Duration  time.Duration
	Err       error
	StageInfo string
}

// progressCollector はリターゲット進捗イベントを収集する。
type progressCollector struct {
	eventCounts map[minteractor.RetargetProgressEventType]int
	boneMax     int
	arcTotal    int
	warnTotal   int
}

// main は入力ディレクトリ内のリグとメッシュスケルトンの組を一括でリターゲットする。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括処理を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries, err := buildRetargetEntries(config.InputRoot, config.OutputRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "入力探索に失敗しました: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "リターゲット対象の組がありません")
		return 2
	}

	results := executeBatch(config, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultInputRoot, err := resolveScriptDir("input")
	if err != nil {
		return batchConfig{}, err
	}
	defaultOutputRoot, err := resolveScriptDir("output")
	if err != nil {
		return batchConfig{}, err
	}
	inputRoot := flag.String("input-root", defaultInputRoot, "<name>.rig.(yaml|json|vrm) と <name>.mesh.(yaml|json) の組を置いたディレクトリ")
	outputRoot := flag.String("output-root", defaultOutputRoot, "リターゲット結果の出力ルートディレクトリ")
	threads := flag.Int("threads", 0, "アーク処理の並列数 (0 = CPU数)")
	dryRun := flag.Bool("dry-run", false, "実処理せず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedInputRoot := strings.TrimSpace(*inputRoot)
	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedInputRoot == "" || trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("input-root と output-root は空にできません")
	}
	return batchConfig{
		InputRoot:  filepath.Clean(normalizeInputPath(trimmedInputRoot)),
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		Threads:    *threads,
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// resolveScriptDir はスクリプト配置ディレクトリ基準のパスを返す。
func resolveScriptDir(name string) (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	return filepath.Join(filepath.Dir(currentFilePath), name), nil
}

// buildRetargetEntries は入力ディレクトリから同名のリグとメッシュスケルトンの組を集める。
func buildRetargetEntries(inputRoot string, outputRoot string) ([]retargetEntry, error) {
	files, err := os.ReadDir(inputRoot)
	if err != nil {
		return nil, err
	}
	rigs := map[string]string{}
	meshes := map[string]string{}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		base := file.Name()
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		path := filepath.Join(inputRoot, base)
		switch {
		case strings.HasSuffix(stem, rigMarker):
			rigs[strings.TrimSuffix(stem, rigMarker)] = path
		case strings.HasSuffix(stem, meshMarker):
			meshes[strings.TrimSuffix(stem, meshMarker)] = path
		}
	}

	names := make([]string, 0, len(rigs))
	for name := range rigs {
		if _, ok := meshes[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]retargetEntry, 0, len(names))
	for i, name := range names {
		safeName := sanitizePathComponent(name)
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", i+1, safeName))
		entries = append(entries, retargetEntry{
			Index:      i + 1,
			Name:       name,
			RigPath:    rigs[name],
			MeshPath:   meshes[name],
			CaseDir:    caseDir,
			OutputPath: filepath.Join(caseDir, safeName+".yaml"),
		})
	}
	return entries, nil
}

// executeBatch は全組のリターゲットを順次実行する。
func executeBatch(config batchConfig, entries []retargetEntry) []retargetResult {
	results := make([]retargetResult, 0, len(entries))
	rigRepository := io_model.NewRigRepository()
	usecase := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		RigReader:  rigRepository,
		RigWriter:  rigRepository,
		MeshReader: skel.NewMeshRepository(),
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] リターゲット開始: name=%s\n", entry.Index, total, entry.Name)
		result := retargetEntryOnce(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 成功: name=%s output=%s elapsed=%s\n", entry.Index, total, entry.Name, entry.OutputPath, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.StageInfo) != "" {
				fmt.Printf("[%d/%d] 進捗: %s\n", entry.Index, total, result.StageInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: rig=%s mesh=%s output=%s\n", entry.Index, total, entry.RigPath, entry.MeshPath, entry.OutputPath)
		default:
			fmt.Printf("[%d/%d] 失敗: name=%s reason=%v\n", entry.Index, total, entry.Name, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// retargetEntryOnce は1組分のリターゲットを実行する。
func retargetEntryOnce(usecase *minteractor.RetargetUsecase, config batchConfig, entry retargetEntry) retargetResult {
	result := retargetResult{
		Entry:  entry,
		Status: "failed",
	}
	if config.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	opts := retarget.DefaultOptions()
	opts.Threads = config.Threads
	collector := newProgressCollector()
	startedAt := time.Now()
	if _, err := usecase.Retarget(context.Background(), minteractor.RetargetRequest{
		RigPath:          entry.RigPath,
		MeshPath:         entry.MeshPath,
		OutputPath:       entry.OutputPath,
		Options:          opts,
		ProgressReporter: collector,
	}); err != nil {
		result.Err = err
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.StageInfo = collector.Summary()
	return result
}

// printBatchSummary は処理結果の集計を標準出力へ表示する。
func printBatchSummary(results []retargetResult) {
	succeeded := 0
	failed := 0
	dryRun := 0
	elapsed := time.Duration(0)
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
			elapsed += result.Duration
		case "dry_run":
			dryRun++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチサマリ: total=%d succeeded=%d failed=%d dry_run=%d elapsed=%s\n",
		len(results),
		succeeded,
		failed,
		dryRun,
		elapsed.Round(time.Millisecond),
	)
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" || len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, strings.TrimSpace(name))
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "rig"
	}
	return replaced
}

// newProgressCollector は進捗収集器を生成する。
func newProgressCollector() *progressCollector {
	return &progressCollector{
		eventCounts: map[minteractor.RetargetProgressEventType]int{},
	}
}

// ReportRetargetProgress は進捗イベントを収集する。
func (collector *progressCollector) ReportRetargetProgress(event minteractor.RetargetProgressEvent) {
	if collector == nil {
		return
	}
	collector.eventCounts[event.Type]++
	if event.BoneCount > collector.boneMax {
		collector.boneMax = event.BoneCount
	}
	collector.arcTotal += event.ArcCount
	collector.warnTotal += event.WarningCount
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *progressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d boneMax=%d arcs=%d warnings=%d stages=%s",
		len(collector.eventCounts),
		collector.boneMax,
		collector.arcTotal,
		collector.warnTotal,
		strings.Join(types, ","),
	)
}
