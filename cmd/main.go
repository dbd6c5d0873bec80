// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model"
	"github.com/miu200521358/mu_retarget/pkg/adapter/io_model/skel"
	"github.com/miu200521358/mu_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/infra/mconfig"
	"github.com/miu200521358/mu_retarget/pkg/infra/mlogging"
	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"github.com/miu200521358/mu_retarget/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_retarget/pkg/usecase/retarget"
)

const appName = "mu_retarget"

// options はCLI引数を保持する。
type options struct {
	rigPath        string
	meshPath       string
	outputPath     string
	configPath     string
	templatePath   string
	templateParent string
	side           string
	number         string
	roll           string
	mode           string
	threads        int
	verbose        []string
	lang           string
}

// main はリグのリターゲットを実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if isUsageError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	cmd := newRootCommand(out, errOut)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// newRootCommand はルートコマンドを生成する。
func newRootCommand(out io.Writer, errOut io.Writer) *cobra.Command {
	opts := &options{}
	defaultLang := os.Getenv(mconfig.ENV_LANG)
	if defaultLang == "" {
		defaultLang = "ja"
	}
	help := messages.NewPrinter(messages.ParseLanguage(defaultLang))
	cmd := &cobra.Command{
		Use:           appName + " [rig] [mesh] [out]",
		Short:         help.T(messages.HelpUsage),
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyPositionals(args)
			return execute(cmd, opts, out)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.Flags()
	flags.StringVar(&opts.rigPath, "rig", "", help.T(messages.LabelRigPath))
	flags.StringVar(&opts.meshPath, "mesh", "", help.T(messages.LabelMeshPath))
	flags.StringVar(&opts.outputPath, "out", "", help.T(messages.LabelOutputPath))
	flags.StringVar(&opts.configPath, "config", "", help.T(messages.LabelConfigPath))
	flags.StringVar(&opts.templatePath, "template", "", help.T(messages.LabelTemplatePath))
	flags.StringVar(&opts.templateParent, "template-parent", "", help.T(messages.LabelTemplateParent))
	flags.StringVar(&opts.side, "side", "", help.T(messages.LabelSide))
	flags.StringVar(&opts.number, "number", "", help.T(messages.LabelNumber))
	flags.StringVar(&opts.roll, "roll", "", help.T(messages.LabelRoll))
	flags.StringVar(&opts.mode, "mode", "", help.T(messages.LabelMode))
	flags.IntVar(&opts.threads, "threads", 0, help.T(messages.LabelThreads))
	flags.StringSliceVar(&opts.verbose, "verbose", nil, help.T(messages.LabelVerbose))
	flags.StringVar(&opts.lang, "lang", defaultLang, help.T(messages.LabelLang))
	return cmd
}

// applyPositionals はフラグ未指定の入出力を位置引数で補う。
func (o *options) applyPositionals(args []string) {
	if o.rigPath == "" && len(args) > 0 {
		o.rigPath = args[0]
	}
	if o.meshPath == "" && len(args) > 1 {
		o.meshPath = args[1]
	}
	if o.outputPath == "" && len(args) > 2 {
		o.outputPath = args[2]
	}
}

// execute は設定とロガーを準備してリターゲットを実行する。
func execute(cmd *cobra.Command, opts *options, out io.Writer) error {
	printer := messages.NewPrinter(messages.ParseLanguage(opts.lang))
	if strings.TrimSpace(opts.rigPath) == "" {
		return fmt.Errorf("%s (--rig)", printer.T(messages.MessageRigRequired))
	}
	if strings.TrimSpace(opts.meshPath) == "" {
		return fmt.Errorf("%s (--mesh)", printer.T(messages.MessageMeshRequired))
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := mlogging.NewLogger(cfg.Log.LoggerOptions(cmd.ErrOrStderr()))
	previous := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	defer func() {
		logging.SetDefaultLogger(previous)
		_ = logger.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rigRepository := io_model.NewRigRepository()
	uc := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		RigReader:  rigRepository,
		RigWriter:  rigRepository,
		MeshReader: skel.NewMeshRepository(),
	})

	fmt.Fprintf(out, "[%s] %s\n", appName, printer.T(messages.LogLoadStart, opts.rigPath))
	started := time.Now()
	result, err := uc.Retarget(ctx, minteractor.RetargetRequest{
		RigPath:          opts.rigPath,
		MeshPath:         opts.meshPath,
		OutputPath:       opts.outputPath,
		TemplatePath:     opts.templatePath,
		TemplateParent:   opts.templateParent,
		Side:             opts.side,
		Number:           opts.number,
		Options:          retargetOptions(cfg.Retarget),
		ProgressReporter: &progressPrinter{out: out, printer: printer, meshPath: opts.meshPath},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", printer.T(failureMessageKey(err)), err)
	}

	printSummary(out, printer, result, time.Since(started))
	return nil
}

// loadConfig は.env、設定ファイル、環境変数、フラグの順に設定を重ねる。
func loadConfig(cmd *cobra.Command, opts *options) (*mconfig.Config, error) {
	if err := mconfig.LoadDotEnv(); err != nil {
		return nil, err
	}
	configPath := opts.configPath
	if configPath == "" {
		configPath = os.Getenv(mconfig.ENV_CONFIG)
	}
	cfg, err := mconfig.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("roll") {
		cfg.Retarget.RollMode = opts.roll
	}
	if flags.Changed("mode") {
		cfg.Retarget.ModePolicy = opts.mode
	}
	if flags.Changed("threads") {
		cfg.Retarget.Threads = opts.threads
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbose = opts.verbose
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// retargetOptions は設定値をリターゲット設定へ変換する。Validate済みであること。
func retargetOptions(c mconfig.RetargetConfig) retarget.Options {
	roll, _ := model.ParseRollMode(c.RollMode)
	policy, _ := model.ParseModePolicy(c.ModePolicy)
	return retarget.Options{
		AngleWeight:    c.AngleWeight,
		LengthWeight:   c.LengthWeight,
		DistanceWeight: c.DistanceWeight,
		SymmetryLimit:  c.SymmetryLimit,
		RollMode:       roll,
		ModePolicy:     policy,
		Threads:        c.Threads,
		AllowCyclic:    c.AllowCyclic,
		SelectedOnly:   c.SelectedOnly,
	}
}

// progressPrinter はユースケースの進捗を標準出力へ表示する。
type progressPrinter struct {
	out        io.Writer
	printer    *messages.Printer
	meshPath   string
	outputPath string
}

// ReportRetargetProgress は表示対象の進捗だけを出力する。
func (p *progressPrinter) ReportRetargetProgress(event minteractor.RetargetProgressEvent) {
	switch event.Type {
	case minteractor.RetargetProgressEventTypeMeshLoaded:
		fmt.Fprintf(p.out, "[%s] %s\n", appName, p.printer.T(messages.LogRetargetStart, p.meshPath))
	case minteractor.RetargetProgressEventTypeOutputPathResolved:
		p.outputPath = event.Path
	case minteractor.RetargetProgressEventTypeRetargeted:
		fmt.Fprintf(p.out, "[%s] %s\n", appName,
			p.printer.T(messages.LogRetargetDone, humanize.Comma(int64(event.ArcCount))))
		fmt.Fprintf(p.out, "[%s] %s\n", appName, p.printer.T(messages.LogSaveStart, p.outputPath))
	}
}

// printSummary は処理結果の集計を出力する。
func printSummary(out io.Writer, printer *messages.Printer, result *minteractor.RetargetResult, elapsed time.Duration) {
	report := result.Report
	count := func(outcome retarget.ArcOutcome) string {
		return humanize.Comma(int64(report.CountOutcome(outcome)))
	}
	fmt.Fprintln(out, printer.T(messages.SummaryArcs,
		humanize.Comma(int64(len(report.Arcs))),
		count(retarget.ARC_OUTCOME_RETARGETED),
		count(retarget.ARC_OUTCOME_EMERGENCY),
		count(retarget.ARC_OUTCOME_UNMATCHED),
		count(retarget.ARC_OUTCOME_INSUFFICIENT_SAMPLES)))
	fmt.Fprintln(out, printer.T(messages.SummaryBones, humanize.Comma(int64(len(report.Moved)))))
	if len(report.Warnings) > 0 {
		fmt.Fprintln(out, printer.T(messages.SummaryWarnings, humanize.Comma(int64(len(report.Warnings)))))
		for _, warning := range report.Warnings {
			fmt.Fprintln(out, printer.T(messages.SummaryWarning, warning.ID, warning.Message))
		}
	}
	for _, phase := range report.Phases {
		fmt.Fprintln(out, printer.T(messages.SummaryPhase, phase.Name, phase.Duration.Round(time.Microsecond)))
	}
	fmt.Fprintln(out, printer.T(messages.SummaryElapsed, elapsed.Round(time.Millisecond)))

	size := "-"
	if info, err := os.Stat(result.OutputPath); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Fprintf(out, "[%s] %s\n", appName, printer.T(messages.LogSaved, result.OutputPath, size))
}

// isUsageError は入力不備による失敗か判定する。
// failureMessageKey は失敗した工程に応じたメッセージキーを返す。
func failureMessageKey(err error) string {
	switch {
	case errors.Is(err, merr.ErrIoSaveFailed):
		return messages.MessageSaveFailed
	case errors.Is(err, merr.ErrIoFileNotFound), errors.Is(err, merr.ErrIoParseFailed):
		return messages.MessageLoadFailed
	default:
		return messages.MessageRetargetFailed
	}
}

func isUsageError(err error) bool {
	return errors.Is(err, merr.ErrInvalidConfig) ||
		errors.Is(err, merr.ErrIoExtInvalid) ||
		errors.Is(err, merr.ErrIoFileNotFound)
}
