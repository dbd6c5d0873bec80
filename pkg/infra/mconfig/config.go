// 指示: miu200521358
// Package mconfig は設定ファイルと環境変数からリターゲット設定を読み込む。
package mconfig

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/infra/mlogging"
	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"gopkg.in/yaml.v3"
)

const (
	// ENV_THREADS は並列数を上書きする環境変数。
	ENV_THREADS = "MU_RETARGET_THREADS"
	// ENV_ROLL はロール方式を上書きする環境変数。
	ENV_ROLL = "MU_RETARGET_ROLL"
	// ENV_MODE は配置方針を上書きする環境変数。
	ENV_MODE = "MU_RETARGET_MODE"
	// ENV_LOG_LEVEL はログレベルを上書きする環境変数。
	ENV_LOG_LEVEL = "MU_RETARGET_LOG_LEVEL"
	// ENV_CONFIG は設定ファイルパスを指定する環境変数。
	ENV_CONFIG = "MU_RETARGET_CONFIG"
	// ENV_LANG はCLIの表示言語を指定する環境変数。
	ENV_LANG = "MU_RETARGET_LANG"

	// DEFAULT_SYMMETRY_LIMIT は対称判定距離の既定値。
	DEFAULT_SYMMETRY_LIMIT = 0.1
)

// RetargetConfig はリターゲット処理の設定を表す。
type RetargetConfig struct {
	AngleWeight    float64 `yaml:"angle_weight" toml:"angle_weight"`
	LengthWeight   float64 `yaml:"length_weight" toml:"length_weight"`
	DistanceWeight float64 `yaml:"distance_weight" toml:"distance_weight"`
	SymmetryLimit  float64 `yaml:"symmetry_limit" toml:"symmetry_limit"`
	RollMode       string  `yaml:"roll_mode" toml:"roll_mode"`
	ModePolicy     string  `yaml:"mode_policy" toml:"mode_policy"`
	Threads        int     `yaml:"threads" toml:"threads"`
	AllowCyclic    bool    `yaml:"allow_cyclic" toml:"allow_cyclic"`
	SelectedOnly   bool    `yaml:"selected_only" toml:"selected_only"`
}

// LogConfig はログ出力の設定を表す。
type LogConfig struct {
	Level      string   `yaml:"level" toml:"level"`
	Verbose    []string `yaml:"verbose" toml:"verbose"`
	File       string   `yaml:"file" toml:"file"`
	MaxSizeMB  int      `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxAgeDays int      `yaml:"max_age_days" toml:"max_age_days"`
	MaxBackups int      `yaml:"max_backups" toml:"max_backups"`
	NoColor    bool     `yaml:"no_color" toml:"no_color"`
}

// Config はアプリケーション設定全体を表す。
type Config struct {
	Retarget RetargetConfig `yaml:"retarget" toml:"retarget"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	// Path は読み込んだ設定ファイルのパス。未読込なら空。
	Path string `yaml:"-" toml:"-"`
}

// Default は既定設定を返す。
func Default() *Config {
	return &Config{
		Retarget: RetargetConfig{
			AngleWeight:    1.0,
			LengthWeight:   1.0,
			DistanceWeight: 1.0,
			SymmetryLimit:  DEFAULT_SYMMETRY_LIMIT,
			RollMode:       string(model.ROLL_MODE_VIEW),
			ModePolicy:     string(model.MODE_POLICY_AGGRESSIVE),
		},
		Log: LogConfig{
			Level: logging.LOG_LEVEL_INFO.String(),
		},
	}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// Load は設定ファイルを読み込み、環境変数の上書きを反映して検証する。
// pathが空なら既定値に環境変数だけを反映する。
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv は.envファイルを環境変数へ読み込む。ファイルが無い場合は何もしない。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	targets := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			targets = append(targets, path)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	if err := godotenv.Load(targets...); err != nil {
		return merr.NewIoParseFailed(".envの読み込みに失敗しました", err)
	}
	return nil
}

// loadFile は拡張子に応じて設定ファイルを読み込む。
func (c *Config) loadFile(path string) error {
	if !CanLoad(path) {
		return merr.NewIoExtInvalid(path, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return merr.NewIoFileNotFound(path, err)
		}
		return merr.NewIoParseFailed("設定ファイルの読み取りに失敗しました", err)
	}
	if err := c.decode(filepath.Ext(path), bytes.NewReader(data)); err != nil {
		return merr.NewIoParseFailed("設定ファイルの解析に失敗しました: "+filepath.Base(path), err)
	}
	c.Path = path
	return nil
}

// decode は拡張子に対応する形式で設定を上書きする。
func (c *Config) decode(ext string, r io.Reader) error {
	switch strings.ToLower(ext) {
	case ".toml":
		_, err := toml.NewDecoder(r).Decode(c)
		return err
	default:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
}

// ApplyEnv は環境変数で設定を上書きする。lookupはos.LookupEnv互換。
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	if value, ok := lookupNonEmpty(lookup, ENV_THREADS); ok {
		threads, err := strconv.Atoi(value)
		if err != nil {
			return merr.NewInvalidConfig("%sは整数で指定してください: %s", ENV_THREADS, value)
		}
		c.Retarget.Threads = threads
	}
	if value, ok := lookupNonEmpty(lookup, ENV_ROLL); ok {
		c.Retarget.RollMode = value
	}
	if value, ok := lookupNonEmpty(lookup, ENV_MODE); ok {
		c.Retarget.ModePolicy = value
	}
	if value, ok := lookupNonEmpty(lookup, ENV_LOG_LEVEL); ok {
		c.Log.Level = value
	}
	return nil
}

func lookupNonEmpty(lookup func(string) (string, bool), key string) (string, bool) {
	value, ok := lookup(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// Validate は設定値を検証する。
func (c *Config) Validate() error {
	if c == nil {
		return merr.NewInvalidConfig("設定が未指定です")
	}
	r := c.Retarget
	if r.AngleWeight < 0 || r.LengthWeight < 0 || r.DistanceWeight < 0 {
		return merr.NewInvalidConfig("コスト重みは0以上で指定してください: angle=%v length=%v distance=%v",
			r.AngleWeight, r.LengthWeight, r.DistanceWeight)
	}
	if r.SymmetryLimit <= 0 {
		return merr.NewInvalidConfig("symmetry_limitは正の値で指定してください: %v", r.SymmetryLimit)
	}
	if r.Threads < 0 {
		return merr.NewInvalidConfig("threadsは0以上で指定してください: %d", r.Threads)
	}
	if _, ok := model.ParseRollMode(r.RollMode); !ok {
		return merr.NewInvalidConfig("未対応のロール方式です: %s", r.RollMode)
	}
	if _, ok := model.ParseModePolicy(r.ModePolicy); !ok {
		return merr.NewInvalidConfig("未対応の配置方針です: %s", r.ModePolicy)
	}
	if _, ok := logging.ParseLogLevel(c.Log.Level); !ok {
		return merr.NewInvalidConfig("未対応のログレベルです: %s", c.Log.Level)
	}
	for _, name := range c.Log.Verbose {
		if _, ok := logging.ParseVerboseIndex(name); !ok {
			return merr.NewInvalidConfig("未対応の詳細ログ対象です: %s", name)
		}
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxAgeDays < 0 || c.Log.MaxBackups < 0 {
		return merr.NewInvalidConfig("ログローテーション設定は0以上で指定してください")
	}
	return nil
}

// LoggerOptions はログ設定からロガー生成設定を組み立てる。Validate済みであること。
func (c LogConfig) LoggerOptions(console io.Writer) mlogging.Options {
	level, _ := logging.ParseLogLevel(c.Level)
	verbose := make([]logging.VerboseIndex, 0, len(c.Verbose))
	for _, name := range c.Verbose {
		if index, ok := logging.ParseVerboseIndex(name); ok {
			verbose = append(verbose, index)
		}
	}
	return mlogging.Options{
		Level:      level,
		Verbose:    verbose,
		Console:    console,
		FilePath:   c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxAgeDays: c.MaxAgeDays,
		MaxBackups: c.MaxBackups,
		NoColor:    c.NoColor,
	}
}
