// 指示: miu200521358
// Package skel はリグとメッシュスケルトンのYAML/JSONファイルを読み書きする。
package skel

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// fileFormat はファイル形式を表す。
type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatYaml
	formatJson
)

// formatOf は拡張子からファイル形式を判定する。.jsoncはコメント付きJSONとして読む。
func formatOf(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYaml
	case ".json", ".jsonc":
		return formatJson
	}
	return formatUnknown
}

// canLoad は拡張子に応じて読み込み可否を判定する。
func canLoad(path string) bool {
	return formatOf(path) != formatUnknown
}

// inferName はパスから表示名を推定する。
func inferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// readDocument はファイルを読み込んで形式に応じてdocへ展開する。
func readDocument(path string, label string, doc any) error {
	format := formatOf(path)
	if format == formatUnknown {
		return merr.NewIoExtInvalid(path, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return merr.NewIoFileNotFound(path, err)
		}
		return merr.NewIoParseFailed(label+"ファイルの読み取りに失敗しました", err)
	}
	logSkelInfo("%s読込: file=%s bytes=%d", label, filepath.Base(path), len(data))

	switch format {
	case formatYaml:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		err = decoder.Decode(doc)
	case formatJson:
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		err = decoder.Decode(doc)
	}
	if err != nil {
		return merr.NewIoParseFailed(label+"ファイルの解析に失敗しました: "+filepath.Base(path), err)
	}
	return nil
}

// writeDocument はdocを形式に応じて書き出す。
func writeDocument(path string, label string, doc any) error {
	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case formatYaml:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err = encoder.Encode(doc); err == nil {
			err = encoder.Close()
		}
		data = buf.Bytes()
	case formatJson:
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	default:
		return merr.NewIoExtInvalid(path, nil)
	}
	if err != nil {
		return merr.NewIoSaveFailed(label+"の変換に失敗しました", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return merr.NewIoSaveFailed("出力先ディレクトリの作成に失敗しました", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return merr.NewIoSaveFailed(label+"の保存に失敗しました: "+path, err)
	}
	logSkelInfo("%s保存: file=%s bytes=%d", label, filepath.Base(path), len(data))
	return nil
}

// logSkelInfo はファイル入出力のINFOログを出力する。
func logSkelInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
