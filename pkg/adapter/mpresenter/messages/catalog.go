// 指示: miu200521358
package messages

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// englishMessages は英語表示の対訳。日本語はキーをそのまま使う。
var englishMessages = map[string]string{
	HelpUsage: "Retarget the bones of a rig onto a mesh skeleton.",

	LabelRigPath:        "input rig file (.yaml/.yml/.json/.jsonc/.vrm/.glb)",
	LabelMeshPath:       "input mesh skeleton file (.yaml/.yml/.json/.jsonc)",
	LabelOutputPath:     "output rig file",
	LabelConfigPath:     "config file (.yaml/.yml/.toml)",
	LabelTemplatePath:   "template rig cloned into the rig before retargeting",
	LabelTemplateParent: "parent bone for cloned template roots",
	LabelSide:           "replacement for &S in template names",
	LabelNumber:         "replacement for &N in template names",
	LabelRoll:           "roll mode (none/view/joint)",
	LabelMode:           "mode policy (aggressive/length/auto)",
	LabelThreads:        "worker count (0 = CPU count)",
	LabelVerbose:        "verbose log targets (graph/match/solve)",
	LabelLang:           "display language (ja/en)",

	MessageRigRequired:    "please specify a rig file",
	MessageMeshRequired:   "please specify a mesh skeleton file",
	MessageLoadFailed:     "load failed",
	MessageSaveFailed:     "save failed",
	MessageRetargetFailed: "retarget failed",

	LogLoadStart:     "loading: %s",
	LogSaveStart:     "saving: %s",
	LogRetargetStart: "retargeting: %s",
	LogRetargetDone:  "retarget finished: %s",
	LogSaved:         "saved: %s (%s)",

	SummaryArcs:     "arcs: %s (retargeted %s / emergency %s / unmatched %s / insufficient samples %s)",
	SummaryBones:    "moved bones: %s",
	SummaryWarnings: "warnings: %s",
	SummaryWarning:  "  %s: %s",
	SummaryPhase:    "  phase %s: %s",
	SummaryElapsed:  "elapsed: %s",
}

var messageCatalog = newCatalog()

// newCatalog は日本語と英語のカタログを組み立てる。
func newCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for key, english := range englishMessages {
		_ = builder.SetString(language.Japanese, key, key)
		_ = builder.SetString(language.English, key, english)
	}
	return builder
}

// ParseLanguage は表示言語を解決する。未知の値は日本語。
func ParseLanguage(value string) language.Tag {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "en", "english":
		return language.English
	}
	return language.Japanese
}

// Printer は言語別のメッセージ整形を表す。
type Printer struct {
	printer *message.Printer
}

// NewPrinter は指定言語のPrinterを生成する。
func NewPrinter(lang language.Tag) *Printer {
	return &Printer{printer: message.NewPrinter(lang, message.Catalog(messageCatalog))}
}

// T はキーを翻訳して整形する。
func (p *Printer) T(key string, params ...any) string {
	if p == nil || p.printer == nil {
		return key
	}
	return p.printer.Sprintf(key, params...)
}
