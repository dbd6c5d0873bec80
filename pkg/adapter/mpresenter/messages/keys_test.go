// 指示: miu200521358
package messages

import (
	"testing"

	"golang.org/x/text/language"
)

func TestKeysAreTranslated(t *testing.T) {
	keys := []string{
		HelpUsage,
		LabelRigPath,
		LabelMeshPath,
		MessageRigRequired,
		MessageMeshRequired,
		LogRetargetDone,
		SummaryArcs,
		SummaryBones,
		SummaryWarnings,
		SummaryPhase,
		LabelTemplateParent,
		LogSaved,
	}

	seen := map[string]struct{}{}
	for _, key := range keys {
		if key == "" {
			t.Fatalf("key should not be empty")
		}
		if _, exists := seen[key]; exists {
			t.Fatalf("key should be unique: %s", key)
		}
		seen[key] = struct{}{}
		if _, ok := englishMessages[key]; !ok {
			t.Fatalf("english message missing: %s", key)
		}
	}
}

func TestPrinterFormatsByLanguage(t *testing.T) {
	ja := NewPrinter(ParseLanguage("ja"))
	if got := ja.T(SummaryBones, "3"); got != "移動ボーン: 3本" {
		t.Fatalf("japanese message mismatch: %s", got)
	}
	en := NewPrinter(ParseLanguage("EN"))
	if got := en.T(SummaryBones, "3"); got != "moved bones: 3" {
		t.Fatalf("english message mismatch: %s", got)
	}
	if ParseLanguage("fr") != language.Japanese {
		t.Fatalf("unknown language should fall back to japanese")
	}
	var none *Printer
	if got := none.T(LabelRigPath); got != LabelRigPath {
		t.Fatalf("nil printer should return the key: %s", got)
	}
}
