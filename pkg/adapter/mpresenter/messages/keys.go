// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーと翻訳カタログを提供する。
package messages

// メッセージキー一覧。
const (
	HelpUsage = "使い方説明"

	LabelRigPath        = "リグ入力"
	LabelMeshPath       = "メッシュスケルトン入力"
	LabelOutputPath     = "リグ出力"
	LabelConfigPath     = "設定ファイル"
	LabelTemplatePath   = "テンプレートリグ"
	LabelTemplateParent = "テンプレート親ボーン"
	LabelSide           = "左右置換文字"
	LabelNumber         = "番号置換文字"
	LabelRoll           = "ロール方式"
	LabelMode           = "配置方針"
	LabelThreads        = "並列数"
	LabelVerbose        = "詳細ログ対象"
	LabelLang           = "表示言語"

	MessageRigRequired    = "リグファイルを指定してください"
	MessageMeshRequired   = "メッシュスケルトンファイルを指定してください"
	MessageLoadFailed     = "読み込み失敗"
	MessageSaveFailed     = "保存失敗"
	MessageRetargetFailed = "リターゲット失敗"

	LogLoadStart     = "読み込み開始: %s"
	LogSaveStart     = "保存開始: %s"
	LogRetargetStart = "リターゲット開始: %s"
	LogRetargetDone  = "リターゲット完了: %s"
	LogSaved         = "保存完了: %s (%s)"

	SummaryArcs     = "アーク: %s件 (再配置 %s / 緊急対応 %s / 未対応 %s / サンプル不足 %s)"
	SummaryBones    = "移動ボーン: %s本"
	SummaryWarnings = "警告: %s件"
	SummaryWarning  = "  %s: %s"
	SummaryPhase    = "  工程 %s: %s"
	SummaryElapsed  = "所要時間: %s"
)
