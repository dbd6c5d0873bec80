// 指示: miu200521358
package model

const (
	// RetargetWarningReportKey はリターゲット結果に警告ID集合を記録する際のキー。
	RetargetWarningReportKey = "MU_RETARGET_warnings"

	// RetargetWarningCyclicGraph は循環グラフ警告。
	RetargetWarningCyclicGraph = "RetargetWarningCyclicGraph"
	// RetargetWarningEmergencyMatch は対称情報を無視した緊急対応付け警告。
	RetargetWarningEmergencyMatch = "RetargetWarningEmergencyMatch"
	// RetargetWarningNoMatch は対応アーク無し警告。
	RetargetWarningNoMatch = "RetargetWarningNoMatch"
	// RetargetWarningInsufficientSamples はサンプル点不足警告。
	RetargetWarningInsufficientSamples = "RetargetWarningInsufficientSamples"
	// RetargetWarningUnboundControl は制御ボーン未接続警告。
	RetargetWarningUnboundControl = "RetargetWarningUnboundControl"
	// RetargetWarningHeadShapeMismatch は頭ノード形状不一致警告。
	RetargetWarningHeadShapeMismatch = "RetargetWarningHeadShapeMismatch"
)

// RetargetWarningIDs は警告ID一覧を返す。
func RetargetWarningIDs() []string {
	return []string{
		RetargetWarningCyclicGraph,
		RetargetWarningEmergencyMatch,
		RetargetWarningNoMatch,
		RetargetWarningInsufficientSamples,
		RetargetWarningUnboundControl,
		RetargetWarningHeadShapeMismatch,
	}
}
