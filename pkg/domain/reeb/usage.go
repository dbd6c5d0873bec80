// 指示: miu200521358
package reeb

// UsageFlag はアークの割当状態を表す。
type UsageFlag int

const (
	// USAGE_FLAG_FREE は未割当。
	USAGE_FLAG_FREE UsageFlag = iota
	// USAGE_FLAG_TAKEN は他の対応付けで通過済み。
	USAGE_FLAG_TAKEN
	// USAGE_FLAG_USED はリグのアークに割当済み。
	USAGE_FLAG_USED
)

// UsageTable は1回の対応付けで使うアーク割当表を表す。
type UsageTable struct {
	flags [][]UsageFlag
}

// NewUsageTable は全アーク未割当の表を生成する。
func NewUsageTable(s *MeshSkeleton) *UsageTable {
	table := &UsageTable{flags: make([][]UsageFlag, s.LevelCount())}
	for i, level := range s.Levels {
		if level != nil {
			table.flags[i] = make([]UsageFlag, len(level.Arcs))
		}
	}
	return table
}

// Flag は割当状態を返す。範囲外は割当済み扱い。
func (t *UsageTable) Flag(ref ArcRef) UsageFlag {
	if ref.Level < 0 || ref.Level >= len(t.flags) || ref.Index < 0 || ref.Index >= len(t.flags[ref.Level]) {
		return USAGE_FLAG_USED
	}
	return t.flags[ref.Level][ref.Index]
}

// Set は割当状態を設定する。
func (t *UsageTable) Set(ref ArcRef, flag UsageFlag) {
	if ref.Level < 0 || ref.Level >= len(t.flags) || ref.Index < 0 || ref.Index >= len(t.flags[ref.Level]) {
		return
	}
	t.flags[ref.Level][ref.Index] = flag
}

// IsFree は未割当か判定する。
func (t *UsageTable) IsFree(ref ArcRef) bool {
	return t.Flag(ref) == USAGE_FLAG_FREE
}
