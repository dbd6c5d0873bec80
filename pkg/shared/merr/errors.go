// 指示: miu200521358
// Package merr はエラーIDを持つ共通エラーを提供する。
package merr

import "fmt"

// ErrorKind はエラー分類を表す。
type ErrorKind string

const (
	// ErrorKindValidate は入力検証エラー。
	ErrorKindValidate ErrorKind = "validate"
	// ErrorKindIo は入出力エラー。
	ErrorKindIo ErrorKind = "io"
	// ErrorKindStructure はグラフ構造エラー。
	ErrorKindStructure ErrorKind = "structure"
	// ErrorKindInternal は内部エラー。
	ErrorKindInternal ErrorKind = "internal"
)

const (
	// ErrorIDCyclicGraph は循環グラフ検出エラーID。
	ErrorIDCyclicGraph = "RETARGET_CYCLIC_GRAPH"
	// ErrorIDEmptyRig は対象ボーン無しエラーID。
	ErrorIDEmptyRig = "RETARGET_EMPTY_RIG"
	// ErrorIDNoMeshSkeleton はメッシュスケルトン無しエラーID。
	ErrorIDNoMeshSkeleton = "RETARGET_NO_MESH_SKELETON"
	// ErrorIDInvalidConfig は設定値不正エラーID。
	ErrorIDInvalidConfig = "CONFIG_INVALID"
	// ErrorIDIoExtInvalid は拡張子不正エラーID。
	ErrorIDIoExtInvalid = "IO_EXT_INVALID"
	// ErrorIDIoFileNotFound はファイル無しエラーID。
	ErrorIDIoFileNotFound = "IO_FILE_NOT_FOUND"
	// ErrorIDIoParseFailed は解析失敗エラーID。
	ErrorIDIoParseFailed = "IO_PARSE_FAILED"
	// ErrorIDIoSaveFailed は保存失敗エラーID。
	ErrorIDIoSaveFailed = "IO_SAVE_FAILED"
	// ErrorIDNameNotFound は名前検索失敗エラーID。
	ErrorIDNameNotFound = "NAME_NOT_FOUND"
	// ErrorIDIndexOutOfRange はインデックス範囲外エラーID。
	ErrorIDIndexOutOfRange = "INDEX_OUT_OF_RANGE"
	// ErrorIDNameConflict は名前重複エラーID。
	ErrorIDNameConflict = "NAME_CONFLICT"
)

// CommonError はエラーIDと原因を保持する共通エラーを表す。
type CommonError struct {
	id      string
	kind    ErrorKind
	message string
	cause   error
}

var (
	// ErrCyclicGraph は errors.Is 判定用の循環グラフエラー。
	ErrCyclicGraph = &CommonError{id: ErrorIDCyclicGraph, kind: ErrorKindStructure}
	// ErrEmptyRig は errors.Is 判定用の対象ボーン無しエラー。
	ErrEmptyRig = &CommonError{id: ErrorIDEmptyRig, kind: ErrorKindValidate}
	// ErrNoMeshSkeleton は errors.Is 判定用のメッシュスケルトン無しエラー。
	ErrNoMeshSkeleton = &CommonError{id: ErrorIDNoMeshSkeleton, kind: ErrorKindValidate}
	// ErrInvalidConfig は errors.Is 判定用の設定値不正エラー。
	ErrInvalidConfig = &CommonError{id: ErrorIDInvalidConfig, kind: ErrorKindValidate}
	// ErrIoExtInvalid は errors.Is 判定用の拡張子不正エラー。
	ErrIoExtInvalid = &CommonError{id: ErrorIDIoExtInvalid, kind: ErrorKindIo}
	// ErrIoFileNotFound は errors.Is 判定用のファイル無しエラー。
	ErrIoFileNotFound = &CommonError{id: ErrorIDIoFileNotFound, kind: ErrorKindIo}
	// ErrIoParseFailed は errors.Is 判定用の解析失敗エラー。
	ErrIoParseFailed = &CommonError{id: ErrorIDIoParseFailed, kind: ErrorKindIo}
	// ErrIoSaveFailed は errors.Is 判定用の保存失敗エラー。
	ErrIoSaveFailed = &CommonError{id: ErrorIDIoSaveFailed, kind: ErrorKindIo}
	// ErrNameNotFound は errors.Is 判定用の名前検索失敗エラー。
	ErrNameNotFound = &CommonError{id: ErrorIDNameNotFound, kind: ErrorKindValidate}
	// ErrIndexOutOfRange は errors.Is 判定用のインデックス範囲外エラー。
	ErrIndexOutOfRange = &CommonError{id: ErrorIDIndexOutOfRange, kind: ErrorKindValidate}
)

// NewCommonError は共通エラーを生成する。
func NewCommonError(id string, kind ErrorKind, message string, cause error) *CommonError {
	return &CommonError{id: id, kind: kind, message: message, cause: cause}
}

// Error はエラーメッセージを返す。
func (e *CommonError) Error() string {
	if e == nil {
		return ""
	}
	message := e.message
	if message == "" {
		message = e.id
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", message, e.cause)
	}
	return message
}

// Unwrap は原因エラーを返す。
func (e *CommonError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is はエラーIDが一致するか判定する。
func (e *CommonError) Is(target error) bool {
	t, ok := target.(*CommonError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.id == t.id
}

// ErrorID はエラーIDを返す。
func (e *CommonError) ErrorID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// ErrorKind はエラー分類を返す。
func (e *CommonError) ErrorKind() ErrorKind {
	if e == nil {
		return ""
	}
	return e.kind
}

// NewCyclicGraph は循環グラフエラーを生成する。
func NewCyclicGraph(arcCount int) *CommonError {
	return NewCommonError(ErrorIDCyclicGraph, ErrorKindStructure,
		fmt.Sprintf("ボーングラフが循環しています: arcs=%d", arcCount), nil)
}

// NewEmptyRig は対象ボーン無しエラーを生成する。
func NewEmptyRig(name string) *CommonError {
	return NewCommonError(ErrorIDEmptyRig, ErrorKindValidate,
		fmt.Sprintf("変形ボーンがありません: rig=%s", name), nil)
}

// NewNoMeshSkeleton はメッシュスケルトン無しエラーを生成する。
func NewNoMeshSkeleton() *CommonError {
	return NewCommonError(ErrorIDNoMeshSkeleton, ErrorKindValidate, "メッシュスケルトンが空です", nil)
}

// NewInvalidConfig は設定値不正エラーを生成する。
func NewInvalidConfig(format string, params ...any) *CommonError {
	return NewCommonError(ErrorIDInvalidConfig, ErrorKindValidate, fmt.Sprintf(format, params...), nil)
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) *CommonError {
	return NewCommonError(ErrorIDIoExtInvalid, ErrorKindIo, fmt.Sprintf("未対応の拡張子です: %s", path), cause)
}

// NewIoFileNotFound はファイル無しエラーを生成する。
func NewIoFileNotFound(path string, cause error) *CommonError {
	return NewCommonError(ErrorIDIoFileNotFound, ErrorKindIo, fmt.Sprintf("ファイルが見つかりません: %s", path), cause)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(message string, cause error) *CommonError {
	return NewCommonError(ErrorIDIoParseFailed, ErrorKindIo, message, cause)
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(message string, cause error) *CommonError {
	return NewCommonError(ErrorIDIoSaveFailed, ErrorKindIo, message, cause)
}

// NewNameNotFound は名前検索失敗エラーを生成する。
func NewNameNotFound(name string) *CommonError {
	return NewCommonError(ErrorIDNameNotFound, ErrorKindValidate, fmt.Sprintf("名前が見つかりません: %s", name), nil)
}

// NewIndexOutOfRange はインデックス範囲外エラーを生成する。
func NewIndexOutOfRange(index int, length int) *CommonError {
	return NewCommonError(ErrorIDIndexOutOfRange, ErrorKindValidate,
		fmt.Sprintf("インデックスが範囲外です: index=%d len=%d", index, length), nil)
}

// NewNameConflict は名前重複エラーを生成する。
func NewNameConflict(name string) *CommonError {
	return NewCommonError(ErrorIDNameConflict, ErrorKindValidate, fmt.Sprintf("名前が重複しています: %s", name), nil)
}
