// 指示: miu200521358
package merr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCommonErrorIsMatchesByID(t *testing.T) {
	err := fmt.Errorf("retarget: %w", NewCyclicGraph(3))
	if !errors.Is(err, ErrCyclicGraph) {
		t.Fatalf("errors.Is should match cyclic graph: %v", err)
	}
	if errors.Is(err, ErrEmptyRig) {
		t.Fatalf("errors.Is should not match empty rig: %v", err)
	}
}

func TestCommonErrorUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("broken")
	err := NewIoParseFailed("解析失敗", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be reachable")
	}
	if err.ErrorID() != ErrorIDIoParseFailed {
		t.Fatalf("error id mismatch: %s", err.ErrorID())
	}
	if err.ErrorKind() != ErrorKindIo {
		t.Fatalf("error kind mismatch: %s", err.ErrorKind())
	}
	if err.Error() != "解析失敗: broken" {
		t.Fatalf("message mismatch: %s", err.Error())
	}
}
