// 指示: miu200521358
package miter

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGetBlockSize(t *testing.T) {
	size, count := GetBlockSize(10, 4)
	if size != 3 || count != 4 {
		t.Fatalf("block size mismatch: size=%d count=%d", size, count)
	}
	if size, count := GetBlockSize(0, 4); size != 1 || count != 0 {
		t.Fatalf("empty block size mismatch: size=%d count=%d", size, count)
	}
	if GetLimit(0) < 1 || GetLimit(3) != 3 {
		t.Fatalf("limit mismatch")
	}
}

func TestIterParallelByListVisitsAll(t *testing.T) {
	data := make([]int, 100)
	for i := range data {
		data[i] = i
	}
	results := make([]int, len(data))
	var logged atomic.Int64
	err := IterParallelByList(data, 7, 4, func(index int, value int) error {
		results[index] = value * 2
		return nil
	}, func(iterIndex, allCount int) {
		logged.Add(1)
		if allCount != 100 {
			t.Errorf("all count mismatch: %d", allCount)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, value := range results {
		if value != i*2 {
			t.Fatalf("result mismatch at %d: %d", i, value)
		}
	}
	if logged.Load() != 100 {
		t.Fatalf("log count mismatch: %d", logged.Load())
	}
}

func TestIterParallelByListReturnsError(t *testing.T) {
	want := errors.New("boom")
	err := IterParallelByList([]int{1, 2, 3}, 1, 2, func(index int, value int) error {
		if value == 2 {
			return want
		}
		return nil
	}, nil)
	if !errors.Is(err, want) {
		t.Fatalf("error mismatch: %v", err)
	}
}

func TestIterParallelByListRecoversPanic(t *testing.T) {
	err := IterParallelByList([]string{"a"}, 1, 1, func(index int, value string) error {
		panic("broken")
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("panic should become error: %v", err)
	}
}
