// 指示: miu200521358
// Package miter はブロック単位の並列反復を提供する。
package miter

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// GetLimit は並列数を返す。overrideが0以下ならCPU数。
func GetLimit(override int) int {
	if override > 0 {
		return override
	}
	return max(1, runtime.NumCPU())
}

// GetBlockSize は件数を並列数で割ったブロックサイズとブロック数を返す。
func GetBlockSize(totalCount int, limit int) (blockSize int, blockCount int) {
	if totalCount <= 0 {
		return 1, 0
	}
	limit = GetLimit(limit)
	blockSize = max(1, (totalCount+limit-1)/limit)
	blockCount = (totalCount + blockSize - 1) / blockSize
	return blockSize, blockCount
}

// IterParallelByList はallDataをブロックに分けて並列処理する。
// 最初のエラーを返し、panicはエラーへ変換する。全ブロックの完了を待ってから戻る。
func IterParallelByList[T any](
	allData []T,
	blockSize int,
	limit int,
	processFunc func(index int, data T) error,
	logFunc func(iterIndex, allCount int),
) error {
	if len(allData) == 0 {
		return nil
	}
	if blockSize <= 0 {
		blockSize = 1
	}

	var g errgroup.Group
	g.SetLimit(GetLimit(limit))

	var processed atomic.Int64
	allCount := len(allData)
	for start := 0; start < allCount; start += blockSize {
		end := min(start+blockSize, allCount)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("並列処理でpanicが発生しました: %v\n%s", r, debug.Stack())
				}
			}()
			for i := start; i < end; i++ {
				if err := processFunc(i, allData[i]); err != nil {
					return err
				}
				count := processed.Add(1)
				if logFunc != nil {
					logFunc(int(count), allCount)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
