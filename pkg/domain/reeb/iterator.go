// 指示: miu200521358
package reeb

// ArcIterator はアークのサンプル列を一方の端から順に辿る。
// 何度でもResetして最初から辿り直せる。
type ArcIterator struct {
	buckets  []Bucket
	fromHead bool
	cursor   int
}

// NewArcIterator はイテレータを生成する。fromHeadがfalseなら終点側から辿る。
func (s *MeshSkeleton) NewArcIterator(ref ArcRef, fromHead bool) *ArcIterator {
	it := &ArcIterator{fromHead: fromHead}
	if arc, ok := s.Arc(ref); ok {
		it.buckets = arc.Buckets
	}
	return it
}

// Len はサンプル数を返す。
func (it *ArcIterator) Len() int {
	return len(it.buckets)
}

// Peek は走査順でi番目のサンプルを返す。
func (it *ArcIterator) Peek(i int) (Bucket, bool) {
	if i < 0 || i >= len(it.buckets) {
		return Bucket{}, false
	}
	if it.fromHead {
		return it.buckets[i], true
	}
	return it.buckets[len(it.buckets)-1-i], true
}

// Next は次のサンプルを返す。
func (it *ArcIterator) Next() (Bucket, bool) {
	bucket, ok := it.Peek(it.cursor)
	if ok {
		it.cursor++
	}
	return bucket, ok
}

// Index は次に返すサンプルの位置を返す。
func (it *ArcIterator) Index() int {
	return it.cursor
}

// Reset は先頭へ戻す。
func (it *ArcIterator) Reset() {
	it.cursor = 0
}
