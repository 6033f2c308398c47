// Package utils holds small pieces of infrastructure shared by the
// journal and storage packages that don't belong to either one.
package utils

import (
	"bytes"
	"sort"
	"sync"
	"sync/atomic"
)

// ByteBufferPool hands out *bytes.Buffer values sized to the recent
// working set instead of always starting from zero. Buffers are
// bucketed into size segments; Put records which segment a buffer's
// length fell into, and once any one segment has recorded more than
// calibrateThreshold puts since the last calibration the pool
// recomputes its default and max capacities from the distribution
// observed so far.
//
// The journal package uses the package-level Get/Put pair as the
// scratch buffer for copying a block's content out of the journal
// file and into the main file during replay -- block sizes vary
// widely across a session, which is exactly the case this pool is
// built for.
const (
	minBitSize         = 6
	segments           = 20
	minSize            = 1 << minBitSize
	maxPercentile      = 95
	calibrateThreshold = 4096
)

var defaultPool ByteBufferPool

// Get returns a buffer from the default pool.
func Get() *bytes.Buffer {
	return defaultPool.Get()
}

// Put returns a buffer to the default pool.
func Put(b *bytes.Buffer) {
	defaultPool.Put(b)
}

type ByteBufferPool struct {
	calls       [segments]uint64
	calibrating uint64
	defaultSize uint64
	maxSize     uint64
	pool        sync.Pool
}

func (p *ByteBufferPool) Get() *bytes.Buffer {
	if b := p.pool.Get(); b != nil {
		return b.(*bytes.Buffer)
	}
	return bytes.NewBuffer(make([]byte, 0, atomic.LoadUint64(&p.defaultSize)))
}

func (p *ByteBufferPool) Put(b *bytes.Buffer) {
	idx := segmentFor(b.Len())
	if atomic.AddUint64(&p.calls[idx], 1) > calibrateThreshold {
		p.calibrate()
	}

	maxSize := atomic.LoadUint64(&p.maxSize)
	if maxSize == 0 || uint64(b.Cap()) < maxSize {
		b.Reset()
		p.pool.Put(b)
	}
}

type callCount struct {
	size uint64
	cnt  uint64
}

func (p *ByteBufferPool) calibrate() {
	if !atomic.CompareAndSwapUint64(&p.calibrating, 0, 1) {
		return
	}
	defer atomic.StoreUint64(&p.calibrating, 0)

	counts := make([]callCount, segments)
	var sum uint64
	for i := range counts {
		cnt := atomic.SwapUint64(&p.calls[i], 0)
		counts[i] = callCount{size: minSize << uint(i), cnt: cnt}
		sum += cnt
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].cnt > counts[j].cnt })

	defaultSize := counts[0].size
	maxSize := defaultSize
	threshold := sum * maxPercentile / 100

	var running uint64
	for _, c := range counts {
		running += c.cnt
		if c.size > maxSize {
			maxSize = c.size
		}
		if running >= threshold {
			break
		}
	}

	atomic.StoreUint64(&p.defaultSize, defaultSize)
	atomic.StoreUint64(&p.maxSize, maxSize)
}

// segmentFor maps a byte length to one of the pool's size segments.
func segmentFor(n int) int {
	n--
	n >>= minBitSize
	idx := 0
	for n > 0 {
		n >>= 1
		idx++
	}
	if idx >= segments {
		idx = segments - 1
	}
	return idx
}
