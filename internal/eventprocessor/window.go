// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package eventprocessor

import (
	"sync"
	"time"
)

// windowCounter is a bucketed sliding-window counter. Time is divided into
// equal buckets summed on read, so counts age out gradually instead of all
// at once.
//
// Increment is O(1); Count is O(buckets).
type windowCounter struct {
	mu         sync.Mutex
	buckets    []int64
	bucketSize time.Duration
	numBuckets int
	current    int
	lastUpdate time.Time
	now        func() time.Time // injectable for tests
}

func newWindowCounter(window time.Duration, numBuckets int) *windowCounter {
	if numBuckets <= 0 {
		numBuckets = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &windowCounter{
		buckets:    make([]int64, numBuckets),
		bucketSize: window / time.Duration(numBuckets),
		numBuckets: numBuckets,
		lastUpdate: time.Now(),
		now:        time.Now,
	}
}

func (w *windowCounter) Increment() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	w.buckets[w.current]++
}

func (w *windowCounter) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()

	var total int64
	for _, c := range w.buckets {
		total += c
	}
	return total
}

// advance expires buckets based on elapsed time. Lock must be held.
func (w *windowCounter) advance() {
	elapsed := w.now().Sub(w.lastUpdate)
	bucketsElapsed := int(elapsed / w.bucketSize)
	if bucketsElapsed <= 0 {
		return
	}

	if bucketsElapsed >= w.numBuckets {
		for i := range w.buckets {
			w.buckets[i] = 0
		}
		w.current = 0
	} else {
		for i := 0; i < bucketsElapsed; i++ {
			w.current = (w.current + 1) % w.numBuckets
			w.buckets[w.current] = 0
		}
	}
	w.lastUpdate = w.now()
}
