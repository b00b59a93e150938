// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sampling turns the raw per-second CO2 reading stream into the two
// values the display shows: a decimated fixed-length history, one slot per
// plot column, and a short-window mean used as the headline figure so it
// does not jitter on every read.
package sampling

// Ring is a fixed-capacity FIFO of sensor readings. Once full, appending
// evicts the oldest entry.
type Ring struct {
	buf   []int
	start int
	n     int
}

// NewRing creates a ring holding at most capacity readings.
func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]int, capacity)}
}

// Push appends a reading, evicting the oldest one when at capacity.
func (r *Ring) Push(v int) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Len returns the number of stored readings.
func (r *Ring) Len() int {
	return r.n
}

// Values returns a copy of the stored readings, oldest first.
func (r *Ring) Values() []int {
	out := make([]int, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Aggregator consumes raw readings and maintains the history ring and the
// smoothed current value. History admission and smoothing run off the same
// stream but at independent cadences: only every rate-th reading enters the
// history, while every reading contributes to the smoothing window.
//
// Not safe for concurrent use; the monitor loop is its only caller.
type Aggregator struct {
	ring *Ring
	// History decimation. tick counts readings modulo rate; a reading is
	// admitted when it is zero, so the very first reading is admitted.
	rate int
	tick int
	// Display smoothing.
	window     int
	accum      []int
	current    float64
	hasCurrent bool
}

// NewAggregator creates an aggregator with a history of capacity readings,
// admitting one reading in every rate, and smoothing the current value over
// window readings.
func NewAggregator(capacity, rate, window int) *Aggregator {
	return &Aggregator{
		ring:   NewRing(capacity),
		rate:   rate,
		window: window,
		accum:  make([]int, 0, window),
	}
}

// Push feeds one raw reading into both the history and the smoothing
// window.
func (a *Aggregator) Push(v int) {
	if a.tick == 0 {
		a.ring.Push(v)
	}
	a.tick = (a.tick + 1) % a.rate

	a.accum = append(a.accum, v)
	if len(a.accum) >= a.window {
		a.current = mean(a.accum)
		a.hasCurrent = true
		a.accum = a.accum[:0]
	} else if !a.hasCurrent {
		// There is nothing to show yet, so emit immediately rather than
		// holding the first value back for a full window. The accumulator
		// is kept so the first full window still averages all its
		// readings.
		a.current = mean(a.accum)
		a.hasCurrent = true
	}
}

// Current returns the smoothed value for display, and false if no reading
// has ever been pushed.
func (a *Aggregator) Current() (float64, bool) {
	return a.current, a.hasCurrent
}

// History returns a copy of the decimated history, oldest first.
func (a *Aggregator) History() []int {
	return a.ring.Values()
}

func mean(vs []int) float64 {
	sum := 0
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}
