// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package timeaxis computes clock labels for the history graph's X axis.
//
// History samples are admitted at a fixed rate of one per rate seconds and
// occupy one plot column each, so a column offset back from "now" maps
// directly to a point in time. The labeler emits a label for every full and
// half hour boundary within the visible history.
package timeaxis

import (
	"fmt"
	"time"
)

// Badges fresh out of deep sleep report a year in the distant past until
// NTP has synced the clock. Anything before this year is taken to mean
// "unsynchronized".
const syncedYearMin = 2020

// Labels maps sample offsets back from the most recent sample (0 = now) to
// axis captions. rate is the history admission period in seconds, maxOffset
// the number of samples to cover.
//
// With a synchronized clock the captions are wall-clock times, hours
// wrapping modulo 24. Without one they fall back to a relative clock that
// places hour 0 at "now" and counts down from there.
func Labels(now time.Time, rate, maxOffset int) map[int]string {
	h, m, s := now.Clock()
	sec := s + m*60

	reltime := now.Year() < syncedYearMin
	if reltime {
		h, sec = 0, 0
	}

	samplesPerHour := 3600 / rate
	if samplesPerHour < 1 {
		// Admission periods beyond an hour leave less than one sample
		// per boundary interval.
		samplesPerHour = 1
	}
	offset := sec / rate
	boundaries := (maxOffset + samplesPerHour - 1) / samplesPerHour

	labels := map[int]string{}
	for i := 0; i < boundaries; i++ {
		hour := h - i
		halfHour := hour + 1
		if !reltime {
			hour = ((h-i)%24 + 24) % 24
			halfHour = hour
		}
		put(labels, offset+samplesPerHour*i-1800/rate, fmt.Sprintf("%d:30", halfHour))
		put(labels, offset+samplesPerHour*i, fmt.Sprintf("%d:00", hour))
	}
	return labels
}

// put drops offsets that lie in the future; they have no column to land
// on.
func put(labels map[int]string, offset int, text string) {
	if offset < 0 {
		return
	}
	labels[offset] = text
}
