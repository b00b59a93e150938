// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ui

import (
	"fmt"
	"image"
)

// drawHistoryGraph paints the graph region: the sample polyline, dashed
// reference lines at the observed minimum and maximum, a dashed vertical
// line with a caption per visible time label, and the status message.
func (u *UI) drawHistoryGraph(r image.Rectangle, history []int, labels map[int]string, message string) {
	u.clearRect(r)
	if len(history) == 0 && message == "" {
		return
	}

	x, y := float64(r.Min.X), float64(r.Min.Y)
	w, h := float64(r.Dx()), float64(r.Dy())

	u.ctx.SetFontFace(u.small)
	_, txtH := u.ctx.MeasureString("8")
	txtH += 2
	// The bottom row of the region is reserved for axis captions and the
	// status message.
	xLabelH := txtH
	plotH := h - xLabelH

	u.ctx.SetRGB(0, 0, 0)
	if len(history) > 0 {
		sampleMin, sampleMax := minMax(history)

		u.ctx.DrawString(fmt.Sprintf("%dppm", sampleMax), x, y+txtH-2)
		u.ctx.DrawString(fmt.Sprintf("%dppm", sampleMin), x, y+plotH-3)
		u.dashedLine(x, y, x+w-1, y)
		u.dashedLine(x, y+plotH-1, x+w-1, y+plotH-1)

		for offset, label := range labels {
			// Offset 0 shares a column with the newest sample.
			lx := x + w - 1 - float64(offset)
			if lx < x || lx > x+w-1 {
				continue
			}
			u.dashedLine(lx, y, lx, y+plotH-1)
			u.ctx.DrawString(label, lx, y+h-2)
		}

		u.plotSamples(x, y, w, plotH, history, sampleMin, sampleMax)
	}

	if message != "" {
		u.ctx.SetRGB(0, 0, 0)
		u.ctx.DrawString(message, x+2, y+h-2)
	}
}

// plotSamples draws the sample polyline, right-aligned so the most recent
// sample lands on the rightmost plottable column, scaled vertically between
// the observed extremes.
func (u *UI) plotSamples(x, y, w, h float64, history []int, sampleMin, sampleMax int) {
	samples := history
	if len(samples) > int(w) {
		samples = samples[len(samples)-int(w):]
	}
	span := sampleMax - sampleMin
	if span < 1 {
		span = 1
	}
	scale := 1.0 / float64(span)

	pad := w - float64(len(samples))
	pointAt := func(i int) (float64, float64) {
		px := x + float64(i) + pad
		py := y + h - (float64(samples[i]-sampleMin)*scale*h + 1)
		return px, py
	}

	u.ctx.SetRGB(0, 0, 0)
	if len(samples) == 1 {
		px, py := pointAt(0)
		u.ctx.SetPixel(int(px), int(py))
		return
	}
	for i := 1; i < len(samples); i++ {
		x0, y0 := pointAt(i - 1)
		x1, y1 := pointAt(i)
		u.ctx.DrawLine(x0, y0, x1, y1)
		u.ctx.Stroke()
	}
}

func (u *UI) dashedLine(x0, y0, x1, y1 float64) {
	u.ctx.SetDash(3, 3)
	u.ctx.DrawLine(x0, y0, x1, y1)
	u.ctx.Stroke()
	u.ctx.SetDash()
}

func minMax(vs []int) (int, int) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
