// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ui renders the monitor screen: a large current CO2 figure, a
// climate summary and a scrolling history graph with a wall-clock axis.
//
// Repainting a panel is slow (and on e-paper, visibly so), so the renderer
// keeps a copy of everything it drew last and repaints a region only when
// the data behind it changed. The screen is split in three regions: the CO2
// label, the climate label, and the graph together with its axis decoration
// and status message. At most one flush to the device happens per Draw
// call, and only if some region was repainted.
package ui

import (
	"fmt"
	"image"
	"maps"
	"slices"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"periph.io/x/conn/v3/display"
)

// Climate is a reading from the climate sensor. Temperature is in °C,
// Pressure in hPa and Humidity in %RH.
type Climate struct {
	Temperature float64
	Pressure    float64
	Humidity    float64
}

// UI draws to a display.Drawer through an in-memory drawing context.
type UI struct {
	dev   display.Drawer
	ctx   *gg.Context
	big   font.Face
	small font.Face

	// The previous call's inputs. The history is compared by content, not
	// by reference; the caller may reuse its slice.
	hasPrev bool
	co2     float64
	history []int
	labels  map[int]string
	climate Climate
	message string
}

// New creates a renderer backed by dev. big is the face for the headline
// CO2 figure, small the face for everything else.
func New(dev display.Drawer, big, small font.Face) *UI {
	b := dev.Bounds()
	ctx := gg.NewContext(b.Dx(), b.Dy())
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()
	return &UI{dev: dev, ctx: ctx, big: big, small: small}
}

// dirty reports which regions need a repaint for the given inputs.
func (u *UI) dirty(co2 float64, history []int, labels map[int]string, climate Climate, message string) (co2Dirty, climateDirty, graphDirty bool) {
	if !u.hasPrev {
		return true, true, true
	}
	co2Dirty = co2 != u.co2
	climateDirty = climate != u.climate
	graphDirty = !slices.Equal(history, u.history) ||
		!maps.Equal(labels, u.labels) ||
		message != u.message
	return
}

// Draw repaints the regions whose inputs changed since the previous call
// and flushes the result to the device if anything was repainted. The
// comparison cache is overwritten with the current inputs regardless of
// what was repainted.
func (u *UI) Draw(co2 float64, history []int, labels map[int]string, climate Climate, message string) error {
	b := u.dev.Bounds()
	w, h := b.Dx(), b.Dy()

	co2Dirty, climateDirty, graphDirty := u.dirty(co2, history, labels, climate, message)

	if co2Dirty {
		u.drawCO2Label(image.Rect(0, 0, w*2/5, h/4), co2)
	}
	if climateDirty {
		u.drawClimateLabel(image.Rect(w*3/5, 0, w, h/4), climate)
	}
	if graphDirty {
		u.drawHistoryGraph(image.Rect(0, h/4, w, h), history, labels, message)
	}

	var err error
	if co2Dirty || climateDirty || graphDirty {
		err = u.dev.Draw(b, u.ctx.Image(), image.Point{})
	}

	u.hasPrev = true
	u.co2 = co2
	u.history = slices.Clone(history)
	u.labels = maps.Clone(labels)
	u.climate = climate
	u.message = message
	return err
}

// clearRect paints a region back to the background color.
func (u *UI) clearRect(r image.Rectangle) {
	u.ctx.SetRGB(1, 1, 1)
	u.ctx.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	u.ctx.Fill()
}

func (u *UI) drawCO2Label(r image.Rectangle, co2 float64) {
	u.clearRect(r)
	u.ctx.SetRGB(0, 0, 0)
	u.ctx.SetFontFace(u.big)
	label := fmt.Sprintf("CO2: %.0f", co2)
	lw, lh := u.ctx.MeasureString(label)
	u.ctx.DrawString(label,
		float64(r.Min.X)+float64(r.Dx())/2-lw/2,
		float64(r.Min.Y)+float64(r.Dy())/2+lh/2)
}

func (u *UI) drawClimateLabel(r image.Rectangle, climate Climate) {
	u.clearRect(r)
	u.ctx.SetRGB(0, 0, 0)
	u.ctx.SetFontFace(u.small)
	label := fmt.Sprintf("%.2fC  %.2f%%", climate.Temperature, climate.Humidity)
	lw, lh := u.ctx.MeasureString(label)
	u.ctx.DrawString(label,
		float64(r.Min.X)+float64(r.Dx())/2-lw/2,
		float64(r.Min.Y)+float64(r.Dy())/2+lh/2)
}
