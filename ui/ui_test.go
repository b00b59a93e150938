// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ui

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font/basicfont"
)

// fakeDisplay implements display.Drawer and counts flushes.
type fakeDisplay struct {
	bounds image.Rectangle
	draws  int
}

func (f *fakeDisplay) String() string {
	return "fake"
}

func (f *fakeDisplay) Halt() error {
	return nil
}

func (f *fakeDisplay) ColorModel() color.Model {
	return color.RGBAModel
}

func (f *fakeDisplay) Bounds() image.Rectangle {
	return f.bounds
}

func (f *fakeDisplay) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.draws++
	return nil
}

func getUI() (*UI, *fakeDisplay) {
	dev := &fakeDisplay{bounds: image.Rect(0, 0, 128, 64)}
	f := basicfont.Face7x13
	return New(dev, f, f), dev
}

func TestDrawIdempotent(t *testing.T) {
	u, dev := getUI()
	history := []int{400, 410, 420}
	labels := map[int]string{10: "14:00"}
	climate := Climate{Temperature: 21.5, Pressure: 1013.2, Humidity: 40.1}

	if err := u.Draw(415, history, labels, climate, ""); err != nil {
		t.Fatal(err)
	}
	if dev.draws != 1 {
		t.Fatalf("expected 1 flush after the first draw, received %d", dev.draws)
	}

	if err := u.Draw(415, history, labels, climate, ""); err != nil {
		t.Fatal(err)
	}
	if dev.draws != 1 {
		t.Errorf("expected no flush for identical inputs, received %d", dev.draws)
	}

	co2Dirty, climateDirty, graphDirty := u.dirty(415, history, labels, climate, "")
	if co2Dirty || climateDirty || graphDirty {
		t.Errorf("expected no dirty regions for identical inputs, received %v %v %v", co2Dirty, climateDirty, graphDirty)
	}
}

func TestDrawHistoryComparedByContent(t *testing.T) {
	u, dev := getUI()
	climate := Climate{}
	_ = u.Draw(400, []int{400, 410}, nil, climate, "")

	// A different slice with equal content must not trigger a repaint.
	_ = u.Draw(400, []int{400, 410}, nil, climate, "")
	if dev.draws != 1 {
		t.Errorf("expected no flush for equal history content, received %d flushes", dev.draws)
	}

	_ = u.Draw(400, []int{400, 410, 420}, nil, climate, "")
	if dev.draws != 2 {
		t.Errorf("expected a flush for changed history, received %d flushes", dev.draws)
	}
}

func TestDirtyRegionIndependence(t *testing.T) {
	u, _ := getUI()
	history := []int{400, 410}
	labels := map[int]string{10: "14:00"}
	climate := Climate{Temperature: 21, Pressure: 1013, Humidity: 40}
	_ = u.Draw(415, history, labels, climate, "")

	// A current-value change touches only its own region.
	co2Dirty, climateDirty, graphDirty := u.dirty(420, history, labels, climate, "")
	if !co2Dirty || climateDirty || graphDirty {
		t.Errorf("co2 change: expected only the co2 region dirty, received %v %v %v", co2Dirty, climateDirty, graphDirty)
	}

	// A climate change does not force a graph redraw.
	co2Dirty, climateDirty, graphDirty = u.dirty(415, history, labels, Climate{Temperature: 22, Pressure: 1013, Humidity: 40}, "")
	if co2Dirty || !climateDirty || graphDirty {
		t.Errorf("climate change: expected only the climate region dirty, received %v %v %v", co2Dirty, climateDirty, graphDirty)
	}

	// Label and message changes redraw the graph region.
	_, _, graphDirty = u.dirty(415, history, map[int]string{11: "14:00"}, climate, "")
	if !graphDirty {
		t.Error("label change: expected the graph region dirty")
	}
	_, _, graphDirty = u.dirty(415, history, labels, climate, "climate sensor offline")
	if !graphDirty {
		t.Error("message change: expected the graph region dirty")
	}
}

func TestDrawFlushesOnClimateOnlyChange(t *testing.T) {
	u, dev := getUI()
	_ = u.Draw(415, []int{400}, nil, Climate{Temperature: 21}, "")
	_ = u.Draw(415, []int{400}, nil, Climate{Temperature: 22}, "")
	if dev.draws != 2 {
		t.Errorf("expected a flush for a climate-only change, received %d flushes", dev.draws)
	}
}

func TestDrawEmptyHistory(t *testing.T) {
	u, dev := getUI()
	if err := u.Draw(0, nil, nil, Climate{}, "sensor offline"); err != nil {
		t.Fatal(err)
	}
	if dev.draws != 1 {
		t.Errorf("expected 1 flush, received %d", dev.draws)
	}
}

func TestDrawLongHistory(t *testing.T) {
	u, _ := getUI()
	history := make([]int, 500)
	for i := range history {
		history[i] = 400 + i%100
	}
	// More samples than plot columns must not draw out of bounds.
	if err := u.Draw(450, history, map[int]string{0: "9:00", 60: "8:30"}, Climate{}, ""); err != nil {
		t.Fatal(err)
	}
}

func TestGraphLabelAtOffsetZero(t *testing.T) {
	u, _ := getUI()
	// A boundary label at offset 0 belongs to the newest sample's column
	// and must render its vertical line at the right edge of the plot.
	// Flat history keeps the polyline at the plot bottom, so any ink in
	// the middle rows of the rightmost columns is the dashed line.
	if err := u.Draw(400, []int{400, 400}, map[int]string{0: "14:00"}, Climate{}, ""); err != nil {
		t.Fatal(err)
	}
	img := u.ctx.Image()
	found := false
	for y := 24; y <= 40 && !found; y++ {
		for x := 126; x <= 127; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r < 0xffff || g < 0xffff || b < 0xffff {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected the offset-0 label's vertical line at the right edge of the plot")
	}
}

func TestDrawFlatHistory(t *testing.T) {
	u, _ := getUI()
	// min == max must not divide by zero.
	if err := u.Draw(400, []int{400, 400, 400}, nil, Climate{}, ""); err != nil {
		t.Fatal(err)
	}
}
