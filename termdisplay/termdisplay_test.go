// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termdisplay

import (
	"bytes"
	"image"
	"strings"
	"testing"
)

func TestDraw(t *testing.T) {
	d := New(&Opts{W: 4, H: 2})
	var out bytes.Buffer
	d.w = &out

	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if strings.Count(got, "\n") != 2 {
		t.Errorf("expected 2 terminal rows, output %q", got)
	}
	if !strings.HasSuffix(got, "\033[0m\n") {
		t.Errorf("expected attributes to be reset per row, output %q", got)
	}
}

func TestDrawClipped(t *testing.T) {
	d := New(&Opts{W: 4, H: 2})
	var out bytes.Buffer
	d.w = &out

	// Drawing beyond the buffer must clip, not panic.
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	if err := d.Draw(image.Rect(0, 0, 16, 16), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
}

func TestHalt(t *testing.T) {
	d := New(&Opts{W: 2, H: 2})
	var out bytes.Buffer
	d.w = &out
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "\033[0m") {
		t.Error("expected Halt to reset terminal attributes")
	}
}
