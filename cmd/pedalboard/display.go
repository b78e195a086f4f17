package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header and footer lines around the bars
	chromeLines = 2
)

var levels = []rune(" ▁▂▃▄▅▆▇█")

// screen draws the spectrum as a bar chart with ANSI escapes. It works in
// raw mode, so every line ends in CRLF.
type screen struct {
	out io.Writer
	fd  int
	buf strings.Builder
}

func newScreen(out io.Writer, fd int) *screen {
	return &screen{out: out, fd: fd}
}

func (s *screen) size() (width, height int) {
	w, h, err := term.GetSize(s.fd)
	if err != nil || w <= 0 || h <= chromeLines {
		return defaultWidth, defaultHeight
	}

	return w, h
}

func (s *screen) draw(curve []float64, status string) {
	width, height := s.size()

	s.buf.Reset()
	s.buf.WriteString("\x1b[H")
	s.buf.WriteString(status)
	s.buf.WriteString("\x1b[K\r\n")

	for _, row := range renderBars(curve, width, height-chromeLines) {
		s.buf.WriteString(row)
		s.buf.WriteString("\r\n")
	}

	s.buf.WriteString("d/c state  +/- drive  I/i input  O/o output  q quit\x1b[K")

	_, _ = io.WriteString(s.out, s.buf.String())
}

func (s *screen) clear() {
	_, _ = fmt.Fprint(s.out, "\x1b[H\x1b[2J")
}

// renderBars draws curve (values in [0, 1]) into height rows of width
// cells. Each cell shows the loudest curve point that falls into it.
func renderBars(curve []float64, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	cols := columnLevels(curve, width)
	steps := len(levels) - 1
	rows := make([]string, height)

	var line strings.Builder
	for r := range height {
		line.Reset()

		// Row 0 is the top; floor is the level at the bottom of the row.
		floor := float64(height-1-r) / float64(height)

		for _, v := range cols {
			fill := (v - floor) * float64(height)

			switch {
			case fill >= 1:
				line.WriteRune(levels[steps])
			case fill <= 0:
				line.WriteRune(levels[0])
			default:
				line.WriteRune(levels[int(fill*float64(steps))])
			}
		}

		rows[r] = line.String()
	}

	return rows
}

// columnLevels reduces curve to width values by taking the maximum over
// each group of points. Narrow curves are stretched.
func columnLevels(curve []float64, width int) []float64 {
	cols := make([]float64, width)
	if len(curve) == 0 {
		return cols
	}

	for c := range cols {
		lo := c * len(curve) / width
		hi := (c + 1) * len(curve) / width
		if hi <= lo {
			hi = lo + 1
		}

		best := 0.0
		for _, v := range curve[lo:min(hi, len(curve))] {
			best = max(best, v)
		}

		cols[c] = min(best, 1)
	}

	return cols
}
