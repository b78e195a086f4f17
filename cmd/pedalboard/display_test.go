package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLevels(t *testing.T) {
	t.Parallel()

	curve := []float64{0.1, 0.9, 0.2, 0.4, 0, 0, 1.5, 0.3}

	assert.Equal(t, []float64{0.9, 0.4, 0, 1}, columnLevels(curve, 4))
	assert.Equal(t, []float64{0.1, 0.1, 0.9, 0.9}, columnLevels(curve[:2], 4))
	assert.Equal(t, []float64{0, 0}, columnLevels(nil, 2))
}

func TestRenderBars(t *testing.T) {
	t.Parallel()

	rows := renderBars([]float64{0, 0.5, 1}, 3, 4)
	require.Len(t, rows, 4)

	for _, r := range rows {
		assert.Equal(t, 3, utf8.RuneCountInString(r))
	}

	assert.Equal(t, "  █", rows[0])
	assert.Equal(t, "  █", rows[1])
	assert.Equal(t, " ██", rows[2])
	assert.Equal(t, " ██", rows[3])

	assert.Nil(t, renderBars([]float64{1}, 0, 4))
}

func TestRenderBarsPartialCell(t *testing.T) {
	t.Parallel()

	rows := renderBars([]float64{0.5}, 1, 1)
	require.Len(t, rows, 1)
	assert.Equal(t, "▄", rows[0])
}

func TestScreenDraw(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s := newScreen(&out, -1)
	s.draw([]float64{1, 0}, "clean")

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "\x1b[Hclean"))
	assert.Equal(t, defaultHeight-chromeLines+1, strings.Count(text, "\r\n"))
}
