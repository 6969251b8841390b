// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package chart_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/ambigviz/pileup/chart"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

func newRow(pos int, a, c, g, t uint32) pileup.Row {
	r := pileup.Row{Pos: pos}
	r.Counts[pileup.BaseA] = a
	r.Counts[pileup.BaseC] = c
	r.Counts[pileup.BaseG] = g
	r.Counts[pileup.BaseT] = t
	return r
}

var testRows = []pileup.Row{
	newRow(140, 10, 2, 0, 0),
	newRow(145, 0, 0, 5, 5),
}

func TestFormat(t *testing.T) {
	for path, want := range map[string]string{
		"pileup.png":     "png",
		"out/x.PDF":      "pdf",
		"chart.svg":      "svg",
		"chart.v1.jpeg":  "jpeg",
		"/tmp/plot.tiff": "tiff",
	} {
		got, err := chart.Format(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	for _, path := range []string{"pileup", "pileup.gif", "pileup.png.txt"} {
		_, err := chart.Format(path)
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Invalid, err), path)
	}
}

func TestHeights(t *testing.T) {
	h := chart.Heights(testRows, false)
	// Display order is A, T, C, G.
	assert.Equal(t, plotter.Values{10, 0}, h[0])
	assert.Equal(t, plotter.Values{0, 5}, h[1])
	assert.Equal(t, plotter.Values{2, 0}, h[2])
	assert.Equal(t, plotter.Values{0, 5}, h[3])

	h = chart.Heights(append(testRows, newRow(150, 0, 0, 0, 0)), true)
	assert.Equal(t, plotter.Values{83.33, 0, 0}, h[0])
	assert.Equal(t, plotter.Values{0, 50, 0}, h[1])
	assert.Equal(t, plotter.Values{16.67, 0, 0}, h[2])
	assert.Equal(t, plotter.Values{0, 50, 0}, h[3])
}

func TestAnnotations(t *testing.T) {
	h := chart.Heights(testRows, false)

	combined := chart.Annotations(h, false, false)
	assert.Equal(t, []string{"C: 2\nA: 10", "G: 5\nT: 5"}, combined.Labels)
	assert.Equal(t, plotter.XYs{{X: 0, Y: 6}, {X: 1, Y: 5}}, combined.XYs)

	individual := chart.Annotations(h, false, true)
	assert.Equal(t, []string{"A: 10", "C: 2", "T: 5", "G: 5"}, individual.Labels)
	assert.Equal(t, plotter.XYs{{X: 0, Y: 5}, {X: 0, Y: 11}, {X: 1, Y: 2.5}, {X: 1, Y: 7.5}}, individual.XYs)

	pct := chart.Annotations(chart.Heights(testRows, true), true, true)
	assert.Equal(t, []string{"A: 83.33", "C: 16.67", "T: 50", "G: 50"}, pct.Labels)

	// Bars of zero height get no label.
	empty := chart.Annotations(chart.Heights([]pileup.Row{newRow(1, 0, 0, 0, 0)}, false), false, false)
	assert.Empty(t, empty.Labels)
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRender(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	for _, test := range []struct {
		name string
		rows []pileup.Row
		opts chart.Opts
	}{
		{"counts.png", testRows, chart.Opts{Label: "140,145", FigWidth: 20}},
		{"pct.png", testRows, chart.Opts{Label: "140,145", FigWidth: 8, Percentages: true, IndividualAnnotations: true}},
		{"empty.png", nil, chart.Opts{Label: "100-200", FigWidth: 20}},
	} {
		test.opts.Output = filepath.Join(tmpdir, test.name)
		require.NoError(t, chart.Render(ctx, test.rows, test.opts))
		data, err := ioutil.ReadFile(test.opts.Output)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), test.name)
	}

	svg := filepath.Join(tmpdir, "chart.svg")
	require.NoError(t, chart.Render(ctx, testRows, chart.Opts{Label: "140,145", FigWidth: 20, Output: svg}))
	data, err := ioutil.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), "Ambiguous bases in BAM file at positions 140,145")
}

func TestRenderErrors(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	err := chart.Render(ctx, testRows, chart.Opts{FigWidth: 0, Output: filepath.Join(tmpdir, "x.png")})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Invalid, err))

	err = chart.Render(ctx, testRows, chart.Opts{FigWidth: 20, Output: filepath.Join(tmpdir, "x.bmp")})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestNewTitle(t *testing.T) {
	p, err := chart.New(testRows, chart.Opts{Label: "140,145", FigWidth: 20, Percentages: true})
	require.NoError(t, err)
	assert.Equal(t, "Ambiguous bases in BAM file at positions 140,145", p.Title.Text)
	assert.Equal(t, "Percentage", p.Y.Label.Text)
	assert.Equal(t, 100.0, p.Y.Max)
}
