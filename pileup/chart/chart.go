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

// Package chart renders pileup rows as a stacked bar chart, one bar per
// position and one segment per base.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Opts controls chart construction.
type Opts struct {
	// Label names the plotted positions in the title, e.g. "140,145".
	Label string
	// Percentages plots each base as a percentage of the position's depth
	// instead of a raw count.
	Percentages bool
	// FigWidth is the image width in inches.
	FigWidth int
	// IndividualAnnotations labels every bar segment with its value;
	// otherwise each bar gets one combined label.
	IndividualAnnotations bool
	// Output is the image path.  Its extension selects the format.
	Output string
}

// figHeight is the fixed image height.
const figHeight = 5 * vg.Inch

// palette holds the segment colors, in pileup.DisplayOrder.
var palette = [pileup.NBase]color.Color{
	color.RGBA{R: 0x60, G: 0x93, B: 0x5d, A: 0xff}, // A
	color.RGBA{R: 0xe6, G: 0x39, B: 0x46, A: 0xff}, // T
	color.RGBA{R: 0x1b, G: 0x52, B: 0x99, A: 0xff}, // C
	color.RGBA{R: 0xf5, G: 0xbb, B: 0x00, A: 0xff}, // G
}

var formats = map[string]bool{
	"eps": true, "jpg": true, "jpeg": true, "pdf": true,
	"png": true, "svg": true, "tif": true, "tiff": true,
}

// Format returns the image format implied by path's extension.  Unsupported
// extensions are errors.Invalid.
func Format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !formats[ext] {
		return "", errors.E(errors.Invalid, fmt.Sprintf("chart: unsupported image format %q for %s", ext, path))
	}
	return ext, nil
}

// Heights returns the bar segment heights: Heights(...)[k][i] is the height
// of base pileup.DisplayOrder[k] at rows[i].
func Heights(rows []pileup.Row, percentages bool) (h [pileup.NBase]plotter.Values) {
	for k := range h {
		h[k] = make(plotter.Values, len(rows))
	}
	for i := range rows {
		var v [pileup.NBase]float64
		if percentages {
			v = pileup.Percentages(&rows[i])
		} else {
			for base, c := range rows[i].Counts {
				v[base] = float64(c)
			}
		}
		for k, base := range pileup.DisplayOrder {
			h[k][i] = v[base]
		}
	}
	return
}

func formatValue(v float64, percentages bool) string {
	if percentages {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatInt(int64(v), 10)
}

// Annotations returns the label positions and texts for a chart with the
// given segment heights.  Zero-height segments are never labeled.
func Annotations(h [pileup.NBase]plotter.Values, percentages, individual bool) plotter.XYLabels {
	var labels plotter.XYLabels
	n := len(h[0])
	for i := 0; i < n; i++ {
		if individual {
			bottom := 0.0
			for k, base := range pileup.DisplayOrder {
				if v := h[k][i]; v > 0 {
					labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: bottom + v/2})
					labels.Labels = append(labels.Labels, pileup.BaseName(base)+": "+formatValue(v, percentages))
				}
				bottom += h[k][i]
			}
			continue
		}
		// One label per bar at half its height, top segment first.
		var (
			total float64
			lines []string
		)
		for k := pileup.NBase - 1; k >= 0; k-- {
			v := h[k][i]
			total += v
			if v > 0 {
				lines = append(lines, pileup.BaseName(pileup.DisplayOrder[k])+": "+formatValue(v, percentages))
			}
		}
		if len(lines) != 0 {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: total / 2})
			labels.Labels = append(labels.Labels, strings.Join(lines, "\n"))
		}
	}
	return labels
}

// barWidth spreads the bars over most of the figure, capped at one inch.
func barWidth(figWidth, n int) vg.Length {
	w := vg.Length(figWidth) * vg.Inch * 0.6 / vg.Length(n)
	if w > vg.Inch {
		w = vg.Inch
	}
	return w
}

// New builds the chart for rows.  An empty rows slice yields a chart with
// axes and title only.
func New(rows []pileup.Row, opts Opts) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Ambiguous bases in BAM file at positions " + opts.Label
	p.X.Label.Text = "Position"
	p.Y.Label.Text = "Count"
	p.Y.Min = 0
	if opts.Percentages {
		p.Y.Label.Text = "Percentage"
		p.Y.Max = 100
	}
	p.Legend.Top = true
	if len(rows) == 0 {
		return p, nil
	}

	h := Heights(rows, opts.Percentages)
	width := barWidth(opts.FigWidth, len(rows))
	var prev *plotter.BarChart
	for k, base := range pileup.DisplayOrder {
		bar, err := plotter.NewBarChart(h[k], width)
		if err != nil {
			return nil, err
		}
		bar.Color = palette[k]
		bar.LineStyle.Width = 0
		if prev != nil {
			bar.StackOn(prev)
		}
		p.Add(bar)
		p.Legend.Add(pileup.BaseName(base), bar)
		prev = bar
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = strconv.Itoa(r.Pos)
	}
	p.NominalX(names...)

	annotations := Annotations(h, opts.Percentages, opts.IndividualAnnotations)
	if len(annotations.XYs) != 0 {
		labels, err := plotter.NewLabels(annotations)
		if err != nil {
			return nil, err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
			labels.TextStyle[i].Font.Size = vg.Points(8)
		}
		p.Add(labels)
	}
	return p, nil
}

// Render builds the chart for rows and writes it to opts.Output.
func Render(ctx context.Context, rows []pileup.Row, opts Opts) (err error) {
	format, err := Format(opts.Output)
	if err != nil {
		return err
	}
	if opts.FigWidth <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("chart: figure width must be positive, got %d", opts.FigWidth))
	}
	p, err := New(rows, opts)
	if err != nil {
		return errors.E(err, "chart: build")
	}
	wt, err := p.WriterTo(vg.Length(opts.FigWidth)*vg.Inch, figHeight, format)
	if err != nil {
		return errors.E(err, "chart: render")
	}
	var out file.File
	if out, err = file.Create(ctx, opts.Output); err != nil {
		return errors.E(err, "chart: create", opts.Output)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if _, err = wt.WriteTo(out.Writer(ctx)); err != nil {
		return errors.E(err, "chart: write", opts.Output)
	}
	return nil
}
