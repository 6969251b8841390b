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
package pileup

import "math"

// Column holds the raw symbols observed at one 1-based position, one per
// covering read.  A position with no coverage has an empty Bases slice.
type Column struct {
	Pos   int
	Bases []byte
}

// BaseCount holds per-base counts, indexed by BaseA..BaseT.
type BaseCount [NBase]uint32

// Depth returns the total number of counted observations.
func (c *BaseCount) Depth() uint32 {
	return c[BaseA] + c[BaseC] + c[BaseG] + c[BaseT]
}

// Row is the pileup summary for one position.
type Row struct {
	Pos    int
	Counts BaseCount
}

// Depth returns the row's total depth.
func (r *Row) Depth() uint32 { return r.Counts.Depth() }

// Tally aggregates raw observations into per-position counts.  Symbols
// outside {A,C,G,T} (N, ambiguity codes, gaps) are ignored and do not
// contribute to depth.  Output order matches input order.
func Tally(cols []Column) []Row {
	rows := make([]Row, len(cols))
	for i, col := range cols {
		rows[i].Pos = col.Pos
		counts := &rows[i].Counts
		for _, b := range col.Bases {
			if base := ASCIIToEnumTable[b]; base != BaseX {
				counts[base]++
			}
		}
	}
	return rows
}

// FilterMinDepth returns the rows whose depth is at least minDepth, in their
// original order.  minDepth <= 0 returns rows unchanged.
func FilterMinDepth(rows []Row, minDepth int) []Row {
	if minDepth <= 0 {
		return rows
	}
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if int64(r.Depth()) >= int64(minDepth) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Percentages converts a row's counts to percentages of its depth, rounded to
// two decimal places.  A zero-depth row yields all zeros.
func Percentages(r *Row) (pct [NBase]float64) {
	depth := r.Depth()
	if depth == 0 {
		return
	}
	for i, c := range r.Counts {
		pct[i] = math.Round(float64(c)*10000/float64(depth)) / 100
	}
	return
}
