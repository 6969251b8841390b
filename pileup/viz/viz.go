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

// Package viz ties the pieces of an ambiguous-base plot together: it resolves
// the requested positions, reads their pileup from a BAM provider, counts
// and filters the bases, and renders the chart and optional counts file.
package viz

import (
	"context"
	"fmt"

	"github.com/grailbio/ambigviz/encoding/bamprovider"
	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/ambigviz/pileup/chart"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Opts holds the commandline options.
type Opts struct {
	Positions             string
	StartPos              int
	EndPos                int
	Ref                   string
	BamIndexPath          string
	FlagExclude           int
	MinMapq               int
	Percentages           bool
	MinDepth              int
	SaveCounts            string
	FigWidth              int
	IndividualAnnotations bool
	Output                string
}

// DefaultOpts are the commandline defaults.
var DefaultOpts = Opts{
	FlagExclude: bamprovider.DefaultFlagExclude,
	MinMapq:     0,
	MinDepth:    0,
	FigWidth:    20,
	Output:      "pileup.png",
}

// Result is what Run produced.
type Result struct {
	// Positions is the resolved position set.
	Positions pileup.PositionSet
	// Rows holds the positions that passed the depth filter, in ascending
	// position order.
	Rows []pileup.Row
	// Warnings lists the non-fatal problems encountered, e.g. positions
	// without coverage.
	Warnings []string
}

func (r *Result) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("viz.Run: warning: %s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// IsConfigError reports whether err was caused by invalid options rather
// than by I/O.
func IsConfigError(err error) bool {
	return errors.Is(errors.Invalid, err)
}

// ProviderOpts derives the provider options from opts.
func (opts *Opts) ProviderOpts() bamprovider.ProviderOpts {
	return bamprovider.ProviderOpts{
		Index:       opts.BamIndexPath,
		FlagExclude: opts.FlagExclude,
		MinMapq:     opts.MinMapq,
	}
}

// Validate checks the options that do not need the BAM file and resolves
// the position set.  All failures have kind errors.Invalid.
func (opts *Opts) Validate() (pileup.PositionSet, error) {
	if opts.FigWidth <= 0 {
		return pileup.PositionSet{}, errors.E(errors.Invalid, fmt.Sprintf("viz: -fig_width must be positive, got %d", opts.FigWidth))
	}
	if opts.MinDepth < 0 {
		return pileup.PositionSet{}, errors.E(errors.Invalid, fmt.Sprintf("viz: -min_depth cannot be negative, got %d", opts.MinDepth))
	}
	if opts.MinMapq < 0 {
		return pileup.PositionSet{}, errors.E(errors.Invalid, fmt.Sprintf("viz: -min_mapq cannot be negative, got %d", opts.MinMapq))
	}
	if opts.Output == "" {
		return pileup.PositionSet{}, errors.E(errors.Invalid, "viz: -output is required")
	}
	if _, err := chart.Format(opts.Output); err != nil {
		return pileup.PositionSet{}, err
	}
	return pileup.ResolvePositions(opts.Positions, opts.StartPos, opts.EndPos)
}

// Run executes the whole pipeline against provider and closes it before
// returning.  Options are validated before the provider is touched.
func Run(ctx context.Context, provider bamprovider.Provider, opts *Opts) (result *Result, err error) {
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = e
		}
	}()
	result = &Result{}
	if result.Positions, err = opts.Validate(); err != nil {
		return nil, err
	}
	if err = provider.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	positions := result.Positions.Positions()
	log.Printf("viz.Run: computing pileup at %d position(s)", len(positions))
	cols, err := provider.Pileup(ctx, opts.Ref, positions)
	if err != nil {
		return nil, err
	}
	rows := pileup.Tally(cols)
	for i := range rows {
		if rows[i].Depth() == 0 {
			result.warnf("position %d has depth 0", rows[i].Pos)
		}
	}
	result.Rows = pileup.FilterMinDepth(rows, opts.MinDepth)
	if len(result.Rows) == 0 {
		result.warnf("no position has depth >= %d; the chart will be empty", opts.MinDepth)
	} else if n := len(rows) - len(result.Rows); n > 0 {
		log.Printf("viz.Run: %d position(s) below depth %d dropped", n, opts.MinDepth)
	}
	for i := range result.Rows {
		r := &result.Rows[i]
		log.Debug.Printf("viz.Run: %d A=%d C=%d G=%d T=%d", r.Pos, r.Counts[pileup.BaseA], r.Counts[pileup.BaseC], r.Counts[pileup.BaseG], r.Counts[pileup.BaseT])
	}

	if err = chart.Render(ctx, result.Rows, chart.Opts{
		Label:                 result.Positions.Label(),
		Percentages:           opts.Percentages,
		FigWidth:              opts.FigWidth,
		IndividualAnnotations: opts.IndividualAnnotations,
		Output:                opts.Output,
	}); err != nil {
		return nil, err
	}
	log.Printf("viz.Run: wrote %s", opts.Output)
	if opts.SaveCounts != "" {
		if err = pileup.WriteCounts(ctx, opts.SaveCounts, result.Rows); err != nil {
			return nil, err
		}
		log.Printf("viz.Run: wrote %s", opts.SaveCounts)
	}
	return result, nil
}
