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
package main

/*
bio-ambigviz plots the bases observed at chosen positions of a BAM file.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/ambigviz/encoding/bamprovider"
	"github.com/grailbio/ambigviz/pileup/viz"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	bamPath               string
	positions             = flag.String("positions", viz.DefaultOpts.Positions, "Comma-separated 1-based positions to plot; this xor -start_pos/-end_pos required")
	startPos              = flag.Int("start_pos", viz.DefaultOpts.StartPos, "First 1-based position of an inclusive range to plot")
	endPos                = flag.Int("end_pos", viz.DefaultOpts.EndPos, "Last 1-based position of an inclusive range to plot")
	ref                   = flag.String("ref", viz.DefaultOpts.Ref, "Reference contig to query; defaults to the first contig in the BAM header")
	bamIndexPath          = flag.String("index", viz.DefaultOpts.BamIndexPath, "Input BAM index path. Defaults to bampath + .bai; created if missing")
	flagExclude           = flag.Int("flag_exclude", viz.DefaultOpts.FlagExclude, "Reads with a FLAG bit intersecting this value are skipped")
	minMapq               = flag.Int("min_mapq", viz.DefaultOpts.MinMapq, "Reads with MAPQ below this level are skipped")
	percentages           = flag.Bool("percentages", viz.DefaultOpts.Percentages, "Show percentages instead of counts")
	minDepth              = flag.Int("min_depth", viz.DefaultOpts.MinDepth, "Positions with a total depth below this are not plotted")
	saveCounts            = flag.String("save_counts", viz.DefaultOpts.SaveCounts, "Save counts to this file (.csv or .tsv, optionally .gz)")
	figWidth              = flag.Int("fig_width", viz.DefaultOpts.FigWidth, "Width of the figure, in inches")
	individualAnnotations = flag.Bool("individual_annotations", viz.DefaultOpts.IndividualAnnotations, "Label every bar segment with its value")
	output                = flag.String("output", viz.DefaultOpts.Output, "Output image path; the extension selects the format")
)

func init() {
	flag.StringVar(&bamPath, "b", "", "Input BAM path (required)")
	flag.StringVar(&bamPath, "bam", "", "Input BAM path (required)")
}

func ambigvizUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -b bampath {-positions p1,p2,... | -start_pos s -end_pos e} [OPTIONS]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = ambigvizUsage
	shutdown := grail.Init()

	exit := func(code int) {
		shutdown()
		os.Exit(code)
	}
	switch {
	case bamPath == "" && flag.NArg() == 1:
		bamPath = flag.Arg(0)
	case flag.NArg() != 0:
		log.Error.Printf("Unexpected positional arguments %v; please check flag syntax", flag.Args())
		flag.Usage()
		exit(2)
	}
	if bamPath == "" {
		log.Error.Printf("Missing required -b/--bam flag")
		flag.Usage()
		exit(2)
	}

	opts := viz.Opts{
		Positions:             *positions,
		StartPos:              *startPos,
		EndPos:                *endPos,
		Ref:                   *ref,
		BamIndexPath:          *bamIndexPath,
		FlagExclude:           *flagExclude,
		MinMapq:               *minMapq,
		Percentages:           *percentages,
		MinDepth:              *minDepth,
		SaveCounts:            *saveCounts,
		FigWidth:              *figWidth,
		IndividualAnnotations: *individualAnnotations,
		Output:                *output,
	}
	ctx := vcontext.Background()
	provider := bamprovider.NewProvider(bamPath, opts.ProviderOpts())
	if _, err := viz.Run(ctx, provider, &opts); err != nil {
		log.Error.Printf("%v", err)
		if viz.IsConfigError(err) {
			flag.Usage()
			exit(2)
		}
		exit(1)
	}
	log.Debug.Printf("exiting")
	shutdown()
}
