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

/*
Given an indexed (or indexable) BAM file and a set of reference positions,
bio-ambigviz counts the A/C/G/T bases each covering read shows at each
position and draws a stacked bar chart of the distribution.  It is meant for
eyeballing ambiguous positions, i.e. ones where reads disagree, which may
point at mixed samples, contamination or sequencing error.

Positions are 1-based.  Give them either as a list (-positions 140,145) or as
an inclusive range (-start_pos 140 -end_pos 145).  Bases other than A/C/G/T
(N, IUPAC codes, deletions) are not counted.  If the BAM has no .bai index,
one is written next to it first; this fails for BAMs that are not
coordinate-sorted.

-percentages plots each base as a share of the position's depth; positions
with zero depth are drawn as empty bars.  -min_depth drops positions whose
total depth is lower.  -save_counts also writes the raw counts as CSV
(tab-separated if the name ends in .tsv, gzipped if it ends in .gz).

Sample usage:
bio-ambigviz \
    -b my.bam \
    -positions 140,145 \
    -min_depth 10 \
    -percentages \
    -save_counts counts.csv \
    -output pileup.png
*/
package main
