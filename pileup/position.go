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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/store/llrb"
	gerrors "github.com/grailbio/base/errors"
	"github.com/pkg/errors"
)

// PositionSet is an ascending, duplicate-free set of 1-based reference
// positions.  It is immutable once resolved.
type PositionSet struct {
	positions []int
	label     string
}

// posKey orders positions inside an llrb.Tree.  Inserting an equal key
// replaces the old one, which is what deduplicates the set.
type posKey int

// Compare implements llrb.Comparable.
func (k posKey) Compare(c llrb.Comparable) int {
	return int(k) - int(c.(posKey))
}

// Positions returns the positions in ascending order.  The caller must not
// modify the returned slice.
func (s PositionSet) Positions() []int { return s.positions }

// Len returns the number of positions in the set.
func (s PositionSet) Len() int { return len(s.positions) }

// Label describes the set for chart titles: "140,145" for an explicit list,
// "140-145" for a range.
func (s PositionSet) Label() string { return s.label }

// ResolvePositions builds a PositionSet from either a comma-separated list of
// 1-based positions (list != "") or an inclusive range (start, end both
// nonzero).  Exactly one of the two modes must be used.  All failures have
// kind errors.Invalid.
func ResolvePositions(list string, start, end int) (PositionSet, error) {
	hasList := strings.TrimSpace(list) != ""
	hasRange := start != 0 || end != 0
	switch {
	case hasList && hasRange:
		return PositionSet{}, gerrors.E(gerrors.Invalid, "ResolvePositions: -positions cannot be combined with -start_pos/-end_pos")
	case hasList:
		return parsePositionList(list)
	case hasRange:
		return positionRange(start, end)
	}
	return PositionSet{}, gerrors.E(gerrors.Invalid, "ResolvePositions: either -positions or both -start_pos and -end_pos are required")
}

func parsePositionList(list string) (PositionSet, error) {
	var tree llrb.Tree
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return PositionSet{}, gerrors.E(gerrors.Invalid, fmt.Sprintf("ResolvePositions: empty entry in position list %q", list))
		}
		pos, err := strconv.Atoi(tok)
		if err != nil {
			return PositionSet{}, gerrors.E(gerrors.Invalid, errors.Wrapf(err, "ResolvePositions: bad position %q", tok))
		}
		if pos < 1 {
			return PositionSet{}, gerrors.E(gerrors.Invalid, fmt.Sprintf("ResolvePositions: positions are 1-based, got %d", pos))
		}
		tree.Insert(posKey(pos))
	}
	positions := make([]int, 0, tree.Len())
	tree.Do(func(c llrb.Comparable) bool {
		positions = append(positions, int(c.(posKey)))
		return false
	})
	labels := make([]string, len(positions))
	for i, pos := range positions {
		labels[i] = strconv.Itoa(pos)
	}
	return PositionSet{positions: positions, label: strings.Join(labels, ",")}, nil
}

func positionRange(start, end int) (PositionSet, error) {
	if start == 0 || end == 0 {
		return PositionSet{}, gerrors.E(gerrors.Invalid, "ResolvePositions: -start_pos and -end_pos must be given together")
	}
	if start < 1 {
		return PositionSet{}, gerrors.E(gerrors.Invalid, fmt.Sprintf("ResolvePositions: positions are 1-based, got start %d", start))
	}
	if start > end {
		return PositionSet{}, gerrors.E(gerrors.Invalid, fmt.Sprintf("ResolvePositions: start %d is after end %d", start, end))
	}
	positions := make([]int, 0, end-start+1)
	for pos := start; pos <= end; pos++ {
		positions = append(positions, pos)
	}
	return PositionSet{positions: positions, label: fmt.Sprintf("%d-%d", start, end)}, nil
}
