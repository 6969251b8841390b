package bamprovider

import (
	"fmt"
	"sort"

	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/hts/sam"
)

// clusterGap is the largest distance between two requested positions that
// are still fetched with a single index query.  It matches the width of a
// .bai linear-index window.
const clusterGap = 1 << 14

// columnCollector accumulates pileup columns for a sorted run of 1-based
// positions on one reference.
type columnCollector struct {
	refID       int
	flagExclude sam.Flags
	minMapq     int
	positions   []int
	cols        []pileup.Column
}

func newColumnCollector(ref *sam.Reference, opts *ProviderOpts, positions []int, cols []pileup.Column) *columnCollector {
	return &columnCollector{
		refID:       ref.ID(),
		flagExclude: sam.Flags(opts.FlagExclude),
		minMapq:     opts.MinMapq,
		positions:   positions,
		cols:        cols,
	}
}

// skip reports whether a record is filtered out before its alignment is
// examined.
func (c *columnCollector) skip(r *sam.Record) bool {
	return r.Ref == nil || r.Ref.ID() != c.refID ||
		r.Flags&c.flagExclude != 0 ||
		int(r.MapQ) < c.minMapq ||
		len(r.Cigar) == 0 || r.Seq.Length == 0
}

// baseAt decodes the ASCII base at offset i of a packed BAM sequence.
func baseAt(seq sam.Seq, i int) byte {
	if i >= seq.Length {
		return pileup.Seq8ToASCIITable[15]
	}
	d := seq.Seq[i>>1]
	if i&1 == 0 {
		return pileup.Seq8ToASCIITable[d>>4]
	}
	return pileup.Seq8ToASCIITable[d&0xf]
}

// add walks the record's CIGAR and appends one symbol to every requested
// position the alignment spans.
func (c *columnCollector) add(r *sam.Record) error {
	if c.skip(r) {
		return nil
	}
	posInRef := r.Pos // 0-based
	posInRead := 0
	positions := c.positions
	// First requested position at or after the alignment start.
	k := sort.SearchInts(positions, posInRef+1)
	for _, co := range r.Cigar {
		if k == len(positions) {
			return nil
		}
		cLen := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			nextPosInRef := posInRef + cLen
			for ; k < len(positions) && positions[k]-1 < nextPosInRef; k++ {
				c.cols[k].Bases = append(c.cols[k].Bases, baseAt(r.Seq, posInRead+positions[k]-1-posInRef))
			}
			posInRef = nextPosInRef
			posInRead += cLen
		case sam.CigarInsertion, sam.CigarSoftClipped:
			posInRead += cLen
		case sam.CigarDeletion, sam.CigarSkipped:
			nextPosInRef := posInRef + cLen
			for ; k < len(positions) && positions[k]-1 < nextPosInRef; k++ {
				c.cols[k].Bases = append(c.cols[k].Bases, pileup.Gap)
			}
			posInRef = nextPosInRef
		case sam.CigarHardClipped, sam.CigarPadded:
			// do nothing
		default:
			return fmt.Errorf("bamprovider: read %s has unexpected CIGAR code %v", r.Name, co)
		}
	}
	return nil
}

// newColumns allocates one empty column per position.
func newColumns(positions []int) ([]pileup.Column, error) {
	cols := make([]pileup.Column, len(positions))
	for i, pos := range positions {
		if pos < 1 || (i > 0 && pos <= positions[i-1]) {
			return nil, fmt.Errorf("bamprovider: positions must be 1-based and strictly ascending, got %v at index %d", pos, i)
		}
		cols[i].Pos = pos
	}
	return cols, nil
}

// clusters splits sorted positions into runs [start, end) whose neighbours
// are at most clusterGap apart.
func clusters(positions []int) (runs [][2]int) {
	start := 0
	for i := 1; i <= len(positions); i++ {
		if i == len(positions) || positions[i]-positions[i-1] > clusterGap {
			runs = append(runs, [2]int{start, i})
			start = i
		}
	}
	return
}
