// Package bamtest builds small BAM fixtures for unittests.
package bamtest

import (
	"bytes"
	"os"
	"testing"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// NewHeader returns a header with a single reference of the given length.
func NewHeader(t testing.TB, refName string, refLen int) (*sam.Header, *sam.Reference) {
	ref, err := sam.NewReference(refName, "", "", refLen, nil, nil)
	if err != nil {
		t.Fatalf("sam.NewReference: %v", err)
	}
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	if err != nil {
		t.Fatalf("sam.NewHeader: %v", err)
	}
	header.SortOrder = sam.Coordinate
	return header, ref
}

// NewRecordSeq returns an unpaired read mapped at 0-based pos with MAPQ 60
// and base quality 30 everywhere.
func NewRecordSeq(name string, ref *sam.Reference, pos int, flags sam.Flags, cigar sam.Cigar, seq string) *sam.Record {
	return &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MapQ:    60,
		Flags:   flags,
		Cigar:   cigar,
		MatePos: -1,
		Seq:     sam.NewSeq([]byte(seq)),
		Qual:    bytes.Repeat([]byte{30}, len(seq)),
	}
}

// Match returns a single-operation CIGAR aligning n bases.
func Match(n int) sam.Cigar {
	return sam.Cigar{sam.NewCigarOp(sam.CigarMatch, n)}
}

// StackedReads returns one 1-base read per entry of bases, all covering
// 1-based position pos1.
func StackedReads(ref *sam.Reference, pos1 int, bases string) []*sam.Record {
	recs := make([]*sam.Record, len(bases))
	for i := range bases {
		recs[i] = NewRecordSeq("stack", ref, pos1-1, 0, Match(1), bases[i:i+1])
	}
	return recs
}

// WriteBAM writes recs, in the given order, to a BAM file at path.
func WriteBAM(t testing.TB, path string, header *sam.Header, recs []*sam.Record) {
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	w, err := bam.NewWriter(out, header, 1)
	if err != nil {
		t.Fatalf("bam.NewWriter: %v", err)
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			t.Fatalf("write %s: %v", r.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close BAM writer: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}
