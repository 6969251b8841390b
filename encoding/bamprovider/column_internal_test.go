package bamprovider

import (
	"testing"

	"github.com/grailbio/ambigviz/encoding/bamprovider/bamtest"
	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestClusters(t *testing.T) {
	expect.EQ(t, len(clusters(nil)), 0)
	expect.EQ(t, clusters([]int{5}), [][2]int{{0, 1}})
	expect.EQ(t, clusters([]int{1, 2, 3}), [][2]int{{0, 3}})
	expect.EQ(t, clusters([]int{1, 1 + clusterGap, 2 + 2*clusterGap, 3 + 2*clusterGap}),
		[][2]int{{0, 2}, {2, 4}})
}

func TestBaseAt(t *testing.T) {
	seq := sam.NewSeq([]byte("ACGTN"))
	var got []byte
	for i := 0; i < seq.Length; i++ {
		got = append(got, baseAt(seq, i))
	}
	expect.EQ(t, string(got), "ACGTN")
	// Past the end of the read.
	expect.EQ(t, baseAt(seq, 7), byte('N'))
}

func TestNewColumns(t *testing.T) {
	cols, err := newColumns([]int{3, 8})
	assert.NoError(t, err)
	expect.EQ(t, cols, []pileup.Column{{Pos: 3}, {Pos: 8}})

	for _, positions := range [][]int{{0}, {3, 3}, {8, 3}} {
		_, err = newColumns(positions)
		expect.NotNil(t, err)
	}
}

func TestColumnCollectorAdd(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	assert.NoError(t, err)
	other, err := sam.NewReference("chr2", "", "", 1000, nil, nil)
	assert.NoError(t, err)
	_, err = sam.NewHeader(nil, []*sam.Reference{ref, other})
	assert.NoError(t, err)
	positions := []int{10, 11, 12, 13, 14, 15}
	cols, err := newColumns(positions)
	assert.NoError(t, err)
	c := newColumnCollector(ref, &ProviderOpts{FlagExclude: DefaultFlagExclude}, positions, cols)

	// 2H1M1I2M1N1M aligned at 10: 10=A, insertion G skipped, 11=T, 12=A,
	// 13 skipped, 14=C.
	r := bamtest.NewRecordSeq("r0", ref, 9, 0, sam.Cigar{
		sam.NewCigarOp(sam.CigarHardClipped, 2),
		sam.NewCigarOp(sam.CigarMatch, 1),
		sam.NewCigarOp(sam.CigarInsertion, 1),
		sam.NewCigarOp(sam.CigarMatch, 2),
		sam.NewCigarOp(sam.CigarSkipped, 1),
		sam.NewCigarOp(sam.CigarMatch, 1),
	}, "AGTAC")
	assert.NoError(t, c.add(r))

	// Unmapped reads are excluded by DefaultFlagExclude.
	unmapped := bamtest.NewRecordSeq("r1", ref, 9, sam.Unmapped, bamtest.Match(3), "GGG")
	assert.NoError(t, c.add(unmapped))

	// Different reference.
	assert.NoError(t, c.add(bamtest.NewRecordSeq("r2", other, 9, 0, bamtest.Match(3), "CCC")))

	got := map[int]string{}
	for _, col := range cols {
		got[col.Pos] = string(col.Bases)
	}
	expect.EQ(t, got, map[int]string{10: "A", 11: "T", 12: "A", 13: "*", 14: "C", 15: ""})
}
