package bamprovider

import (
	"context"

	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/hts/sam"
)

// DefaultFlagExclude skips unmapped, secondary, QC-fail and duplicate reads.
const DefaultFlagExclude = int(sam.Unmapped | sam.Secondary | sam.QCFail | sam.Duplicate)

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Index specifies the name of the BAM index file. If Index=="", it defaults
	// to path + ".bai", then to path with ".bam" replaced by ".bai".  When no
	// index exists one is built at this location.
	Index string

	// FlagExclude causes reads whose FLAG intersects it to be skipped.
	FlagExclude int

	// MinMapq causes reads with MAPQ below it to be skipped.
	MinMapq int
}

// Provider fetches pileup columns from an alignment file.  Thread compatible.
type Provider interface {
	// GetHeader returns the header for the provided BAM data.  The callee
	// must not modify the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// EnsureIndex makes sure the alignment file has an index, building one
	// if it is missing.
	//
	// REQUIRES: Close has not been called.
	EnsureIndex(ctx context.Context) error

	// Pileup returns one column per entry of positions (1-based, strictly
	// ascending), in the same order.  Each column lists one symbol per read
	// covering the position: the read's base, or pileup.Gap when the read
	// has a deletion there.  Positions without coverage yield empty columns.
	// refName selects the contig; "" means the first reference in the
	// header.
	//
	// REQUIRES: Close has not been called.
	Pileup(ctx context.Context, refName string, positions []int) ([]pileup.Column, error)

	// Close must be called exactly once. It returns any error encountered
	// by the provider.
	Close() error
}

// NewProvider creates a Provider for the BAM file at "path".  No I/O happens
// until the first method call.
func NewProvider(path string, opts ProviderOpts) Provider {
	return &BAMProvider{
		Path:        path,
		Index:       opts.Index,
		FlagExclude: opts.FlagExclude,
		MinMapq:     opts.MinMapq,
	}
}
