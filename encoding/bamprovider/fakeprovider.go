package bamprovider

import (
	"context"

	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/hts/sam"
)

// fakeProvider is only for unittests. It serves pileups from the given
// records, which need not be sorted.
type fakeProvider struct {
	header *sam.Header
	recs   []*sam.Record
	opts   ProviderOpts
}

// NewFakeProvider creates a provider that returns "header" in response to a
// GetHeader() call, and computes Pileup results by scanning all of recs.
func NewFakeProvider(header *sam.Header, recs []*sam.Record, opts ProviderOpts) Provider {
	return &fakeProvider{header: header, recs: recs, opts: opts}
}

// GetHeader implements the Provider interface. It returns the header passed to
// the constructor.
func (b *fakeProvider) GetHeader() (*sam.Header, error) {
	return b.header, nil
}

// EnsureIndex implements the Provider interface.  In-memory records need no
// index.
func (b *fakeProvider) EnsureIndex(ctx context.Context) error {
	return nil
}

// Pileup implements the Provider interface.
func (b *fakeProvider) Pileup(ctx context.Context, refName string, positions []int) ([]pileup.Column, error) {
	cols, err := newColumns(positions)
	if err != nil {
		return nil, err
	}
	ref, err := lookupRef(b.header, refName)
	if err != nil {
		return nil, err
	}
	collector := newColumnCollector(ref, &b.opts, positions, cols)
	for _, r := range b.recs {
		if err := collector.add(r); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// Close implements the Provider interface.
func (b *fakeProvider) Close() error {
	return nil
}
