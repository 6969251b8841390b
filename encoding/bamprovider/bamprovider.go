package bamprovider

import (
	"context"

	"github.com/grailbio/ambigviz/pileup"
	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/hts/bgzf/index"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// BAMProvider implements Provider for BAM files.  Both BAM and the index
// filenames may be anything grailbio/base/file can open.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string
	// Index is the pathname of *.bam.bai file. If "", see ProviderOpts.Index.
	Index string
	// FlagExclude and MinMapq are the read filters; see ProviderOpts.
	FlagExclude int
	MinMapq     int

	err errorreporter.T

	indexPath string // resolved by EnsureIndex
	header    *sam.Header
	in        file.File
	reader    *bam.Reader
	index     *bam.Index
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	if b.header != nil {
		return b.header, nil
	}

	ctx := vcontext.Background()
	reader, err := file.Open(ctx, b.Path)
	if err != nil {
		err = errors.E(err, "bamprovider: open", b.Path)
		b.err.Set(err)
		return nil, err
	}
	defer reader.Close(ctx) // nolint: errcheck
	bamReader, err := bam.NewReader(reader.Reader(ctx), 1)
	if err != nil {
		err = errors.E(err, "bamprovider: read header", b.Path)
		b.err.Set(err)
		return nil, err
	}
	defer bamReader.Close() // nolint: errcheck
	b.header = bamReader.Header()
	return b.header, nil
}

// EnsureIndex implements the Provider interface.
func (b *BAMProvider) EnsureIndex(ctx context.Context) error {
	if b.indexPath != "" {
		return nil
	}
	indexPath, err := EnsureIndex(ctx, b.Path, b.Index)
	if err != nil {
		b.err.Set(err)
		return err
	}
	b.indexPath = indexPath
	return nil
}

// open loads the index and positions a reader at the start of the BAM.
func (b *BAMProvider) open(ctx context.Context) (err error) {
	if b.reader != nil {
		return nil
	}
	if err = b.EnsureIndex(ctx); err != nil {
		return
	}
	var indexIn file.File
	if indexIn, err = file.Open(ctx, b.indexPath); err != nil {
		return errors.E(err, "bamprovider: open index", b.indexPath)
	}
	defer indexIn.Close(ctx) // nolint: errcheck
	if b.index, err = bam.ReadIndex(indexIn.Reader(ctx)); err != nil {
		return errors.E(err, "bamprovider: read index", b.indexPath)
	}
	if b.in, err = file.Open(ctx, b.Path); err != nil {
		return errors.E(err, "bamprovider: open", b.Path)
	}
	if b.reader, err = bam.NewReader(b.in.Reader(ctx), 1); err != nil {
		return errors.E(err, "bamprovider: read header", b.Path)
	}
	b.header = b.reader.Header()
	return nil
}

// Pileup implements the Provider interface.
func (b *BAMProvider) Pileup(ctx context.Context, refName string, positions []int) ([]pileup.Column, error) {
	cols, err := newColumns(positions)
	if err != nil {
		return nil, err
	}
	if err = b.open(ctx); err != nil {
		b.err.Set(err)
		return nil, err
	}
	ref, err := lookupRef(b.header, refName)
	if err != nil {
		return nil, err
	}
	opts := ProviderOpts{FlagExclude: b.FlagExclude, MinMapq: b.MinMapq}
	for _, run := range clusters(positions) {
		runPositions := positions[run[0]:run[1]]
		if runPositions[0] > ref.Len() {
			vlog.VI(1).Infof("%v: positions %d.. lie past the end of %s (length %d)", b.Path, runPositions[0], ref.Name(), ref.Len())
			continue
		}
		// Chunks takes a 0-based half-open range.
		start := runPositions[0] - 1
		end := runPositions[len(runPositions)-1]
		if end > ref.Len() {
			end = ref.Len()
		}
		chunks, err := b.index.Chunks(ref, start, end)
		if err == index.ErrInvalid || (err == nil && len(chunks) == 0) {
			// No reads for this interval.
			vlog.VI(1).Infof("%v: no reads in %s:%d-%d", b.Path, ref.Name(), start+1, end)
			continue
		}
		if err != nil {
			return nil, errors.E(err, "bamprovider: index lookup", b.Path)
		}
		collector := newColumnCollector(ref, &opts, runPositions, cols[run[0]:run[1]])
		if err = b.scan(chunks, collector); err != nil {
			return nil, err
		}
		vlog.VI(1).Infof("%v: scanned %s:%d-%d (%d chunks)", b.Path, ref.Name(), start+1, end, len(chunks))
	}
	return cols, nil
}

func (b *BAMProvider) scan(chunks []bgzf.Chunk, collector *columnCollector) (err error) {
	iter, err := bam.NewIterator(b.reader, chunks)
	if err != nil {
		return errors.E(err, "bamprovider: seek", b.Path)
	}
	defer func() {
		if e := iter.Close(); e != nil && err == nil {
			err = errors.E(e, "bamprovider: read", b.Path)
		}
	}()
	for iter.Next() {
		if err = collector.add(iter.Record()); err != nil {
			return errors.E(err, b.Path)
		}
	}
	if e := iter.Error(); e != nil {
		return errors.E(e, "bamprovider: read", b.Path)
	}
	return nil
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	if b.reader != nil {
		if err := b.reader.Close(); err != nil {
			b.err.Set(err)
		}
		b.reader = nil
	}
	if b.in != nil {
		if err := b.in.Close(vcontext.Background()); err != nil {
			b.err.Set(err)
		}
		b.in = nil
	}
	return b.err.Err()
}
