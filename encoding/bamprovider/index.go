package bamprovider

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bam"
)

// indexCandidates lists the index paths tried for bamPath, in order.  The
// first entry is also where a missing index is written.
func indexCandidates(bamPath, indexPath string) []string {
	if indexPath != "" {
		return []string{indexPath}
	}
	candidates := []string{bamPath + ".bai"}
	if strings.HasSuffix(bamPath, ".bam") {
		candidates = append(candidates, strings.TrimSuffix(bamPath, ".bam")+".bai")
	}
	return candidates
}

func isNotExist(err error) bool {
	return errors.Is(errors.NotExist, err) || os.IsNotExist(err)
}

// EnsureIndex returns the path of the index for bamPath, building one when
// none exists.  indexPath overrides the default "<bamPath>.bai" location.
func EnsureIndex(ctx context.Context, bamPath, indexPath string) (string, error) {
	if _, err := file.Stat(ctx, bamPath); err != nil {
		return "", errors.E(err, "EnsureIndex: stat", bamPath)
	}
	candidates := indexCandidates(bamPath, indexPath)
	for _, path := range candidates {
		_, err := file.Stat(ctx, path)
		if err == nil {
			return path, nil
		}
		if !isNotExist(err) {
			return "", errors.E(err, "EnsureIndex: stat", path)
		}
	}
	log.Printf("EnsureIndex: %s is not indexed, writing %s", bamPath, candidates[0])
	if err := BuildIndex(ctx, bamPath, candidates[0]); err != nil {
		return "", err
	}
	return candidates[0], nil
}

// BuildIndex reads the coordinate-sorted BAM at bamPath and writes a .bai
// index for it to indexPath.
func BuildIndex(ctx context.Context, bamPath, indexPath string) (err error) {
	var in file.File
	if in, err = file.Open(ctx, bamPath); err != nil {
		return errors.E(err, "BuildIndex: open", bamPath)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	var br *bam.Reader
	if br, err = bam.NewReader(in.Reader(ctx), 1); err != nil {
		return errors.E(err, "BuildIndex: read header", bamPath)
	}
	defer br.Close() // nolint: errcheck

	var (
		bai  bam.Index
		nRec int
	)
	for {
		r, e := br.Read()
		if e == io.EOF {
			break
		}
		if e != nil {
			return errors.E(e, "BuildIndex: read", bamPath)
		}
		if e = bai.Add(r, br.LastChunk()); e != nil {
			return errors.E(e, "BuildIndex: cannot index (is the BAM coordinate-sorted?)", bamPath)
		}
		nRec++
	}

	var out file.File
	if out, err = file.Create(ctx, indexPath); err != nil {
		return errors.E(err, "BuildIndex: create", indexPath)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if err = bam.WriteIndex(out.Writer(ctx), &bai); err != nil {
		return errors.E(err, "BuildIndex: write", indexPath)
	}
	log.Debug.Printf("BuildIndex: indexed %d records of %s", nRec, bamPath)
	return nil
}
