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
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
)

// countsRow is one line of a counts file.  Column order follows
// DisplayOrder.
type countsRow struct {
	Pos   int64 `tsv:"position"`
	A     int64 `tsv:"A"`
	T     int64 `tsv:"T"`
	C     int64 `tsv:"C"`
	G     int64 `tsv:"G"`
	Depth int64 `tsv:"depth"`
}

var countsHeader = []string{"position", "A", "T", "C", "G", "depth"}

func newCountsRow(r *Row) countsRow {
	return countsRow{
		Pos:   int64(r.Pos),
		A:     int64(r.Counts[BaseA]),
		T:     int64(r.Counts[BaseT]),
		C:     int64(r.Counts[BaseC]),
		G:     int64(r.Counts[BaseG]),
		Depth: int64(r.Depth()),
	}
}

// countsFormat inspects a counts path.  "x.tsv" and "x.tsv.gz" are
// tab-delimited, everything else is comma-delimited; a ".gz" suffix means
// gzip.
func countsFormat(path string) (tab, gz bool) {
	name := path
	if strings.HasSuffix(name, ".gz") {
		gz = true
		name = strings.TrimSuffix(name, ".gz")
	}
	return strings.HasSuffix(name, ".tsv"), gz
}

// WriteCounts writes the raw counts of rows to path, one line per position
// with columns position,A,T,C,G,depth.  Percentages are never written here;
// the file always carries integer counts.
func WriteCounts(ctx context.Context, path string, rows []Row) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return errors.E(err, "WriteCounts: create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)

	tab, gz := countsFormat(path)
	w := out.Writer(ctx)
	if gz {
		gzw := gzip.NewWriter(w)
		defer func() {
			if e := gzw.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = gzw
	}
	if tab {
		err = writeCountsTSV(w, rows)
	} else {
		err = writeCountsCSV(w, rows)
	}
	if err != nil {
		err = errors.E(err, "WriteCounts:", path)
	}
	return
}

func writeCountsTSV(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		// RowWriter emits the header with the first row only.
		hw := tsv.NewWriter(w)
		for _, col := range countsHeader {
			hw.WriteString(col)
		}
		if err := hw.EndLine(); err != nil {
			return err
		}
		return hw.Flush()
	}
	tsvw := tsv.NewRowWriter(w)
	for i := range rows {
		row := newCountsRow(&rows[i])
		if err := tsvw.Write(&row); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}

func writeCountsCSV(w io.Writer, rows []Row) error {
	csvw := csv.NewWriter(w)
	if err := csvw.Write(countsHeader); err != nil {
		return err
	}
	fields := make([]string, len(countsHeader))
	for i := range rows {
		row := newCountsRow(&rows[i])
		for j, v := range [...]int64{row.Pos, row.A, row.T, row.C, row.G, row.Depth} {
			fields[j] = strconv.FormatInt(v, 10)
		}
		if err := csvw.Write(fields); err != nil {
			return err
		}
	}
	csvw.Flush()
	return csvw.Error()
}

// ReadCounts parses a file written by WriteCounts.  The depth column is
// checked against the per-base counts.
func ReadCounts(ctx context.Context, path string) (rows []Row, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "ReadCounts: open", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()

	tab, gz := countsFormat(path)
	var r io.Reader = in.Reader(ctx)
	if gz {
		var gzr *gzip.Reader
		if gzr, err = gzip.NewReader(r); err != nil {
			return nil, errors.E(err, "ReadCounts:", path)
		}
		defer gzr.Close()
		r = gzr
	}
	tsvr := tsv.NewReader(r)
	if !tab {
		tsvr.Comma = ','
	}
	tsvr.HasHeaderRow = true
	tsvr.UseHeaderNames = true
	for {
		var cr countsRow
		if err = tsvr.Read(&cr); err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return nil, errors.E(errors.Invalid, err, "ReadCounts:", path)
		}
		row := Row{Pos: int(cr.Pos)}
		row.Counts[BaseA] = uint32(cr.A)
		row.Counts[BaseT] = uint32(cr.T)
		row.Counts[BaseC] = uint32(cr.C)
		row.Counts[BaseG] = uint32(cr.G)
		if int64(row.Depth()) != cr.Depth {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("ReadCounts: %s: depth %d at position %d does not match base counts", path, cr.Depth, row.Pos))
		}
		rows = append(rows, row)
	}
}
