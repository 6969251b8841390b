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

// Common pileup components.

// These constants index BaseCount.Counts.  They follow the .bam seq[]
// encoding order (A=1, C=2, G=4, T=8), i.e. the position of each base's set
// bit.

const (
	// BaseA represents an A base.
	BaseA byte = iota
	// BaseC represents an C base.
	BaseC
	// BaseG represents an G base.
	BaseG
	// BaseT represents an T base.
	BaseT
	// BaseX is a catch-all.  It is never counted.
	BaseX
)

// NBase is the number of regular base types.
const NBase = 4

// Gap is the symbol reported for a read whose alignment has a deletion or
// reference skip at the queried position.
const Gap = '*'

// EnumToASCIITable is the A/C/G/T/X -> ASCII mapping, with X rendered as 'N'.
var EnumToASCIITable = [...]byte{'A', 'C', 'G', 'T', 'N'}

// Seq8ToASCIITable is the .bam seq nibble -> ASCII mapping.
var Seq8ToASCIITable = [...]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'}

// ASCIIToEnumTable maps an observed symbol to the A/C/G/T/X enum.  Lowercase
// bases are treated like uppercase; everything else (IUPAC ambiguity codes,
// '=', Gap) maps to BaseX.
var ASCIIToEnumTable = func() (t [256]byte) {
	for i := range t {
		t[i] = BaseX
	}
	t['A'], t['a'] = BaseA, BaseA
	t['C'], t['c'] = BaseC, BaseC
	t['G'], t['g'] = BaseG, BaseG
	t['T'], t['t'] = BaseT, BaseT
	return
}()

// DisplayOrder is the order in which bases appear in charts and counts
// files.
var DisplayOrder = [NBase]byte{BaseA, BaseT, BaseC, BaseG}

// BaseName returns the one-letter name of an A/C/G/T/X enum value.
func BaseName(base byte) string {
	return string(EnumToASCIITable[base])
}
