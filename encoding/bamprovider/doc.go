// Package bamprovider reads per-position base observations out of an indexed
// BAM file.
//
// The Provider is an interface for fetching pileup columns at a set of
// reference positions.  BAMProvider implements it on top of a .bam file and
// its .bai index, creating the index when it is missing.  NewFakeProvider
// serves the same queries from in-memory records, for unittests.
package bamprovider
