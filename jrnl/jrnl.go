// Package jrnl implements the metadata journal: a fixed-size on-disk
// region used as an append-only staging area for pending metadata
// transactions.
//
// The caller stages the final images of every block a mutation touches as
// DATA records, seals them with a COMMIT record, and flushes the region.
// Install later replays every committed transaction to its true block
// locations and clears the region. Because each DATA record carries the
// complete new image of its target block, the log is redo-only: replaying
// a transaction any number of times yields the same final state, so
// partial or repeated installs are always safe.
//
// The region layout is a small header (magic plus a count of valid bytes)
// followed by the record stream. A header that fails validation is treated
// as an empty journal, and a record stream that ends in a truncated,
// malformed, or unknown record is treated as ending at the last good
// boundary; neither is ever an error.
package jrnl

import (
	"github.com/tchajed/marshal"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/util"
)

const Magic uint32 = 0xdeadbeef

const (
	RecData   uint32 = 1
	RecCommit uint32 = 2
)

const (
	// HdrSize is the journal header: magic + valid byte count.
	HdrSize uint64 = 8
	// recHdrSize is the per-record header: type tag + total record size.
	recHdrSize uint64 = 8
	// CommitRecSize is a full COMMIT record; it has no payload.
	CommitRecSize uint64 = recHdrSize
)

// MaxTxnBlocks bounds how many DATA records one transaction may hold.
// During replay, exceeding it is a parse-stop condition, not a crash.
const MaxTxnBlocks uint64 = 128

// DataRecSize is a full DATA record: header, target block number, and one
// complete block image.
func DataRecSize(g common.Geometry) uint64 {
	return recHdrSize + 4 + g.BlockSize
}

// Log mirrors the on-disk journal region in memory. Mutations build up in
// the buffer and reach disk only through Flush.
type Log struct {
	d   disk.Disk
	geo common.Geometry
	buf []byte
}

// Open reads the journal region into memory and reinitializes the buffer
// if the header is malformed. The on-disk region is not touched until the
// next Flush.
func Open(d disk.Disk, g common.Geometry) *Log {
	l := &Log{
		d:   d,
		geo: g,
		buf: make([]byte, g.JournalBytes()),
	}
	l.load()
	l.ensureInit()
	return l
}

func (l *Log) load() {
	bs := l.geo.BlockSize
	for i := uint64(0); i < l.geo.JournalBlocks; i++ {
		l.d.ReadTo(l.geo.JournalStart+i, l.buf[i*bs:(i+1)*bs])
	}
}

// Flush writes the buffer back to the journal region and issues a
// barrier. This is the only durability point: a transaction is committed
// once its COMMIT record has been flushed.
func (l *Log) Flush() {
	bs := l.geo.BlockSize
	for i := uint64(0); i < l.geo.JournalBlocks; i++ {
		l.d.Write(l.geo.JournalStart+i, l.buf[i*bs:(i+1)*bs])
	}
	l.d.Barrier()
}

func (l *Log) header() (uint32, uint64) {
	dec := marshal.NewDec(l.buf[:HdrSize])
	magic := dec.GetInt32()
	nbytes := uint64(dec.GetInt32())
	return magic, nbytes
}

func (l *Log) writeHeader(nbytes uint64) {
	enc := marshal.NewEnc(HdrSize)
	enc.PutInt32(Magic)
	enc.PutInt32(uint32(nbytes))
	copy(l.buf[:HdrSize], enc.Finish())
}

func (l *Log) ensureInit() {
	magic, nbytes := l.header()
	if magic != Magic || nbytes < HdrSize || nbytes > l.geo.JournalBytes() {
		util.DPrintf(1, "jrnl: bad header (magic 0x%x, nbytes %d), treating journal as empty\n",
			magic, nbytes)
		l.reset()
	}
}

// reset zeroes the buffer and writes a fresh empty header.
func (l *Log) reset() {
	for i := range l.buf {
		l.buf[i] = 0
	}
	l.writeHeader(HdrSize)
}

// Used reports how many bytes of the region hold staged data, header
// included.
func (l *Log) Used() uint64 {
	_, nbytes := l.header()
	return nbytes
}

// SpaceFor reports whether a transaction of nblocks DATA records plus its
// COMMIT still fits. This is the admission check: the caller must not
// append anything when it fails.
func (l *Log) SpaceFor(nblocks uint64) bool {
	if nblocks > MaxTxnBlocks {
		return false
	}
	needed := nblocks*DataRecSize(l.geo) + CommitRecSize
	return l.Used()+needed <= l.geo.JournalBytes()
}

// AppendData stages the full new image of block bn. The caller must have
// checked SpaceFor for the whole transaction first.
func (l *Log) AppendData(bn common.Bnum, blk disk.Block) {
	if uint64(len(blk)) != l.geo.BlockSize {
		panic("AppendData: not a block image")
	}
	off := l.Used()
	sz := DataRecSize(l.geo)
	enc := marshal.NewEnc(recHdrSize + 4)
	enc.PutInt32(RecData)
	enc.PutInt32(uint32(sz))
	enc.PutInt32(uint32(bn))
	copy(l.buf[off:], enc.Finish())
	copy(l.buf[off+recHdrSize+4:off+sz], blk)
	l.writeHeader(off + sz)
}

// AppendCommit seals the DATA records staged since the previous COMMIT
// (or journal start) into one transaction.
func (l *Log) AppendCommit() {
	off := l.Used()
	enc := marshal.NewEnc(recHdrSize)
	enc.PutInt32(RecCommit)
	enc.PutInt32(uint32(CommitRecSize))
	copy(l.buf[off:], enc.Finish())
	l.writeHeader(off + CommitRecSize)
}
