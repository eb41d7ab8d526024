package jrnl

import (
	"github.com/tchajed/marshal"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/util"
)

type record struct {
	tag uint32
	bn  common.Bnum
	img []byte // aliases the journal buffer
}

// recordReader walks the staged record stream lazily. It is a one-shot
// iterator: next returns false at the end of the valid range and at the
// first record that is undersized, oversized for the range, of the wrong
// fixed size, or of an unknown type. Everything from that point on is a
// corrupt or truncated tail and stays unread.
type recordReader struct {
	geo common.Geometry
	buf []byte
	off uint64
	end uint64
}

func (l *Log) records() *recordReader {
	end := util.Min(l.Used(), l.geo.JournalBytes())
	return &recordReader{geo: l.geo, buf: l.buf, off: HdrSize, end: end}
}

func (r *recordReader) next() (record, bool) {
	if r.off+recHdrSize > r.end {
		return record{}, false
	}
	dec := marshal.NewDec(r.buf[r.off : r.off+recHdrSize])
	tag := dec.GetInt32()
	sz := uint64(dec.GetInt32())
	if sz < recHdrSize || r.off+sz > r.end {
		return record{}, false
	}
	switch tag {
	case RecData:
		if sz != DataRecSize(r.geo) {
			return record{}, false
		}
		bdec := marshal.NewDec(r.buf[r.off+recHdrSize : r.off+recHdrSize+4])
		bn := common.Bnum(bdec.GetInt32())
		img := r.buf[r.off+recHdrSize+4 : r.off+sz]
		r.off += sz
		return record{tag: RecData, bn: bn, img: img}, true
	case RecCommit:
		if sz != CommitRecSize {
			return record{}, false
		}
		r.off += sz
		return record{tag: RecCommit}, true
	default:
		return record{}, false
	}
}

type pendingWrite struct {
	bn  common.Bnum
	img []byte
}

// Install replays every committed transaction into its final block
// locations, then clears the journal and flushes it, no matter how many
// transactions were applied. Returns the applied-transaction count.
//
// DATA records only buffer into a pending list; a COMMIT record writes
// the whole list out. A pending run with no trailing COMMIT is an
// incomplete transaction and is discarded, so Install is idempotent:
// running it again right away applies nothing and leaves the same state.
func (l *Log) Install() uint64 {
	var pending []pendingWrite
	var applied uint64

	r := l.records()
	for {
		rec, ok := r.next()
		if !ok {
			break
		}
		if rec.tag == RecData {
			if uint64(len(pending)) >= MaxTxnBlocks {
				util.DPrintf(1, "jrnl: transaction exceeds %d blocks, stopping replay\n",
					MaxTxnBlocks)
				break
			}
			pending = append(pending, pendingWrite{bn: rec.bn, img: rec.img})
		} else {
			for _, w := range pending {
				util.DPrintf(5, "jrnl: install block %d\n", w.bn)
				l.d.Write(w.bn, w.img)
			}
			applied++
			pending = pending[:0]
		}
	}

	// The applied blocks must be durable before the cleared journal is:
	// otherwise a crash could lose the commit records while keeping only
	// part of their effects.
	l.d.Barrier()
	l.reset()
	l.Flush()
	return applied
}

// Read returns the most recent committed staged image of block bn, or the
// live on-disk block if the journal stages none. Mutation operations read
// through the journal this way so that staged-but-not-installed
// transactions are visible to them.
func (l *Log) Read(bn common.Bnum) disk.Block {
	if img, ok := l.readStaged(bn); ok {
		return util.CloneByteSlice(img)
	}
	return l.d.Read(bn)
}

// readStaged scans the record stream under the same parse-stop rules as
// Install and returns bn's image from the last committed transaction that
// wrote it.
func (l *Log) readStaged(bn common.Bnum) ([]byte, bool) {
	var committed []byte
	var inTxn []byte
	var npending uint64

	r := l.records()
	for {
		rec, ok := r.next()
		if !ok {
			break
		}
		if rec.tag == RecData {
			npending++
			if npending > MaxTxnBlocks {
				break
			}
			if rec.bn == bn {
				inTxn = rec.img
			}
		} else {
			if inTxn != nil {
				committed = inTxn
				inTxn = nil
			}
			npending = 0
		}
	}
	return committed, committed != nil
}

// Entry describes one staged record for the read-only listing surfaces.
type Entry struct {
	Tag   uint32
	Blkno common.Bnum // DATA records only
}

// Entries returns the parseable prefix of the staged record stream.
func (l *Log) Entries() []Entry {
	var entries []Entry
	r := l.records()
	for {
		rec, ok := r.next()
		if !ok {
			break
		}
		entries = append(entries, Entry{Tag: rec.tag, Blkno: rec.bn})
	}
	return entries
}
