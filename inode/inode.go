// Package inode implements the fixed-size on-disk metadata records: the
// 128-byte inode and the 32-byte directory entry. All fields are
// little-endian 32-bit values; the record sizes come from the geometry and
// the remainder of each record is zero padding.
package inode

import (
	"github.com/tchajed/marshal"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
)

const (
	TypeFree uint32 = 0
	TypeFile uint32 = 1
	TypeDir  uint32 = 2
)

// NumDirect is the number of direct block pointers per inode.
const NumDirect = 8

type Inode struct {
	Type   uint32
	Links  uint32
	Size   uint32
	Direct []common.Bnum // NumDirect entries
	Ctime  uint32
	Mtime  uint32
}

func New(typ uint32) Inode {
	return Inode{Type: typ, Direct: make([]common.Bnum, NumDirect)}
}

func Encode(ino Inode, g common.Geometry) []byte {
	if len(ino.Direct) != NumDirect {
		panic("invalid inode")
	}
	enc := marshal.NewEnc(g.InodeSize)
	enc.PutInt32(ino.Type)
	enc.PutInt32(ino.Links)
	enc.PutInt32(ino.Size)
	for _, bn := range ino.Direct {
		enc.PutInt32(uint32(bn))
	}
	enc.PutInt32(ino.Ctime)
	enc.PutInt32(ino.Mtime)
	return enc.Finish()
}

func Decode(b []byte) Inode {
	ino := Inode{Direct: make([]common.Bnum, NumDirect)}
	dec := marshal.NewDec(b)
	ino.Type = dec.GetInt32()
	ino.Links = dec.GetInt32()
	ino.Size = dec.GetInt32()
	for i := 0; i < NumDirect; i++ {
		ino.Direct[i] = common.Bnum(dec.GetInt32())
	}
	ino.Ctime = dec.GetInt32()
	ino.Mtime = dec.GetInt32()
	return ino
}

// TableSlot locates inum within the inode table: which table block
// (relative to the table start) and which record slot inside it.
func TableSlot(g common.Geometry, inum common.Inum) (uint64, uint64) {
	per := g.InodesPerBlock()
	return uint64(inum) / per, uint64(inum) % per
}

// GetInode decodes the record at slot of an inode-table block image.
func GetInode(blk disk.Block, slot uint64, g common.Geometry) Inode {
	off := slot * g.InodeSize
	return Decode(blk[off : off+g.InodeSize])
}

// PutInode overwrites the record at slot of an inode-table block image.
func PutInode(blk disk.Block, slot uint64, g common.Geometry, ino Inode) {
	off := slot * g.InodeSize
	copy(blk[off:off+g.InodeSize], Encode(ino, g))
}
