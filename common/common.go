// Package common defines the number types and the fixed image geometry
// shared by every layer of the tool.
package common

type Inum uint64
type Bnum = uint64

const (
	NULLINUM Inum = 0
	ROOTINUM Inum = 0
	NULLBNUM Bnum = 0
)

// Geometry pins down the on-disk layout of one filesystem image. It is
// built once at startup and passed explicitly to every component; it must
// match whatever created the image.
type Geometry struct {
	BlockSize uint64

	SuperBlk         Bnum
	JournalStart     Bnum
	JournalBlocks    uint64
	InodeBitmapBlk   Bnum
	DataBitmapBlk    Bnum
	InodeTableStart  Bnum
	InodeTableBlocks uint64
	DataStart        Bnum
	DataBlocks       uint64

	InodeSize  uint64
	DirentSize uint64
}

// MkGeometry lays out the regions back to back after the superblock, the
// same way mkfs does: journal, inode bitmap, data bitmap, inode table,
// data region.
func MkGeometry(journalBlocks uint64, inodeTableBlocks uint64, dataBlocks uint64) Geometry {
	g := Geometry{
		BlockSize:        4096,
		SuperBlk:         0,
		JournalBlocks:    journalBlocks,
		InodeTableBlocks: inodeTableBlocks,
		DataBlocks:       dataBlocks,
		InodeSize:        128,
		DirentSize:       32,
	}
	g.JournalStart = g.SuperBlk + 1
	g.InodeBitmapBlk = g.JournalStart + journalBlocks
	g.DataBitmapBlk = g.InodeBitmapBlk + 1
	g.InodeTableStart = g.DataBitmapBlk + 1
	g.DataStart = g.InodeTableStart + inodeTableBlocks
	return g
}

// DefaultGeometry returns the layout of a standard vsfs image: a 16-block
// journal, a 2-block inode table (64 inodes), and 64 data blocks.
func DefaultGeometry() Geometry {
	return MkGeometry(16, 2, 64)
}

func (g Geometry) InodesPerBlock() uint64 {
	return g.BlockSize / g.InodeSize
}

func (g Geometry) NumInodes() uint64 {
	return g.InodeTableBlocks * g.InodesPerBlock()
}

func (g Geometry) DirentsPerBlock() uint64 {
	return g.BlockSize / g.DirentSize
}

// JournalBytes is the capacity of the journal region, header included.
func (g Geometry) JournalBytes() uint64 {
	return g.JournalBlocks * g.BlockSize
}

// NumBlocks is the total size of the image in blocks.
func (g Geometry) NumBlocks() uint64 {
	return g.DataStart + g.DataBlocks
}
