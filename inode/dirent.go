package inode

import (
	"bytes"

	"github.com/tchajed/marshal"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
)

// NameLen is the size of the dirent name field in bytes, including the
// terminating NUL, so names hold at most NameLen-1 bytes.
const NameLen = 28

// Dirent is one directory entry. Inum == NULLINUM marks an empty slot.
type Dirent struct {
	Inum common.Inum
	Name string
}

func EncodeDirent(de Dirent, g common.Geometry) []byte {
	if len(de.Name) >= NameLen {
		panic("dirent name too long")
	}
	enc := marshal.NewEnc(g.DirentSize)
	enc.PutInt32(uint32(de.Inum))
	name := make([]byte, NameLen)
	copy(name, de.Name)
	enc.PutBytes(name)
	return enc.Finish()
}

func DecodeDirent(b []byte) Dirent {
	dec := marshal.NewDec(b)
	inum := common.Inum(dec.GetInt32())
	name := dec.GetBytes(NameLen)
	end := bytes.IndexByte(name, 0)
	if end < 0 {
		end = NameLen
	}
	return Dirent{Inum: inum, Name: string(name[:end])}
}

// GetDirent decodes the entry at slot of a directory block image.
func GetDirent(blk disk.Block, slot uint64, g common.Geometry) Dirent {
	off := slot * g.DirentSize
	return DecodeDirent(blk[off : off+g.DirentSize])
}

// PutDirent overwrites the entry at slot of a directory block image.
func PutDirent(blk disk.Block, slot uint64, g common.Geometry, de Dirent) {
	off := slot * g.DirentSize
	copy(blk[off:off+g.DirentSize], EncodeDirent(de, g))
}
