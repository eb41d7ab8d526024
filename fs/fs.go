// Package fs implements the metadata mutation operations. An operation
// loads every block it needs (reading through the journal so that staged
// transactions are visible), computes the new block images purely in
// memory, and stages them as one committed journal transaction. Nothing
// touches the live metadata blocks until a later Install replays the
// journal.
package fs

import (
	"errors"
	"fmt"
	"time"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/alloc"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/inode"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/jrnl"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/util"
)

var (
	ErrInvalidName = errors.New("invalid name")
	ErrExists      = errors.New("file already exists")
	ErrNoFreeInode = errors.New("no free inode available")
	ErrDirFull     = errors.New("root directory is full")
	ErrJournalFull = errors.New("journal is full; run install first")
	ErrBadRoot     = errors.New("root inode is inconsistent")
)

type FileSys struct {
	d   disk.Disk
	geo common.Geometry
}

func New(d disk.Disk, g common.Geometry) *FileSys {
	return &FileSys{d: d, geo: g}
}

// snapshot holds every block Create reads, loaded up front through the
// journal.
type snapshot struct {
	bitmap  disk.Block
	itbl    []disk.Block
	root    inode.Inode
	rootBlk common.Bnum
	dir     disk.Block
}

func (fs *FileSys) loadSnapshot(l *jrnl.Log) (snapshot, error) {
	var s snapshot
	s.bitmap = l.Read(fs.geo.InodeBitmapBlk)
	for i := uint64(0); i < fs.geo.InodeTableBlocks; i++ {
		s.itbl = append(s.itbl, l.Read(fs.geo.InodeTableStart+i))
	}
	s.root = inode.GetInode(s.itbl[0], uint64(common.ROOTINUM), fs.geo)
	if s.root.Type != inode.TypeDir {
		return s, fmt.Errorf("%w: not a directory", ErrBadRoot)
	}
	if s.root.Direct[0] == common.NULLBNUM {
		return s, fmt.Errorf("%w: no data block", ErrBadRoot)
	}
	s.rootBlk = s.root.Direct[0]
	s.dir = l.Read(s.rootBlk)
	return s, nil
}

// plan is the outcome of a create: the new images of every touched block
// and the inode number that was assigned.
type plan struct {
	inum    common.Inum
	bitmap  disk.Block
	itbl0   disk.Block
	itblN   disk.Block // nil unless the new inode lives outside table block 0
	itblIdx uint64     // table block holding the new inode, when itblN != nil
	dirBn   common.Bnum
	dir     disk.Block
}

func (p *plan) nblocks() uint64 {
	if p.itblN != nil {
		return 4
	}
	return 3
}

// planCreate computes the effect of creating name. It is a pure function
// of the snapshot: all failures happen before any image is built, and the
// snapshot itself is never mutated.
func planCreate(g common.Geometry, s snapshot, name string, now uint32) (plan, error) {
	if name == "" || name == "." || name == ".." {
		return plan{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if uint64(len(name)) >= inode.NameLen {
		return plan{}, fmt.Errorf("%w: %q longer than %d bytes",
			ErrInvalidName, name, inode.NameLen-1)
	}

	// inode 0 is the root itself, never handed out
	num, ok := alloc.FindFree(s.bitmap, uint64(common.ROOTINUM)+1, g.NumInodes())
	if !ok {
		return plan{}, ErrNoFreeInode
	}
	inum := common.Inum(num)

	// only entries within size/direntSize are authoritative
	used := uint64(s.root.Size) / g.DirentSize
	for i := uint64(0); i < used; i++ {
		de := inode.GetDirent(s.dir, i, g)
		if de.Inum != common.NULLINUM && de.Name == name {
			return plan{}, fmt.Errorf("%w: %q", ErrExists, name)
		}
	}
	if uint64(s.root.Size)+g.DirentSize > g.BlockSize {
		return plan{}, fmt.Errorf("%w: growing to a second block is unsupported", ErrDirFull)
	}

	p := plan{inum: inum, dirBn: s.rootBlk}

	p.dir = util.CloneByteSlice(s.dir)
	inode.PutDirent(p.dir, used, g, inode.Dirent{Inum: inum, Name: name})

	root := s.root
	root.Size += uint32(g.DirentSize)
	root.Mtime = now

	newIno := inode.New(inode.TypeFile)
	newIno.Links = 1
	newIno.Ctime = now
	newIno.Mtime = now

	p.itbl0 = util.CloneByteSlice(s.itbl[0])
	inode.PutInode(p.itbl0, uint64(common.ROOTINUM), g, root)
	tblk, slot := inode.TableSlot(g, inum)
	if tblk == 0 {
		inode.PutInode(p.itbl0, slot, g, newIno)
	} else {
		p.itblN = util.CloneByteSlice(s.itbl[tblk])
		p.itblIdx = tblk
		inode.PutInode(p.itblN, slot, g, newIno)
	}

	p.bitmap = util.CloneByteSlice(s.bitmap)
	alloc.SetBit(p.bitmap, uint64(inum))
	return p, nil
}

// Create stages the creation of an empty file in the root directory as
// one committed journal transaction and returns the assigned inode
// number. The change is durable once Create returns but becomes visible
// in the live metadata only after Install.
//
// All preconditions are checked before anything is staged; in particular
// a full journal rejects the whole transaction with zero bytes appended.
func (fs *FileSys) Create(name string) (common.Inum, error) {
	l := jrnl.Open(fs.d, fs.geo)
	s, err := fs.loadSnapshot(l)
	if err != nil {
		return common.NULLINUM, err
	}

	now := uint32(time.Now().Unix())
	p, err := planCreate(fs.geo, s, name, now)
	if err != nil {
		return common.NULLINUM, err
	}

	if !l.SpaceFor(p.nblocks()) {
		return common.NULLINUM, ErrJournalFull
	}
	l.AppendData(fs.geo.InodeBitmapBlk, p.bitmap)
	l.AppendData(fs.geo.InodeTableStart, p.itbl0)
	if p.itblN != nil {
		l.AppendData(fs.geo.InodeTableStart+p.itblIdx, p.itblN)
	}
	l.AppendData(p.dirBn, p.dir)
	l.AppendCommit()
	l.Flush()

	util.DPrintf(1, "create: staged %q as inode %d\n", name, p.inum)
	return p.inum, nil
}

// Install replays every committed journal transaction into the live
// metadata blocks, clears the journal, and returns how many transactions
// were applied.
func (fs *FileSys) Install() uint64 {
	l := jrnl.Open(fs.d, fs.geo)
	return l.Install()
}
