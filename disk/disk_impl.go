package disk

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

var _ Disk = (*FileDisk)(nil)

// FileDisk addresses an existing image file in whole blocks.
type FileDisk struct {
	fd        int
	numBlocks uint64
}

// NewFileDisk opens an image file that must already exist and be at least
// numBlocks blocks long. Formatting an image is mkfs's job, not ours.
func NewFileDisk(path string, numBlocks uint64) (FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return FileDisk{}, err
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return FileDisk{}, err
	}
	if (stat.Mode&unix.S_IFREG) != 0 && uint64(stat.Size) < numBlocks*BlockSize {
		unix.Close(fd)
		return FileDisk{}, fmt.Errorf("image %s is %d bytes, need %d", path, stat.Size, numBlocks*BlockSize)
	}
	return FileDisk{fd, numBlocks}, nil
}

func (d FileDisk) ReadTo(a uint64, buf Block) {
	if uint64(len(buf)) != BlockSize {
		panic("buffer is not block-sized")
	}
	if a >= d.numBlocks {
		panic(fmt.Errorf("out-of-bounds read at %v", a))
	}
	n, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		panic("read failed: " + err.Error())
	}
	if uint64(n) != BlockSize {
		panic(fmt.Errorf("short read at %v: %d bytes", a, n))
	}
}

func (d FileDisk) Read(a uint64) Block {
	buf := make(Block, BlockSize)
	d.ReadTo(a, buf)
	return buf
}

func (d FileDisk) Write(a uint64, v Block) {
	if uint64(len(v)) != BlockSize {
		panic(fmt.Errorf("v is not block sized (%d bytes)", len(v)))
	}
	if a >= d.numBlocks {
		panic(fmt.Errorf("out-of-bounds write at %v", a))
	}
	n, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		panic("write failed: " + err.Error())
	}
	if uint64(n) != BlockSize {
		panic(fmt.Errorf("short write at %v: %d bytes", a, n))
	}
}

func (d FileDisk) Size() uint64 {
	return d.numBlocks
}

func (d FileDisk) Barrier() {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; the correct replacement is an fcntl with F_FULLFSYNC.
	err := unix.Fsync(d.fd)
	if err != nil {
		panic("file sync failed: " + err.Error())
	}
}

func (d FileDisk) Close() {
	err := unix.Close(d.fd)
	if err != nil {
		panic(err)
	}
}

var _ Disk = (*MemDisk)(nil)

// MemDisk keeps the image in memory, for tests.
type MemDisk struct {
	l      *sync.RWMutex
	blocks [][BlockSize]byte
}

func NewMemDisk(numBlocks uint64) MemDisk {
	blocks := make([][BlockSize]byte, numBlocks)
	return MemDisk{l: new(sync.RWMutex), blocks: blocks}
}

func (d MemDisk) ReadTo(a uint64, buf Block) {
	d.l.RLock()
	defer d.l.RUnlock()
	if a >= uint64(len(d.blocks)) {
		panic(fmt.Errorf("out-of-bounds read at %v", a))
	}
	copy(buf, d.blocks[a][:])
}

func (d MemDisk) Read(a uint64) Block {
	buf := make(Block, BlockSize)
	d.ReadTo(a, buf)
	return buf
}

func (d MemDisk) Write(a uint64, v Block) {
	if uint64(len(v)) != BlockSize {
		panic(fmt.Errorf("v is not block-sized (%d bytes)", len(v)))
	}
	d.l.Lock()
	defer d.l.Unlock()
	if a >= uint64(len(d.blocks)) {
		panic(fmt.Errorf("out-of-bounds write at %v", a))
	}
	copy(d.blocks[a][:], v)
}

func (d MemDisk) Size() uint64 {
	// this never changes so we assume it's safe to run lock-free
	return uint64(len(d.blocks))
}

func (d MemDisk) Barrier() {}

func (d MemDisk) Close() {}
