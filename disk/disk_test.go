package disk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkBlock(b byte) Block {
	blk := make(Block, BlockSize)
	for i := range blk {
		blk[i] = b
	}
	return blk
}

func TestMemDisk(t *testing.T) {
	assert := assert.New(t)
	d := NewMemDisk(10)

	assert.Equal(uint64(10), d.Size())
	assert.Equal(mkBlock(0), d.Read(3), "fresh disk reads zeros")

	d.Write(3, mkBlock(7))
	assert.Equal(mkBlock(7), d.Read(3))
	assert.Equal(mkBlock(0), d.Read(4), "neighbor untouched")

	buf := make(Block, BlockSize)
	d.ReadTo(3, buf)
	assert.Equal(mkBlock(7), buf)
}

func TestFileDisk(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 10*BlockSize), 0666))

	d, err := NewFileDisk(path, 10)
	require.NoError(t, err)
	defer d.Close()

	d.Write(2, mkBlock(0xab))
	d.Barrier()
	assert.Equal(mkBlock(0xab), d.Read(2))
	assert.Equal(mkBlock(0), d.Read(1))
}

func TestFileDiskTooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, BlockSize), 0666))

	_, err := NewFileDisk(path, 10)
	assert.Error(t, err)
}

func TestFileDiskMissing(t *testing.T) {
	_, err := NewFileDisk(filepath.Join(t.TempDir(), "nope.img"), 10)
	assert.Error(t, err)
}
