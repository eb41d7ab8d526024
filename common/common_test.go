package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGeometry(t *testing.T) {
	assert := assert.New(t)
	g := DefaultGeometry()

	assert.Equal(Bnum(0), g.SuperBlk)
	assert.Equal(Bnum(1), g.JournalStart)
	assert.Equal(Bnum(17), g.InodeBitmapBlk)
	assert.Equal(Bnum(18), g.DataBitmapBlk)
	assert.Equal(Bnum(19), g.InodeTableStart)
	assert.Equal(Bnum(21), g.DataStart)
	assert.Equal(uint64(85), g.NumBlocks())

	assert.Equal(uint64(32), g.InodesPerBlock())
	assert.Equal(uint64(64), g.NumInodes())
	assert.Equal(uint64(128), g.DirentsPerBlock())
	assert.Equal(uint64(16*4096), g.JournalBytes())
}

func TestAlternateGeometry(t *testing.T) {
	assert := assert.New(t)
	g := MkGeometry(4, 1, 8)

	assert.Equal(Bnum(5), g.InodeBitmapBlk)
	assert.Equal(Bnum(7), g.InodeTableStart)
	assert.Equal(Bnum(8), g.DataStart)
	assert.Equal(uint64(32), g.NumInodes())
	assert.Equal(uint64(4*4096), g.JournalBytes())
}
