package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/alloc"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/jrnl"
)

func TestGatherRows(t *testing.T) {
	assert := assert.New(t)
	g := common.DefaultGeometry()
	d := disk.NewMemDisk(g.NumBlocks())

	bm := make(disk.Block, g.BlockSize)
	alloc.SetBit(bm, 0)
	alloc.SetBit(bm, 1)
	d.Write(g.InodeBitmapBlk, bm)

	l := jrnl.Open(d, g)
	l.AppendData(g.DataStart, make(disk.Block, g.BlockSize))
	l.AppendCommit()
	l.Flush()

	rows := gatherRows(d, g)
	assert.Len(rows, 6, "four summary rows plus two records")
	assert.Equal("Staged records", rows[1].Name)
	assert.Equal("2", rows[1].Value)
	assert.Equal("1", rows[2].Value, "one committed transaction")
	assert.Equal("2 of 64", rows[3].Value)
	assert.Equal("DATA -> block 21", rows[4].Value)
	assert.Equal("COMMIT", rows[5].Value)
}
