// Package report renders the staged journal and inode-allocation state of
// an image to a PNG table, for eyeballing what an install would apply.
package report

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/alloc"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/jrnl"
)

const fontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

type row struct {
	Name  string
	Value string
}

func gatherRows(d disk.Disk, g common.Geometry) []row {
	l := jrnl.Open(d, g)
	entries := l.Entries()

	var nalloc uint64
	bm := d.Read(g.InodeBitmapBlk)
	for i := uint64(0); i < g.NumInodes(); i++ {
		if alloc.TestBit(bm, i) {
			nalloc++
		}
	}

	var txns int
	for _, e := range entries {
		if e.Tag == jrnl.RecCommit {
			txns++
		}
	}

	rows := []row{
		{"Journal bytes used", fmt.Sprintf("%d of %d", l.Used(), g.JournalBytes())},
		{"Staged records", fmt.Sprintf("%d", len(entries))},
		{"Committed transactions", fmt.Sprintf("%d", txns)},
		{"Inodes allocated", fmt.Sprintf("%d of %d", nalloc, g.NumInodes())},
	}
	for i, e := range entries {
		switch e.Tag {
		case jrnl.RecData:
			rows = append(rows, row{fmt.Sprintf("Record %d", i),
				fmt.Sprintf("DATA -> block %d", e.Blkno)})
		case jrnl.RecCommit:
			rows = append(rows, row{fmt.Sprintf("Record %d", i), "COMMIT"})
		}
	}
	return rows
}

// Journal writes a PNG table of the journal and bitmap state to path.
func Journal(d disk.Disk, g common.Geometry, path string) error {
	rows := gatherRows(d, g)

	const W = 800
	H := 120 + 30*len(rows)
	dc := gg.NewContext(W, H)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if err := dc.LoadFontFace(fontPath, 16); err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	y := 20

	dc.SetRGB(0.2, 0.4, 0.6)
	dc.DrawRectangle(0, float64(y), W, 40)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("JOURNAL REPORT", W/2, float64(y)+20, 0.5, 0.5)
	y += 60

	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawRectangle(0, float64(y), W, 30)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("Campo", 150, float64(y)+15, 0.5, 0.5)
	dc.DrawStringAnchored("Valor", 500, float64(y)+15, 0.5, 0.5)
	y += 30

	for i, r := range rows {
		if i%2 == 0 {
			dc.SetRGB(0.95, 0.95, 0.95)
		} else {
			dc.SetRGB(0.85, 0.85, 0.85)
		}
		dc.DrawRectangle(0, float64(y), W, 30)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(r.Name, 150, float64(y)+15, 0.5, 0.5)
		dc.DrawStringAnchored(r.Value, 500, float64(y)+15, 0.5, 0.5)
		y += 30
	}

	return dc.SavePNG(path)
}
