// Command vsfs stages and installs metadata transactions on a vsfs image
// in the current directory.
//
//	vsfs create <name>    stage the creation of an empty file
//	vsfs install          replay committed transactions, clear the journal
//	vsfs log              list the staged journal records
//	vsfs report <out.png> render journal and bitmap state to a PNG
package main

import (
	"fmt"
	"os"

	"github.com/Fahmid-Arman/metadata-journaling-vsfs/common"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/disk"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/fs"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/jrnl"
	"github.com/Fahmid-Arman/metadata-journaling-vsfs/report"
)

const imageName = "vsfs.img"

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n  %[1]s create <name>\n  %[1]s install\n  %[1]s log\n  %[1]s report <out.png>\n",
		os.Args[0])
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	g := common.DefaultGeometry()
	d, err := disk.NewFileDisk(imageName, g.NumBlocks())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", imageName, err)
		os.Exit(1)
	}
	defer d.Close()

	switch os.Args[1] {
	case "create":
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "create requires a filename")
			os.Exit(1)
		}
		name := os.Args[2]
		inum, err := fs.New(d, g).Create(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("create: logged creation of %q as inode %d (journaled, not installed yet)\n",
			name, inum)

	case "install":
		n := fs.New(d, g).Install()
		fmt.Printf("install: applied %d committed transaction(s), cleared journal\n", n)

	case "log":
		l := jrnl.Open(d, g)
		entries := l.Entries()
		fmt.Printf("journal: %d byte(s) staged, %d record(s)\n", l.Used(), len(entries))
		for i, e := range entries {
			switch e.Tag {
			case jrnl.RecData:
				fmt.Printf("  %3d: DATA   -> block %d\n", i, e.Blkno)
			case jrnl.RecCommit:
				fmt.Printf("  %3d: COMMIT\n", i)
			}
		}

	case "report":
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "report requires an output path")
			os.Exit(1)
		}
		if err := report.Journal(d, g, os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("report: wrote %s\n", os.Args[2])

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
	}
}
