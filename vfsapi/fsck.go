package vfsapi

import (
	"fmt"

	"github.com/PapiCZ/foxfs/vfs"
)

// CrossLinkedBlock is a block claimed by two entries.
type CrossLinkedBlock struct {
	Block vfs.BlockPtr
	Path  string
}

func (c CrossLinkedBlock) Error() string {
	return fmt.Sprintf("block %d of %s already belongs to another chain", c.Block, c.Path)
}

// OrphanedBlock is marked as used in the allocation table, but no entry
// reaches it.
type OrphanedBlock struct {
	Block vfs.BlockPtr
	Link  vfs.BlockPtr
}

func (o OrphanedBlock) Error() string {
	return fmt.Sprintf("block %d is allocated (link %#04x) but not used by any entry", o.Block, o.Link)
}

type Report struct {
	Directories int
	Files       int
	UsedBlocks  int
	FreeBlocks  int
	// CounterDrift is the superblock free counter minus the free blocks
	// found by scanning the table.
	CounterDrift int
}

// FsCheck walks every chain reachable from the root directory and compares
// the result with the allocation table.
func FsCheck(fs *vfs.Filesystem) (Report, error) {
	report := Report{}
	if !fs.Mounted() {
		return report, vfs.Unformatted{}
	}

	sb := fs.Superblock()
	used := vfs.NewBitmap(int(sb.BlockCount))

	err := checkDirectory(fs, vfs.BlockPtr(sb.RootBlock), "", used, &report)
	if err != nil {
		return report, err
	}

	table := fs.Table()
	for block := sb.SystemBlocks(); int(block) < table.Len(); block++ {
		link, err := table.Link(block)
		if err != nil {
			return report, err
		}

		reachable, err := used.GetBit(block)
		if err != nil {
			return report, err
		}

		if link == vfs.LinkFree {
			report.FreeBlocks++
			continue
		}
		if reachable == 0 {
			return report, OrphanedBlock{Block: block, Link: link}
		}
	}

	report.UsedBlocks = used.Count()
	report.CounterDrift = int(sb.FreeBlocks) - report.FreeBlocks

	return report, nil
}

func checkDirectory(fs *vfs.Filesystem, block vfs.BlockPtr, path string, used vfs.Bitmap, report *Report) error {
	dir, err := fs.ReadDirectory(block)
	if err != nil {
		return err
	}
	report.Directories++

	for _, entry := range dir.Entries {
		if entry.IsEmpty() {
			continue
		}

		name := entry.NameString()
		if name == "." || name == ".." {
			continue
		}
		entryPath := path + vfs.PathSeparator + name

		blocks, err := fs.ChainBlocks(entry.StartBlock())
		if err != nil {
			return err
		}

		for _, b := range blocks {
			bit, err := used.GetBit(b)
			if err != nil {
				return err
			}
			if bit == 1 {
				return CrossLinkedBlock{Block: b, Path: entryPath}
			}

			err = used.SetBit(b, 1)
			if err != nil {
				return err
			}
		}

		if entry.IsDir() {
			err = checkDirectory(fs, entry.StartBlock(), entryPath, used, report)
			if err != nil {
				return err
			}
		} else {
			report.Files++
		}
	}

	return nil
}
