package vfs

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Write replaces the content of the file name with data. The chain grows or
// shrinks to exactly the number of blocks data needs. If the device runs out
// of blocks while growing, the blocks appended so far stay allocated to the
// file and FULL is returned.
func (fs *Filesystem) Write(name string, data []byte) error {
	if err := fs.ready(); err != nil {
		return err
	}

	slot, found, err := fs.current.Find(name)
	if err != nil {
		return err
	}
	if found.IsDir() {
		return IsADirectory{name}
	}

	entry := &fs.current.Entries[slot]
	needed := BlocksForSize(len(data))

	have, err := fs.table.ChainLength(entry.StartBlock())
	if err != nil {
		return errors.Wrapf(err, "write %s", name)
	}

	switch {
	case needed > have:
		err = fs.growChain(entry, needed-have)
		if err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	case needed < have:
		released, err := fs.table.Truncate(entry.StartBlock(), needed)
		fs.releaseBlocks(released)
		if err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
		if needed == 0 {
			entry.Start = uint32(Unallocated)
		}
	}

	blocks, err := fs.table.Chain(entry.StartBlock())
	if err != nil {
		return errors.Wrapf(err, "write %s", name)
	}

	for i, block := range blocks {
		chunk := make([]byte, BlockSize)
		end := (i + 1) * BlockSize
		if end > len(data) {
			end = len(data)
		}
		copy(chunk, data[i*BlockSize:end])

		err = fs.writeBlock(block, chunk)
		if err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}

	entry.Size = uint32(len(data))

	err = fs.sync()
	if err != nil {
		return errors.Wrapf(err, "write %s", name)
	}

	slog.Debug("File written", "name", name, "size", len(data), "blocks", len(blocks))

	return nil
}

func (fs *Filesystem) growChain(entry *DirectoryEntry, count int) error {
	tail, err := fs.table.Tail(entry.StartBlock())
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		block, err := fs.table.Allocate()
		if err != nil {
			if i > 0 {
				slog.Warn("Chain growth stopped early, appended blocks stay allocated",
					"name", entry.NameString(), "appended", i, "missing", count-i)
			}
			return err
		}

		err = fs.table.Append(tail, block)
		if err != nil {
			return err
		}
		if tail == LinkEnd {
			entry.Start = uint32(block)
		}

		tail = block
		fs.claimBlock()
	}

	return nil
}

// Read copies the content of the file name into buf and returns its length.
// buf must be at least as long as the file.
func (fs *Filesystem) Read(name string, buf []byte) (int, error) {
	if err := fs.ready(); err != nil {
		return 0, err
	}

	_, entry, err := fs.current.Find(name)
	if err != nil {
		return 0, err
	}
	if entry.IsDir() {
		return 0, IsADirectory{name}
	}

	size := int(entry.Size)
	if len(buf) < size {
		return 0, BufferTooSmall{Size: size, Capacity: len(buf)}
	}

	read := 0
	err = fs.table.Walk(entry.StartBlock(), func(block BlockPtr) error {
		if read >= size {
			return nil
		}

		data, err := fs.readBlock(block)
		if err != nil {
			return err
		}

		read += copy(buf[read:size], data)
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", name)
	}

	return read, nil
}
