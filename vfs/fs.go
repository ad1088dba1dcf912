package vfs

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Filesystem owns the in-memory working set of a mounted device: the
// superblock, the allocation table and the current directory. Every
// mutating operation re-persists what it changed in the order
// directory, table, superblock. A failed step is not rolled back.
type Filesystem struct {
	Device BlockDevice

	label      string
	superblock Superblock
	table      *AllocationTable
	current    Directory
	navigator  Navigator
	mounted    bool
}

// EntryInfo is one line of a directory listing. Size is zero for directories.
type EntryInfo struct {
	Name  string
	Kind  EntryKind
	Size  uint32
	Start BlockPtr
}

func (e EntryInfo) IsDir() bool {
	return e.Kind == KindDirectory
}

// NewFilesystem returns an unmounted filesystem on device. Call Init to
// mount an existing filesystem or Format to create a new one. label is
// written into the superblock by Format.
func NewFilesystem(device BlockDevice, label string) *Filesystem {
	return &Filesystem{
		Device: device,
		label:  label,
	}
}

func (fs *Filesystem) Mounted() bool {
	return fs.mounted
}

func (fs *Filesystem) Superblock() Superblock {
	return fs.superblock
}

func (fs *Filesystem) Table() *AllocationTable {
	return fs.table
}

func (fs *Filesystem) Path() string {
	return fs.navigator.Path()
}

func (fs *Filesystem) CurrentBlock() BlockPtr {
	return fs.navigator.Block()
}

func (fs *Filesystem) ready() error {
	if !fs.mounted {
		return Unformatted{}
	}
	if !fs.Device.Detect() {
		return NoDisk{}
	}
	return nil
}

// Format writes a fresh superblock, allocation table and root directory.
func (fs *Filesystem) Format() error {
	if !fs.Device.Detect() {
		return NoDisk{}
	}

	sb := NewPreparedSuperblock(fs.label, uuid.New())
	table := NewAllocationTable(BlockCount, SystemBlocks)
	root := NewDirectory(RootDirectoryBlock, RootDirectoryBlock)

	fs.mounted = false

	err := fs.writeSuperblock(sb)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	err = fs.writeTable(table, sb.TableBlocks)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	err = fs.writeDirectory(root)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	fs.mount(sb, table, root)

	slog.Info("Filesystem formatted", "label", sb.LabelString(), "id", sb.ID(), "free", sb.FreeBlocks)

	return nil
}

// Init mounts the filesystem found on the device.
func (fs *Filesystem) Init() error {
	if !fs.Device.Detect() {
		return NoDisk{}
	}

	fs.mounted = false

	data, err := fs.readBlock(SuperblockBlock)
	if err != nil {
		return errors.Wrap(err, "read superblock")
	}

	sb, err := DecodeSuperblock(data)
	if err != nil {
		return errors.Wrap(err, "decode superblock")
	}
	if !sb.Formatted() {
		return Unformatted{sb.Magic}
	}
	if err := sb.Validate(); err != nil {
		return err
	}

	tableData := make([]byte, 0, int(sb.TableBlocks)*BlockSize)
	for i := uint32(0); i < sb.TableBlocks; i++ {
		data, err := fs.readBlock(TableStartBlock + BlockPtr(i))
		if err != nil {
			return errors.Wrap(err, "read allocation table")
		}
		tableData = append(tableData, data...)
	}

	table, err := DecodeAllocationTable(tableData, int(sb.BlockCount), sb.SystemBlocks())
	if err != nil {
		return errors.Wrap(err, "decode allocation table")
	}

	root, err := fs.ReadDirectory(BlockPtr(sb.RootBlock))
	if err != nil {
		return errors.Wrap(err, "read root directory")
	}

	fs.mount(sb, table, root)

	slog.Debug("Filesystem mounted", "label", sb.LabelString(), "id", sb.ID(), "free", sb.FreeBlocks)

	return nil
}

func (fs *Filesystem) mount(sb Superblock, table *AllocationTable, root Directory) {
	fs.superblock = sb
	fs.table = table
	fs.current = root
	fs.navigator = NewNavigator(root.Block)
	fs.mounted = true
}

// Find looks name up in the current directory.
func (fs *Filesystem) Find(name string) (DirectoryEntry, error) {
	if err := fs.ready(); err != nil {
		return DirectoryEntry{}, err
	}

	_, entry, err := fs.current.Find(name)
	return entry, err
}

// List returns every non-empty slot of the current directory in slot order.
func (fs *Filesystem) List() ([]EntryInfo, error) {
	if err := fs.ready(); err != nil {
		return nil, err
	}

	infos := make([]EntryInfo, 0, DirectoryCapacity)
	for _, entry := range fs.current.Entries {
		if entry.IsEmpty() {
			continue
		}

		info := EntryInfo{
			Name:  entry.NameString(),
			Kind:  entry.Kind(),
			Start: entry.StartBlock(),
		}
		if !entry.IsDir() {
			info.Size = entry.Size
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// Create adds an empty file or directory to the current directory. Files get
// their first block on the first write. Directories get one block right away.
func (fs *Filesystem) Create(name string, kind EntryKind) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := fs.ready(); err != nil {
		return err
	}

	if _, _, err := fs.current.Find(name); err == nil {
		return DuplicateDirectoryEntry{name}
	}

	slot, err := fs.current.FreeSlot()
	if err != nil {
		return err
	}

	switch kind {
	case KindFile:
		fs.current.Entries[slot] = NewDirectoryEntry(name, KindFile, Unallocated)

		err = fs.writeDirectory(fs.current)
		if err != nil {
			fs.current.Entries[slot] = DirectoryEntry{}
			return errors.Wrapf(err, "create %s", name)
		}
	case KindDirectory:
		err = fs.createDirectory(slot, name)
		if err != nil {
			return errors.Wrapf(err, "create %s", name)
		}
	default:
		return UnknownEntryKind{kind}
	}

	slog.Debug("Entry created", "name", name, "kind", kind, "directory", fs.current.Block)

	return nil
}

func (fs *Filesystem) createDirectory(slot int, name string) error {
	block, err := fs.table.Allocate()
	if err != nil {
		return err
	}

	err = fs.table.MarkReserved(block)
	if err != nil {
		return err
	}
	free := fs.superblock.FreeBlocks
	fs.claimBlock()

	fs.current.Entries[slot] = NewDirectoryEntry(name, KindDirectory, block)
	child := NewDirectory(block, fs.current.Block)

	undo := func(cause error) error {
		_ = fs.table.MarkFree(block)
		fs.superblock.FreeBlocks = free
		fs.current.Entries[slot] = DirectoryEntry{}
		slog.Warn("Directory creation undone", "name", name, "block", block, "err", cause.Error())
		return cause
	}

	err = fs.writeDirectory(child)
	if err != nil {
		return undo(err)
	}

	err = fs.writeDirectory(fs.current)
	if err != nil {
		return undo(err)
	}

	return fs.syncAllocation()
}

// Delete removes an entry from the current directory and returns its blocks
// to the table. Directories must be empty.
func (fs *Filesystem) Delete(name string) error {
	if name == "." || name == ".." {
		return InvalidName{name, "directory links cannot be deleted"}
	}
	if err := fs.ready(); err != nil {
		return err
	}

	slot, entry, err := fs.current.Find(name)
	if err != nil {
		return err
	}

	if entry.IsDir() {
		child, err := fs.ReadDirectory(entry.StartBlock())
		if err != nil {
			return errors.Wrapf(err, "delete %s", name)
		}
		if !child.IsEmpty() {
			return DirectoryIsNotEmpty{name}
		}
	}

	released, err := fs.table.Release(entry.StartBlock())
	fs.releaseBlocks(released)
	if err != nil {
		return errors.Wrapf(err, "delete %s", name)
	}

	fs.current.Entries[slot] = DirectoryEntry{}

	err = fs.sync()
	if err != nil {
		return errors.Wrapf(err, "delete %s", name)
	}

	slog.Debug("Entry deleted", "name", name, "released", released)

	return nil
}

// ReadDirectory loads the directory stored in block.
func (fs *Filesystem) ReadDirectory(block BlockPtr) (Directory, error) {
	data, err := fs.readBlock(block)
	if err != nil {
		return Directory{}, err
	}
	return DecodeDirectory(block, data)
}

// ChainBlocks lists the blocks of the chain starting at head.
func (fs *Filesystem) ChainBlocks(head BlockPtr) ([]BlockPtr, error) {
	if err := fs.ready(); err != nil {
		return nil, err
	}
	return fs.table.Chain(head)
}

// sync persists the current directory, the table and the superblock.
func (fs *Filesystem) sync() error {
	err := fs.writeDirectory(fs.current)
	if err != nil {
		return err
	}
	return fs.syncAllocation()
}

func (fs *Filesystem) syncAllocation() error {
	err := fs.writeTable(fs.table, fs.superblock.TableBlocks)
	if err != nil {
		slog.Warn("Allocation table not persisted, device is behind memory", "err", err.Error())
		return err
	}

	err = fs.writeSuperblock(fs.superblock)
	if err != nil {
		slog.Warn("Superblock not persisted, device is behind memory", "err", err.Error())
		return err
	}

	return nil
}

// claimBlock and releaseBlocks keep the free counter within the data area.
// After a failed persist the counter can lag the table, and it must never
// wrap.
func (fs *Filesystem) claimBlock() {
	if fs.superblock.FreeBlocks > 0 {
		fs.superblock.FreeBlocks--
	}
}

func (fs *Filesystem) releaseBlocks(count int) {
	limit := fs.superblock.BlockCount - uint32(fs.superblock.SystemBlocks())
	free := fs.superblock.FreeBlocks + uint32(count)
	if free > limit {
		free = limit
	}
	fs.superblock.FreeBlocks = free
}

func (fs *Filesystem) readBlock(block BlockPtr) ([]byte, error) {
	data, err := fs.Device.ReadBlock(block)
	if err != nil {
		return nil, DeviceError{Op: "read", Block: block, Err: err}
	}
	return data, nil
}

func (fs *Filesystem) writeBlock(block BlockPtr, data []byte) error {
	err := fs.Device.WriteBlock(block, data)
	if err != nil {
		return DeviceError{Op: "write", Block: block, Err: err}
	}
	return nil
}

func (fs *Filesystem) writeSuperblock(sb Superblock) error {
	data, err := sb.Encode()
	if err != nil {
		return err
	}
	return errors.Wrap(fs.writeBlock(SuperblockBlock, data), "write superblock")
}

func (fs *Filesystem) writeTable(table *AllocationTable, blocks uint32) error {
	data, err := table.Encode(int(blocks))
	if err != nil {
		return err
	}

	for i := 0; i < int(blocks); i++ {
		err = fs.writeBlock(TableStartBlock+BlockPtr(i), data[i*BlockSize:(i+1)*BlockSize])
		if err != nil {
			return errors.Wrap(err, "write allocation table")
		}
	}

	return nil
}

func (fs *Filesystem) writeDirectory(dir Directory) error {
	data, err := dir.Encode()
	if err != nil {
		return err
	}
	return errors.Wrapf(fs.writeBlock(dir.Block, data), "write directory %d", dir.Block)
}
