package vfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	DirectoryEntryNameLength = 32
	// MaxNameLength leaves room for the terminating NUL.
	MaxNameLength      = DirectoryEntryNameLength - 1
	DirectoryEntrySize = 44
	// DirectoryCapacity slots fit in one block. The tail of the block past
	// the last slot is zero padding.
	DirectoryCapacity = BlockSize / DirectoryEntrySize
)

// Attribute flags of a directory entry.
const (
	AttrDirectory uint8 = 0x01
	AttrFile      uint8 = 0x02
)

type EntryKind uint8

const (
	KindFile EntryKind = iota + 1
	KindDirectory
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	forbiddenNameCharacters = `/\:*?"<>|`
)

var reservedDeviceNames = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

// DirectoryEntry is the on-disk record of one directory slot (44 bytes).
// An entry whose name starts with NUL is an empty slot.
type DirectoryEntry struct {
	Name       [DirectoryEntryNameLength]byte
	Size       uint32
	Start      uint32
	Attributes uint8
	Reserved   [3]uint8
}

func NewDirectoryEntry(name string, kind EntryKind, start BlockPtr) DirectoryEntry {
	attributes := AttrFile
	if kind == KindDirectory {
		attributes = AttrDirectory
	}

	return DirectoryEntry{
		Name:       StringNameToBytes(name),
		Start:      uint32(start),
		Attributes: attributes,
	}
}

func (d DirectoryEntry) IsEmpty() bool {
	return d.Name[0] == 0
}

func (d DirectoryEntry) NameString() string {
	return CToGoString(d.Name[:])
}

func (d DirectoryEntry) IsDir() bool {
	return d.Attributes&AttrDirectory != 0
}

func (d DirectoryEntry) Kind() EntryKind {
	if d.IsDir() {
		return KindDirectory
	}
	return KindFile
}

func (d DirectoryEntry) StartBlock() BlockPtr {
	return BlockPtr(d.Start)
}

// Directory is a single block holding a fixed number of entry slots. Slot 0
// is "." and slot 1 is "..".
type Directory struct {
	Block   BlockPtr
	Entries [DirectoryCapacity]DirectoryEntry
}

// NewDirectory returns an empty directory stored in block whose ".." entry
// points at parent. The root directory is its own parent.
func NewDirectory(block, parent BlockPtr) Directory {
	d := Directory{Block: block}
	d.Entries[0] = NewDirectoryEntry(".", KindDirectory, block)
	d.Entries[1] = NewDirectoryEntry("..", KindDirectory, parent)
	return d
}

func DecodeDirectory(block BlockPtr, data []byte) (Directory, error) {
	d := Directory{Block: block}
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &d.Entries)
	if err != nil {
		return Directory{}, err
	}
	return d, nil
}

func (d Directory) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.LittleEndian, d.Entries)
	if err != nil {
		return nil, err
	}

	block := make([]byte, BlockSize)
	copy(block, buf.Bytes())
	return block, nil
}

// Find returns the slot of the entry named name.
func (d *Directory) Find(name string) (int, DirectoryEntry, error) {
	if len(name) > MaxNameLength {
		return 0, DirectoryEntry{}, DirectoryEntryNotFound{name}
	}

	nameBytes := StringNameToBytes(name)
	for i, entry := range d.Entries {
		if !entry.IsEmpty() && entry.Name == nameBytes {
			return i, entry, nil
		}
	}

	return 0, DirectoryEntry{}, DirectoryEntryNotFound{name}
}

func (d *Directory) FreeSlot() (int, error) {
	for i, entry := range d.Entries {
		if entry.IsEmpty() {
			return i, nil
		}
	}
	return 0, DirectoryFull{d.Block}
}

// Parent returns the block referenced by the ".." entry.
func (d *Directory) Parent() (BlockPtr, error) {
	_, entry, err := d.Find("..")
	if err != nil {
		return 0, err
	}
	return entry.StartBlock(), nil
}

// IsEmpty reports whether the directory holds nothing but "." and "..".
func (d *Directory) IsEmpty() bool {
	for _, entry := range d.Entries {
		if entry.IsEmpty() {
			continue
		}
		if name := entry.NameString(); name != "." && name != ".." {
			return false
		}
	}
	return true
}

// ValidateName checks name against the rules for a new directory entry.
func ValidateName(name string) error {
	switch {
	case name == "":
		return InvalidName{name, "name is empty"}
	case len(name) > MaxNameLength:
		return InvalidName{name, fmt.Sprintf("name is longer than %d bytes", MaxNameLength)}
	case name == "." || name == "..":
		return InvalidName{name, "name is reserved for directory links"}
	case strings.ContainsAny(name, forbiddenNameCharacters):
		return InvalidName{name, "name contains one of " + forbiddenNameCharacters}
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return InvalidName{name, "name contains a control character"}
		}
	}

	for _, reserved := range reservedDeviceNames {
		if strings.EqualFold(name, reserved) {
			return InvalidName{name, "name is a reserved device name"}
		}
	}

	return nil
}
