package vfs

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// Magic spells "FOX\0".
const Magic uint32 = 0x464F5800

const LabelLength = 12

// Superblock is stored at the start of block 0. Its encoded form is 64 bytes.
type Superblock struct {
	Magic       uint32
	BlockCount  uint32
	FreeBlocks  uint32
	RootBlock   uint32
	TableBlocks uint32
	VolumeID    [16]byte
	Label       [LabelLength]byte
	Reserved    [16]byte
}

func NewPreparedSuperblock(label string, volumeID uuid.UUID) Superblock {
	var labelBytes [LabelLength]byte
	copy(labelBytes[:], label)

	return Superblock{
		Magic:       Magic,
		BlockCount:  BlockCount,
		FreeBlocks:  BlockCount - uint32(SystemBlocks),
		RootBlock:   uint32(RootDirectoryBlock),
		TableBlocks: TableBlocks,
		VolumeID:    volumeID,
		Label:       labelBytes,
	}
}

func (s Superblock) Formatted() bool {
	return s.Magic == Magic
}

func (s Superblock) LabelString() string {
	return CToGoString(s.Label[:])
}

func (s Superblock) ID() uuid.UUID {
	return uuid.UUID(s.VolumeID)
}

// SystemBlocks is the number of blocks in front of the data area as recorded
// by this superblock.
func (s Superblock) SystemBlocks() BlockPtr {
	return BlockPtr(s.RootBlock) + 1
}

// Validate checks that the recorded geometry can be loaded into memory.
// FreeBlocks is not checked, it is a hint that may lag the table.
func (s Superblock) Validate() error {
	switch {
	case s.BlockCount == 0 || s.BlockCount > uint32(LinkReserved):
		return CorruptSuperblock{"block count out of range"}
	case s.TableBlocks == 0 || s.TableBlocks*BlockSize < s.BlockCount*linkSize:
		return CorruptSuperblock{"allocation table too small for block count"}
	case s.RootBlock != uint32(TableStartBlock)+s.TableBlocks:
		return CorruptSuperblock{"root directory does not follow the allocation table"}
	case s.RootBlock >= s.BlockCount:
		return CorruptSuperblock{"root directory outside device"}
	}
	return nil
}

func (s Superblock) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.LittleEndian, s)
	if err != nil {
		return nil, err
	}

	block := make([]byte, BlockSize)
	copy(block, buf.Bytes())
	return block, nil
}

func DecodeSuperblock(data []byte) (Superblock, error) {
	var sb Superblock
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &sb)
	if err != nil {
		return Superblock{}, err
	}
	return sb, nil
}
