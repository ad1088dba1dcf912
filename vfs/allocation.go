package vfs

import (
	"bytes"
	"encoding/binary"
	"log/slog"
)

// BlockPtr is an index into the block device. Inside the allocation table it
// doubles as the link value of a block.
type BlockPtr uint32

// Link values. Anything else is the index of the next block in the chain.
// Block 0 holds the superblock and can never be a successor, so it marks a
// free block without clashing with a real link.
const (
	LinkFree     BlockPtr = 0x0000
	LinkReserved BlockPtr = 0xFFFE
	LinkEnd      BlockPtr = 0xFFFF

	// Unallocated is the starting block of a file that holds no data yet.
	Unallocated = LinkEnd
)

// linkSize is the on-disk width of one table link.
const linkSize = 2

// AllocationTable keeps one link per device block.
type AllocationTable struct {
	links     []BlockPtr
	firstData BlockPtr
}

// NewAllocationTable returns a table with every block free except the first
// systemBlocks, which are marked reserved.
func NewAllocationTable(blockCount int, systemBlocks BlockPtr) *AllocationTable {
	t := &AllocationTable{
		links:     make([]BlockPtr, blockCount),
		firstData: systemBlocks,
	}

	for i := BlockPtr(0); i < systemBlocks && int(i) < blockCount; i++ {
		t.links[i] = LinkReserved
	}

	return t
}

func (t *AllocationTable) Len() int {
	return len(t.links)
}

// Link returns the raw link value stored for block.
func (t *AllocationTable) Link(block BlockPtr) (BlockPtr, error) {
	if int(block) >= len(t.links) {
		return 0, OutOfRange{int(block), len(t.links) - 1}
	}
	return t.links[block], nil
}

// FreeCount scans the table. The superblock counter is maintained
// incrementally and may disagree with this value after a failed operation.
func (t *AllocationTable) FreeCount() int {
	free := 0
	for i := int(t.firstData); i < len(t.links); i++ {
		if t.links[i] == LinkFree {
			free++
		}
	}
	return free
}

// Allocate returns the first free block after the system blocks. The block is
// not marked; callers either Append it to a chain or MarkReserved it.
func (t *AllocationTable) Allocate() (BlockPtr, error) {
	for i := int(t.firstData); i < len(t.links); i++ {
		if t.links[i] == LinkFree {
			return BlockPtr(i), nil
		}
	}
	return 0, NoSpace{}
}

// Append links tail to block and terminates the chain at block. A tail of
// LinkEnd starts a new chain.
func (t *AllocationTable) Append(tail, block BlockPtr) error {
	if !t.isData(block) {
		return OutOfRange{int(block), len(t.links) - 1}
	}
	if tail != LinkEnd {
		if !t.isData(tail) {
			return OutOfRange{int(tail), len(t.links) - 1}
		}
		t.links[tail] = block
	}
	t.links[block] = LinkEnd

	slog.Debug("Block appended to chain", "tail", tail, "block", block)

	return nil
}

// MarkReserved claims block as a single-block directory.
func (t *AllocationTable) MarkReserved(block BlockPtr) error {
	if !t.isData(block) {
		return OutOfRange{int(block), len(t.links) - 1}
	}
	t.links[block] = LinkReserved
	return nil
}

func (t *AllocationTable) MarkFree(block BlockPtr) error {
	if !t.isData(block) {
		return OutOfRange{int(block), len(t.links) - 1}
	}
	t.links[block] = LinkFree
	return nil
}

// Walk calls visit for every block of the chain starting at head, in order.
// The next link is read before visit runs, so visit may rewrite the link of
// the block it is given.
func (t *AllocationTable) Walk(head BlockPtr, visit func(block BlockPtr) error) error {
	block := head
	for steps := 0; block != LinkEnd; steps++ {
		if steps >= len(t.links) || !t.isData(block) {
			return CorruptChain{Head: head, Block: block}
		}

		next := t.links[block]
		if next == LinkFree {
			return CorruptChain{Head: head, Block: block}
		}

		if err := visit(block); err != nil {
			return err
		}

		// Directories occupy one block marked reserved
		if next == LinkReserved {
			break
		}
		block = next
	}

	return nil
}

// Chain returns the blocks of the chain starting at head.
func (t *AllocationTable) Chain(head BlockPtr) ([]BlockPtr, error) {
	blocks := make([]BlockPtr, 0)
	err := t.Walk(head, func(block BlockPtr) error {
		blocks = append(blocks, block)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (t *AllocationTable) ChainLength(head BlockPtr) (int, error) {
	length := 0
	err := t.Walk(head, func(BlockPtr) error {
		length++
		return nil
	})
	return length, err
}

// Tail returns the last block of the chain, or LinkEnd for an empty chain.
func (t *AllocationTable) Tail(head BlockPtr) (BlockPtr, error) {
	tail := LinkEnd
	err := t.Walk(head, func(block BlockPtr) error {
		tail = block
		return nil
	})
	return tail, err
}

// Release marks every block of the chain free and returns how many blocks
// were returned to the table.
func (t *AllocationTable) Release(head BlockPtr) (int, error) {
	released := 0
	err := t.Walk(head, func(block BlockPtr) error {
		t.links[block] = LinkFree
		released++
		return nil
	})
	if released > 0 {
		slog.Debug("Chain released", "head", head, "blocks", released)
	}
	return released, err
}

// Truncate keeps the first keep blocks of the chain and releases the rest.
// With keep == 0 the whole chain is released and the caller must reset the
// entry's starting block.
func (t *AllocationTable) Truncate(head BlockPtr, keep int) (int, error) {
	if keep <= 0 {
		return t.Release(head)
	}

	blocks, err := t.Chain(head)
	if err != nil {
		return 0, err
	}
	if len(blocks) <= keep {
		return 0, nil
	}

	last := blocks[keep-1]
	rest := blocks[keep]
	t.links[last] = LinkEnd

	return t.Release(rest)
}

// Encode serializes the table into exactly blocks*BlockSize bytes.
func (t *AllocationTable) Encode(blocks int) ([]byte, error) {
	raw := make([]uint16, blocks*BlockSize/linkSize)
	if len(t.links) > len(raw) {
		return nil, OutOfRange{len(t.links), len(raw)}
	}
	for i, link := range t.links {
		raw[i] = uint16(link)
	}

	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.LittleEndian, raw)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeAllocationTable reads blockCount links from data.
func DecodeAllocationTable(data []byte, blockCount int, systemBlocks BlockPtr) (*AllocationTable, error) {
	if len(data) < blockCount*linkSize {
		return nil, OutOfRange{blockCount * linkSize, len(data)}
	}

	raw := make([]uint16, blockCount)
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, raw)
	if err != nil {
		return nil, err
	}

	t := &AllocationTable{
		links:     make([]BlockPtr, blockCount),
		firstData: systemBlocks,
	}
	for i, link := range raw {
		t.links[i] = BlockPtr(link)
	}

	return t, nil
}

func (t *AllocationTable) isData(block BlockPtr) bool {
	return block >= t.firstData && int(block) < len(t.links)
}
