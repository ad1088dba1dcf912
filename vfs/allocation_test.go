package vfs_test

import (
	"testing"

	"github.com/PapiCZ/foxfs/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable() *vfs.AllocationTable {
	return vfs.NewAllocationTable(vfs.BlockCount, vfs.SystemBlocks)
}

func appendBlocks(t *testing.T, table *vfs.AllocationTable, count int) vfs.BlockPtr {
	head := vfs.LinkEnd
	tail := vfs.LinkEnd
	for i := 0; i < count; i++ {
		block, err := table.Allocate()
		require.NoError(t, err)
		require.NoError(t, table.Append(tail, block))
		if head == vfs.LinkEnd {
			head = block
		}
		tail = block
	}
	return head
}

func TestNewAllocationTable(t *testing.T) {
	t.Parallel()

	table := newTable()

	assert.Equal(t, vfs.BlockCount, table.Len())
	assert.Equal(t, vfs.BlockCount-int(vfs.SystemBlocks), table.FreeCount())

	for i := vfs.BlockPtr(0); i < vfs.SystemBlocks; i++ {
		link, err := table.Link(i)
		require.NoError(t, err)
		assert.Equal(t, vfs.LinkReserved, link, "block %d", i)
	}
}

func TestAllocateFirstFit(t *testing.T) {
	t.Parallel()

	table := newTable()

	block, err := table.Allocate()
	require.NoError(t, err)
	assert.Equal(t, vfs.SystemBlocks, block)

	// Allocate does not claim the block
	again, err := table.Allocate()
	require.NoError(t, err)
	assert.Equal(t, block, again)

	require.NoError(t, table.Append(vfs.LinkEnd, block))
	next, err := table.Allocate()
	require.NoError(t, err)
	assert.Equal(t, block+1, next)
}

func TestAllocateReusesLowestFreedBlock(t *testing.T) {
	t.Parallel()

	table := newTable()
	first := appendBlocks(t, table, 3)
	appendBlocks(t, table, 2)

	released, err := table.Release(first)
	require.NoError(t, err)
	assert.Equal(t, 3, released)

	block, err := table.Allocate()
	require.NoError(t, err)
	assert.Equal(t, first, block)
}

func TestAllocateExhausted(t *testing.T) {
	t.Parallel()

	table := newTable()
	appendBlocks(t, table, vfs.BlockCount-int(vfs.SystemBlocks))

	assert.Equal(t, 0, table.FreeCount())

	_, err := table.Allocate()
	assert.Equal(t, vfs.StatusFull, vfs.StatusOf(err))
}

func TestChain(t *testing.T) {
	t.Parallel()

	table := newTable()
	head := appendBlocks(t, table, 4)

	blocks, err := table.Chain(head)
	require.NoError(t, err)
	assert.Equal(t, []vfs.BlockPtr{head, head + 1, head + 2, head + 3}, blocks)

	length, err := table.ChainLength(head)
	require.NoError(t, err)
	assert.Equal(t, 4, length)

	tail, err := table.Tail(head)
	require.NoError(t, err)
	assert.Equal(t, head+3, tail)

	link, err := table.Link(tail)
	require.NoError(t, err)
	assert.Equal(t, vfs.LinkEnd, link)
}

func TestEmptyChain(t *testing.T) {
	t.Parallel()

	table := newTable()

	blocks, err := table.Chain(vfs.Unallocated)
	require.NoError(t, err)
	assert.Empty(t, blocks)

	tail, err := table.Tail(vfs.Unallocated)
	require.NoError(t, err)
	assert.Equal(t, vfs.LinkEnd, tail)

	released, err := table.Release(vfs.Unallocated)
	require.NoError(t, err)
	assert.Zero(t, released)
}

func TestReserved(t *testing.T) {
	t.Parallel()

	table := newTable()
	block, err := table.Allocate()
	require.NoError(t, err)
	require.NoError(t, table.MarkReserved(block))

	blocks, err := table.Chain(block)
	require.NoError(t, err)
	assert.Equal(t, []vfs.BlockPtr{block}, blocks)

	released, err := table.Release(block)
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, vfs.BlockCount-int(vfs.SystemBlocks), table.FreeCount())

	assert.Error(t, table.MarkReserved(vfs.RootDirectoryBlock))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	table := newTable()
	head := appendBlocks(t, table, 5)
	free := table.FreeCount()

	released, err := table.Truncate(head, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, released)
	assert.Equal(t, free+3, table.FreeCount())

	blocks, err := table.Chain(head)
	require.NoError(t, err)
	assert.Equal(t, []vfs.BlockPtr{head, head + 1}, blocks)

	released, err = table.Truncate(head, 10)
	require.NoError(t, err)
	assert.Zero(t, released)

	released, err = table.Truncate(head, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, released)
	assert.Equal(t, vfs.BlockCount-int(vfs.SystemBlocks), table.FreeCount())
}

func TestWalkDetectsCycle(t *testing.T) {
	t.Parallel()

	table := newTable()
	head := appendBlocks(t, table, 3)

	tail, err := table.Tail(head)
	require.NoError(t, err)

	// Point the tail back at the head on disk
	data, err := table.Encode(vfs.TableBlocks)
	require.NoError(t, err)
	data[2*int(tail)] = byte(head)
	data[2*int(tail)+1] = byte(head >> 8)

	table, err = vfs.DecodeAllocationTable(data, vfs.BlockCount, vfs.SystemBlocks)
	require.NoError(t, err)

	_, err = table.ChainLength(head)
	var corrupt vfs.CorruptChain
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, head, corrupt.Head)
}

func TestWalkDetectsFreeLink(t *testing.T) {
	t.Parallel()

	table := newTable()
	head := appendBlocks(t, table, 2)
	require.NoError(t, table.MarkFree(head+1))
	require.NoError(t, table.MarkFree(head))
	require.NoError(t, table.Append(vfs.LinkEnd, head+1))

	// head now points at nothing
	_, err := table.Chain(head)
	assert.ErrorAs(t, err, &vfs.CorruptChain{})

	_, err = table.Chain(vfs.SuperblockBlock)
	assert.ErrorAs(t, err, &vfs.CorruptChain{})
}

func TestAllocationTableEncoding(t *testing.T) {
	t.Parallel()

	table := newTable()
	head := appendBlocks(t, table, 3)
	dir, err := table.Allocate()
	require.NoError(t, err)
	require.NoError(t, table.MarkReserved(dir))

	data, err := table.Encode(vfs.TableBlocks)
	require.NoError(t, err)
	assert.Len(t, data, vfs.TableBlocks*vfs.BlockSize)

	// Links are little endian uint16
	assert.Equal(t, []byte{0xFE, 0xFF}, data[0:2])
	assert.Equal(t, []byte{byte(head + 1), 0x00}, data[2*int(head):2*int(head)+2])

	decoded, err := vfs.DecodeAllocationTable(data, vfs.BlockCount, vfs.SystemBlocks)
	require.NoError(t, err)
	assert.Equal(t, table, decoded)

	_, err = table.Encode(1)
	assert.Error(t, err)

	_, err = vfs.DecodeAllocationTable(data[:vfs.BlockSize], vfs.BlockCount, vfs.SystemBlocks)
	assert.Error(t, err)
}
