package vfs

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Device geometry and the fixed layout of the system area.
const (
	BlockSize  = 512
	BlockCount = 1024
	DeviceSize = BlockSize * BlockCount

	// TableBlocks is the size of the allocation table: one 2-byte link per block.
	TableBlocks = BlockCount * linkSize / BlockSize

	SuperblockBlock    BlockPtr = 0
	TableStartBlock    BlockPtr = 1
	RootDirectoryBlock          = TableStartBlock + TableBlocks
	SystemBlocks                = RootDirectoryBlock + 1
)

// BlockDevice is fixed-size block storage. Buffers passed to and returned
// from a device are exactly BlockSize bytes long.
type BlockDevice interface {
	ReadBlock(index BlockPtr) ([]byte, error)
	WriteBlock(index BlockPtr, data []byte) error
	Detect() bool
}

var errBlockSize = errors.New("buffer is not exactly one block")

func checkBlock(index BlockPtr, data []byte) error {
	if index >= BlockCount {
		return OutOfRange{int(index), BlockCount - 1}
	}
	if data != nil && len(data) != BlockSize {
		return errors.Wrapf(errBlockSize, "got %d bytes", len(data))
	}
	return nil
}

// PrepareDeviceFile creates (or truncates) a host file sized for a device.
func PrepareDeviceFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	return f.Truncate(DeviceSize)
}

// FileDevice is a block device backed by an image file on the host. The file
// is locked exclusively for as long as the device is open.
type FileDevice struct {
	file *os.File
}

func NewFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "lock %s", path)
	}

	return &FileDevice{file: f}, nil
}

func (d *FileDevice) ReadBlock(index BlockPtr) ([]byte, error) {
	if err := checkBlock(index, nil); err != nil {
		return nil, err
	}
	if d.file == nil {
		return nil, NoDisk{}
	}

	data := make([]byte, BlockSize)
	n, err := unix.Pread(int(d.file.Fd()), data, BlockOffset(index))
	if err != nil {
		return nil, err
	}
	if n != BlockSize {
		return nil, io.ErrUnexpectedEOF
	}

	return data, nil
}

func (d *FileDevice) WriteBlock(index BlockPtr, data []byte) error {
	if err := checkBlock(index, data); err != nil {
		return err
	}
	if d.file == nil {
		return NoDisk{}
	}

	n, err := unix.Pwrite(int(d.file.Fd()), data, BlockOffset(index))
	if err != nil {
		return err
	}
	if n != BlockSize {
		return io.ErrShortWrite
	}

	return nil
}

// Detect reports whether the image is open and large enough to hold a device.
func (d *FileDevice) Detect() bool {
	if d.file == nil {
		return false
	}

	stat, err := d.file.Stat()
	if err != nil {
		return false
	}

	return stat.Size() >= DeviceSize
}

func (d *FileDevice) Sync() error {
	return d.file.Sync()
}

func (d *FileDevice) Close() error {
	if d.file == nil {
		return nil
	}

	_ = unix.Flock(int(d.file.Fd()), unix.LOCK_UN)
	err := d.file.Close()
	d.file = nil

	return err
}

// MemoryDevice keeps its blocks in RAM. Present simulates inserting and
// removing the disk.
type MemoryDevice struct {
	Present bool
	blocks  [BlockCount][]byte
}

func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{Present: true}
}

func (m *MemoryDevice) ReadBlock(index BlockPtr) ([]byte, error) {
	if err := checkBlock(index, nil); err != nil {
		return nil, err
	}
	if !m.Present {
		return nil, NoDisk{}
	}

	data := make([]byte, BlockSize)
	copy(data, m.blocks[index])
	return data, nil
}

func (m *MemoryDevice) WriteBlock(index BlockPtr, data []byte) error {
	if err := checkBlock(index, data); err != nil {
		return err
	}
	if !m.Present {
		return NoDisk{}
	}

	if m.blocks[index] == nil {
		m.blocks[index] = make([]byte, BlockSize)
	}
	copy(m.blocks[index], data)
	return nil
}

func (m *MemoryDevice) Detect() bool {
	return m.Present
}
