package vfs

import (
	"errors"
	"fmt"
)

// Status is the numeric result code exposed to the shell. The values are
// part of the public contract and never change.
type Status int

const (
	StatusOK           Status = 0
	StatusGenericError Status = -1
	StatusNotFound     Status = -2
	StatusExists       Status = -3
	StatusFull         Status = -4
	StatusIOError      Status = -5
	StatusInvalidName  Status = -6
	StatusNoDisk       Status = -7
	StatusUnformatted  Status = -8
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusGenericError:
		return "GENERIC_ERROR"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusExists:
		return "EXISTS"
	case StatusFull:
		return "FULL"
	case StatusIOError:
		return "IO_ERROR"
	case StatusInvalidName:
		return "INVALID_NAME"
	case StatusNoDisk:
		return "NO_DISK"
	case StatusUnformatted:
		return "UNFORMATTED"
	}
	return fmt.Sprintf("STATUS(%d)", int(s))
}

type statusError interface {
	error
	Status() Status
}

// StatusOf maps an error returned by this package to its status code. Errors
// that carry no status are reported as StatusGenericError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var se statusError
	if errors.As(err, &se) {
		return se.Status()
	}

	return StatusGenericError
}

type OutOfRange struct {
	Index    int
	MaxIndex int
}

func (o OutOfRange) Error() string {
	return fmt.Sprintf("index out of range [%d], maximal index is [%d]", o.Index, o.MaxIndex)
}

func (o OutOfRange) Status() Status { return StatusGenericError }

type DirectoryEntryNotFound struct {
	Name string
}

func (d DirectoryEntryNotFound) Error() string {
	return fmt.Sprintf("directory entry with name %s was not found", d.Name)
}

func (d DirectoryEntryNotFound) Status() Status { return StatusNotFound }

type DuplicateDirectoryEntry struct {
	Name string
}

func (d DuplicateDirectoryEntry) Error() string {
	return fmt.Sprintf("directory entry with name %s already exists", d.Name)
}

func (d DuplicateDirectoryEntry) Status() Status { return StatusExists }

type InvalidName struct {
	Name   string
	Reason string
}

func (i InvalidName) Error() string {
	return fmt.Sprintf("invalid name %q: %s", i.Name, i.Reason)
}

func (i InvalidName) Status() Status { return StatusInvalidName }

type DirectoryFull struct {
	Block BlockPtr
}

func (d DirectoryFull) Error() string {
	return fmt.Sprintf("directory in block %d has no empty slot", d.Block)
}

func (d DirectoryFull) Status() Status { return StatusFull }

type NoSpace struct{}

func (NoSpace) Error() string { return "no free block left on device" }

func (NoSpace) Status() Status { return StatusFull }

// DeviceError is a failed block transfer. Err is whatever the device reported.
type DeviceError struct {
	Op    string
	Block BlockPtr
	Err   error
}

func (d DeviceError) Error() string {
	return fmt.Sprintf("device %s of block %d failed: %v", d.Op, d.Block, d.Err)
}

func (d DeviceError) Unwrap() error { return d.Err }

func (d DeviceError) Status() Status { return StatusIOError }

type NoDisk struct{}

func (NoDisk) Error() string { return "no disk detected" }

func (NoDisk) Status() Status { return StatusNoDisk }

type Unformatted struct {
	Magic uint32
}

func (u Unformatted) Error() string {
	if u.Magic == 0 {
		return "filesystem is not formatted"
	}
	return fmt.Sprintf("filesystem is not formatted (magic %#08x)", u.Magic)
}

func (u Unformatted) Status() Status { return StatusUnformatted }

type CorruptSuperblock struct {
	Reason string
}

func (c CorruptSuperblock) Error() string {
	return "corrupt superblock: " + c.Reason
}

func (c CorruptSuperblock) Status() Status { return StatusGenericError }

// CorruptChain is returned when a chain walk leaves the data area, lands on a
// free block or runs longer than the device.
type CorruptChain struct {
	Head  BlockPtr
	Block BlockPtr
}

func (c CorruptChain) Error() string {
	return fmt.Sprintf("corrupt chain starting at block %d (broken at block %d)", c.Head, c.Block)
}

func (c CorruptChain) Status() Status { return StatusGenericError }

type NotADirectory struct {
	Name string
}

func (n NotADirectory) Error() string {
	return fmt.Sprintf("%s is not a directory", n.Name)
}

func (n NotADirectory) Status() Status { return StatusGenericError }

type IsADirectory struct {
	Name string
}

func (i IsADirectory) Error() string {
	return fmt.Sprintf("%s is a directory", i.Name)
}

func (i IsADirectory) Status() Status { return StatusGenericError }

type DirectoryIsNotEmpty struct {
	Name string
}

func (d DirectoryIsNotEmpty) Error() string {
	return fmt.Sprintf("directory %s is not empty", d.Name)
}

func (d DirectoryIsNotEmpty) Status() Status { return StatusGenericError }

type BufferTooSmall struct {
	Size     int
	Capacity int
}

func (b BufferTooSmall) Error() string {
	return fmt.Sprintf("buffer of %d bytes cannot hold %d bytes", b.Capacity, b.Size)
}

func (b BufferTooSmall) Status() Status { return StatusGenericError }

type UnknownEntryKind struct {
	Kind EntryKind
}

func (u UnknownEntryKind) Error() string {
	return fmt.Sprintf("unknown entry kind %d", u.Kind)
}

func (u UnknownEntryKind) Status() Status { return StatusGenericError }
