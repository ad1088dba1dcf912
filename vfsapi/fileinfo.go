package vfsapi

import "github.com/PapiCZ/foxfs/vfs"

type FileInfo struct {
	name   string
	size   int
	isDir  bool
	blocks []vfs.BlockPtr
}

func (fi FileInfo) Name() string {
	return fi.name
}

func (fi FileInfo) Size() int {
	return fi.size
}

func (fi FileInfo) IsDir() bool {
	return fi.isDir
}

// Blocks returns the chain backing the entry, in order.
func (fi FileInfo) Blocks() []vfs.BlockPtr {
	return fi.blocks
}
