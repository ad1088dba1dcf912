package vfsapi

import (
	"os"

	"github.com/PapiCZ/foxfs/vfs"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// Stat describes the entry name of the current directory.
func Stat(fs *vfs.Filesystem, name string) (FileInfo, error) {
	entry, err := fs.Find(name)
	if err != nil {
		return FileInfo{}, err
	}

	blocks, err := fs.ChainBlocks(entry.StartBlock())
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		name:   entry.NameString(),
		size:   int(entry.Size),
		isDir:  entry.IsDir(),
		blocks: blocks,
	}, nil
}

// Exists reports whether the current directory holds an entry called name.
func Exists(fs *vfs.Filesystem, name string) (bool, error) {
	_, err := fs.Find(name)
	if err == nil {
		return true, nil
	}
	if vfs.StatusOf(err) == vfs.StatusNotFound {
		return false, nil
	}
	return false, err
}

// ReadFile returns the whole content of the file name.
func ReadFile(fs *vfs.Filesystem, name string) ([]byte, error) {
	entry, err := fs.Find(name)
	if err != nil {
		return nil, err
	}

	data := make([]byte, entry.Size)
	n, err := fs.Read(name, data)
	if err != nil {
		return nil, err
	}

	return data[:n], nil
}

// Digest returns the BLAKE3-256 sum of the file name.
func Digest(fs *vfs.Filesystem, name string) ([32]byte, error) {
	data, err := ReadFile(fs, name)
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(data), nil
}

// Import copies the host file hostPath into the file name, creating it when
// it does not exist yet.
func Import(fs *vfs.Filesystem, hostPath string, name string) error {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return errors.Wrap(err, "read host file")
	}

	exists, err := Exists(fs, name)
	if err != nil {
		return err
	}
	if !exists {
		err = fs.Create(name, vfs.KindFile)
		if err != nil {
			return err
		}
	}

	return fs.Write(name, data)
}

// Export copies the file name to hostPath on the host.
func Export(fs *vfs.Filesystem, name string, hostPath string) error {
	data, err := ReadFile(fs, name)
	if err != nil {
		return err
	}

	err = os.WriteFile(hostPath, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write host file")
	}

	return nil
}
