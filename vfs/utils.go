package vfs

// BlocksForSize returns how many blocks a payload of size bytes occupies.
func BlocksForSize(size int) int {
	return (size + BlockSize - 1) / BlockSize
}

// BlockOffset returns the byte offset of block on the device.
func BlockOffset(block BlockPtr) int64 {
	return int64(block) * BlockSize
}

// CToGoString converts a NUL padded byte field into a string.
func CToGoString(data []byte) string {
	n := -1
	for i, b := range data {
		if b == 0 {
			break
		}
		n = i
	}
	return string(data[:n+1])
}

func StringNameToBytes(name string) [DirectoryEntryNameLength]byte {
	var nameBytes [DirectoryEntryNameLength]byte
	copy(nameBytes[:], name)
	return nameBytes
}
