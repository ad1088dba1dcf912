package vfs

import (
	"errors"
)

// Bitmap holds one bit per block.
type Bitmap []byte

func NewBitmap(length int) Bitmap {
	return make(Bitmap, NeededMemoryForBitmap(length))
}

func NeededMemoryForBitmap(length int) int {
	return (length + 7) / 8
}

func (b Bitmap) Len() int {
	return len(b) * 8
}

func (b Bitmap) SetBit(position BlockPtr, value byte) error {
	if value != 0 && value != 1 {
		return errors.New("value can be only 0 or 1")
	}

	posInSlice := int(position / 8)
	if posInSlice >= len(b) {
		return OutOfRange{posInSlice, len(b) - 1}
	}

	posInByte := position % 8

	if value == 1 {
		b[posInSlice] |= byte(1) << posInByte
	} else {
		b[posInSlice] &= ^(byte(1) << posInByte)
	}

	return nil
}

func (b Bitmap) GetBit(position BlockPtr) (byte, error) {
	posInSlice := int(position / 8)
	if posInSlice >= len(b) {
		return 0, OutOfRange{posInSlice, len(b) - 1}
	}

	posInByte := position % 8

	return (b[posInSlice] >> posInByte) & 1, nil
}

// Count returns the number of set bits.
func (b Bitmap) Count() int {
	count := 0
	for _, v := range b {
		for ; v != 0; v &= v - 1 {
			count++
		}
	}
	return count
}
