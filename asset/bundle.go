// Package asset implements an lz4 backed bundle format for compiled
// SPIR-V shaders. The bundle itself is not compressed, every entry is
// compressed individually so any single shader can be located through
// the index and decompressed on its own, without touching the rest of
// the file. The reader side is safe for concurrent use.
package asset

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a shader bundle")
	ErrNotFound   = errors.New("no entry with that name in the bundle")
)

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 16
)

var magic = [MagicLength]byte{'S', 'P', 'K', 0}

// Stage tells which pipeline stage a bundled shader feeds.
type Stage int

// Bundled shader stages
const (
	StageVertex Stage = iota
	StageFragment
)

// IndexEntry is info for one shader in the bundle index.
type IndexEntry struct {
	Name           string
	Stage          Stage
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the bundle header, gob-encoded right after the magic.
type Header struct {
	CreatedAt int64
	Version   int64
	Index     []IndexEntry
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(target interface{}, data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	return dec.Decode(target)
}

func int64ToBinary(num int64) []byte {
	numBytes := make([]byte, HeaderSizeNumberLength)
	binary.PutVarint(numBytes, num)
	return numBytes
}

func binaryToInt64(bts []byte) (int64, error) {
	num, err := binary.ReadVarint(bytes.NewReader(bts))
	if err != nil {
		return 0, err
	}
	return num, nil
}
