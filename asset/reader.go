package asset

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4"
)

// Open opens the bundle from r. It checks the magic before trusting
// anything else and returns ErrFileFormat when the file is not a
// bundle.
func Open(r io.ReaderAt) (*Bundle, error) {
	head := make([]byte, MagicLength)
	if num, err := r.ReadAt(head, 0); err != nil {
		return nil, err
	} else if num < MagicLength || !bytes.Equal(head, magic[:]) {
		return nil, ErrFileFormat
	}

	headerSizeBytes := make([]byte, HeaderSizeNumberLength)
	if num, err := r.ReadAt(headerSizeBytes, MagicLength); err != nil {
		return nil, err
	} else if num < HeaderSizeNumberLength {
		return nil, ErrFileFormat
	}

	headerSize, err := binaryToInt64(headerSizeBytes)
	if err != nil || headerSize <= 0 {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if num, err := r.ReadAt(headerBytes, MagicLength+HeaderSizeNumberLength); err != nil {
		return nil, err
	} else if int64(num) < headerSize {
		return nil, ErrFileFormat
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, ErrFileFormat
	}

	return &Bundle{
		reader:    r,
		header:    header,
		dataStart: MagicLength + HeaderSizeNumberLength + headerSize,
	}, nil
}

// Bundle provides concurrent access to a shader bundle. Each entry is
// decompressed independently from its own region of the file.
type Bundle struct {
	reader    io.ReaderAt
	header    Header
	dataStart int64
}

// Index returns the bundle index in file order.
func (b *Bundle) Index() []IndexEntry {
	index := make([]IndexEntry, len(b.header.Index))
	copy(index, b.header.Index)
	return index
}

// Version returns the bundle format version it was built with.
func (b *Bundle) Version() int64 {
	return b.header.Version
}

// Open returns a reader that decompresses the named shader on the fly.
func (b *Bundle) Open(name string) (io.Reader, error) {
	entry, err := b.find(name)
	if err != nil {
		return nil, err
	}
	section := io.NewSectionReader(b.reader, b.dataStart+entry.Offset, entry.CompressedSize)
	return lz4.NewReader(section), nil
}

// ReadAll returns the entire decompressed contents of a shader with a
// given name.
func (b *Bundle) ReadAll(name string) ([]byte, error) {
	entry, err := b.find(name)
	if err != nil {
		return nil, err
	}

	reader, err := b.Open(name)
	if err != nil {
		return nil, err
	}

	data := make([]byte, entry.Size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (b *Bundle) find(name string) (IndexEntry, error) {
	for _, entry := range b.header.Index {
		if entry.Name == name {
			return entry, nil
		}
	}
	return IndexEntry{}, ErrNotFound
}
