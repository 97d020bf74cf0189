package asset

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/pierrec/lz4"
)

// NewBuilder creates a Builder for a bundle with the given format
// version.
func NewBuilder(version int64) *Builder {
	return &Builder{version: version}
}

// Builder collects shaders and writes them out as one bundle.
// Bundles are versioned and cannot be appended to after WriteTo.
// Add compresses eagerly, so WriteTo only has to lay the pieces out.
// Safe to use concurrently from different goroutines.
type Builder struct {
	version int64

	mutex   sync.Mutex
	entries []pendingEntry
}

type pendingEntry struct {
	name       string
	stage      Stage
	size       int64
	compressed []byte
}

// Add appends a compiled shader to the builder under a given name.
// Blocks until lz4 finishes compressing it.
func (b *Builder) Add(name string, stage Stage, data []byte) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.entries = append(b.entries, pendingEntry{
		name:       name,
		stage:      stage,
		size:       int64(len(data)),
		compressed: compressed.Bytes(),
	})
	return nil
}

// WriteTo bundles and writes all of the shaders added to the Builder
// into a bundle that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := Header{
		CreatedAt: time.Now().Unix(),
		Version:   b.version,
		Index:     make([]IndexEntry, len(b.entries)),
	}

	// Offsets are relative to the start of the data section, which
	// keeps the index independent of its own encoded size.
	var offset int64
	for i, entry := range b.entries {
		header.Index[i] = IndexEntry{
			Name:           entry.name,
			Stage:          entry.stage,
			Offset:         offset,
			Size:           entry.size,
			CompressedSize: int64(len(entry.compressed)),
		}
		offset += int64(len(entry.compressed))
	}

	final, err := gobEncode(header)
	if err != nil {
		return 0, err
	}

	var written int64
	n, err := w.Write(magic[:])
	written += int64(n)
	if err != nil {
		return written, err
	}
	n, err = w.Write(int64ToBinary(int64(len(final))))
	written += int64(n)
	if err != nil {
		return written, err
	}
	n, err = w.Write(final)
	written += int64(n)
	if err != nil {
		return written, err
	}
	for _, entry := range b.entries {
		n, err = w.Write(entry.compressed)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	b.entries = b.entries[:0]
	return written, nil
}
