package hash

import (
	"hash"
	"io"

	"github.com/klauspost/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Writer forwards writes to an underlying writer and checksums every byte
// that was written successfully.
type Writer struct {
	w io.Writer
	h hash.Hash32
	n int64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: NewCRC32C()}
}

func (cw *Writer) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.h.Write(p[:n])
	cw.n += int64(n)

	return n, err
}

// Sum32 returns the checksum of everything written so far.
func (cw *Writer) Sum32() uint32 { return cw.h.Sum32() }

// Count returns the number of bytes written so far.
func (cw *Writer) Count() int64 { return cw.n }

// Reader forwards reads from an underlying reader and checksums every byte
// it returns.
type Reader struct {
	r io.Reader
	h hash.Hash32
	n int64
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, h: NewCRC32C()}
}

func (cr *Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.h.Write(p[:n])
	cr.n += int64(n)

	return n, err
}

// Sum32 returns the checksum of everything read so far.
func (cr *Reader) Sum32() uint32 { return cr.h.Sum32() }

// Count returns the number of bytes read so far.
func (cr *Reader) Count() int64 { return cr.n }
