// Package compress frames a byte stream into independently compressed blocks.
//
// Stream layout: a sequence of blocks, each
//
//	[UncompressedSize uint32][CompressedSize uint32][Data...]
//
// CompressedSize == 0 stores the block raw. A block header with
// UncompressedSize == 0 terminates the stream, so framed data can be followed
// by further bytes (a checksum trailer) in the same file.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None stores blocks raw.
	None Type = 0
	// LZ4 compresses blocks with LZ4 (fast).
	LZ4 Type = 1
	// ZSTD compresses blocks with Zstandard (better ratio).
	ZSTD Type = 2
)

// String returns the algorithm name.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Valid reports whether t names a supported algorithm.
func (t Type) Valid() bool { return t <= ZSTD }

const (
	// DefaultBlockSize is the uncompressed size of a full block.
	DefaultBlockSize = 256 * 1024
	// MaxBlockSize bounds the uncompressed size a reader accepts.
	MaxBlockSize = 64 * 1024 * 1024

	blockHeaderSize = 8
)

var (
	// ErrCorruptBlock is returned when a block cannot be decoded.
	ErrCorruptBlock = errors.New("compress: corrupt block")
	// ErrUnsupported is returned for an unknown compression type.
	ErrUnsupported = errors.New("compress: unsupported type")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}

	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))

	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}

	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBlockSize))

	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressBlock returns the compressed form of data, or nil when it does
// not shrink by at least 10%.
func compressBlock(data []byte, t Type) ([]byte, error) {
	var compressed []byte

	switch t {
	case None:
		return nil, nil
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))

		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}

		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)

		compressed = enc.EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, t)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return nil, nil
	}

	return compressed, nil
}

func decompressBlock(data []byte, size uint32, t Type) ([]byte, error) {
	result := make([]byte, size)

	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(data, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}

		if uint32(n) != size { //nolint:gosec // n <= size
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}

		return result, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(data, result[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}

		if uint32(len(decoded)) != size { //nolint:gosec // bounded by MaxBlockSize
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}

		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, t)
	}
}

// Writer buffers writes and emits them as compressed blocks.
// Close must be called to flush the last block and write the terminator;
// it does not close the underlying writer.
type Writer struct {
	w         io.Writer
	t         Type
	blockSize int
	buf       []byte
	written   int64
	closed    bool
}

// NewWriter creates a block writer. A blockSize <= 0 selects DefaultBlockSize.
func NewWriter(w io.Writer, t Type, blockSize int) (*Writer, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, t)
	}

	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	blockSize = min(blockSize, MaxBlockSize)

	return &Writer{
		w:         w,
		t:         t,
		blockSize: blockSize,
		buf:       make([]byte, 0, blockSize),
	}, nil
}

// Write buffers p, flushing full blocks as needed.
func (c *Writer) Write(p []byte) (int, error) {
	if c.closed {
		return 0, errors.New("compress: write after close")
	}

	total := 0
	for len(p) > 0 {
		if len(c.buf) == c.blockSize {
			if err := c.flushBlock(); err != nil {
				return total, err
			}
		}

		n := min(len(p), c.blockSize-len(c.buf))
		c.buf = append(c.buf, p[:n]...)
		total += n
		p = p[n:]
	}

	return total, nil
}

func (c *Writer) flushBlock() error {
	if len(c.buf) == 0 {
		return nil
	}

	compressed, err := compressBlock(c.buf, c.t)
	if err != nil {
		return err
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(c.buf)))      //nolint:gosec // bounded by MaxBlockSize
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed))) //nolint:gosec // bounded by MaxBlockSize

	payload := compressed
	if payload == nil {
		payload = c.buf
	}

	if err := c.write(hdr[:]); err != nil {
		return err
	}

	if err := c.write(payload); err != nil {
		return err
	}

	c.buf = c.buf[:0]

	return nil
}

func (c *Writer) write(p []byte) error {
	n, err := c.w.Write(p)
	c.written += int64(n)

	return err
}

// Close flushes the pending block and writes the stream terminator.
func (c *Writer) Close() error {
	if c.closed {
		return nil
	}

	if err := c.flushBlock(); err != nil {
		return err
	}

	c.closed = true

	var end [blockHeaderSize]byte

	return c.write(end[:])
}

// BytesWritten returns the number of framed bytes written so far.
func (c *Writer) BytesWritten() int64 {
	return c.written
}

// Reader decodes a block stream produced by Writer. It stops at the
// terminator and never reads past it.
type Reader struct {
	r     io.Reader
	t     Type
	block []byte
	pos   int
	done  bool
}

// NewReader creates a block reader over r.
func NewReader(r io.Reader, t Type) (*Reader, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, t)
	}

	return &Reader{r: r, t: t}, nil
}

// Read implements io.Reader.
func (c *Reader) Read(p []byte) (int, error) {
	for c.pos == len(c.block) {
		if c.done {
			return 0, io.EOF
		}

		if err := c.readBlock(); err != nil {
			return 0, err
		}
	}

	n := copy(p, c.block[c.pos:])
	c.pos += n

	return n, nil
}

func (c *Reader) readBlock() error {
	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		return fmt.Errorf("%w: header: %w", ErrCorruptBlock, unexpectedEOF(err))
	}

	size := binary.LittleEndian.Uint32(hdr[0:])
	compressedSize := binary.LittleEndian.Uint32(hdr[4:])

	if size == 0 {
		c.done = true
		c.block, c.pos = nil, 0

		return nil
	}

	if size > MaxBlockSize || compressedSize > MaxBlockSize {
		return fmt.Errorf("%w: block of %d bytes exceeds limit", ErrCorruptBlock, max(size, compressedSize))
	}

	if compressedSize == 0 {
		raw := make([]byte, size)
		if _, err := io.ReadFull(c.r, raw); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptBlock, unexpectedEOF(err))
		}

		c.block, c.pos = raw, 0

		return nil
	}

	data := make([]byte, compressedSize)
	if _, err := io.ReadFull(c.r, data); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBlock, unexpectedEOF(err))
	}

	block, err := decompressBlock(data, size, c.t)
	if err != nil {
		return err
	}

	c.block, c.pos = block, 0

	return nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}
