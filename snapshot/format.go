package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	magic         = 0x53525441 // "ATRS"
	formatVersion = 1

	// MaxPayloadSize bounds the encoded size of a single node payload.
	MaxPayloadSize = 64 * 1024 * 1024
)

var (
	// ErrInvalidMagic is returned when a stream is not a snapshot.
	ErrInvalidMagic = errors.New("snapshot: invalid magic number")
	// ErrInvalidVersion is returned for snapshots of an unknown format version.
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	// ErrChecksum is returned when the trailer does not match the content.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrCorrupt is returned when the body is malformed.
	ErrCorrupt = errors.New("snapshot: corrupt body")
	// ErrUnknownCodec is returned when the header names a codec that is
	// neither built in nor configured.
	ErrUnknownCodec = errors.New("snapshot: unknown codec")
	// ErrNoSnapshot is returned by Latest before the first commit.
	ErrNoSnapshot = errors.New("snapshot: nothing committed")
)

type header struct {
	compression Compression
	codec       string
}

func writeHeader(w io.Writer, h header) error {
	if len(h.codec) == 0 || len(h.codec) > 255 {
		return fmt.Errorf("snapshot: codec name length %d", len(h.codec))
	}

	buf := make([]byte, 0, 10+len(h.codec))
	buf = binary.LittleEndian.AppendUint32(buf, magic)
	buf = binary.LittleEndian.AppendUint32(buf, formatVersion)
	buf = append(buf, byte(h.compression), byte(len(h.codec)))
	buf = append(buf, h.codec...)

	_, err := w.Write(buf)

	return err
}

func readHeader(r io.Reader) (header, error) {
	var fixed [10]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return header{}, err
	}

	if m := binary.LittleEndian.Uint32(fixed[0:4]); m != magic {
		return header{}, fmt.Errorf("%w: %x", ErrInvalidMagic, m)
	}

	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != formatVersion {
		return header{}, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}

	h := header{compression: Compression(fixed[8])}
	if !h.compression.Valid() {
		return header{}, fmt.Errorf("%w: compression %d", ErrCorrupt, fixed[8])
	}

	name := make([]byte, fixed[9])
	if _, err := io.ReadFull(r, name); err != nil {
		return header{}, err
	}

	h.codec = string(name)

	return h, nil
}

// encoder writes fixed-width fields and keeps the first error.
type encoder struct {
	w       io.Writer
	scratch [4]byte
	err     error
}

func (e *encoder) uint32(v uint32) {
	if e.err != nil {
		return
	}

	binary.LittleEndian.PutUint32(e.scratch[:], v)
	_, e.err = e.w.Write(e.scratch[:])
}

func (e *encoder) bytes(b []byte) {
	if e.err != nil {
		return
	}

	if len(b) > MaxPayloadSize {
		e.err = fmt.Errorf("snapshot: payload of %d bytes exceeds %d", len(b), MaxPayloadSize)
		return
	}

	e.uint32(uint32(len(b))) //nolint:gosec // bounded by MaxPayloadSize

	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

// decoder mirrors encoder. Short reads inside the body are corruption.
type decoder struct {
	r       io.Reader
	scratch [4]byte
	err     error
}

func (d *decoder) fail(err error) {
	if d.err != nil {
		return
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("%w: truncated", ErrCorrupt)
	}

	d.err = err
}

func (d *decoder) uint32() uint32 {
	if d.err != nil {
		return 0
	}

	if _, err := io.ReadFull(d.r, d.scratch[:]); err != nil {
		d.fail(err)
		return 0
	}

	return binary.LittleEndian.Uint32(d.scratch[:])
}

func (d *decoder) bytes() []byte {
	n := d.uint32()
	if d.err != nil {
		return nil
	}

	if n > MaxPayloadSize {
		d.fail(fmt.Errorf("%w: payload length %d", ErrCorrupt, n))
		return nil
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.fail(err)
		return nil
	}

	return b
}

// end checks that the body has no bytes left.
func (d *decoder) end() {
	if d.err != nil {
		return
	}

	n, err := d.r.Read(d.scratch[:1])

	switch {
	case n > 0:
		d.fail(fmt.Errorf("%w: trailing data", ErrCorrupt))
	case errors.Is(err, io.EOF):
	case err != nil:
		d.fail(err)
	default:
		d.fail(fmt.Errorf("%w: body not terminated", ErrCorrupt))
	}
}
