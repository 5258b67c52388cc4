package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/arenatree"
	"github.com/hupe1980/arenatree/internal/arena"
	"github.com/hupe1980/arenatree/internal/compress"
	"github.com/hupe1980/arenatree/internal/conv"
	"github.com/hupe1980/arenatree/internal/hash"
)

// Write encodes a to w and returns the number of bytes written.
func Write[T any](w io.Writer, a *arenatree.Arena[T], opts ...Option) (int64, error) {
	o := applyOptions(opts)

	img := a.Image()
	hw := hash.NewWriter(w)

	if err := writeHeader(hw, header{compression: o.compression, codec: o.codec.Name()}); err != nil {
		return hw.Count(), err
	}

	cw, err := compress.NewWriter(hw, o.compression, o.blockSize)
	if err != nil {
		return hw.Count(), err
	}

	enc := &encoder{w: cw}

	enc.uint32(conv.MustUint32(len(img.Generations)))
	for _, g := range img.Generations {
		enc.uint32(g)
	}

	enc.uint32(conv.MustUint32(len(img.Records)))

	for _, rec := range img.Records {
		payload, err := o.codec.Marshal(rec.Data)
		if err != nil {
			return hw.Count(), fmt.Errorf("snapshot: encode node %d: %w", rec.Index, err)
		}

		enc.uint32(rec.Index)
		enc.uint32(rec.Parent)
		enc.uint32(rec.PreviousSibling)
		enc.uint32(rec.NextSibling)
		enc.uint32(rec.FirstChild)
		enc.bytes(payload)
	}

	if enc.err != nil {
		return hw.Count(), enc.err
	}

	if err := cw.Close(); err != nil {
		return hw.Count(), err
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], hw.Sum32())

	n, err := w.Write(trailer[:])

	return hw.Count() + int64(n), err
}

// Read decodes a snapshot written by Write and rebuilds the arena.
func Read[T any](r io.Reader, opts ...Option) (*arenatree.Arena[T], error) {
	o := applyOptions(opts)

	hr := hash.NewReader(r)

	h, err := readHeader(hr)
	if err != nil {
		return nil, err
	}

	c, err := o.codecFor(h.codec)
	if err != nil {
		return nil, err
	}

	cr, err := compress.NewReader(hr, h.compression)
	if err != nil {
		return nil, err
	}

	dec := &decoder{r: cr}

	numGens := dec.uint32()
	if dec.err == nil && (numGens == 0 || numGens > arena.MaxSlots+1) {
		dec.fail(fmt.Errorf("%w: %d generations", ErrCorrupt, numGens))
	}

	img := &arenatree.Image[T]{
		Generations: make([]uint32, 0, min(numGens, 1<<16)),
	}

	for i := uint32(0); i < numGens && dec.err == nil; i++ {
		img.Generations = append(img.Generations, dec.uint32())
	}

	numRecords := dec.uint32()
	if dec.err == nil && numRecords >= numGens {
		dec.fail(fmt.Errorf("%w: %d records for %d slots", ErrCorrupt, numRecords, numGens-1))
	}

	img.Records = make([]arenatree.Record[T], 0, min(numRecords, 1<<16))

	for i := uint32(0); i < numRecords && dec.err == nil; i++ {
		rec := arenatree.Record[T]{
			Index:           dec.uint32(),
			Parent:          dec.uint32(),
			PreviousSibling: dec.uint32(),
			NextSibling:     dec.uint32(),
			FirstChild:      dec.uint32(),
		}

		payload := dec.bytes()
		if dec.err != nil {
			break
		}

		if err := c.Unmarshal(payload, &rec.Data); err != nil {
			return nil, fmt.Errorf("snapshot: decode node %d: %w", rec.Index, err)
		}

		img.Records = append(img.Records, rec)
	}

	dec.end()

	if dec.err != nil {
		return nil, dec.err
	}

	want := hr.Sum32()

	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, fmt.Errorf("%w: missing trailer", ErrCorrupt)
	}

	if got := binary.LittleEndian.Uint32(trailer[:]); got != want {
		return nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksum, got, want)
	}

	return arenatree.Restore(img, o.arenaOpts...)
}
