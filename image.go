package arenatree

import (
	"fmt"

	"github.com/hupe1980/arenatree/internal/arena"
)

// Image is the complete slot state of an arena as plain data.
//
// Links hold slot indices only; their generations are the current
// generations of the slots they name.
type Image[T any] struct {
	// Generations holds the generation of every slot, index 0 included.
	Generations []uint32
	// Records holds the occupied slots in index order.
	Records []Record[T]
}

// Record is one node of an Image.
type Record[T any] struct {
	Index           uint32
	Parent          uint32
	PreviousSibling uint32
	NextSibling     uint32
	FirstChild      uint32
	Data            T
}

// Image exports the arena. Tokens issued by a stay valid in the arena
// rebuilt by Restore.
func (a *Arena[T]) Image() *Image[T] {
	img := &Image[T]{
		Generations: a.slots.Generations(),
		Records:     make([]Record[T], 0, a.Len()),
	}

	for _, n := range a.slots.All() {
		img.Records = append(img.Records, Record[T]{
			Index:           n.token.index,
			Parent:          n.parent.index,
			PreviousSibling: n.prev.index,
			NextSibling:     n.next.index,
			FirstChild:      n.firstChild.index,
			Data:            n.Data,
		})
	}

	return img
}

// Restore rebuilds an arena from img and validates it.
func Restore[T any](img *Image[T], opts ...Option) (*Arena[T], error) {
	gens := img.Generations

	token := func(idx uint32) (Token, error) {
		if idx == 0 {
			return Token{}, nil
		}

		if int(idx) >= len(gens) {
			return Token{}, fmt.Errorf("%w: link %d out of range", arena.ErrInvalidState, idx)
		}

		return Token{index: idx, gen: gens[idx]}, nil
	}

	entries := make([]arena.Entry[Node[T]], 0, len(img.Records))

	for _, rec := range img.Records {
		var (
			n   = Node[T]{Data: rec.Data}
			err error
		)

		if n.token, err = token(rec.Index); err != nil {
			return nil, err
		}

		if n.token.IsZero() {
			return nil, fmt.Errorf("%w: record for slot 0", arena.ErrInvalidState)
		}

		if n.parent, err = token(rec.Parent); err != nil {
			return nil, err
		}

		if n.prev, err = token(rec.PreviousSibling); err != nil {
			return nil, err
		}

		if n.next, err = token(rec.NextSibling); err != nil {
			return nil, err
		}

		if n.firstChild, err = token(rec.FirstChild); err != nil {
			return nil, err
		}

		entries = append(entries, arena.Entry[Node[T]]{Ref: n.token.ref(), Value: n})
	}

	slots, err := arena.Restore(gens, entries)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)

	a := &Arena[T]{
		slots:   slots,
		opts:    o,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
	a.slots.OnGrow(a.onGrow)

	if err := a.Validate(); err != nil {
		return nil, err
	}

	a.Reserve(o.capacity)

	return a, nil
}
