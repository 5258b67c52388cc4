package blobstore

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Mirror writes every blob to all of its stores and reads from the first
// store that has it.
type Mirror struct {
	stores []Store
}

// NewMirror creates a Mirror. The first store is the primary for List.
func NewMirror(primary Store, replicas ...Store) *Mirror {
	return &Mirror{stores: append([]Store{primary}, replicas...)}
}

// Put writes to all stores in parallel and fails if any write fails.
func (m *Mirror) Put(ctx context.Context, name string, data []byte) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.stores {
		g.Go(func() error {
			return s.Put(ctx, name, data)
		})
	}

	return g.Wait()
}

// PutIfAbsent writes conditionally to the primary and, once that succeeds,
// copies the blob to the replicas.
func (m *Mirror) PutIfAbsent(ctx context.Context, name string, data []byte) error {
	if err := PutIfAbsent(ctx, m.stores[0], name, data); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.stores[1:] {
		g.Go(func() error {
			return s.Put(ctx, name, data)
		})
	}

	return g.Wait()
}

// Get tries each store in order and skips stores that miss the blob.
func (m *Mirror) Get(ctx context.Context, name string) ([]byte, error) {
	var errs []error

	for _, s := range m.stores {
		data, err := s.Get(ctx, name)
		if err == nil {
			return data, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		errs = append(errs, err)
	}

	return nil, errors.Join(errs...)
}

// Delete removes the blob from all stores in parallel.
func (m *Mirror) Delete(ctx context.Context, name string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.stores {
		g.Go(func() error {
			return s.Delete(ctx, name)
		})
	}

	return g.Wait()
}

// List lists the primary store.
func (m *Mirror) List(ctx context.Context, prefix string) ([]string, error) {
	return m.stores[0].List(ctx, prefix)
}
