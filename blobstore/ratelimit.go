package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedStore throttles the bytes moved through an inner Store.
type RateLimitedStore struct {
	inner   Store
	limiter *rate.Limiter
}

// NewRateLimitedStore limits inner to bytesPerSec. Bursts up to one
// second's worth of bytes are allowed; a single larger blob waits for
// several bursts. A bytesPerSec <= 0 disables the limit.
func NewRateLimitedStore(inner Store, bytesPerSec int) *RateLimitedStore {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}

	return &RateLimitedStore{
		inner:   inner,
		limiter: limiter,
	}
}

func (s *RateLimitedStore) wait(ctx context.Context, n int) error {
	if s.limiter.Limit() == rate.Inf {
		return ctx.Err()
	}

	burst := s.limiter.Burst()

	for n > 0 {
		chunk := min(n, burst)
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}

		n -= chunk
	}

	return nil
}

// Put waits for len(data) tokens, then writes.
func (s *RateLimitedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}

	return s.inner.Put(ctx, name, data)
}

// PutIfAbsent waits for len(data) tokens, then writes conditionally.
func (s *RateLimitedStore) PutIfAbsent(ctx context.Context, name string, data []byte) error {
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}

	return PutIfAbsent(ctx, s.inner, name, data)
}

// Get reads, then charges the bytes read before returning them.
func (s *RateLimitedStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.wait(ctx, len(data)); err != nil {
		return nil, err
	}

	return data, nil
}

// Delete passes through.
func (s *RateLimitedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List passes through.
func (s *RateLimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
