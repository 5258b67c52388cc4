package snapshot

import (
	"fmt"

	"github.com/hupe1980/arenatree"
	"github.com/hupe1980/arenatree/codec"
	"github.com/hupe1980/arenatree/internal/compress"
)

// Compression selects the block compression of a snapshot body.
type Compression = compress.Type

const (
	// None stores the body uncompressed.
	None = compress.None
	// LZ4 favors speed.
	LZ4 = compress.LZ4
	// ZSTD favors size.
	ZSTD = compress.ZSTD
)

type options struct {
	codec       codec.Codec
	compression Compression
	blockSize   int
	prefix      string
	logger      *arenatree.Logger
	metrics     arenatree.MetricsCollector
	arenaOpts   []arenatree.Option
}

// Option configures reading and writing snapshots.
type Option func(*options)

// WithCodec sets the payload codec for writing. When reading, it also
// decodes snapshots whose header names this codec.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the body compression. The default is ZSTD.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed size of body blocks.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithKeyPrefix sets the prefix of the blob names Commit writes.
// The default is "snapshots/".
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger sets the logger for Save, Load, Commit and Latest.
//
// If nil is passed, logging is disabled.
func WithLogger(l *arenatree.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = arenatree.NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector records snapshot sizes and durations.
//
// If nil is passed, arenatree.NoopMetricsCollector is used.
func WithMetricsCollector(mc arenatree.MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = arenatree.NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithArenaOptions passes opts to the arena rebuilt by a read.
func WithArenaOptions(opts ...arenatree.Option) Option {
	return func(o *options) {
		o.arenaOpts = append(o.arenaOpts, opts...)
	}
}

func applyOptions(opts []Option) options {
	o := options{
		codec:       codec.Default,
		compression: ZSTD,
		blockSize:   compress.DefaultBlockSize,
		prefix:      "snapshots/",
		logger:      arenatree.NoopLogger(),
		metrics:     arenatree.NoopMetricsCollector{},
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// codecFor picks the codec named in a header.
func (o *options) codecFor(name string) (codec.Codec, error) {
	if o.codec.Name() == name {
		return o.codec, nil
	}

	if c, ok := codec.Lookup(name); ok {
		return c, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}
