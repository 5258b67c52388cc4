package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/hupe1980/arenatree"
	"github.com/hupe1980/arenatree/codec"
	"github.com/hupe1980/arenatree/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// sample builds root(alpha(gamma), beta) plus a free root that lives in a
// recycled slot.
func sample(t *testing.T) (*arenatree.Arena[item], map[string]arenatree.Token) {
	t.Helper()

	a, root := arenatree.WithData(item{Name: "root"})
	alpha := a.Append(root, item{Name: "alpha", Weight: 1})
	beta := a.Append(root, item{Name: "beta", Weight: 2})
	gamma := a.Append(alpha, item{Name: "gamma", Weight: 3})

	tmp := a.Append(beta, item{Name: "tmp"})
	a.Uproot(tmp)

	// Reuses the slot of tmp under a new generation.
	loose := a.NewNode(item{Name: "loose"})

	return a, map[string]arenatree.Token{
		"root":  root,
		"alpha": alpha,
		"beta":  beta,
		"gamma": gamma,
		"loose": loose,
	}
}

func preorderNames(a *arenatree.Arena[item], root arenatree.Token) []string {
	var names []string
	for _, v := range a.Values(a.Subtree(root, arenatree.PreOrder)) {
		names = append(names, v.Name)
	}

	return names
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name  string
		opts  []Option
		codec string
	}{
		{"zstd/go-json", nil, "go-json"},
		{"lz4/json", []Option{WithCompression(LZ4), WithCodec(codec.JSON{})}, "json"},
		{"none/go-json", []Option{WithCompression(None)}, "go-json"},
		{"tiny blocks", []Option{WithBlockSize(16)}, "go-json"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a, tokens := sample(t)

			var buf bytes.Buffer

			n, err := Write(&buf, a, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)
			assert.Contains(t, buf.String(), tc.codec)

			// Reading needs no options: codec and compression come from the header.
			b, err := Read[item](&buf)
			require.NoError(t, err)
			require.NoError(t, b.Validate())

			assert.Equal(t, a.Len(), b.Len())
			assert.Equal(t, []string{"root", "alpha", "gamma", "beta"}, preorderNames(b, tokens["root"]))

			// Old tokens resolve in the restored arena.
			for name, tok := range tokens {
				n, ok := b.Get(tok)
				require.True(t, ok, name)
				assert.Equal(t, name, n.Data.Name)
			}

			assert.Equal(t, 3, b.Node(tokens["gamma"]).Data.Weight)
			assert.True(t, b.Node(tokens["loose"]).IsRoot())
		})
	}
}

func TestRoundTripEmpty(t *testing.T) {
	a := arenatree.New[item]()

	var buf bytes.Buffer

	_, err := Write(&buf, a)
	require.NoError(t, err)

	b, err := Read[item](&buf)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
}

func TestRoundTripRandom(t *testing.T) {
	rng := testutil.NewRNG(7)
	parents := rng.Parents(500)

	a := arenatree.New[int]()
	tokens := make([]arenatree.Token, len(parents))

	for i, p := range parents {
		if p < 0 {
			tokens[i] = a.NewNode(i)
			continue
		}

		tokens[i] = a.Append(tokens[p], i)
	}

	var buf bytes.Buffer

	_, err := Write(&buf, a, WithCompression(LZ4))
	require.NoError(t, err)

	b, err := Read[int](&buf)
	require.NoError(t, err)

	for i, tok := range tokens {
		assert.Equal(t, i, b.Node(tok).Data)
		assert.Equal(t, a.Depth(tok), b.Depth(tok))
	}
}

func TestReadRejects(t *testing.T) {
	a, _ := sample(t)

	var buf bytes.Buffer

	_, err := Write(&buf, a, WithCompression(None))
	require.NoError(t, err)

	valid := buf.Bytes()

	mutate := func(fn func([]byte) []byte) []byte {
		return fn(bytes.Clone(valid))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "magic",
			data: mutate(func(b []byte) []byte { b[0] ^= 0xFF; return b }),
			want: ErrInvalidMagic,
		},
		{
			name: "version",
			data: mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:], 99); return b }),
			want: ErrInvalidVersion,
		},
		{
			name: "trailer",
			data: mutate(func(b []byte) []byte { b[len(b)-1] ^= 0x01; return b }),
			want: ErrChecksum,
		},
		{
			name: "payload",
			data: mutate(func(b []byte) []byte {
				i := bytes.Index(b, []byte("alpha"))
				b[i] = 'A'
				return b
			}),
			want: ErrChecksum,
		},
		{
			name: "truncated",
			data: valid[:len(valid)-10],
			want: ErrCorrupt,
		},
		{
			name: "missing trailer",
			data: valid[:len(valid)-4],
			want: ErrCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read[item](bytes.NewReader(tt.data))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

type upperCodec struct{ codec.JSON }

func (upperCodec) Name() string { return "custom" }

func TestCustomCodec(t *testing.T) {
	a, _ := sample(t)

	var buf bytes.Buffer

	_, err := Write(&buf, a, WithCodec(upperCodec{}))
	require.NoError(t, err)

	data := buf.Bytes()

	_, err = Read[item](bytes.NewReader(data))
	require.ErrorIs(t, err, ErrUnknownCodec)

	b, err := Read[item](bytes.NewReader(data), WithCodec(upperCodec{}))
	require.NoError(t, err)
	assert.Equal(t, a.Len(), b.Len())
}

type registeredCodec struct{ codec.GoJSON }

func (registeredCodec) Name() string { return "registered-go-json" }

func TestRegisteredCodec(t *testing.T) {
	if _, ok := codec.Lookup(registeredCodec{}.Name()); !ok {
		require.NoError(t, codec.Register(registeredCodec{}))
	}

	a, tokens := sample(t)

	var buf bytes.Buffer

	_, err := Write(&buf, a, WithCodec(registeredCodec{}))
	require.NoError(t, err)

	b, err := Read[item](&buf)
	require.NoError(t, err)
	assert.Equal(t, preorderNames(a, tokens["root"]), preorderNames(b, tokens["root"]))
}

func TestRawCodec(t *testing.T) {
	a, root := arenatree.WithData("root")
	leaf := a.Append(root, `{"not":"json"}`)
	a.Append(leaf, "")

	var buf bytes.Buffer

	_, err := Write(&buf, a, WithCodec(codec.Raw{}), WithCompression(None))
	require.NoError(t, err)

	b, err := Read[string](&buf)
	require.NoError(t, err)

	var got []string
	for _, v := range b.Values(b.Subtree(root, arenatree.PreOrder)) {
		got = append(got, v)
	}

	assert.Equal(t, []string{"root", `{"not":"json"}`, ""}, got)

	items, _ := sample(t)

	_, err = Write(&bytes.Buffer{}, items, WithCodec(codec.Raw{}))
	require.ErrorIs(t, err, codec.ErrUnsupported)
}

type failingCodec struct{ codec.GoJSON }

func (failingCodec) Marshal(any) ([]byte, error) { return nil, errors.New("boom") }

func TestWriteCodecError(t *testing.T) {
	a, _ := sample(t)

	_, err := Write(&bytes.Buffer{}, a, WithCodec(failingCodec{}))
	require.ErrorContains(t, err, "boom")
}

func TestWithArenaOptions(t *testing.T) {
	a, _ := sample(t)

	var buf bytes.Buffer

	_, err := Write(&buf, a)
	require.NoError(t, err)

	mc := &arenatree.BasicMetricsCollector{}

	b, err := Read[item](&buf, WithArenaOptions(arenatree.WithCapacity(64), arenatree.WithMetricsCollector(mc)))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, b.Capacity()-b.Len(), 64)

	b.NewNode(item{Name: "new"})
	assert.Equal(t, int64(1), mc.GetStats().AllocCount)
}
