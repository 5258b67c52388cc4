package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type child struct {
	K string `json:"k"`
	V int64  `json:"v"`
}

type payload struct {
	Name     string            `json:"name"`
	Tags     []string          `json:"tags"`
	Attrs    map[string]string `json:"attrs"`
	Children []child           `json:"children"`
}

func samplePayload() payload {
	return payload{
		Name:     "root",
		Tags:     []string{"a", "b"},
		Attrs:    map[string]string{"x": "1"},
		Children: []child{{K: "c", V: 3}},
	}
}

type namedCodec struct {
	JSON
	name string
}

func (c namedCodec) Name() string { return c.name }

func TestRegistry(t *testing.T) {
	for _, name := range []string{"go-json", "json", "raw"} {
		c, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := Lookup("msgpack")
	assert.False(t, ok)

	require.ErrorContains(t, Register(namedCodec{name: "json"}), "already registered")
	require.ErrorContains(t, Register(namedCodec{}), "empty name")

	if _, ok := Lookup("test-json"); !ok {
		require.NoError(t, Register(namedCodec{name: "test-json"}))
	}

	assert.Contains(t, Names(), "test-json")
	assert.IsNonDecreasing(t, Names())
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(samplePayload())
			require.NoError(t, err)

			var got payload
			require.NoError(t, c.Unmarshal(b, &got))
			assert.Equal(t, samplePayload(), got)
		})
	}
}

func TestInterchangeable(t *testing.T) {
	b, err := GoJSON{}.Marshal(samplePayload())
	require.NoError(t, err)

	var got payload
	require.NoError(t, JSON{}.Unmarshal(b, &got))
	assert.Equal(t, samplePayload(), got)
}

func TestRaw(t *testing.T) {
	var c Raw

	b, err := c.Marshal("héllo")
	require.NoError(t, err)
	assert.Equal(t, []byte("héllo"), b)

	var s string
	require.NoError(t, c.Unmarshal(b, &s))
	assert.Equal(t, "héllo", s)

	src := []byte{0, 1, 2}
	b, err = c.Marshal(&src)
	require.NoError(t, err)

	dst := []byte{9, 9, 9, 9}
	require.NoError(t, c.Unmarshal(b, &dst))
	assert.Equal(t, []byte{0, 1, 2}, dst)

	_, err = c.Marshal(42)
	require.ErrorIs(t, err, ErrUnsupported)

	var n int
	require.ErrorIs(t, c.Unmarshal(b, &n), ErrUnsupported)
}

func benchmarkMarshal(b *testing.B, c Codec) {
	b.ReportAllocs()

	v := samplePayload()
	for b.Loop() {
		if _, err := c.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkJSONMarshal(b *testing.B)   { benchmarkMarshal(b, JSON{}) }
func BenchmarkGoJSONMarshal(b *testing.B) { benchmarkMarshal(b, GoJSON{}) }
