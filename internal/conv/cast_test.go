package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToUint32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := ToUint32(0)
		assert.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("valid positive", func(t *testing.T) {
		got, err := ToUint32(123)
		assert.NoError(t, err)
		assert.Equal(t, uint32(123), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := ToUint32(-1)
		assert.Error(t, err)
	})

	t.Run("valid max uint32", func(t *testing.T) {
		got, err := ToUint32(uint64(math.MaxUint32))
		assert.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), got)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := ToUint32(uint64(math.MaxUint32) + 1)
		assert.Error(t, err)
	})
}

func TestMustUint32(t *testing.T) {
	assert.Equal(t, uint32(9), MustUint32(9))
	assert.Panics(t, func() { MustUint32(-1) })
}
