package conv

import (
	"fmt"
	"math"
)

// Integer is the set of integer kinds accepted by the conversions.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// ToUint32 converts v to uint32, rejecting negative and too large values.
func ToUint32[I Integer](v I) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// MustUint32 is ToUint32 for callers that have already bounded v.
// It panics on overflow.
func MustUint32[I Integer](v I) uint32 {
	u, err := ToUint32(v)
	if err != nil {
		panic(err)
	}
	return u
}
