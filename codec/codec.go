// Package codec turns node payloads into bytes for snapshots.
//
// A snapshot header names the codec that wrote its payloads, and readers
// resolve that name through Lookup. Custom codecs become readable by name
// once registered.
package codec

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ErrUnsupported is returned by codecs that cannot handle a payload type.
var ErrUnsupported = errors.New("codec: unsupported payload type")

var (
	mu       sync.RWMutex
	registry = map[string]Codec{}
)

func init() {
	for _, c := range []Codec{JSON{}, GoJSON{}, Raw{}} {
		registry[c.Name()] = c
	}
}

// Register makes c resolvable by its name. Registering a second codec under
// a taken name is an error.
func Register(c Codec) error {
	mu.Lock()
	defer mu.Unlock()

	name := c.Name()
	if name == "" {
		return fmt.Errorf("codec: empty name")
	}

	if _, ok := registry[name]; ok {
		return fmt.Errorf("codec: %q already registered", name)
	}

	registry[name] = c

	return nil
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()

	c, ok := registry[name]

	return c, ok
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Default is the codec used for new snapshots unless another is configured.
var Default Codec = GoJSON{}
