package codec

import "fmt"

// Raw stores []byte and string payloads as they are, skipping the quoting
// and base64 a JSON codec would add. Any other payload type fails with
// ErrUnsupported.
type Raw struct{}

// Marshal returns the payload bytes. The result aliases a []byte payload.
func (Raw) Marshal(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case *[]byte:
		return *v, nil
	case *string:
		return []byte(*v), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

// Unmarshal copies data into v, which must be a *[]byte or *string.
func (Raw) Unmarshal(data []byte, v any) error {
	switch v := v.(type) {
	case *[]byte:
		*v = append((*v)[:0], data...)
	case *string:
		*v = string(data)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, v)
	}

	return nil
}

func (Raw) Name() string { return "raw" }
