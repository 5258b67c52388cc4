package codec

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// JSON encodes payloads with encoding/json. Payload types need exported
// fields or their own MarshalJSON.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// GoJSON produces the same bytes as JSON through github.com/goccy/go-json,
// so either one reads the other's snapshots.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }
