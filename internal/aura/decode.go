package aura

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// decodeField decodes payload[key] into target. Absent or null keys are shape errors.
func decodeField(op operation, payload map[string]any, key string, target any) error {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return &ShapeError{Op: op.name, Field: key}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return &ShapeError{Op: op.name, Field: key, Err: err}
	}

	return nil
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
