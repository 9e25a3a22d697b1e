package instrument

import (
	"encoding/json"
	"net/http"
	"strings"
)

const masked = "***"

// Masker replaces the values of configured keys with "***" in log payloads.
// Key matching is case-insensitive.
type Masker struct {
	keys map[string]struct{}
}

func NewMasker(fields []string) *Masker {
	keys := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(strings.ToLower(field))
		if field != "" {
			keys[field] = struct{}{}
		}
	}
	return &Masker{keys: keys}
}

func (m *Masker) Empty() bool {
	return m == nil || len(m.keys) == 0
}

func (m *Masker) Has(key string) bool {
	if m.Empty() {
		return false
	}
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Data walks decoded JSON (maps and slices) and masks matching keys.
func (m *Masker) Data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Has(k) {
				out[k] = masked
				continue
			}
			out[k] = m.Data(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Has(k) {
				out[k] = masked
				continue
			}
			out[k] = inner
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Data(inner)
		}
		return out
	default:
		return v
	}
}

// JSON masks a raw JSON document. ok is false when raw is not JSON.
func (m *Masker) JSON(raw []byte) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false
	}

	out, err := json.Marshal(m.Data(doc))
	if err != nil {
		return "", false
	}

	return string(out), true
}

func (m *Masker) Header(h http.Header) http.Header {
	if m.Empty() {
		return h
	}

	out := h.Clone()
	for key := range out {
		if m.Has(key) {
			out.Set(key, masked)
		}
	}
	return out
}
