package t212sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObjectWriter builds a JSON object whose fields keep their insertion order.
// Its zero value is an empty object.
type jsonObjectWriter struct {
	buf bytes.Buffer
	err error
}

// Append adds the field key, with value encoded by json.Marshal.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	v, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("cannot marshal field %q: %w", key, err)
		return w
	}
	k, _ := json.Marshal(key)
	if w.buf.Len() > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(v)
	return w
}

// Optional adds the field only if value is not the zero value of its type.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// MarshalJSON returns the object, or the first error met while appending fields.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+2)
	out = append(out, '{')
	out = append(out, w.buf.Bytes()...)
	return append(out, '}'), nil
}
