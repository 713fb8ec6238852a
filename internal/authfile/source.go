package authfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// Source is a decoded credential descriptor. Each value is stored as compact
// JSON with string escapes resolved, so copied fields keep their type and
// non-ASCII text is written literally. Numbers keep their source text.
type Source map[string]json.RawMessage

// ParseSource decodes a descriptor. Anything other than a UTF-8 JSON object
// fails with ErrParse.
func ParseSource(data []byte) (Source, error) {
	src, err := decodeSource(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return src, nil
}

func decodeSource(data []byte) (Source, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("invalid UTF-8")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("expected a JSON object")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}

	src := make(Source, len(raw))
	for key, value := range raw {
		normalized, err := normalizeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		src[key] = normalized
	}
	return src, nil
}

// normalizeValue re-emits a JSON value token by token. Object key order and
// number text are preserved; strings are re-quoted without \u escapes.
func normalizeValue(value json.RawMessage) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	var buf bytes.Buffer
	if err := writeToken(dec, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeToken(dec *json.Decoder, buf *bytes.Buffer) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		closing := byte('}')
		if v == '[' {
			closing = ']'
		}
		buf.WriteByte(byte(v))
		for first := true; dec.More(); first = false {
			if !first {
				buf.WriteByte(',')
			}
			if v == '{' {
				key, err := dec.Token()
				if err != nil {
					return err
				}
				if err := writeString(buf, key.(string)); err != nil {
					return err
				}
				buf.WriteByte(':')
			}
			if err := writeToken(dec, buf); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		buf.WriteByte(closing)
	case string:
		return writeString(buf, v)
	case json.Number:
		buf.WriteString(v.String())
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	quoted, err := marshalLiteral(s)
	if err != nil {
		return err
	}
	buf.Write(quoted)
	return nil
}

// ReadSource reads and decodes the descriptor at path.
func ReadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	src, err := decodeSource(data)
	if err != nil {
		return nil, &FileError{Op: "parse", Path: path, Kind: ErrParse, Err: err}
	}
	return src, nil
}

// Lookup returns the raw value for key, or def when the key is absent.
// A present null is returned as-is.
func (s Source) Lookup(key string, def json.RawMessage) json.RawMessage {
	if v, ok := s[key]; ok && len(v) > 0 {
		return v
	}
	return def
}
