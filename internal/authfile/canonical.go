package authfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonical is the fixed-shape auth file the proxy loads. Field order matches
// the order keys are written on disk. The inherited fields keep whatever JSON
// value the source carried.
type Canonical struct {
	Account       string          `json:"account"`
	AccountType   string          `json:"account_type"`
	AuthIndex     json.RawMessage `json:"auth_index"`
	CreatedAt     json.RawMessage `json:"created_at"`
	Disabled      json.RawMessage `json:"disabled"`
	Email         string          `json:"email"`
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	ModTime       string          `json:"modtime"`
	Name          string          `json:"name"`
	Path          string          `json:"path"`
	Provider      string          `json:"provider"`
	RuntimeOnly   json.RawMessage `json:"runtime_only"`
	Size          int64           `json:"size"`
	Source        string          `json:"source"`
	Status        string          `json:"status"`
	StatusMessage string          `json:"status_message"`
	Type          string          `json:"type"`
	Unavailable   bool            `json:"unavailable"`
	UpdatedAt     string          `json:"updated_at"`

	// OAuth holds the token fields copied from the source, written after the
	// fixed fields in this order.
	OAuth []Field `json:"-"`
}

// Field is one copied key/value pair.
type Field struct {
	Key   string
	Value json.RawMessage
}

var fixedKeys = map[string]struct{}{
	"account": {}, "account_type": {}, "auth_index": {}, "created_at": {},
	"disabled": {}, "email": {}, "id": {}, "label": {}, "modtime": {},
	"name": {}, "path": {}, "provider": {}, "runtime_only": {}, "size": {},
	"source": {}, "status": {}, "status_message": {}, "type": {},
	"unavailable": {}, "updated_at": {},
}

// IsFixedKey reports whether key is one of the always-present fields.
func IsFixedKey(key string) bool {
	_, ok := fixedKeys[key]
	return ok
}

// Get returns a copied OAuth field.
func (c *Canonical) Get(key string) (json.RawMessage, bool) {
	for _, f := range c.OAuth {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type fixedCanonical Canonical

func (c Canonical) MarshalJSON() ([]byte, error) {
	head, err := marshalLiteral(fixedCanonical(c))
	if err != nil {
		return nil, err
	}
	if len(c.OAuth) == 0 {
		return head, nil
	}

	var buf bytes.Buffer
	buf.Write(head[:len(head)-1])
	for _, f := range c.OAuth {
		key, err := marshalLiteral(f.Key)
		if err != nil {
			return nil, err
		}
		if !json.Valid(f.Value) {
			return nil, fmt.Errorf("field %s: invalid JSON value", f.Key)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Canonical) UnmarshalJSON(data []byte) error {
	var fixed fixedCanonical
	if err := json.Unmarshal(data, &fixed); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	extra := make([]string, 0, len(all))
	for key := range all {
		if !IsFixedKey(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	*c = Canonical(fixed)
	c.OAuth = nil
	for _, key := range extra {
		c.OAuth = append(c.OAuth, Field{Key: key, Value: all[key]})
	}
	return nil
}

// Encode serializes c as 2-space indented JSON. HTML and non-ASCII
// characters are written literally and there is no trailing newline.
func Encode(c *Canonical) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode auth file: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
