package authfile

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Token projects the copied OAuth fields onto an oauth2.Token. Missing or
// non-string values become empty strings; an expiry that cannot be read is
// left zero.
func (c *Canonical) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.stringField("access_token"),
		RefreshToken: c.stringField("refresh_token"),
		TokenType:    c.stringField("token_type"),
		Expiry:       c.expiry(),
	}
}

// ProjectID returns the copied project_id, if it is a string.
func (c *Canonical) ProjectID() string {
	return c.stringField("project_id")
}

func (c *Canonical) stringField(key string) string {
	raw, ok := c.Get(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (c *Canonical) expiry() time.Time {
	raw, ok := c.Get("expires_at")
	if !ok {
		return time.Time{}
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return unixExpiry(n.String())
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return unixExpiry(s)
}

// unixExpiry reads seconds or, above 1e12, milliseconds since the epoch.
func unixExpiry(s string) time.Time {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return time.Time{}
	}
	if f > 1e12 {
		return time.UnixMilli(int64(f))
	}
	return time.Unix(int64(f), 0)
}
