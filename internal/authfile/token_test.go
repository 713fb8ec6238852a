package authfile

import (
	"encoding/json"
	"testing"
	"time"
)

func canonicalWith(fields map[string]string) *Canonical {
	c := &Canonical{}
	for _, key := range []string{"access_token", "refresh_token", "expires_at", "token_type", "project_id"} {
		if v, ok := fields[key]; ok {
			c.OAuth = append(c.OAuth, Field{Key: key, Value: json.RawMessage(v)})
		}
	}
	return c
}

func TestToken(t *testing.T) {
	c := canonicalWith(map[string]string{
		"access_token":  `"ya29.a"`,
		"refresh_token": `"1//r"`,
		"token_type":    `"Bearer"`,
		"expires_at":    `1767880933`,
		"project_id":    `"composite-rhino-483712-j9"`,
	})

	tok := c.Token()
	if tok.AccessToken != "ya29.a" || tok.RefreshToken != "1//r" || tok.TokenType != "Bearer" {
		t.Fatalf("unexpected token: %+v", tok)
	}
	if !tok.Expiry.Equal(time.Unix(1767880933, 0)) {
		t.Fatalf("Expiry = %v", tok.Expiry)
	}
	if c.ProjectID() != "composite-rhino-483712-j9" {
		t.Fatalf("ProjectID = %q", c.ProjectID())
	}
}

func TestToken_ExpiryFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"seconds", `1767880933`, time.Unix(1767880933, 0)},
		{"milliseconds", `1767880933123`, time.UnixMilli(1767880933123)},
		{"rfc3339", `"2026-01-08T20:22:13+08:00"`, time.Date(2026, 1, 8, 12, 22, 13, 0, time.UTC)},
		{"numeric string", `"1767880933"`, time.Unix(1767880933, 0)},
		{"garbage", `"soon"`, time.Time{}},
		{"null", `null`, time.Time{}},
		{"object", `{"at": 1}`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := canonicalWith(map[string]string{"expires_at": tt.raw})
			if got := c.Token().Expiry; !got.Equal(tt.want) {
				t.Fatalf("Expiry(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestToken_MissingAndNonString(t *testing.T) {
	c := canonicalWith(map[string]string{"access_token": `42`})
	tok := c.Token()
	if tok.AccessToken != "" || tok.RefreshToken != "" || !tok.Expiry.IsZero() {
		t.Fatalf("expected empty token, got %+v", tok)
	}
}

func TestCanonical_UnmarshalCollectsExtraFields(t *testing.T) {
	data := []byte(`{"account": "a@b.com", "email": "a@b.com", "size": 12, "refresh_token": "r", "access_token": "a"}`)
	var c Canonical
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Email != "a@b.com" || c.Size != 12 {
		t.Fatalf("fixed fields not decoded: %+v", c)
	}
	if len(c.OAuth) != 2 || c.OAuth[0].Key != "access_token" || c.OAuth[1].Key != "refresh_token" {
		t.Fatalf("OAuth = %+v, want sorted access_token, refresh_token", c.OAuth)
	}
}
