// Package discovery reads canonical auth files back into credentials that
// the nexus account store can import.
package discovery

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/pysugar/nexus-authfix/internal/authfile"
)

// Credential is an OAuth credential found in an auth file. Source is the
// provider written in the file and Digest is the sha256 of its JCS form.
type Credential struct {
	Source       string    `json:"source"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`  // masked in logs
	RefreshToken string    `json:"refresh_token"` // masked in logs
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	ProjectID    string    `json:"project_id"`
	ConfigPath   string    `json:"config_path"`
	Digest       string    `json:"digest"`
}

// LoadCanonical reads a canonical auth file, checks its shape and converts
// it to a Credential.
func LoadCanonical(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := authfile.ValidateCanonical(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var c authfile.Canonical
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	digest, err := Digest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cred := FromCanonical(&c, path)
	cred.Digest = digest
	return &cred, nil
}

// FromCanonical projects a canonical descriptor onto a Credential.
func FromCanonical(c *authfile.Canonical, path string) Credential {
	token := c.Token()
	return Credential{
		Source:       c.Provider,
		Email:        c.Email,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
		ProjectID:    c.ProjectID(),
		ConfigPath:   path,
	}
}

// Digest returns the sha256 of the RFC 8785 canonical form of a JSON document,
// so reformatting a file does not change it.
func Digest(data []byte) (string, error) {
	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("canonicalize json: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// HasTokens reports whether the credential carries anything importable.
func (c Credential) HasTokens() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}
