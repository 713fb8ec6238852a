// Package authfile rewrites a loose credential descriptor into the canonical
// auth file layout that the proxy expects.
package authfile

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"github.com/pysugar/nexus-authfix/internal/config"
)

const filePerm = 0o644

var (
	defaultAuthIndex   = json.RawMessage(`""`)
	defaultDisabled    = json.RawMessage(`false`)
	defaultRuntimeOnly = json.RawMessage(`false`)
)

// Fixer builds and writes canonical auth files for one profile.
type Fixer struct {
	profile config.Profile
	now     func() time.Time
	logger  *log.Logger
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithClock overrides the time source used for created_at, modtime and updated_at.
func WithClock(now func() time.Time) Option {
	return func(f *Fixer) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets the logger used for progress and warnings.
func WithLogger(logger *log.Logger) Option {
	return func(f *Fixer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFixer creates a Fixer for profile.
func NewFixer(profile config.Profile, opts ...Option) *Fixer {
	f := &Fixer{
		profile: profile,
		now:     time.Now,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Profile returns the profile the Fixer writes with.
func (f *Fixer) Profile() config.Profile {
	return f.profile
}

// Build reconstructs the canonical descriptor for email from src. Only the
// inherited fields and the profile's OAuth fields are read; every other key
// is dropped. Size is left at 0.
func (f *Fixer) Build(src Source, email string) *Canonical {
	name := FileName(f.profile.FilePrefix, email)
	now := FormatTimestamp(f.now())
	nowJSON, _ := json.Marshal(now)

	c := &Canonical{
		Account:       email,
		AccountType:   f.profile.AccountType,
		AuthIndex:     src.Lookup("auth_index", defaultAuthIndex),
		CreatedAt:     src.Lookup("created_at", nowJSON),
		Disabled:      src.Lookup("disabled", defaultDisabled),
		Email:         email,
		ID:            name,
		Label:         email,
		ModTime:       now,
		Name:          name,
		Path:          f.profile.PathPrefix + name,
		Provider:      f.profile.Provider,
		RuntimeOnly:   src.Lookup("runtime_only", defaultRuntimeOnly),
		Size:          0,
		Source:        f.profile.Source,
		Status:        f.profile.Status,
		StatusMessage: f.profile.StatusMessage,
		Type:          f.profile.Type,
		Unavailable:   false,
		UpdatedAt:     now,
	}

	for _, key := range f.profile.OAuthFields {
		if IsFixedKey(key) {
			f.logger.Printf("⚠️ OAuth field %q collides with a fixed field, skipping", key)
			continue
		}
		if v, ok := src[key]; ok {
			c.OAuth = append(c.OAuth, Field{Key: key, Value: v})
		}
	}
	return c
}

// Canonicalize writes the canonical auth file for src under destDir (or the
// working directory when destDir is empty) and returns its path.
//
// The file is written twice. The first pass has size 0; size is then set to
// the length of that first file and the descriptor is written again, so the
// final size lags the final length by the digits it added. A failure between
// the two writes leaves the first pass on disk.
func (f *Fixer) Canonicalize(src Source, email, destDir string) (string, error) {
	c := f.Build(src, email)
	outputPath := OutputPath(destDir, c.Name)

	first, err := Encode(c)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, first, filePerm); err != nil {
		return "", writeError("write", outputPath, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", writeError("stat", outputPath, err)
	}
	c.Size = info.Size()

	final, err := Encode(c)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, final, filePerm); err != nil {
		return "", writeError("rewrite", outputPath, err)
	}

	f.logger.Printf("📝 Wrote %s (size=%d, oauth_fields=%d)", outputPath, c.Size, len(c.OAuth))
	return outputPath, nil
}

// FixFile reads the descriptor at inputPath and canonicalizes it.
func (f *Fixer) FixFile(inputPath, email, destDir string) (string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", readError(inputPath, err)
	}
	src, err := decodeSource(data)
	if err != nil {
		// Never echo the payload; it carries tokens.
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			f.logger.Printf("❌ Malformed descriptor %s (%d bytes, syntax error at offset %d)", inputPath, len(data), syntaxErr.Offset)
		} else {
			f.logger.Printf("❌ Malformed descriptor %s (%d bytes)", inputPath, len(data))
		}
		return "", &FileError{Op: "parse", Path: inputPath, Kind: ErrParse, Err: err}
	}
	f.logger.Printf("🔧 Fixing %s for %s (%d source keys)", inputPath, email, len(src))
	return f.Canonicalize(src, email, destDir)
}
