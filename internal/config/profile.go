// Package config holds the constants that shape a canonical auth file and
// the YAML overlay that lets a deployment change them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for the CLIProxyAPI antigravity auth file layout.
const (
	DefaultProvider      = "antigravity"
	DefaultType          = "antigravity"
	DefaultAccountType   = "oauth"
	DefaultSource        = "file"
	DefaultStatus        = "active"
	DefaultStatusMessage = ""
	DefaultPathPrefix    = "/data/.cli-proxy-api/"
)

// ConfigFileEnv names an explicit profile file. When set, the file must exist.
const ConfigFileEnv = "NEXUS_AUTHFIX_CONFIG"

// DefaultOAuthFields lists the token fields carried over from a source file.
var DefaultOAuthFields = []string{"access_token", "refresh_token", "expires_at", "token_type", "project_id"}

// Profile is the set of fixed values written into every canonical auth file.
type Profile struct {
	Provider      string   `yaml:"provider"`
	Type          string   `yaml:"type"`
	AccountType   string   `yaml:"account_type"`
	Source        string   `yaml:"source"`
	Status        string   `yaml:"status"`
	StatusMessage string   `yaml:"status_message"`
	PathPrefix    string   `yaml:"path_prefix"`
	FilePrefix    string   `yaml:"file_prefix"`
	OAuthFields   []string `yaml:"oauth_fields"`
}

// DefaultProfile returns the profile the downstream proxy expects out of the box.
func DefaultProfile() Profile {
	return Profile{
		Provider:      DefaultProvider,
		Type:          DefaultType,
		AccountType:   DefaultAccountType,
		Source:        DefaultSource,
		Status:        DefaultStatus,
		StatusMessage: DefaultStatusMessage,
		PathPrefix:    DefaultPathPrefix,
		FilePrefix:    DefaultProvider + "-",
		OAuthFields:   append([]string(nil), DefaultOAuthFields...),
	}
}

// LoadProfile resolves the profile file and overlays it on the defaults.
// The returned path is empty when no file was found.
func LoadProfile() (Profile, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return Profile{}, "", err
	}
	if path == "" {
		return DefaultProfile(), "", nil
	}
	profile, err := LoadProfileFile(path)
	if err != nil {
		return Profile{}, "", err
	}
	return profile, path, nil
}

// LoadProfileFile reads one YAML profile. Blank values keep their defaults.
func LoadProfileFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read authfix profile %q: %w", path, err)
	}

	var overlay Profile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Profile{}, fmt.Errorf("failed to parse authfix profile %q: %w", path, err)
	}

	return merge(DefaultProfile(), overlay), nil
}

func merge(base, overlay Profile) Profile {
	pick := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	pick(&base.Provider, overlay.Provider)
	pick(&base.Type, overlay.Type)
	pick(&base.AccountType, overlay.AccountType)
	pick(&base.Source, overlay.Source)
	pick(&base.Status, overlay.Status)
	pick(&base.StatusMessage, overlay.StatusMessage)
	pick(&base.PathPrefix, overlay.PathPrefix)

	// A custom provider renames the files too, unless a prefix is pinned.
	if strings.TrimSpace(overlay.FilePrefix) != "" {
		base.FilePrefix = overlay.FilePrefix
	} else if strings.TrimSpace(overlay.Provider) != "" {
		base.FilePrefix = overlay.Provider + "-"
	}

	if len(overlay.OAuthFields) > 0 {
		fields := make([]string, 0, len(overlay.OAuthFields))
		for _, f := range overlay.OAuthFields {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) > 0 {
			base.OAuthFields = fields
		}
	}
	return base
}

func resolveConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv(ConfigFileEnv)); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}

	candidates := []string{
		"config/authfix.yaml",
		"/etc/nexus/authfix.yaml",
	}

	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, ".config", "nexus", "authfix.yaml"),
			filepath.Join(homeDir, ".nexus", "authfix.yaml"),
		)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}
