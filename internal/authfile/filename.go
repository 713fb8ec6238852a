package authfile

import (
	"path/filepath"
	"strings"
)

var emailReplacer = strings.NewReplacer("@", "_", ".", "_")

// SafeEmail replaces every '@' and '.' with '_'. Other characters, including
// path separators, pass through untouched.
func SafeEmail(email string) string {
	return emailReplacer.Replace(email)
}

// FileName derives the canonical auth file name, e.g.
// "antigravity-a_b_com.json" for prefix "antigravity-" and "a@b.com".
func FileName(prefix, email string) string {
	return prefix + SafeEmail(email) + ".json"
}

// OutputPath places name under dir, or leaves it relative when dir is empty.
func OutputPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
