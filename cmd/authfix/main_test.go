package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pysugar/nexus-authfix/internal/authfile"
	"github.com/pysugar/nexus-authfix/internal/config"
	"github.com/pysugar/nexus-authfix/internal/db"
	"github.com/pysugar/nexus-authfix/internal/db/models"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.ConfigFileEnv, "")
	t.Setenv(db.PathEnv, "")
	return dir
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeSource(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "composite-rhino-483712-j9-1767877333.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestRun_Usage(t *testing.T) {
	setupEnv(t)
	for _, args := range [][]string{nil, {"only-one.json"}} {
		var out bytes.Buffer
		code, err := run(args, &out, discardLogger())
		if err != nil || code != 1 {
			t.Fatalf("run(%v) = %d, %v; want 1, nil", args, code, err)
		}
		if !strings.HasPrefix(out.String(), "Usage: authfix") {
			t.Fatalf("expected usage on stdout, got %q", out.String())
		}
	}
}

func TestRun_MissingSource(t *testing.T) {
	dir := setupEnv(t)
	var out bytes.Buffer
	code, err := run([]string{filepath.Join(dir, "missing.json"), "a@b.com"}, &out, discardLogger())
	if err != nil || code != 1 {
		t.Fatalf("run = %d, %v; want 1, nil", code, err)
	}
	if !strings.Contains(out.String(), "does not exist") {
		t.Fatalf("expected missing-file message, got %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "antigravity-a_b_com.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("no output should be written when the source is missing")
	}
}

func TestRun_Success(t *testing.T) {
	dir := setupEnv(t)
	src := writeSource(t, dir, `{"access_token": "abc", "extra_unused": "x"}`)
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var out bytes.Buffer
	code, err := run([]string{src, "a@b.com", outDir}, &out, discardLogger())
	if err != nil || code != 0 {
		t.Fatalf("run = %d, %v; want 0, nil", code, err)
	}

	outputPath := filepath.Join(outDir, "antigravity-a_b_com.json")
	for _, want := range []string{src, outputPath, "a@b.com"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, out.String())
		}
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if err := authfile.ValidateCanonical(data); err != nil {
		t.Fatalf("output does not validate: %v", err)
	}
}

func TestRun_DefaultsToWorkingDir(t *testing.T) {
	dir := setupEnv(t)
	src := writeSource(t, dir, `{}`)

	var out bytes.Buffer
	if code, err := run([]string{src, "u@v.com"}, &out, discardLogger()); err != nil || code != 0 {
		t.Fatalf("run = %d, %v; want 0, nil", code, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "antigravity-u_v_com.json")); err != nil {
		t.Fatalf("expected output in working dir: %v", err)
	}
}

func TestRun_MalformedSourceReturnsError(t *testing.T) {
	dir := setupEnv(t)
	src := writeSource(t, dir, `{not json`)

	var out bytes.Buffer
	code, err := run([]string{src, "a@b.com"}, &out, discardLogger())
	if code != 1 || !errors.Is(err, authfile.ErrParse) {
		t.Fatalf("run = %d, %v; want 1, ErrParse", code, err)
	}
}

func TestRun_ProfileOverride(t *testing.T) {
	dir := setupEnv(t)
	src := writeSource(t, dir, `{}`)
	cfgPath := filepath.Join(dir, "authfix.yaml")
	if err := os.WriteFile(cfgPath, []byte("path_prefix: /srv/auths/\n"), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	t.Setenv(config.ConfigFileEnv, cfgPath)

	var out bytes.Buffer
	if code, err := run([]string{src, "a@b.com"}, &out, discardLogger()); err != nil || code != 0 {
		t.Fatalf("run = %d, %v; want 0, nil", code, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "antigravity-a_b_com.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["path"] != "/srv/auths/antigravity-a_b_com.json" {
		t.Fatalf("path = %v", got["path"])
	}
}

func TestRun_ImportsIntoDatabase(t *testing.T) {
	dir := setupEnv(t)
	src := writeSource(t, dir, `{"access_token": "ya29.access", "refresh_token": "1//refresh", "expires_at": 1767880933}`)
	dbPath := filepath.Join(dir, "nexus.db")
	t.Setenv(db.PathEnv, dbPath)

	var out bytes.Buffer
	if code, err := run([]string{src, "a@b.com"}, &out, discardLogger()); err != nil || code != 0 {
		t.Fatalf("run = %d, %v; want 0, nil", code, err)
	}

	database, err := db.InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	var account models.Account
	if err := database.Where("email = ? AND provider = ?", "a@b.com", "antigravity").First(&account).Error; err != nil {
		t.Fatalf("expected imported account: %v", err)
	}
	if account.RefreshToken != "1//refresh" {
		t.Fatalf("RefreshToken = %q", account.RefreshToken)
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if code, err := run([]string{"version"}, &out, discardLogger()); err != nil || code != 0 {
		t.Fatalf("run(version) = %d, %v", code, err)
	}
	if !strings.HasPrefix(out.String(), "authfix dev") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}
