// authfix rewrites a credential descriptor into the canonical antigravity
// auth file layout used by the proxy, and optionally imports it into the
// nexus account database.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pysugar/nexus-authfix/internal/authfile"
	"github.com/pysugar/nexus-authfix/internal/config"
	"github.com/pysugar/nexus-authfix/internal/db"
	"github.com/pysugar/nexus-authfix/internal/discovery"
	"github.com/pysugar/nexus-authfix/internal/logging"
	"github.com/pysugar/nexus-authfix/internal/version"
)

const quietEnv = "NEXUS_AUTHFIX_QUIET"

const usage = `Usage: authfix <source-file> <email> [output-dir]
Example: authfix composite-rhino-483712-j9-1767877333.json 2304917439@qq.com
`

func main() {
	logOut := io.Writer(os.Stderr)
	if v := strings.TrimSpace(os.Getenv(quietEnv)); v != "" && v != "0" {
		logOut = io.Discard
	}
	logger := logging.NewRunLogger(logOut, "authfix", logging.GenerateRunID())
	log.SetOutput(logger.Writer())
	log.SetPrefix(logger.Prefix())
	log.SetFlags(logger.Flags())

	code, err := run(os.Args[1:], os.Stdout, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authfix: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// run handles one invocation. Usage and missing-source problems are reported
// on stdout with exit code 1; failures from the fix itself are returned.
func run(args []string, stdout io.Writer, logger *log.Logger) (int, error) {
	if len(args) == 1 && (args[0] == "version" || args[0] == "--version") {
		fmt.Fprintln(stdout, version.String())
		return 0, nil
	}
	if len(args) < 2 {
		fmt.Fprint(stdout, usage)
		return 1, nil
	}

	inputPath := args[0]
	email := args[1]
	var outputDir string
	if len(args) > 2 {
		outputDir = args[2]
	}

	if _, err := os.Stat(inputPath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stdout, "Error: file does not exist - %s\n", inputPath)
		return 1, nil
	}

	profile, profilePath, err := config.LoadProfile()
	if err != nil {
		return 1, err
	}
	if profilePath != "" {
		logger.Printf("⚙️ Using profile %s", profilePath)
	}

	fixer := authfile.NewFixer(profile, authfile.WithLogger(logger))
	outputPath, err := fixer.FixFile(inputPath, email, outputDir)
	if err != nil {
		return 1, err
	}

	if dbPath := strings.TrimSpace(os.Getenv(db.PathEnv)); dbPath != "" {
		if err := importAccount(dbPath, outputPath, logger); err != nil {
			return 1, err
		}
	}

	fmt.Fprintln(stdout, "✅ Fix complete!")
	fmt.Fprintf(stdout, "   Source: %s\n", resolve(inputPath))
	fmt.Fprintf(stdout, "   Output: %s\n", resolve(outputPath))
	fmt.Fprintf(stdout, "   Email:  %s\n", email)
	return 0, nil
}

func importAccount(dbPath, authPath string, logger *log.Logger) error {
	cred, err := discovery.LoadCanonical(authPath)
	if err != nil {
		return fmt.Errorf("load fixed auth file: %w", err)
	}
	if !cred.HasTokens() {
		logger.Printf("⚠️ %s has no tokens, skipping import", authPath)
		return nil
	}

	database, err := db.InitDB(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}
	masked := discovery.MaskCredential(*cred)
	logger.Printf("🔍 Importing %s (access=%s refresh=%s digest=%.12s)", masked.Email, masked.AccessToken, masked.RefreshToken, cred.Digest)

	if _, _, err := db.ImportCredential(database, *cred); err != nil {
		return err
	}
	return nil
}

func resolve(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
