// Package logging provides run-scoped loggers for the command line tools.
package logging

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
)

// GenerateRunID creates an 8-character hex ID that tags one invocation.
func GenerateRunID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// NewRunLogger returns a logger that prefixes each line with the tool name
// and run ID, e.g. "[authfix 1a2b3c4d] ".
func NewRunLogger(w io.Writer, tool, runID string) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	return log.New(w, fmt.Sprintf("[%s %s] ", tool, runID), log.LstdFlags|log.Lmsgprefix)
}
