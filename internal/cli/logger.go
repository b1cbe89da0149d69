// logger.go: charmbracelet/log adapter for the benchmark logger
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/agilira/rcuht"
)

const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// charmLogger adapts a charmbracelet logger to [rcuht.Logger].
type charmLogger struct {
	l *log.Logger
}

// NewLogger creates an [rcuht.Logger] writing to w at the given level
// (debug, info, warn, error) and format (text, json, logfmt).
func NewLogger(w io.Writer, level, format string) (rcuht.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter log.Formatter

	switch strings.ToLower(format) {
	case FormatText, "":
		formatter = log.TextFormatter
	case FormatJSON:
		formatter = log.JSONFormatter
	case FormatLogfmt:
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          "rcuht",
	})

	return &charmLogger{l: l}, nil
}

func (c *charmLogger) Debug(msg string, keyvals ...interface{}) { c.l.Debug(msg, keyvals...) }

func (c *charmLogger) Info(msg string, keyvals ...interface{}) { c.l.Info(msg, keyvals...) }

func (c *charmLogger) Warn(msg string, keyvals ...interface{}) { c.l.Warn(msg, keyvals...) }

func (c *charmLogger) Error(msg string, keyvals ...interface{}) { c.l.Error(msg, keyvals...) }
