// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Logger is the structured logger used across the module.
type Logger = ethlog.Logger

// Levels, from the most verbose.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

var base = ethlog.NewLogger(&forwardHandler{})

// WithContext returns a logger with the given key/value pairs attached.
// The logger writes to whatever handler is installed at the time of logging.
func WithContext(ctx ...any) Logger {
	return base.With(ctx...)
}

// Root returns the logger without context.
func Root() Logger {
	return base
}

// SetHandler installs h as the destination of all loggers, including go-ethereum's own.
func SetHandler(h slog.Handler) {
	current.Store(&handlerBox{h})
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// SetDefault installs the handler of l.
func SetDefault(l Logger) {
	SetHandler(l.Handler())
}

// NewLogger creates a logger writing to h.
func NewLogger(h slog.Handler) Logger {
	return ethlog.NewLogger(h)
}

// JSONHandler returns a handler writing one JSON object per record.
func JSONHandler(w io.Writer) slog.Handler {
	return ethlog.JSONHandler(w)
}

// TerminalHandler returns a human readable handler. Colors are enabled when w is a terminal.
func TerminalHandler(w io.Writer) slog.Handler {
	return ethlog.NewTerminalHandler(w, isTerminal(w))
}

// DiscardHandler returns a handler dropping every record.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

// WithLevel filters records of h below level.
func WithLevel(h slog.Handler, level slog.Level) slog.Handler {
	glog := ethlog.NewGlogHandler(h)
	glog.Verbosity(level)
	return glog
}

// Options configures Setup.
type Options struct {
	Level  slog.Level
	JSON   bool
	Output io.Writer // defaults to stderr
}

// Setup installs the handler described by opts.
func Setup(opts Options) {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	var h slog.Handler
	if opts.JSON {
		h = JSONHandler(w)
	} else {
		h = TerminalHandler(w)
	}
	SetHandler(WithLevel(h, opts.Level))
}

// ParseLevel parses a level name such as "info" or "warn".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trce":
		return LevelTrace, nil
	case "debug", "dbug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "eror":
		return LevelError, nil
	case "crit", "critical":
		return LevelCrit, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
