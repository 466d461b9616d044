// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

type handlerBox struct{ h slog.Handler }

var current atomic.Pointer[handlerBox]

func currentHandler() slog.Handler {
	if b := current.Load(); b != nil {
		return b.h
	}
	return ethlog.Root().Handler()
}

// forwardHandler resolves the installed handler on every record, so loggers
// created at package init follow later calls to SetHandler.
type forwardHandler struct {
	attrs []slog.Attr
}

func (h *forwardHandler) target() slog.Handler {
	inner := currentHandler()
	if len(h.attrs) > 0 {
		inner = inner.WithAttrs(h.attrs)
	}
	return inner
}

func (h *forwardHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return currentHandler().Enabled(ctx, level)
}

func (h *forwardHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.target().Handle(ctx, r)
}

func (h *forwardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	return &forwardHandler{attrs: append(merged, attrs...)}
}

func (h *forwardHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}
