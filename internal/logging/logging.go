// Package logging supplies the slog plumbing shared by the library packages.
package logging

import (
	"context"

	"golang.org/x/exp/slog"
)

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

// OrDiscard returns logger, or a logger that drops everything when logger is
// nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(discard{})
}
