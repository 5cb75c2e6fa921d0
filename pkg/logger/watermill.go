package logger

import (
	"context"
	"sort"

	"github.com/ThreeDotsLabs/watermill"
)

// watermillAdapter routes watermill's internal logging through a Logger.
type watermillAdapter struct {
	l      Logger
	fields watermill.LogFields
}

// Watermill wraps l so it can be handed to watermill publishers and subscribers.
func Watermill(l Logger) watermill.LoggerAdapter {
	return &watermillAdapter{l: l}
}

func (w *watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	w.l.Error(context.Background(), msg, append(w.convert(fields), Error(err))...)
}

func (w *watermillAdapter) Info(msg string, fields watermill.LogFields) {
	w.l.Info(context.Background(), msg, w.convert(fields)...)
}

func (w *watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	w.l.Debug(context.Background(), msg, w.convert(fields)...)
}

// Trace is folded into debug; slog has no finer level.
func (w *watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	w.l.Debug(context.Background(), msg, w.convert(fields)...)
}

func (w *watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillAdapter{l: w.l, fields: w.fields.Add(fields)}
}

func (w *watermillAdapter) convert(extra watermill.LogFields) []Field {
	all := w.fields.Add(extra)
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, Any(k, all[k]))
	}
	return out
}
