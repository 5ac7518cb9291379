package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ANSI sequences for the level column. Only applied when the output is
// a terminal.
const (
	ansiReset  = "\033[0m"
	ansiGray   = "\033[90m"
	ansiCyan   = "\033[36m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

// textHandler renders "15:04:05 LEVEL message key=value ..." lines, one
// record per line, with the level colored on terminals. It is simpler
// than slog's TextHandler output and meant for humans watching the
// daemon; JSON is the machine format.
func textHandler(w io.Writer, color bool) slog.Handler {
	return &lineHandler{w: w, color: color}
}

type lineHandler struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	attrs []slog.Attr
	group string
}

func (h *lineHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteByte(' ')

	lvl := r.Level.String()
	if h.color {
		b.WriteString(levelColor(r.Level))
		b.WriteString(lvl)
		b.WriteString(ansiReset)
	} else {
		b.WriteString(lvl)
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *lineHandler) writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	b.WriteByte(' ')
	if h.color {
		b.WriteString(ansiGray)
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value))
	if h.color {
		b.WriteString(ansiReset)
	}
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := &lineHandler{w: h.w, color: h.color, group: h.group}
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return nh
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &lineHandler{w: h.w, color: h.color, attrs: h.attrs, group: group}
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return ansiRed
	case l >= slog.LevelWarn:
		return ansiYellow
	case l <= slog.LevelDebug:
		return ansiGray
	default:
		return ansiCyan
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	s := v.String()
	if v.Kind() == slog.KindString && strings.ContainsAny(s, " \t") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
