// Package diag writes tagged diagnostic lines to the runner's console.
//
// Records are written one per line as
//
//	[JITSpeak]: message key=value ...
//
// Errors go to a separate writer so that they land on stderr like the rest
// of the runner's errors.
package diag

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// DefaultTag prefixes every line unless WithTag is used.
const DefaultTag = "JITSpeak"

// Handler implements slog.Handler.
type Handler struct {
	opts   handlerConfig
	mu     *sync.Mutex
	out    io.Writer
	errOut io.Writer
	prefix string // formatted attrs from WithAttrs
	group  string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level slog.Leveler
	tag   string
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
		tag:   DefaultTag,
	}
}

// WithLevel sets the minimum level to write.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithTag sets the tag lines are prefixed with.
func WithTag(tag string) HandlerOption {
	return func(c *handlerConfig) {
		c.tag = tag
	}
}

// NewHandler returns a Handler writing errors to errOut and everything else
// to out.
func NewHandler(out, errOut io.Writer, opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{
		opts:   cfg,
		mu:     &sync.Mutex{},
		out:    out,
		errOut: errOut,
	}
}

// New returns a logger using a Handler.
func New(out, errOut io.Writer, opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(out, errOut, opts...))
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle writes r as a single line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(h.opts.tag)
	b.WriteString("]: ")
	b.WriteString(r.Message)
	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	w := h.out
	if r.Level >= slog.LevelError {
		w = h.errOut
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(w, b.String())
	return err
}

// WithAttrs returns a Handler that writes attrs on every line.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&b, h.group, a)
	}

	h2 := *h
	h2.prefix = b.String()
	return &h2
}

// WithGroup returns a Handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

func appendAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := group
		if a.Key != "" {
			sub += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, sub, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(group)
	b.WriteString(a.Key)
	b.WriteByte('=')

	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}
	b.WriteString(s)
}
