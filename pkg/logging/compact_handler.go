package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CompactHandler formats logs in a compact, readable format for console output
// Format: [LEVEL] HH:MM:SS component: message | key=value key=value
//
// The "component" attribute set by New becomes the message prefix.
type CompactHandler struct {
	opts      slog.HandlerOptions
	mu        *sync.Mutex // shared by handlers derived with WithAttrs/WithGroup
	out       io.Writer
	component string
	attrs     []slog.Attr // accumulated attributes from WithAttrs, keys already prefixed
	prefix    string      // dotted group path from WithGroup
}

var levelLabels = map[slog.Level]string{
	LevelTrace:      "[TRACE] ",
	slog.LevelDebug: "[DEBUG] ",
	slog.LevelInfo:  "[INFO]  ",
	slog.LevelWarn:  "[WARN]  ",
	slog.LevelError: "[ERROR] ",
}

// NewCompactHandler creates a new compact console handler
func NewCompactHandler(w io.Writer, opts *slog.HandlerOptions) *CompactHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &CompactHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		out:  w,
	}
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	if label, ok := levelLabels[r.Level]; ok {
		buf = append(buf, label...)
	} else {
		buf = fmt.Appendf(buf, "[%-5s] ", r.Level)
	}
	buf = r.Time.AppendFormat(buf, "15:04:05")
	buf = append(buf, ' ')

	component := h.component
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" && h.prefix == "" {
			component = a.Value.String()
			return true
		}
		attrs = append(attrs, h.qualify(a))
		return true
	})

	if component != "" {
		buf = append(buf, component...)
		buf = append(buf, ": "...)
	}
	buf = append(buf, r.Message...)

	sep := " |"
	for _, list := range [][]slog.Attr{h.attrs, attrs} {
		for _, a := range list {
			if a.Equal(slog.Attr{}) {
				continue
			}
			buf = append(buf, sep...)
			buf = append(buf, ' ')
			buf = appendAttr(buf, a)
			sep = ""
		}
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func (h *CompactHandler) qualify(a slog.Attr) slog.Attr {
	if h.prefix != "" {
		a.Key = h.prefix + "." + a.Key
	}
	return a
}

func appendAttr(buf []byte, a slog.Attr) []byte {
	v := a.Value.Resolve()

	switch a.Key {
	case "requestID":
		// Request IDs are UUIDs; the first block is enough on a console
		if s := v.String(); len(s) > 8 {
			return append(append(buf, "req="...), s[:8]...)
		}
	case "durationMs":
		return fmt.Appendf(buf, "duration=%sms", v)
	case "error":
		return fmt.Appendf(buf, "error=%q", v.Any())
	}

	buf = append(buf, a.Key...)
	buf = append(buf, '=')

	switch v.Kind() {
	case slog.KindString:
		return appendString(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	}

	// Vertex and edge references print as namespace:id; lists of them as
	// comma-separated values
	switch x := v.Any().(type) {
	case fmt.Stringer:
		return appendString(buf, x.String())
	case []string:
		return appendString(buf, strings.Join(x, ","))
	default:
		return appendString(buf, fmt.Sprintf("%v", x))
	}
}

func appendString(buf []byte, s string) []byte {
	if strings.ContainsAny(s, " \t\n\"=") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if a.Key == "component" && h.prefix == "" {
			next.component = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return &next
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = name
	if h.prefix != "" {
		next.prefix = h.prefix + "." + name
	}
	return &next
}
