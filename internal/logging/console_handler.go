package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

// consoleHandler writes one human-readable line per record:
//
//	2026-01-02 15:04:05 INFO  pipeline: [talk.mp4 · extract] audio extracted chunks=3
//
// component, source and stage are moved into the header; everything else
// follows as key=value pairs.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Leveler
	addSource bool
	preset    []field
	groups    []string
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.groups, a)
		return true
	})
	head, tail := splitHeader(fields)

	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}

	var sb strings.Builder
	sb.WriteString(when.In(time.Local).Format(logTimestampLayout))
	sb.WriteString(" " + levelLabel(record.Level) + " ")
	if head.component != "" {
		sb.WriteString(head.component + ": ")
	}
	if subject := FormatSubject(head.source, head.stage); subject != "" {
		sb.WriteString("[" + subject + "] ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	sb.WriteString(msg)
	if h.addSource {
		if src := record.Source(); src != nil {
			sb.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	for _, f := range tail {
		sb.WriteString(" " + f.key + "=" + pairValue(f.value))
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.derive()
	for _, a := range attrs {
		next.preset = appendAttr(next.preset, h.groups, a)
	}
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.derive()
	next.groups = append(next.groups, name)
	return next
}

func (h *consoleHandler) derive() *consoleHandler {
	next := *h
	next.preset = append([]field(nil), h.preset...)
	next.groups = append([]string(nil), h.groups...)
	return &next
}

// FormatSubject joins the video name and stage shown between brackets.
func FormatSubject(source, stage string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{source, stage} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

// appendAttr flattens groups into dotted keys.
func appendAttr(dst []field, groups []string, a slog.Attr) []field {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(append([]string(nil), groups...), a.Key)
		}
		for _, child := range v.Group() {
			dst = appendAttr(dst, inner, child)
		}
		return dst
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(dst, field{key: key, value: v})
}

type header struct {
	component, source, stage string
}

// splitHeader pulls the header fields out of fields. The first occurrence of
// a header key wins; for other keys the last value wins but the key keeps its
// first position.
func splitHeader(fields []field) (header, []field) {
	var head header
	index := make(map[string]int, len(fields))
	tail := make([]field, 0, len(fields))
	for _, f := range fields {
		var slot *string
		switch f.key {
		case FieldComponent:
			slot = &head.component
		case FieldSource:
			slot = &head.source
		case FieldStage:
			slot = &head.stage
		case "":
			continue
		}
		if slot != nil {
			if *slot == "" {
				*slot = plainValue(f.value)
			}
			continue
		}
		if i, seen := index[f.key]; seen {
			tail[i] = f
			continue
		}
		index[f.key] = len(tail)
		tail = append(tail, f)
	}
	head.source = filepath.Base(head.source)
	if head.source == "." {
		head.source = ""
	}
	return head, tail
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	}
	return "DEBUG"
}
