package runlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LevelSuccess sits between info and warn and marks completed steps.
const LevelSuccess = slog.Level(2)

var (
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CFCF"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00C853"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// Counts tracks how many warnings and errors went through a handler and
// every handler derived from it.
type Counts struct {
	warnings atomic.Int64
	errors   atomic.Int64
}

func (c *Counts) Warnings() int { return int(c.warnings.Load()) }
func (c *Counts) Errors() int   { return int(c.errors.Load()) }

func (c *Counts) Reset() {
	c.warnings.Store(0)
	c.errors.Store(0)
}

// ConsoleHandler writes "15:04:05 [LEVEL] msg key=val" lines, one color per
// level.
type ConsoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	counts *Counts
	now    func() time.Time
}

// NewConsoleHandler returns a handler writing to w at or above level.
func NewConsoleHandler(w io.Writer, level slog.Leveler) *ConsoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ConsoleHandler{
		mu:     &sync.Mutex{},
		w:      w,
		level:  level,
		counts: &Counts{},
		now:    time.Now,
	}
}

func (h *ConsoleHandler) Counts() *Counts { return h.counts }

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	switch {
	case r.Level >= slog.LevelError:
		h.counts.errors.Add(1)
	case r.Level >= slog.LevelWarn:
		h.counts.warnings.Add(1)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = h.now()
	}

	var b strings.Builder
	b.WriteString(ts.Format("15:04:05"))
	b.WriteString(" ")
	b.WriteString(levelLabel(r.Level))
	b.WriteString(" ")
	b.WriteString(r.Message)

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		writeAttr(&b, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, prefix, a)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func levelLabel(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return errorStyle.Render("[ERROR]")
	case l >= slog.LevelWarn:
		return warningStyle.Render("[WARN]")
	case l >= LevelSuccess:
		return successStyle.Render("[OK]")
	case l >= slog.LevelInfo:
		return infoStyle.Render("[INFO]")
	default:
		return debugStyle.Render("[DEBUG]")
	}
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := a.Key
		if prefix != "" && p != "" {
			p = prefix + "." + p
		} else if p == "" {
			p = prefix
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, p, ga)
		}
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(val)
}
