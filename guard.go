package jsonform

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EventFileSizeExceeded is emitted when a file selection pushes a form over
// its size limit.
const EventFileSizeExceeded = "file-size-exceeded"

// FileSizeExceeded is the detail of an [EventFileSizeExceeded] event.
type FileSizeExceeded struct {
	Control   *Control
	TotalSize int64
	MaxSize   int64
}

// Emitter delivers events raised on a form.
type Emitter interface {
	Emit(form *Form, event string, detail interface{})
}

// EmitterFunc adapts a function to the [Emitter] interface.
type EmitterFunc func(form *Form, event string, detail interface{})

// Emit calls fn.
func (fn EmitterFunc) Emit(form *Form, event string, detail interface{}) {
	fn(form, event, detail)
}

// SizeGuard bounds the total size of files selected across the file
// controls of a form.
type SizeGuard struct {
	emitter Emitter
	opts    options
}

// NewSizeGuard returns a SizeGuard reporting rejections to emitter, which may
// be nil.
func NewSizeGuard(emitter Emitter, opts ...Option) *SizeGuard {
	return &SizeGuard{emitter: emitter, opts: newOptions(opts)}
}

// Limit returns the size limit in effect for form. An absent limit yields
// the default; one that is not a positive integer is logged and also yields
// the default.
func (g *SizeGuard) Limit(form *Form) int64 {
	if form == nil {
		return g.opts.sizeLimit
	}
	raw := strings.TrimSpace(form.SizeLimit)
	if raw == "" {
		return g.opts.sizeLimit
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		g.opts.logger.Warn("invalid size limit, using default",
			zap.String("form", form.ID),
			zap.String("size_limit", form.SizeLimit),
			zap.Int64("default", g.opts.sizeLimit),
		)
		return g.opts.sizeLimit
	}
	return limit
}

// Check is called after the selection of changed has been replaced. When
// the files now selected across the form exceed the limit, only changed is
// cleared and an [EventFileSizeExceeded] event is emitted. Check reports
// whether the selection was kept.
//
// Sizes are read from the controls on every call; nothing is remembered
// between changes.
func (g *SizeGuard) Check(form *Form, changed *Control) bool {
	if changed == nil || changed.Kind != KindFile {
		return true
	}

	limit := g.Limit(form)
	total := selectionSize(changed)
	if form != nil {
		for _, c := range form.Controls {
			if c == nil || c == changed || c.Kind != KindFile {
				continue
			}
			total += selectionSize(c)
		}
	}
	if total <= limit {
		return true
	}

	changed.Clear()
	g.opts.logger.Info("file selection rejected",
		formField(form),
		zap.String("name", changed.Name),
		zap.Int64("total_size", total),
		zap.Int64("max_size", limit),
	)
	if g.emitter != nil {
		g.emitter.Emit(form, EventFileSizeExceeded, FileSizeExceeded{
			Control:   changed,
			TotalSize: total,
			MaxSize:   limit,
		})
	}
	return false
}

func selectionSize(c *Control) int64 {
	var n int64
	for _, f := range c.Files {
		n += f.Size()
	}
	return n
}
