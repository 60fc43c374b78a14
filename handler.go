package jsonform

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Request is the submission handed to a [Submitter].
type Request struct {
	Headers map[string]string
	Body    []byte
}

// Submitter sends a serialised form on its way.
type Submitter interface {
	Submit(ctx context.Context, form *Form, req Request) error
}

// SubmitterFunc adapts a function to the [Submitter] interface.
type SubmitterFunc func(ctx context.Context, form *Form, req Request) error

// Submit calls fn.
func (fn SubmitterFunc) Submit(ctx context.Context, form *Form, req Request) error {
	return fn(ctx, form, req)
}

// Handler reacts to the submit and change events of JSON forms.
type Handler struct {
	submitter Submitter
	builder   *Builder
	guard     *SizeGuard
	logger    *zap.Logger
}

// NewHandler returns a Handler that submits through submitter and reports
// size guard rejections to emitter. The options apply to both the builder
// and the guard.
func NewHandler(submitter Submitter, emitter Emitter, opts ...Option) *Handler {
	o := newOptions(opts)
	return &Handler{
		submitter: submitter,
		builder:   &Builder{opts: o},
		guard:     &SizeGuard{emitter: emitter, opts: o},
		logger:    o.logger,
	}
}

// Submit builds the body of form and passes it to the submitter exactly
// once. When the body cannot be built nothing is submitted.
func (h *Handler) Submit(ctx context.Context, form *Form) error {
	body, err := h.builder.Marshal(ctx, form)
	if err != nil {
		h.logger.Error("form not submitted", formField(form), zap.Error(err))
		return fmt.Errorf("jsonform: build body: %w", err)
	}
	h.logger.Debug("submitting form",
		zap.String("form", form.ID),
		zap.Int("body_size", len(body)),
	)
	return h.submitter.Submit(ctx, form, Request{
		Headers: map[string]string{"Content-Type": FormEnctype},
		Body:    body,
	})
}

// Change handles a change of control. Only file controls are guarded.
func (h *Handler) Change(form *Form, control *Control) {
	if control == nil || control.Kind != KindFile {
		return
	}
	h.guard.Check(form, control)
}

// Registry attaches a [Handler] to every JSON form it is shown, once per
// form.
type Registry struct {
	handler *Handler

	mu       sync.Mutex
	attached map[*Form]struct{}
}

// NewRegistry returns a Registry attaching h.
func NewRegistry(h *Handler) *Registry {
	return &Registry{handler: h, attached: make(map[*Form]struct{})}
}

// Register attaches the handler to each form that asks for JSON submission
// and has not been seen before. It returns the newly attached forms.
func (r *Registry) Register(forms ...*Form) []*Form {
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []*Form
	for _, f := range forms {
		if f == nil || !f.Matches() {
			continue
		}
		if _, ok := r.attached[f]; ok {
			continue
		}
		r.attached[f] = struct{}{}
		added = append(added, f)
	}
	return added
}

// Submit dispatches a submit event of form. Forms that were never
// registered are left to their default behaviour and false is returned.
func (r *Registry) Submit(ctx context.Context, form *Form) (bool, error) {
	if !r.registered(form) {
		return false, nil
	}
	return true, r.handler.Submit(ctx, form)
}

// Change dispatches a change event of control within form.
func (r *Registry) Change(form *Form, control *Control) bool {
	if !r.registered(form) {
		return false
	}
	r.handler.Change(form, control)
	return true
}

func (r *Registry) registered(form *Form) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.attached[form]
	return ok
}

// formField logs the id of form, which may be nil.
func formField(f *Form) zap.Field {
	if f == nil {
		return zap.Skip()
	}
	return zap.String("form", f.ID)
}
