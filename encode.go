package jsonform

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder assembles the JSON document of a form.
type Builder struct {
	opts options
}

// NewBuilder returns a Builder configured by opts.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: newOptions(opts)}
}

// Marshal is a convenience function that builds the document of form with
// default options and returns its JSON encoding.
func Marshal(ctx context.Context, form *Form) ([]byte, error) {
	return NewBuilder().Marshal(ctx, form)
}

// Marshal builds the document of form and returns its JSON encoding.
func (b *Builder) Marshal(ctx context.Context, form *Form) ([]byte, error) {
	root, err := b.Build(ctx, form)
	if err != nil {
		return nil, err
	}
	return root.MarshalJSON()
}

// Build reads the controls of form in document order and folds them into a
// new document. Files are read first, concurrently, so that assembly itself
// never waits and its result does not depend on the order reads complete in.
// A file that cannot be read fails the whole build.
func (b *Builder) Build(ctx context.Context, form *Form) (*Node, error) {
	if form == nil {
		return nil, fmt.Errorf("jsonform: nil form")
	}

	fields := make([]field, 0, len(form.Controls))
	for _, c := range form.Controls {
		if c == nil {
			continue
		}
		if f, ok := extract(c); ok {
			fields = append(fields, f)
		}
	}

	if err := b.readFiles(ctx, fields); err != nil {
		return nil, err
	}

	root := NewObject()
	for _, f := range fields {
		if err := root.Assign(f.path(), f.value); err != nil {
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				b.opts.logger.Warn("field skipped",
					zap.String("name", f.name),
					zap.Error(err),
				)
				continue
			}
			b.opts.logger.Warn("field conflicts with an earlier field",
				zap.String("name", f.name),
				zap.Stringer("have", shapeErr.Have),
				zap.String("want", shapeErr.Want),
			)
		}
	}
	return root, nil
}

// readFiles resolves the value of every file field in place. Results are
// written by position, keeping each control's files in selection order.
func (b *Builder) readFiles(ctx context.Context, fields []field) error {
	objects := make([][]*FileObject, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.maxConcurrentReads)
	for i := range fields {
		if len(fields[i].files) == 0 {
			continue
		}
		objects[i] = make([]*FileObject, len(fields[i].files))
		for j, file := range fields[i].files {
			i, j, file := i, j, file
			g.Go(func() error {
				obj, err := encodeFile(gctx, file, fields[i].enctype, b.opts.chunkSize)
				if err != nil {
					return err
				}
				objects[i][j] = obj
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range fields {
		if objects[i] == nil {
			continue
		}
		if fields[i].multiple {
			fields[i].value = objects[i]
		} else {
			fields[i].value = objects[i][0]
		}
		b.opts.logger.Debug("files inlined",
			zap.String("name", fields[i].name),
			zap.Int("count", len(objects[i])),
			zap.String("enctype", fields[i].enctype),
		)
	}
	return nil
}
